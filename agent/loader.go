package agent

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk shape of an agent table.
//
//	agents:
//	  - name: Mother
//	    role: Hive Mind Orchestrator
//	    instructions: |
//	      You are Mother ...
//	    tools: []
type tableFile struct {
	Agents []Profile `yaml:"agents"`
}

// LoadFile reads an agent table from a YAML file and builds a Registry.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent table: %w", err)
	}
	r, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Load decodes a YAML agent table from r. Unknown fields are rejected.
func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var tf tableFile
	if err := dec.Decode(&tf); err != nil {
		return nil, fmt.Errorf("decode agent table: %w", err)
	}
	if len(tf.Agents) == 0 {
		return nil, fmt.Errorf("agent table is empty")
	}

	return NewRegistry(tf.Agents...)
}
