package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_UnknownReturnsDefault(t *testing.T) {
	r := Default()

	for _, name := range []string{"Zed", "", "mother-of-dragons", "x y z"} {
		p := r.Lookup(name)
		assert.Equal(t, DefaultRole, p.Role, name)
		assert.Empty(t, p.AllowedTools, name)
		assert.Equal(t, name, p.Name)
		assert.Contains(t, p.Instructions, "helpful AI assistant")
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	r := Default()

	assert.Equal(t, r.Lookup("mother"), r.Lookup("MOTHER"))
	assert.Equal(t, r.Lookup("Hunter"), r.Lookup("hUnTeR"))
	assert.Equal(t, "Lead Generation Expert", r.Lookup("hunter").Role)
	assert.Equal(t, []string{"search_places", "google_search"}, r.Lookup("HUNTER").AllowedTools)
}

func TestLookup_ReturnsCopy(t *testing.T) {
	r := Default()

	p := r.Lookup("Soshie")
	p.AllowedTools[0] = "rm_rf"

	assert.Equal(t, "post_to_linkedin", r.Lookup("Soshie").AllowedTools[0])
}

func TestNames_RegistrationOrder(t *testing.T) {
	names := Default().Names()

	assert.Equal(t, []string{"Mother", "Soshie", "Dexter", "Hunter", "Brainy", "Nova", "Pixel", "Venture", "Atlas", "Ledger"}, names)
}

func TestOnlyOrchestratorIsOrchestrator(t *testing.T) {
	count := 0
	for _, p := range Default().Profiles() {
		if p.IsOrchestrator() {
			count++
			assert.Equal(t, OrchestratorName, p.Name)
		}
	}
	assert.Equal(t, 1, count)
	assert.True(t, IsOrchestrator("mother"))
	assert.False(t, IsOrchestrator("Hunter"))
}

func TestNewRegistry_Validation(t *testing.T) {
	mother := Profile{Name: OrchestratorName, Role: "Orchestrator"}

	_, err := NewRegistry(Profile{Name: "Hunter"})
	assert.ErrorIs(t, err, ErrNoOrchestrator)

	_, err = NewRegistry(mother, Profile{Name: "hunter"}, Profile{Name: "HUNTER"})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewRegistry(mother, Profile{Name: "  "})
	assert.ErrorContains(t, err, "empty name")

	r, err := NewRegistry(mother)
	require.NoError(t, err)
	assert.NotNil(t, r.Lookup(OrchestratorName).AllowedTools)
}

func TestLoad_YAML(t *testing.T) {
	doc := `
agents:
  - name: Mother
    role: Orchestrator
    instructions: You coordinate.
    tools: []
  - name: Scout
    role: Researcher
    instructions: You research.
    tools: [google_search]
`
	r, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"Mother", "Scout"}, r.Names())
	assert.Equal(t, []string{"google_search"}, r.Lookup("scout").AllowedTools)
	assert.True(t, r.Has("SCOUT"))
}

func TestLoad_RejectsUnknownFieldsAndMissingOrchestrator(t *testing.T) {
	_, err := Load(strings.NewReader("agents:\n  - name: Mother\n    colour: red\n"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("agents:\n  - name: Scout\n"))
	assert.ErrorIs(t, err, ErrNoOrchestrator)

	_, err = Load(strings.NewReader("agents: []\n"))
	assert.ErrorContains(t, err, "empty")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agents:\n  - name: mother\n    role: Boss\n"), 0o600))

	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Boss", r.Lookup("Mother").Role)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
