package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/gashibujar1988-crypto/Robotrna/broadcast"
)

// consoleConn is an observer that prints events to a terminal.
type consoleConn struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsoleConn(out io.Writer) *consoleConn {
	return &consoleConn{out: out}
}

type consoleEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Level   string `json:"level"`
	Agent   string `json:"agent"`
	Status  string `json:"status"`
}

// Send implements broadcast.Conn.
func (c *consoleConn) Send(_ context.Context, data []byte) error {
	var ev consoleEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case broadcast.TypeLog:
		fmt.Fprintf(c.out, "%s %s\n", levelColor(ev.Level).Sprintf("%-5s", ev.Level), ev.Message)
	case broadcast.TypeAgentStatus:
		fmt.Fprintf(c.out, "%s %s is %s\n",
			color.New(color.FgMagenta).Sprint("*"),
			ev.Agent,
			statusColor(broadcast.Status(ev.Status)).Sprint(ev.Status),
		)
	}
	return nil
}

func levelColor(level string) *color.Color {
	switch level {
	case broadcast.LevelError:
		return color.New(color.FgRed)
	case broadcast.LevelWarn:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgBlue)
	}
}

func statusColor(s broadcast.Status) *color.Color {
	switch s {
	case broadcast.StatusWorking:
		return color.New(color.FgYellow, color.Bold)
	case broadcast.StatusError:
		return color.New(color.FgRed, color.Bold)
	case broadcast.StatusSuccess:
		return color.New(color.FgGreen, color.Bold)
	default:
		return color.New(color.FgGreen)
	}
}
