package vault

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotInstalled = errors.New("bw CLI not found in PATH")

// AgentError is a non-zero exit from the agent.
type AgentError struct {
	Op       string
	ExitCode int
	Stderr   string
}

func (e *AgentError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("bw %s: exit status %d", e.Op, e.ExitCode)
	}
	return fmt.Sprintf("bw %s: %s", e.Op, firstLine(msg))
}

// ParseError is malformed agent output.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bw %s: unexpected output: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
