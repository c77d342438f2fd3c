// Package secret moves secret material through the clipboard and an external editor
// without leaving it on disk.
package secret

import (
	"errors"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

// Writer is the system clipboard.
type Writer interface {
	WriteAll(text string) error
}

type systemWriter struct{}

func (systemWriter) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility found (install wl-clipboard, xclip or xsel)")
	}
	return clipboard.WriteAll(text)
}

func SystemWriter() Writer { return systemWriter{} }

// Clipboard copies text and tracks which copy a pending clear belongs to. Only the
// newest copy's clear is honoured, so a new copy implicitly cancels the old timer.
type Clipboard struct {
	mu      sync.Mutex
	w       Writer
	seq     uint64
	pending bool
}

func NewClipboard(w Writer) *Clipboard {
	if w == nil {
		w = SystemWriter()
	}
	return &Clipboard{w: w}
}

// Copy writes text and returns the sequence number to pass to ClearIf.
func (c *Clipboard) Copy(text string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.w.WriteAll(strings.ReplaceAll(text, "\r\n", "\n")); err != nil {
		return 0, err
	}
	c.seq++
	c.pending = true
	return c.seq, nil
}

// ClearIf empties the clipboard when seq is still the latest copy. It reports whether it
// cleared.
func (c *Clipboard) ClearIf(seq uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq || !c.pending {
		return false, nil
	}
	c.pending = false
	return true, c.w.WriteAll("")
}

// ClearPending empties the clipboard if a clear is still outstanding. Called on exit so
// a secret never outlives the session that was supposed to wipe it.
func (c *Clipboard) ClearPending() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return nil
	}
	c.pending = false
	c.seq++
	return c.w.WriteAll("")
}

// Forget drops the pending clear without touching the clipboard (clearing disabled).
func (c *Clipboard) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
}
