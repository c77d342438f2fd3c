package tui

import (
	"bwtui/internal/generate"
	"bwtui/internal/store"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type generatorState struct {
	kind       string
	password   generate.PasswordOptions
	passphrase generate.PassphraseOptions
	value      string
}

func newGeneratorState(cfg store.GeneratorConfig) generatorState {
	kind := cfg.Type
	if kind != store.GeneratorPassphrase {
		kind = store.GeneratorPassword
	}
	return generatorState{
		kind: kind,
		password: generate.PasswordOptions{
			Length:    cfg.Length,
			Uppercase: cfg.Uppercase,
			Lowercase: cfg.Lowercase,
			Numbers:   cfg.Numbers,
			Symbols:   cfg.Symbols,
		},
		passphrase: generate.PassphraseOptions{
			Words:         cfg.Words,
			Separator:     cfg.Separator,
			Capitalize:    cfg.Capitalize,
			IncludeNumber: cfg.IncludeNumber,
		},
	}
}

func (g generatorState) label() string {
	if g.kind == store.GeneratorPassphrase {
		return "passphrase"
	}
	return "password"
}

// size is the password length or the passphrase word count.
func (g generatorState) size() int {
	if g.kind == store.GeneratorPassphrase {
		return g.passphrase.Words
	}
	return g.password.Length
}

func (g *generatorState) adjust(delta int) {
	if g.kind == store.GeneratorPassphrase {
		g.passphrase.Words = clampInt(g.passphrase.Words+delta, generate.MinWords, generate.MaxWords)
		return
	}
	g.password.Length = clampInt(g.password.Length+delta, generate.MinLength, generate.MaxLength)
}

func (g *generatorState) toggleKind() {
	if g.kind == store.GeneratorPassphrase {
		g.kind = store.GeneratorPassword
		return
	}
	g.kind = store.GeneratorPassphrase
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m *appModel) regenerate() {
	var (
		v   string
		err error
	)
	if m.genState.kind == store.GeneratorPassphrase {
		v, err = m.gen.Passphrase(m.genState.passphrase)
	} else {
		v, err = m.gen.Password(m.genState.password)
	}
	if err != nil {
		m.genState.value = ""
		m.showError("Generate failed: " + err.Error())
		return
	}
	m.genState.value = v
}

func (m appModel) enterGenerator() (tea.Model, tea.Cmd) {
	m.prevMode = m.mode
	m.mode = modeGenerate
	m.query.Blur()
	m.regenerate()
	return m, nil
}

func (m appModel) leaveGenerator() appModel {
	m.genState.value = ""
	m.mode = m.prevMode
	if m.mode == modeSearch {
		m.query.Focus()
	}
	return m
}

func (m appModel) updateGenerate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m = m.leaveGenerator()
		return m, nil
	case key.Matches(msg, m.keys.GenCopy):
		value, label := m.genState.value, m.genState.label()
		m = m.leaveGenerator()
		if value == "" {
			m.showMinibuffer("Nothing generated")
			return m, nil
		}
		return m, m.copyText("generated "+label, value)
	case key.Matches(msg, m.keys.GenSwitch):
		m.genState.toggleKind()
		m.regenerate()
	case key.Matches(msg, m.keys.GenMore):
		m.genState.adjust(1)
		m.regenerate()
	case key.Matches(msg, m.keys.GenLess):
		m.genState.adjust(-1)
		m.regenerate()
	case key.Matches(msg, m.keys.GenRegen):
		m.regenerate()
	}
	return m, nil
}
