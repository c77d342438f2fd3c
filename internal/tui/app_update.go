package tui

import (
	"errors"
	"strings"

	"bwtui/internal/model"
	"bwtui/internal/vault"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.query.Width = max(10, msg.Width-4)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case idleTickMsg:
		return m.handleIdleTick(msg)

	case clipboardClearMsg:
		cleared, err := m.clip.ClearIf(msg.seq)
		if err != nil {
			m.log.Warn().Err(err).Msg("clear clipboard")
			m.showError("Clipboard clear failed: " + err.Error())
		} else if cleared {
			m.showMinibuffer("Clipboard cleared")
		}
		return m, nil

	case exitDoneMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("lock on exit failed")
		}
		return m, tea.Quit

	case startupMsg:
		return m.handleStartup(msg)

	case unlockDoneMsg:
		if msg.err != nil {
			m.log.Info().Err(msg.err).Msg("unlock failed")
			m.enterPasswordPrompt(unlockErrorText(msg.err))
			return m, nil
		}
		m.coord.SetToken(msg.session)
		m.clock.Touch()
		m.mode = modeLoading
		return m, m.listCmd()

	case itemsLoadedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("initial item list failed")
			m.mode = modeError
			m.fatalErr = "Could not load vault items: " + firstLine(msg.err.Error())
			return m, nil
		}
		m.loadItems(msg.items)
		m.clock.Touch()
		m.enterSearch()
		m.log.Info().Int("items", m.items.Len()).Msg("vault loaded")
		return m, nil

	case mutationDoneMsg:
		return m.applyMutation(msg)

	case editorDoneMsg:
		return m.applyEditorResult(msg)

	case totpDoneMsg:
		if msg.err != nil || strings.TrimSpace(msg.code) == "" {
			m.showMinibuffer("No TOTP available")
			return m, nil
		}
		m.totpFor, m.totpCode = msg.itemID, msg.code
		return m, m.copyText("TOTP", msg.code)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m appModel) handleIdleTick(msg idleTickMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	m.expireMinibuffer(now)
	if m.mode == modeExiting {
		return m, nil
	}
	// A running call or an open editor is not idle time.
	if m.mode.busy() || m.editorOpen {
		m.clock.Touch()
		return m, idleTick()
	}
	if m.clock.Expired(now) {
		m.log.Info().Time("last_activity", m.clock.LastActivity()).Msg("idle timeout")
		mm, cmd := m.beginExit("idle")
		return mm, cmd
	}
	return m, idleTick()
}

func (m appModel) handleStartup(msg startupMsg) (tea.Model, tea.Cmd) {
	m.status = msg.status
	if msg.err != nil {
		m.log.Error().Err(msg.err).Msg("startup failed")
		m.mode = modeError
		switch {
		case errors.Is(msg.err, vault.ErrNotInstalled):
			m.fatalErr = "The bw CLI was not found in PATH. Install it and log in first."
		default:
			m.fatalErr = firstLine(msg.err.Error())
		}
		return m, nil
	}
	m.log.Info().Str("status", string(msg.status.Status)).Msg("agent status")
	if msg.reuse {
		m.coord.SetToken(m.envSession)
		m.mode = modeLoading
		return m, m.listCmd()
	}
	m.enterPasswordPrompt("")
	return m, nil
}

func unlockErrorText(err error) string {
	var ae *vault.AgentError
	if errors.As(err, &ae) {
		if s := firstLine(ae.Stderr); s != "" {
			return s
		}
	}
	return firstLine(err.Error())
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode.busy() || m.editorOpen {
		return m, nil
	}
	m.clock.Touch()

	if m.mode == modeError {
		switch msg.String() {
		case "ctrl+c", "ctrl+q", "esc", "q", "enter":
			return m.beginExit("quit")
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Quit) {
		return m.beginExit("quit")
	}

	switch m.mode {
	case modePasswordPrompt:
		return m.updatePasswordPrompt(msg)
	case modeSearch:
		return m.updateSearch(msg)
	case modeDetail:
		return m.updateDetail(msg)
	case modeShortcut:
		return m.updateShortcut(msg)
	case modeGenerate:
		return m.updateGenerate(msg)
	case modeConfirmDelete:
		return m.updateConfirmDelete(msg)
	}
	return m, nil
}

func (m appModel) updatePasswordPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.beginExit("quit")
	case tea.KeyEnter:
		pw := m.password.Value()
		if pw == "" {
			m.promptErr = "Password required"
			return m, nil
		}
		m.password.SetValue("")
		m.promptErr = ""
		m.mode = modeUnlocking
		return m, m.unlockCmd(pw)
	}
	var cmd tea.Cmd
	m.password, cmd = m.password.Update(msg)
	return m, cmd
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		return m.beginExit("esc")
	case key.Matches(msg, m.keys.Open):
		if it := m.selectedResult(); it != nil {
			m.enterDetail(*it)
			m.query.Blur()
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.cursor -= m.pageSize()
		m.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.cursor += m.pageSize()
		m.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.Sort):
		m.sortMode = m.sortMode.Toggle()
		m.refreshResults()
		m.showMinibuffer("Sort: " + m.sortMode.String())
		return m, nil
	case key.Matches(msg, m.keys.Shortcut),
		m.query.Value() == "" && key.Matches(msg, m.keys.ShortcutBare):
		m.mode = modeShortcut
		m.query.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Create):
		return m, m.startCreate()
	case key.Matches(msg, m.keys.Sync):
		m.mode = modeProcessing
		return m, m.mutationCmd(mutationSync, model.Item{})
	case key.Matches(msg, m.keys.Generate):
		return m.enterGenerator()
	}
	if cmd, ok := m.copyKey(msg); ok {
		return m, cmd
	}
	if n, ok := altDigit(msg); ok {
		return m.jump(n), nil
	}

	before := m.query.Value()
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	if m.query.Value() != before {
		m.cursor = 0
		m.refreshResults()
	}
	return m, cmd
}

func (m appModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.enterSearch()
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		return m, m.startEdit()
	case key.Matches(msg, m.keys.Delete):
		if m.detail != nil {
			m.mode = modeConfirmDelete
		}
		return m, nil
	case key.Matches(msg, m.keys.Generate):
		return m.enterGenerator()
	}
	if cmd, ok := m.copyKey(msg); ok {
		return m, cmd
	}
	if n, ok := altDigit(msg); ok {
		return m.jump(n), nil
	}
	if n, ok := plainDigit(msg); ok {
		return m.jump(n), nil
	}
	return m, nil
}

func (m appModel) updateShortcut(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.enterSearch()
		return m, nil
	case key.Matches(msg, m.keys.ShortcutEditConfig):
		return m, m.startConfigEdit()
	case key.Matches(msg, m.keys.ShortcutReload):
		m.reloadConfig()
		m.enterSearch()
		return m, nil
	}
	if msg.Type != tea.KeyRunes || msg.Alt || len(msg.Runes) != 1 {
		return m, nil
	}
	k := string(msg.Runes)
	sc, ok := m.cfg.FindShortcut(k)
	if !ok {
		m.showMinibuffer("No shortcut for " + k)
		m.enterSearch()
		return m, nil
	}
	m.query.SetValue(sc.Search)
	m.query.CursorEnd()
	m.cursor = 0
	m.refreshResults()
	m.enterSearch()
	return m, nil
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "y" || msg.String() == "Y" {
		if m.detail == nil {
			m.enterSearch()
			return m, nil
		}
		m.mode = modeProcessing
		return m, m.mutationCmd(mutationDelete, m.detail.Clone())
	}
	m.mode = modeDetail
	m.showMinibuffer("Delete cancelled")
	return m, nil
}

func (m *appModel) copyKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.CopyUsername):
		return m.copyItemField(copyUsername), true
	case key.Matches(msg, m.keys.CopyPassword):
		return m.copyItemField(copyPassword), true
	case key.Matches(msg, m.keys.CopyTOTP):
		return m.copyItemField(copyTOTP), true
	case key.Matches(msg, m.keys.CopyURL):
		return m.copyItemField(copyURL), true
	case key.Matches(msg, m.keys.CopyNotes):
		return m.copyItemField(copyNotes), true
	}
	return nil, false
}

// jump opens the n-th visible row (1-based) relative to the current scroll offset.
func (m appModel) jump(n int) appModel {
	idx := m.listOffset() + n - 1
	if idx < 0 || idx >= len(m.results) {
		return m
	}
	m.cursor = idx
	m.enterDetail(*m.results[idx].Item)
	m.query.Blur()
	return m
}

func altDigit(msg tea.KeyMsg) (int, bool) {
	if !msg.Alt {
		return 0, false
	}
	return runeDigit(msg)
}

func plainDigit(msg tea.KeyMsg) (int, bool) {
	if msg.Alt {
		return 0, false
	}
	return runeDigit(msg)
}

func runeDigit(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '1' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}
