package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bwtui/internal/format"
	"bwtui/internal/model"
	"bwtui/internal/store"
	"bwtui/internal/totp"
	"bwtui/internal/vault"

	tea "github.com/charmbracelet/bubbletea"
)

// Every vault call runs inside a tea.Cmd returned after the mode has switched to a busy
// mode, so the indicator is painted before the call blocks.

var errNotLoggedIn = errors.New("not logged in; run `bw login` first")

func (m appModel) startupCmd() tea.Cmd {
	agent, ctx, envSession := m.agent, m.ctx, m.envSession
	return func() tea.Msg {
		if !agent.CheckInstalled() {
			return startupMsg{err: vault.ErrNotInstalled}
		}
		st, err := agent.Status(ctx)
		if err != nil {
			return startupMsg{err: err}
		}
		if st.Status == vault.StatusUnauthenticated {
			return startupMsg{status: st, err: errNotLoggedIn}
		}
		return startupMsg{status: st, reuse: st.Status == vault.StatusUnlocked && envSession != ""}
	}
}

func (m appModel) unlockCmd(password string) tea.Cmd {
	agent, ctx := m.agent, m.ctx
	return func() tea.Msg {
		tok, err := agent.Unlock(ctx, password)
		return unlockDoneMsg{session: tok, err: err}
	}
}

func (m appModel) listCmd() tea.Cmd {
	agent, ctx, tok := m.agent, m.ctx, m.coord.Token()
	return func() tea.Msg {
		items, err := agent.ListItems(ctx, tok)
		return itemsLoadedMsg{items: items, err: err}
	}
}

// mutationCmd runs one mutating call and, when it succeeds, re-lists the whole vault.
func (m appModel) mutationCmd(kind mutationKind, it model.Item) tea.Cmd {
	agent, ctx, tok, retry, log := m.agent, m.ctx, m.coord.Token(), m.refreshRetry, m.log
	return func() tea.Msg {
		msg := mutationDoneMsg{kind: kind, item: it}
		start := time.Now()
		switch kind {
		case mutationCreate:
			created, err := agent.CreateItem(ctx, tok, it)
			msg.err = err
			msg.createdID = created.ID
		case mutationEdit:
			msg.err = agent.EditItem(ctx, tok, it.ID, it)
		case mutationDelete:
			msg.err = agent.DeleteItem(ctx, tok, it.ID)
		case mutationSync:
			msg.err = agent.Sync(ctx, tok)
		}
		log.Debug().Str("op", kind.String()).Dur("took", time.Since(start)).Bool("ok", msg.err == nil).Msg("vault mutation")
		if msg.err != nil {
			return msg
		}
		msg.items, msg.listErr = vault.ListItemsWithRetry(ctx, agent, tok, retry)
		return msg
	}
}

func (m appModel) remoteTOTPCmd(id string) tea.Cmd {
	agent, ctx, tok := m.agent, m.ctx, m.coord.Token()
	return func() tea.Msg {
		code, err := agent.RemoteTOTP(ctx, id, tok)
		return totpDoneMsg{itemID: id, code: code, err: err}
	}
}

// exitCmd locks the vault once, wipes a pending clipboard secret and keeps the exiting
// indicator visible for at least exitDelay.
func (m appModel) exitCmd() tea.Cmd {
	coord, clip, ctx, delay, log := m.coord, m.clip, m.ctx, m.exitDelay, m.log
	return func() tea.Msg {
		start := time.Now()
		err := coord.Lock(ctx)
		if cerr := clip.ClearPending(); cerr != nil {
			log.Warn().Err(cerr).Msg("clear clipboard on exit")
		}
		if rest := delay - time.Since(start); rest > 0 {
			time.Sleep(rest)
		}
		return exitDoneMsg{err: err}
	}
}

func (m appModel) beginExit(reason string) (tea.Model, tea.Cmd) {
	if m.mode == modeExiting {
		return m, nil
	}
	m.log.Info().Str("reason", reason).Msg("exiting")
	m.mode = modeExiting
	m.query.Blur()
	m.password.Blur()
	return m, m.exitCmd()
}

type copyField int

const (
	copyUsername copyField = iota
	copyPassword
	copyTOTP
	copyURL
	copyNotes
)

func (f copyField) String() string {
	switch f {
	case copyUsername:
		return "Username"
	case copyPassword:
		return "Password"
	case copyTOTP:
		return "TOTP"
	case copyURL:
		return "URL"
	case copyNotes:
		return "Notes"
	default:
		return "value"
	}
}

// copyItemField resolves field on the active item and copies it.
func (m *appModel) copyItemField(f copyField) tea.Cmd {
	it := m.activeItem()
	if it == nil {
		m.showMinibuffer("No item selected")
		return nil
	}
	var value string
	switch f {
	case copyUsername:
		value = it.Username()
	case copyPassword:
		value = it.Password()
	case copyURL:
		if uris := it.URIs(); len(uris) > 0 {
			value = uris[0]
		}
	case copyNotes:
		value = it.Notes
	case copyTOTP:
		seed := it.TOTPSeed()
		if seed == "" {
			break
		}
		code, err := totp.Generate(seed, m.now())
		if err != nil {
			// The agent understands every seed format it stores; ask it instead.
			if !errors.Is(err, totp.ErrUnsupported) {
				m.log.Debug().Err(err).Str("item", it.ID).Msg("local totp failed")
			}
			m.showMinibuffer("Fetching TOTP…")
			return m.remoteTOTPCmd(it.ID)
		}
		value = code.Code
	}
	if strings.TrimSpace(value) == "" {
		m.showMinibuffer(fmt.Sprintf("No %s available", f))
		return nil
	}
	return m.copyText(f.String(), value)
}

// copyText puts value on the clipboard and arms the clear timer for that copy.
func (m *appModel) copyText(label, value string) tea.Cmd {
	seq, err := m.clip.Copy(value)
	if err != nil {
		m.showError("Clipboard error: " + err.Error())
		return nil
	}
	delay := time.Duration(m.cfg.ClipboardClearSeconds) * time.Second
	if delay <= 0 {
		m.clip.Forget()
		m.showMinibuffer("Copied " + label)
		return nil
	}
	m.showMinibuffer(fmt.Sprintf("Copied %s (clears in %ds)", label, m.cfg.ClipboardClearSeconds))
	return tea.Tick(delay, func(time.Time) tea.Msg { return clipboardClearMsg{seq: seq} })
}

// reloadConfig replaces the whole config with a fresh read of the file.
func (m *appModel) reloadConfig() {
	cfg, err := store.LoadConfig(m.configPath)
	m.cfg = cfg
	m.clock.SetThreshold(autoLockDuration(cfg))
	m.genState = newGeneratorState(cfg.Generator)
	m.clampCursor()
	if err != nil {
		m.log.Warn().Err(err).Str("path", m.configPath).Msg("config reloaded with errors")
		m.showError("Config reloaded with errors: " + firstLine(err.Error()))
		return
	}
	m.showMinibuffer("Config reloaded")
}

func (m *appModel) launchEditor(purpose editorPurpose, orig model.Item, content, hint string) tea.Cmd {
	sess, err := m.editor.Prepare(content, hint)
	if err != nil {
		m.showError("Editor error: " + err.Error())
		return nil
	}
	m.editorOpen = true
	return tea.ExecProcess(sess.Cmd, func(runErr error) tea.Msg {
		res, ferr := sess.Finish(runErr)
		return editorDoneMsg{purpose: purpose, orig: orig, result: res, err: ferr}
	})
}

func (m *appModel) startCreate() tea.Cmd {
	content, err := format.ItemToYAML(model.Item{})
	if err != nil {
		m.showError("Create failed: " + err.Error())
		return nil
	}
	return m.launchEditor(editCreate, model.Item{}, content, "new-item")
}

func (m *appModel) startEdit() tea.Cmd {
	if m.detail == nil {
		return nil
	}
	orig := m.detail.Clone()
	if orig.Type != model.ItemTypeLogin {
		m.showError(fmt.Sprintf("Cannot edit %s items", orig.Type))
		return nil
	}
	content, err := format.ItemToYAML(orig)
	if err != nil {
		m.showError("Edit failed: " + err.Error())
		return nil
	}
	return m.launchEditor(editItem, orig, content, orig.Name)
}

func (m *appModel) startConfigEdit() tea.Cmd {
	if strings.TrimSpace(m.configPath) == "" {
		m.showError("No config file")
		return nil
	}
	m.editorOpen = true
	return tea.ExecProcess(m.editor.CommandFor(m.configPath), func(err error) tea.Msg {
		return editorDoneMsg{purpose: editConfig, err: err}
	})
}

// applyEditorResult turns a finished editor round trip into the next transition.
func (m appModel) applyEditorResult(msg editorDoneMsg) (tea.Model, tea.Cmd) {
	m.editorOpen = false
	m.clock.Touch()

	if msg.purpose == editConfig {
		if msg.err != nil {
			m.showError("Editor failed: " + msg.err.Error())
			return m, nil
		}
		m.reloadConfig()
		m.enterSearch()
		return m, nil
	}

	op := "Create"
	if msg.purpose == editItem {
		op = "Edit"
	}
	if msg.err != nil {
		m.showError("Editor failed: " + msg.err.Error())
		return m, nil
	}
	if msg.result.Cancelled {
		m.showMinibuffer(op + " cancelled")
		return m, nil
	}
	edited, err := format.YAMLToItem(msg.result.Content)
	switch {
	case errors.Is(err, format.ErrMissingName):
		m.showError(op + " rejected: name is required")
		return m, nil
	case err != nil:
		m.showError(op + " rejected: " + err.Error())
		return m, nil
	case edited == nil:
		m.showMinibuffer(op + " cancelled")
		return m, nil
	}

	if msg.purpose == editCreate {
		m.mode = modeProcessing
		return m, m.mutationCmd(mutationCreate, *edited)
	}

	merged := format.MergeEdit(msg.orig, *edited)
	if !format.Changed(msg.orig, merged) {
		m.showMinibuffer("No changes")
		return m, nil
	}
	m.mode = modeProcessing
	return m, m.mutationCmd(mutationEdit, merged)
}

// applyMutation handles the end of a mutating call, including its refresh.
func (m appModel) applyMutation(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	m.clock.Touch()
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Str("op", msg.kind.String()).Msg("vault mutation failed")
		m.showError(fmt.Sprintf("%s failed: %s", msg.kind, firstLine(msg.err.Error())))
		switch msg.kind {
		case mutationEdit, mutationDelete:
			m.mode = modeDetail
		default:
			m.enterSearch()
		}
		return m, nil
	}

	refreshed := msg.listErr == nil
	if refreshed {
		m.loadItems(msg.items)
	} else {
		m.log.Warn().Err(msg.listErr).Str("op", msg.kind.String()).Msg("refresh after mutation failed")
	}
	done := func(text string) {
		if refreshed {
			m.showMinibuffer(text)
			return
		}
		m.showError(fmt.Sprintf("%s succeeded but refresh failed: %s", msg.kind, firstLine(msg.listErr.Error())))
	}

	switch msg.kind {
	case mutationCreate:
		done("Created " + msg.item.Name)
		if it, ok := m.items.FindByID(msg.createdID); ok && msg.createdID != "" {
			m.enterDetail(it)
			return m, nil
		}
		m.enterSearch()
	case mutationEdit:
		done("Saved " + msg.item.Name)
		if it, ok := m.items.FindByID(msg.item.ID); ok {
			m.enterDetail(it)
		} else {
			m.enterDetail(msg.item)
		}
	case mutationDelete:
		done("Deleted " + msg.item.Name)
		m.enterSearch()
		m.cursor = 0
		m.clampCursor()
	case mutationSync:
		done(fmt.Sprintf("Synced %d items", m.items.Len()))
		m.enterSearch()
	}
	return m, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
