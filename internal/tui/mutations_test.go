package tui

import (
	"errors"
	"strings"
	"testing"

	"bwtui/internal/model"
	"bwtui/internal/secret"
	"bwtui/internal/vault"

	tea "github.com/charmbracelet/bubbletea"
)

func TestEdit_NonLoginNeverOpensEditor(t *testing.T) {
	t.Parallel()

	m, h := unlockedModel(t)
	m = detailFor(t, m, "AWS Console")
	before := h.agent.listCalls

	m, cmd := update(t, m, keyType(tea.KeyCtrlE))
	if cmd != nil {
		t.Fatalf("expected no command for unsupported edit")
	}
	if len(h.editor.prepared) != 0 {
		t.Fatalf("editor must not be invoked for a card")
	}
	if m.mode != modeDetail {
		t.Fatalf("expected to stay in detail, got %v", m.mode)
	}
	if !strings.Contains(m.minibufferText, "Cannot edit Card items") {
		t.Fatalf("unexpected message %q", m.minibufferText)
	}
	if h.agent.listCalls != before || len(h.agent.edited) != 0 {
		t.Fatalf("item collection must stay untouched")
	}
}

func TestEdit_LoginRoundTrip(t *testing.T) {
	t.Parallel()

	m, h := unlockedModel(t)
	m = detailFor(t, m, "GitHub Personal")

	m, cmd := update(t, m, keyType(tea.KeyCtrlE))
	if cmd == nil || len(h.editor.prepared) != 1 || !m.editorOpen {
		t.Fatalf("expected editor to open")
	}
	if !strings.Contains(h.editor.prepared[0], "octo") {
		t.Fatalf("editor content should carry the item, got %q", h.editor.prepared[0])
	}

	// Keys are ignored while the editor owns the terminal.
	if _, extra := update(t, m, keyRunes("x")); extra != nil {
		t.Fatalf("input must be ignored while editing")
	}

	edited := strings.Replace(h.editor.prepared[0], "octo", "octocat", 1)
	m, cmd = update(t, m, editorDoneMsg{purpose: editItem, orig: *m.detail, result: secret.Result{Content: edited}})
	if m.mode != modeProcessing || m.editorOpen {
		t.Fatalf("expected processing, got %v", m.mode)
	}
	m, _ = run(t, m, cmd)

	if m.mode != modeDetail || m.detail == nil {
		t.Fatalf("expected detail after edit, got %v", m.mode)
	}
	if got := m.detail.Login.Username; got != "octocat" {
		t.Fatalf("expected refreshed item, got username %q", got)
	}
	if len(h.agent.edited) != 1 || h.agent.edited[0].ID != "1" {
		t.Fatalf("expected one edit preserving the id, got %+v", h.agent.edited)
	}
	if h.agent.listCalls != 1 {
		t.Fatalf("expected a full re-list after edit, got %d", h.agent.listCalls)
	}
}

func TestEdit_NoChangesSkipsAgent(t *testing.T) {
	t.Parallel()

	m, h := unlockedModel(t)
	m = detailFor(t, m, "GitHub Personal")
	m, _ = update(t, m, keyType(tea.KeyCtrlE))

	m, cmd := update(t, m, editorDoneMsg{purpose: editItem, orig: *m.detail, result: secret.Result{Content: h.editor.prepared[0]}})
	if cmd != nil || m.mode != modeDetail || m.minibufferText != "No changes" {
		t.Fatalf("expected no-op edit, got %v %q", m.mode, m.minibufferText)
	}
	if len(h.agent.edited) != 0 {
		t.Fatalf("agent must not be called")
	}
}

func TestEdit_FailureKeepsOriginal(t *testing.T) {
	t.Parallel()

	m, h := unlockedModel(t)
	h.agent.editErr = &vault.AgentError{Op: "edit item", ExitCode: 1, Stderr: "boom"}
	m = detailFor(t, m, "GitHub Personal")
	m, _ = update(t, m, keyType(tea.KeyCtrlE))
	edited := strings.Replace(h.editor.prepared[0], "octo", "someone", 1)

	m, cmd := update(t, m, editorDoneMsg{purpose: editItem, orig: *m.detail, result: secret.Result{Content: edited}})
	m, _ = run(t, m, cmd)
	if m.mode != modeDetail || m.detail.Login.Username != "octo" {
		t.Fatalf("expected original item retained in detail, got %v %+v", m.mode, m.detail.Login)
	}
	if !strings.Contains(m.minibufferText, "Edit failed") {
		t.Fatalf("unexpected message %q", m.minibufferText)
	}
}

func TestEdit_MissingNameRejectedBeforeCall(t *testing.T) {
	t.Parallel()

	m, h := unlockedModel(t)
	m = detailFor(t, m, "GitHub Personal")
	m, _ = update(t, m, keyType(tea.KeyCtrlE))

	m, cmd := update(t, m, editorDoneMsg{purpose: editItem, orig: *m.detail, result: secret.Result{Content: "username: x\n"}})
	if cmd != nil || m.mode != modeDetail {
		t.Fatalf("expected rejection without a call, got %v", m.mode)
	}
	if !strings.Contains(m.minibufferText, "name is required") {
		t.Fatalf("unexpected message %q", m.minibufferText)
	}
	if len(h.agent.edited) != 0 {
		t.Fatalf("agent must not be called")
	}
}

func TestEditor_ErrorAndCancel(t *testing.T) {
	t.Parallel()

	m, _ := unlockedModel(t)
	m = detailFor(t, m, "GitHub Personal")
	m, _ = update(t, m, keyType(tea.KeyCtrlE))

	m, _ = update(t, m, editorDoneMsg{purpose: editItem, orig: *m.detail, err: &secret.EditorError{Op: "run", Err: errors.New("exit status 1")}})
	if m.mode != modeDetail || !strings.Contains(m.minibufferText, "Editor failed") {
		t.Fatalf("expected editor failure message, got %v %q", m.mode, m.minibufferText)
	}

	m, _ = update(t, m, editorDoneMsg{purpose: editItem, orig: *m.detail, result: secret.Result{Cancelled: true}})
	if m.mode != modeDetail || m.minibufferText != "Edit cancelled" {
		t.Fatalf("expected cancel message, got %q", m.minibufferText)
	}
}

func TestCreate_OpensTemplateAndShowsCreatedItem(t *testing.T) {
	t.Parallel()

	m, h := unlockedModel(t)
	m, cmd := update(t, m, keyType(tea.KeyCtrlN))
	if cmd == nil || len(h.editor.prepared) != 1 {
		t.Fatalf("expected editor with template")
	}
	if !strings.Contains(h.editor.prepared[0], "name:") {
		t.Fatalf("template should have a name key, got %q", h.editor.prepared[0])
	}

	m, cmd = update(t, m, editorDoneMsg{purpose: editCreate, result: secret.Result{Content: "name: Mastodon\nusername: toot\n"}})
	if m.mode != modeProcessing {
		t.Fatalf("expected processing, got %v", m.mode)
	}
	m, _ = run(t, m, cmd)
	if m.mode != modeDetail || m.detail == nil || m.detail.ID != "new-1" {
		t.Fatalf("expected detail of created item, got %v %+v", m.mode, m.detail)
	}
	if m.items.Len() != 5 {
		t.Fatalf("expected re-listed store with 5 items, got %d", m.items.Len())
	}
}

func TestCreate_FailureReturnsToSearch(t *testing.T) {
	t.Parallel()

	m, h := unlockedModel(t)
	h.agent.createErr = &vault.AgentError{Op: "create item", ExitCode: 1, Stderr: "nope"}
	m, _ = update(t, m, keyType(tea.KeyCtrlN))
	m, cmd := update(t, m, editorDoneMsg{purpose: editCreate, result: secret.Result{Content: "name: X\n"}})
	m, _ = run(t, m, cmd)
	if m.mode != modeSearch || !strings.Contains(m.minibufferText, "Create failed") {
		t.Fatalf("expected search with error, got %v %q", m.mode, m.minibufferText)
	}
	if m.items.Len() != 4 {
		t.Fatalf("store must be unchanged")
	}
}

func TestCreate_RefreshFailureKeepsSnapshot(t *testing.T) {
	t.Parallel()

	m, h := unlockedModel(t)
	m, _ = update(t, m, keyType(tea.KeyCtrlN))
	m, cmd := update(t, m, editorDoneMsg{purpose: editCreate, result: secret.Result{Content: "name: X\n"}})
	h.agent.listErr = &vault.AgentError{Op: "list items", ExitCode: 1, Stderr: "busy"}
	m, _ = run(t, m, cmd)

	if m.mode != modeSearch {
		t.Fatalf("expected search when created item can't be resolved, got %v", m.mode)
	}
	if m.items.Len() != 4 {
		t.Fatalf("last good snapshot must be kept, got %d", m.items.Len())
	}
	if !strings.Contains(m.minibufferText, "succeeded but refresh failed") {
		t.Fatalf("unexpected message %q", m.minibufferText)
	}
}

func TestDelete_ConfirmAndCancel(t *testing.T) {
	t.Parallel()

	m, h := unlockedModel(t)
	m = detailFor(t, m, "Zebra Mail")

	m, _ = update(t, m, keyType(tea.KeyCtrlD))
	if m.mode != modeConfirmDelete {
		t.Fatalf("expected confirm, got %v", m.mode)
	}
	m, cmd := update(t, m, keyRunes("n"))
	if cmd != nil || m.mode != modeDetail || m.minibufferText != "Delete cancelled" {
		t.Fatalf("expected cancellation, got %v %q", m.mode, m.minibufferText)
	}

	m, _ = update(t, m, keyType(tea.KeyCtrlD))
	m, cmd = update(t, m, keyRunes("Y"))
	if m.mode != modeProcessing {
		t.Fatalf("expected processing, got %v", m.mode)
	}
	m, _ = run(t, m, cmd)
	if m.mode != modeSearch || m.cursor != 0 {
		t.Fatalf("expected search at top, got %v cursor=%d", m.mode, m.cursor)
	}
	if len(h.agent.deleted) != 1 || h.agent.deleted[0] != "4" {
		t.Fatalf("unexpected deletes %v", h.agent.deleted)
	}
	for _, n := range resultNames(m) {
		if n == "Zebra Mail" {
			t.Fatalf("deleted item still listed")
		}
	}
}

func TestDelete_FailureReturnsToDetail(t *testing.T) {
	t.Parallel()

	m, h := unlockedModel(t)
	h.agent.deleteErr = errors.New("denied")
	m = detailFor(t, m, "Zebra Mail")
	m, _ = update(t, m, keyType(tea.KeyCtrlD))
	m, cmd := update(t, m, keyRunes("y"))
	m, _ = run(t, m, cmd)
	if m.mode != modeDetail || m.detail.Name != "Zebra Mail" {
		t.Fatalf("expected detail after failed delete, got %v", m.mode)
	}
}

func TestSync_RelistsAndReturnsToSearch(t *testing.T) {
	t.Parallel()

	m, h := unlockedModel(t)
	h.agent.items = append(h.agent.items, model.Item{ID: "5", Type: model.ItemTypeLogin, Name: "Synced", Login: &model.Login{}})
	m, cmd := update(t, m, keyType(tea.KeyCtrlS))
	if m.mode != modeProcessing {
		t.Fatalf("expected processing, got %v", m.mode)
	}
	m, _ = run(t, m, cmd)
	if m.mode != modeSearch || m.items.Len() != 5 || h.agent.synced != 1 {
		t.Fatalf("expected synced store, got %v %d", m.mode, m.items.Len())
	}
}
