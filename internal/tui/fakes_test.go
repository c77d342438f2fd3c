package tui

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"testing"
	"time"

	"bwtui/internal/generate"
	"bwtui/internal/model"
	"bwtui/internal/secret"
	"bwtui/internal/store"
	"bwtui/internal/vault"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type fakeAgent struct {
	mu sync.Mutex

	installed bool
	status    vault.Status
	password  string
	items     []model.Item

	listErr   error
	createErr error
	editErr   error
	deleteErr error
	totp      string

	unlockCalls int
	lockCalls   int
	listCalls   int
	created     []model.Item
	edited      []model.Item
	deleted     []string
	synced      int
}

func newFakeAgent(items []model.Item) *fakeAgent {
	return &fakeAgent{
		installed: true,
		status:    vault.Status{Status: vault.StatusLocked, UserEmail: "me@example.com"},
		password:  "correct horse",
		items:     items,
	}
}

func (a *fakeAgent) CheckInstalled() bool { return a.installed }

func (a *fakeAgent) Status(context.Context) (vault.Status, error) { return a.status, nil }

func (a *fakeAgent) Unlock(_ context.Context, password string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unlockCalls++
	if password != a.password {
		return "", &vault.AgentError{Op: "unlock", ExitCode: 1, Stderr: "Invalid master password."}
	}
	return "tok", nil
}

func (a *fakeAgent) Lock(context.Context, string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lockCalls++
	return nil
}

func (a *fakeAgent) Sync(context.Context, string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.synced++
	return nil
}

func (a *fakeAgent) ListItems(context.Context, string) ([]model.Item, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listCalls++
	if a.listErr != nil {
		return nil, a.listErr
	}
	return append([]model.Item(nil), a.items...), nil
}

func (a *fakeAgent) CreateItem(_ context.Context, _ string, it model.Item) (model.Item, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.createErr != nil {
		return model.Item{}, a.createErr
	}
	it.ID = "new-1"
	a.created = append(a.created, it)
	a.items = append(a.items, it)
	return it, nil
}

func (a *fakeAgent) EditItem(_ context.Context, _, id string, it model.Item) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.editErr != nil {
		return a.editErr
	}
	a.edited = append(a.edited, it)
	for i := range a.items {
		if a.items[i].ID == id {
			a.items[i] = it
		}
	}
	return nil
}

func (a *fakeAgent) DeleteItem(_ context.Context, _, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.deleteErr != nil {
		return a.deleteErr
	}
	a.deleted = append(a.deleted, id)
	out := a.items[:0]
	for _, it := range a.items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	a.items = out
	return nil
}

func (a *fakeAgent) RemoteTOTP(context.Context, string, string) (string, error) {
	if a.totp == "" {
		return "", errors.New("no totp")
	}
	return a.totp, nil
}

type fakeEditor struct {
	prepared []string
	failWith error
}

func (e *fakeEditor) Prepare(content, hint string) (*secret.Session, error) {
	if e.failWith != nil {
		return nil, e.failWith
	}
	e.prepared = append(e.prepared, content)
	return &secret.Session{Path: "", Cmd: exec.Command("true")}, nil
}

func (e *fakeEditor) CommandFor(path string) *exec.Cmd { return exec.Command("true", path) }

type memClipboard struct {
	text   string
	writes int
}

func (c *memClipboard) WriteAll(text string) error {
	c.writes++
	c.text = text
	return nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	agent  *fakeAgent
	editor *fakeEditor
	clip   *memClipboard
	clock  *testClock
}

func testItems() []model.Item {
	return []model.Item{
		{ID: "1", Type: model.ItemTypeLogin, Name: "GitHub Personal", RevisionDate: "2024-03-01T00:00:00Z",
			Login: &model.Login{Username: "octo", Password: "hunter2", URIs: []model.URI{{URI: "https://github.com"}}}},
		{ID: "2", Type: model.ItemTypeLogin, Name: "Amazon Shopping", RevisionDate: "2024-01-01T00:00:00Z",
			Login: &model.Login{Username: "shopper", Password: "pw"}},
		{ID: "3", Type: model.ItemTypeCard, Name: "AWS Console", RevisionDate: "2024-05-01T00:00:00Z",
			Card: &model.Card{CardholderName: "Ann", Number: "4111111111111111"}},
		{ID: "4", Type: model.ItemTypeSecureNote, Name: "Zebra Mail", Notes: "remember me",
			SecureNote: &model.SecureNote{}},
	}
}

func newTestModel(t *testing.T, cfg store.Config) (appModel, *harness) {
	t.Helper()
	h := &harness{
		agent:  newFakeAgent(testItems()),
		editor: &fakeEditor{},
		clip:   &memClipboard{},
		clock:  &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	m := newAppModel(context.Background(), Options{
		Agent:      h.agent,
		Config:     cfg,
		ConfigPath: "",
		Clipboard:  secret.NewClipboard(h.clip),
		Editor:     h.editor,
		Generator:  generate.New(),
		Log:        zerolog.Nop(),
		Now:        h.clock.Now,
	})
	m.exitDelay = 0
	m.refreshRetry = 0
	return m, h
}

// unlockedModel is a model sitting in Search with the test items loaded.
func unlockedModel(t *testing.T) (appModel, *harness) {
	t.Helper()
	m, h := newTestModel(t, store.DefaultConfig())
	m.coord.SetToken("tok")
	m.loadItems(h.agent.items)
	m.enterSearch()
	return m, h
}

func update(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	mm, cmd := m.Update(msg)
	out, ok := mm.(appModel)
	if !ok {
		t.Fatalf("unexpected model type %T", mm)
	}
	return out, cmd
}

// run executes cmd and feeds the resulting message back into the model.
func run(t *testing.T, m appModel, cmd tea.Cmd) (appModel, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	return update(t, m, cmd())
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func keyAlt(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s), Alt: true} }

func keyType(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, keyRunes(string(r)))
	}
	return m
}

func resultNames(m appModel) []string {
	out := make([]string, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, r.Item.Name)
	}
	return out
}

func detailFor(t *testing.T, m appModel, name string) appModel {
	t.Helper()
	for i, r := range m.results {
		if r.Item.Name == name {
			m.cursor = i
			m, _ = update(t, m, keyType(tea.KeyEnter))
			if m.mode != modeDetail || m.detail == nil || m.detail.Name != name {
				t.Fatalf("expected detail of %q, got mode=%v", name, m.mode)
			}
			return m
		}
	}
	t.Fatalf("no result named %q", name)
	return m
}
