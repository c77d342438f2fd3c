package tui

import (
	"strings"
	"testing"

	"bwtui/internal/search"
	"bwtui/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func TestCursorStaysInBounds(t *testing.T) {
	t.Parallel()

	m, _ := unlockedModel(t)
	for i := 0; i < 10; i++ {
		m, _ = update(t, m, keyType(tea.KeyDown))
	}
	if m.cursor != len(m.results)-1 {
		t.Fatalf("expected cursor at last row, got %d", m.cursor)
	}
	for i := 0; i < 10; i++ {
		m, _ = update(t, m, keyType(tea.KeyUp))
	}
	if m.cursor != 0 {
		t.Fatalf("expected cursor at 0, got %d", m.cursor)
	}

	m, _ = update(t, m, keyType(tea.KeyPgDown))
	if m.cursor < 0 || m.cursor >= len(m.results) {
		t.Fatalf("cursor out of range after page down: %d", m.cursor)
	}

	m = typeText(t, m, "zzzzqqq")
	if len(m.results) != 0 || m.cursor != 0 {
		t.Fatalf("expected no results and cursor 0, got %d/%d", len(m.results), m.cursor)
	}
	m, _ = update(t, m, keyType(tea.KeyDown))
	if m.cursor != 0 {
		t.Fatalf("cursor must not move with no results, got %d", m.cursor)
	}
	m, _ = update(t, m, keyType(tea.KeyEnter))
	if m.mode != modeSearch {
		t.Fatalf("enter with no results must stay in search, got %v", m.mode)
	}
}

func TestQueryChangeResetsCursor(t *testing.T) {
	t.Parallel()

	m, _ := unlockedModel(t)
	m, _ = update(t, m, keyType(tea.KeyDown))
	m, _ = update(t, m, keyType(tea.KeyDown))
	if m.cursor != 2 {
		t.Fatalf("expected cursor 2, got %d", m.cursor)
	}
	m = typeText(t, m, "a")
	if m.cursor != 0 {
		t.Fatalf("expected cursor reset on query change, got %d", m.cursor)
	}
}

func TestResultsShrinkClampsCursor(t *testing.T) {
	t.Parallel()

	m, h := unlockedModel(t)
	m.cursor = 3
	m.loadItems(h.agent.items[:2])
	if m.cursor != 1 {
		t.Fatalf("expected cursor clamped to 1, got %d", m.cursor)
	}
}

func TestFuzzyQueryFindsGitHub(t *testing.T) {
	t.Parallel()

	m, _ := unlockedModel(t)
	m = typeText(t, m, "git")
	names := resultNames(m)
	if len(names) == 0 || names[0] != "GitHub Personal" {
		t.Fatalf("expected GitHub Personal first, got %v", names)
	}
}

func TestSortToggleKeepsQuery(t *testing.T) {
	t.Parallel()

	m, _ := unlockedModel(t)
	m = typeText(t, m, "a")
	before := len(m.results)

	m, _ = update(t, m, keyType(tea.KeyTab))
	if m.sortMode != search.SortDate {
		t.Fatalf("expected date sort, got %v", m.sortMode)
	}
	if m.query.Value() != "a" {
		t.Fatalf("query must survive sort toggle, got %q", m.query.Value())
	}
	if len(m.results) != before {
		t.Fatalf("sort toggle must not change the result set")
	}

	m, _ = update(t, m, keyType(tea.KeyBackspace))
	m, _ = update(t, m, keyType(tea.KeyCtrlR))
	if m.sortMode != search.SortDefault {
		t.Fatalf("expected default sort after second toggle")
	}
}

func TestDateSortOrdersNewestFirst(t *testing.T) {
	t.Parallel()

	m, _ := unlockedModel(t)
	m, _ = update(t, m, keyType(tea.KeyTab))
	got := strings.Join(resultNames(m), ",")
	want := "AWS Console,GitHub Personal,Amazon Shopping,Zebra Mail"
	if got != want {
		t.Fatalf("date order: got %s want %s", got, want)
	}
}

func TestEnterCapturesItemAndBackReturns(t *testing.T) {
	t.Parallel()

	m, _ := unlockedModel(t)
	m = detailFor(t, m, "GitHub Personal")

	// Later store changes must not alter the captured detail.
	m.items.Load(nil)
	if m.detail.Name != "GitHub Personal" {
		t.Fatalf("detail must be captured by value")
	}

	m, _ = update(t, m, keyType(tea.KeyEsc))
	if m.mode != modeSearch || m.detail != nil {
		t.Fatalf("expected search without detail, got %v", m.mode)
	}

	m.loadItems(testItems())
	m = detailFor(t, m, "Zebra Mail")
	m, _ = update(t, m, keyType(tea.KeyBackspace))
	if m.mode != modeSearch {
		t.Fatalf("backspace should return to search, got %v", m.mode)
	}
}

func TestPositionalJump(t *testing.T) {
	t.Parallel()

	m, _ := unlockedModel(t)
	m, _ = update(t, m, keyAlt("2"))
	if m.mode != modeDetail || m.detail.Name != "AWS Console" {
		t.Fatalf("expected detail of second row, got %v", m.mode)
	}

	m, _ = update(t, m, keyRunes("4"))
	if m.mode != modeDetail || m.detail.Name != "Zebra Mail" {
		t.Fatalf("digit in detail should jump to fourth row")
	}

	m, _ = update(t, m, keyType(tea.KeyEsc))
	m, _ = update(t, m, keyAlt("9"))
	if m.mode != modeSearch {
		t.Fatalf("out of range jump must be ignored, got %v", m.mode)
	}

	// Plain digits in search are query text.
	m = typeText(t, m, "1")
	if m.mode != modeSearch || m.query.Value() != "1" {
		t.Fatalf("expected digit typed into query, got %q", m.query.Value())
	}
}

func TestPositionalJumpAccountsForScrollOffset(t *testing.T) {
	t.Parallel()

	cfg := store.DefaultConfig()
	cfg.MaxVisibleEntries = 2
	m, h := newTestModel(t, cfg)
	m.coord.SetToken("tok")
	m.loadItems(h.agent.items)
	m.enterSearch()

	m.cursor = 3
	// offset = max(0, 3 - 2/2) = 2
	m, _ = update(t, m, keyAlt("1"))
	if m.mode != modeDetail || m.detail.Name != "GitHub Personal" {
		t.Fatalf("expected third item by absolute index, got %+v", m.detail)
	}
}

func TestShortcutMode(t *testing.T) {
	t.Parallel()

	cfg := store.DefaultConfig()
	cfg.Shortcuts = []store.Shortcut{{Key: "g", Search: "github", Description: "code"}}
	m, h := newTestModel(t, cfg)
	m.coord.SetToken("tok")
	m.loadItems(h.agent.items)
	m.enterSearch()
	m, _ = update(t, m, keyType(tea.KeyDown))

	m, _ = update(t, m, keyRunes(`\`))
	if m.mode != modeShortcut {
		t.Fatalf("expected shortcut mode, got %v", m.mode)
	}
	m, _ = update(t, m, keyRunes("G"))
	if m.mode != modeSearch || m.query.Value() != "github" || m.cursor != 0 {
		t.Fatalf("expected search for github at cursor 0, got %v %q %d", m.mode, m.query.Value(), m.cursor)
	}
	if names := resultNames(m); len(names) == 0 || names[0] != "GitHub Personal" {
		t.Fatalf("unexpected results %v", names)
	}

	m, _ = update(t, m, keyType(tea.KeyCtrlK))
	m, _ = update(t, m, keyRunes("x"))
	if m.mode != modeSearch || !strings.Contains(m.minibufferText, "No shortcut") {
		t.Fatalf("expected no-shortcut message, got %v %q", m.mode, m.minibufferText)
	}

	m, _ = update(t, m, keyType(tea.KeyCtrlK))
	m, _ = update(t, m, keyType(tea.KeyEsc))
	if m.mode != modeSearch {
		t.Fatalf("esc from shortcut mode returns to search, got %v", m.mode)
	}
}

func TestBackslashIsTypedOnceQueryIsNonEmpty(t *testing.T) {
	t.Parallel()

	m, _ := unlockedModel(t)
	m = typeText(t, m, "a")
	m, _ = update(t, m, keyRunes(`\`))
	if m.mode != modeSearch {
		t.Fatalf("backslash should not open shortcuts mid-query, got %v", m.mode)
	}
	if got := m.query.Value(); got != `a\` {
		t.Fatalf("expected backslash in query, got %q", got)
	}
}
