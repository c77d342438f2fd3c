package tui

import (
	"context"
	"os/exec"
	"time"

	"bwtui/internal/generate"
	"bwtui/internal/model"
	"bwtui/internal/search"
	"bwtui/internal/secret"
	"bwtui/internal/session"
	"bwtui/internal/store"
	"bwtui/internal/vault"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

const (
	minibufferTTL    = 3 * time.Second
	idlePollInterval = time.Second
	exitPaintDelay   = 150 * time.Millisecond
	refreshRetry     = 3 * time.Second
)

// editorLauncher is the part of secret.Editor the TUI drives through tea.ExecProcess.
type editorLauncher interface {
	Prepare(content, hint string) (*secret.Session, error)
	CommandFor(path string) *exec.Cmd
}

// Options wires the session engine to its collaborators.
type Options struct {
	Agent       vault.Agent
	Coordinator *session.Coordinator
	Config      store.Config
	ConfigPath  string
	// Session is a token handed over by the environment (BW_SESSION); reused when the agent
	// reports the vault unlocked.
	Session   string
	Clipboard *secret.Clipboard
	Editor    editorLauncher
	Generator *generate.Generator
	Log       zerolog.Logger
	Now       func() time.Time
}

type appModel struct {
	ctx    context.Context
	agent  vault.Agent
	coord  *session.Coordinator
	clock  *session.Clock
	clip   *secret.Clipboard
	editor editorLauncher
	gen    *generate.Generator
	log    zerolog.Logger
	now    func() time.Time

	cfg        store.Config
	configPath string
	envSession string

	// exitDelay keeps the exiting indicator on screen before quitting.
	exitDelay time.Duration
	// refreshRetry bounds the re-list retry after a mutation.
	refreshRetry time.Duration

	items    *store.ItemStore
	index    *search.Index
	results  []search.Result
	sortMode search.SortMode

	width  int
	height int

	mode mode
	// prevMode is where the generator returns to.
	prevMode mode
	cursor   int
	// detail is a copy of the item captured when Detail was entered.
	detail *model.Item

	keys     keyMap
	query    textinput.Model
	password textinput.Model
	spinner  spinner.Model

	status    vault.Status
	promptErr string
	fatalErr  string

	// editorOpen is set while an external editor owns the terminal.
	editorOpen bool

	minibufferText  string
	minibufferErr   bool
	minibufferUntil time.Time

	// totpFor caches remote TOTP lookups per item for the detail view.
	totpFor  string
	totpCode string

	genState generatorState
}

func newAppModel(ctx context.Context, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = secret.NewClipboard(nil)
	}
	ed := opts.Editor
	if ed == nil {
		ed = secret.NewEditor("")
	}
	g := opts.Generator
	if g == nil {
		g = generate.New()
	}
	coord := opts.Coordinator
	if coord == nil {
		coord = session.NewCoordinator(opts.Agent, opts.Log)
	}

	q := textinput.New()
	q.Prompt = "> "
	q.Placeholder = "search"
	q.CharLimit = 256

	pw := textinput.New()
	pw.Prompt = "Master password: "
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	pw.CharLimit = 1024

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := appModel{
		ctx:          ctx,
		agent:        opts.Agent,
		coord:        coord,
		clock:        session.NewClock(autoLockDuration(opts.Config), now),
		clip:         clip,
		editor:       ed,
		gen:          g,
		log:          opts.Log,
		now:          now,
		cfg:          opts.Config,
		configPath:   opts.ConfigPath,
		envSession:   opts.Session,
		exitDelay:    exitPaintDelay,
		refreshRetry: refreshRetry,
		items:        store.NewItemStore(),
		index:        search.New(nil),
		mode:         modeUnlocking,
		prevMode:     modeSearch,
		keys:         defaultKeyMap(),
		query:        q,
		password:     pw,
		spinner:      sp,
	}
	m.genState = newGeneratorState(opts.Config.Generator)
	return m
}

func autoLockDuration(cfg store.Config) time.Duration {
	return time.Duration(cfg.AutoLockHours * float64(time.Hour))
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, idleTick(), m.startupCmd())
}

func idleTick() tea.Cmd {
	return tea.Tick(idlePollInterval, func(t time.Time) tea.Msg { return idleTickMsg{at: t} })
}

func (m *appModel) showMinibuffer(text string) {
	m.minibufferText = text
	m.minibufferErr = false
	m.minibufferUntil = m.now().Add(minibufferTTL)
}

func (m *appModel) showError(text string) {
	m.showMinibuffer(text)
	m.minibufferErr = true
}

func (m *appModel) expireMinibuffer(now time.Time) {
	if m.minibufferText != "" && !now.Before(m.minibufferUntil) {
		m.minibufferText = ""
		m.minibufferErr = false
	}
}

// pageSize is the number of result rows shown at once.
func (m appModel) pageSize() int {
	n := m.cfg.MaxVisibleEntries
	if n <= 0 {
		n = 30
	}
	if m.height > 0 {
		// header, query, blank, status, minibuffer, footer
		if avail := m.height - 6; avail < n {
			n = avail
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// listOffset is the first visible result row; the cursor sits in the middle of the page
// once it has moved past the first half.
func (m appModel) listOffset() int {
	off := m.cursor - m.pageSize()/2
	if off < 0 {
		return 0
	}
	return off
}

// refreshResults recomputes results for the current query and sort mode.
func (m *appModel) refreshResults() {
	m.results = m.index.Search(m.query.Value(), m.sortMode)
	m.clampCursor()
}

func (m *appModel) clampCursor() {
	if m.cursor >= len(m.results) {
		m.cursor = len(m.results) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *appModel) loadItems(items []model.Item) {
	m.items.Load(items)
	m.index.Rebuild(m.items.Items())
	m.refreshResults()
}

func (m appModel) selectedResult() *model.Item {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return nil
	}
	return m.results[m.cursor].Item
}

// activeItem is the detailed item in Detail, otherwise the selected search result.
func (m appModel) activeItem() *model.Item {
	if (m.mode == modeDetail || m.mode == modeConfirmDelete) && m.detail != nil {
		return m.detail
	}
	return m.selectedResult()
}

func (m *appModel) enterDetail(it model.Item) {
	cp := it.Clone()
	m.detail = &cp
	m.mode = modeDetail
	m.totpFor, m.totpCode = "", ""
}

func (m *appModel) enterSearch() {
	m.mode = modeSearch
	m.detail = nil
	m.query.Focus()
	m.password.Blur()
}

func (m *appModel) enterPasswordPrompt(errText string) {
	m.mode = modePasswordPrompt
	m.promptErr = errText
	m.password.SetValue("")
	m.password.Focus()
	m.query.Blur()
}
