package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pkg/browser"

	"github.com/fediscope/fediscope/internal/present"
	"github.com/fediscope/fediscope/internal/route"
	"github.com/fediscope/fediscope/internal/state"
)

// Backend is what the TUI drives. Open records its outcome in the store the
// UI reads from.
type Backend interface {
	Open(ctx context.Context, target string) (*route.Result, error)
	Apply(ctx context.Context, target, action string) (string, error)
	WebURL(target string) (string, error)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Backend   Backend
	Store     *state.Store
	Start     string // first page; empty opens the home timeline
	ThemeName string
	Wrap      int
	Home      string
	PollTick  time.Duration
	// OpenURL opens a link in the browser; nil uses pkg/browser.
	OpenURL func(string) error
}

type inputMode int

const (
	modeList inputMode = iota
	modeGoTo
	modeFilter
)

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx      context.Context
	backend  Backend
	store    *state.Store
	keys     keyMap
	openURL  func(string) error
	start    string
	home     string
	wrap     int
	pollTick time.Duration

	theme  Theme
	width  int
	height int
	ready  bool

	snapshot state.Snapshot
	items    []present.Item
	visible  []int // indexes into items that pass the filter
	selected int   // index into visible
	filter   string

	mode   inputMode
	input  textinput.Model
	detail viewport.Model

	listWidth, listHeight     int
	detailWidth, detailHeight int

	showHelp bool
	loading  bool
	flash    string
	flashErr bool
	flashAt  time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = browser.OpenURL
	}
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}
	start := opts.Start
	if start == "" {
		start = "/"
	}

	input := textinput.New()
	input.Prompt = "› "
	input.CharLimit = 512

	return Model{
		ctx:      ctx,
		backend:  opts.Backend,
		store:    store,
		keys:     DefaultKeyMap(),
		openURL:  openURL,
		start:    start,
		home:     opts.Home,
		wrap:     opts.Wrap,
		pollTick: pollTick,
		theme:    GetTheme(themeName),
		snapshot: store.Snapshot(),
		input:    input,
		detail:   viewport.New(0, 0),
		loading:  opts.Backend != nil,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.pollTick),
		m.openCmd(m.start),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		m.refreshDetail()
		return m, nil

	case loadedMsg:
		m.loading = false
		m.snapshot = m.store.Snapshot()
		if msg.err != nil {
			m.setFlash(msg.err.Error(), true)
			return m, nil
		}
		m.filter = ""
		m.selected = 0
		m.rebuildItems()
		if msg.res != nil && msg.res.Source != "" && msg.res.Source != "direct" {
			m.setFlash("found via "+msg.res.Source, false)
		} else {
			m.flash = ""
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.setFlash(msg.err.Error(), true)
		} else {
			m.setFlash(msg.summary, false)
		}
		return m, nil

	case browserMsg:
		if msg.err != nil {
			m.setFlash("open "+msg.url+": "+msg.err.Error(), true)
		} else {
			m.setFlash("opened "+msg.url, false)
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(fetchSnapshotCmd(m.store), tickCmd(m.pollTick))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil
	}

	if m.mode != modeList {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.mode != modeList {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.setFlash("theme "+m.theme.Name, false)

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Top):
		m.moveSelection(-len(m.visible))
	case key.Matches(msg, m.keys.Bottom):
		m.moveSelection(len(m.visible))
	case key.Matches(msg, m.keys.HalfPageDown):
		m.detail.HalfViewDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.detail.HalfViewUp()

	case key.Matches(msg, m.keys.GoTo):
		return m, m.startPrompt(modeGoTo, "")
	case key.Matches(msg, m.keys.Filter):
		return m, m.startPrompt(modeFilter, m.filter)

	case key.Matches(msg, m.keys.NextPage):
		next, ok := m.store.Cursor(m.snapshot.Path)
		if !ok {
			m.setFlash("no more pages", false)
			return m, nil
		}
		return m, m.openCmd(next)

	case key.Matches(msg, m.keys.Refresh):
		path := m.snapshot.Path
		if path == "" {
			path = m.start
		}
		return m, m.openCmd(path)

	case key.Matches(msg, m.keys.Open):
		it, ok := m.selectedItem()
		if !ok || it.Target == "" {
			m.setFlash("nothing to open here", false)
			return m, nil
		}
		if it.Target == m.snapshot.Path {
			return m, nil
		}
		return m, m.openCmd(it.Target)

	case key.Matches(msg, m.keys.Back):
		if m.filter != "" {
			m.filter = ""
			m.applyFilter()
			return m, nil
		}
		prev, ok := m.store.Back()
		if !ok {
			m.setFlash("no earlier page", false)
			return m, nil
		}
		return m, m.openCmd(prev)

	case key.Matches(msg, m.keys.Favourite):
		return m, m.actionCmd("favourite")
	case key.Matches(msg, m.keys.Boost):
		return m, m.actionCmd("reblog")
	case key.Matches(msg, m.keys.Bookmark):
		return m, m.actionCmd("bookmark")
	case key.Matches(msg, m.keys.Browser):
		return m, m.browseCmd()

	case key.Matches(msg, m.keys.ToggleSpoilers):
		shown := m.store.ToggleSpoilers()
		m.snapshot.ShowSpoilers = shown
		m.refreshDetail()
	case key.Matches(msg, m.keys.ToggleBoosts):
		shown := m.store.ToggleBoosts()
		m.snapshot.ShowBoosts = shown
		m.rebuildItems()
		m.setFlash(ternary(shown, "boosts shown", "boosts hidden"), false)
	}
	return m, nil
}

func (m *Model) startPrompt(mode inputMode, value string) tea.Cmd {
	m.mode = mode
	switch mode {
	case modeGoTo:
		m.input.Placeholder = "path, URL, @user@host, !community@host or #tag"
	case modeFilter:
		m.input.Placeholder = "filter"
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return textinput.Blink
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.mode
	switch {
	case key.Matches(msg, m.keys.Confirm):
		value := strings.TrimSpace(m.input.Value())
		m.mode = modeList
		m.input.Blur()
		if mode == modeFilter {
			m.filter = value
			m.applyFilter()
			return m, nil
		}
		if value == "" {
			return m, nil
		}
		return m, m.openCmd(value)

	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeList
		m.input.Blur()
		if mode == modeFilter {
			m.filter = ""
			m.applyFilter()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if mode == modeFilter {
		m.filter = strings.TrimSpace(m.input.Value())
		m.applyFilter()
	}
	return m, cmd
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
	m.flashAt = time.Now()
}

func (m *Model) moveSelection(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.selected = maxInt(0, minInt(len(m.visible)-1, m.selected+delta))
	m.refreshDetail()
}

func (m Model) selectedItem() (present.Item, bool) {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return present.Item{}, false
	}
	return m.items[m.visible[m.selected]], true
}

// rebuildItems recomputes the list from the current result.
func (m *Model) rebuildItems() {
	m.items = present.Items(m.snapshot.Result, present.Options{HideBoosts: !m.snapshot.ShowBoosts})
	m.applyFilter()
}

// applyFilter keeps the items whose author, title or body fuzzy-match the
// filter, in their original order.
func (m *Model) applyFilter() {
	visible := make([]int, 0, len(m.items))
	for i, it := range m.items {
		if m.filter == "" || fuzzy.MatchFold(m.filter, it.Author+" "+it.Title+" "+it.Body) {
			visible = append(visible, i)
		}
	}
	m.visible = visible
	if m.selected >= len(m.visible) {
		m.selected = maxInt(0, len(m.visible)-1)
	}
	m.refreshDetail()
}

func (m *Model) refreshDetail() {
	if !m.ready {
		return
	}
	it, ok := m.selectedItem()
	if !ok {
		m.detail.SetContent("")
		return
	}
	width := m.detailWidth
	if m.wrap > 0 {
		width = minInt(width, m.wrap)
	}
	m.detail.SetContent(present.Detail(it, width, m.snapshot.ShowSpoilers, time.Now()))
	m.detail.GotoTop()
}

// resize lays out the list and detail panes. Wide terminals put them side by
// side; narrow ones stack them.
func (m *Model) resize() {
	body := maxInt(m.height-2, 6)
	if m.width >= LayoutCompactWidth {
		lw := m.width * 45 / 100
		m.listWidth, m.listHeight = lw-2, body-2
		m.detailWidth, m.detailHeight = m.width-lw-2, body-2
	} else {
		lh := body / 2
		m.listWidth, m.listHeight = m.width-2, lh-2
		m.detailWidth, m.detailHeight = m.width-2, body-lh-2
	}
	m.listWidth = maxInt(m.listWidth, 10)
	m.listHeight = maxInt(m.listHeight, 1)
	m.detailWidth = maxInt(m.detailWidth, 10)
	m.detailHeight = maxInt(m.detailHeight, 1)
	m.detail.Width = m.detailWidth
	m.detail.Height = m.detailHeight
	m.input.Width = maxInt(m.width-6, 10)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type loadedMsg struct {
	target string
	res    *route.Result
	err    error
}

type actionMsg struct {
	summary string
	err     error
}

type browserMsg struct {
	url string
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func (m *Model) openCmd(target string) tea.Cmd {
	if m.backend == nil {
		return nil
	}
	m.loading = true
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		res, err := backend.Open(ctx, target)
		return loadedMsg{target: target, res: res, err: err}
	}
}

func (m *Model) actionCmd(action string) tea.Cmd {
	it, ok := m.selectedItem()
	if !ok || it.Target == "" {
		m.setFlash("select a post first", false)
		return nil
	}
	ctx, backend, target := m.ctx, m.backend, it.Target
	return func() tea.Msg {
		summary, err := backend.Apply(ctx, target, action)
		return actionMsg{summary: summary, err: err}
	}
}

func (m *Model) browseCmd() tea.Cmd {
	link := ""
	if it, ok := m.selectedItem(); ok {
		link = it.Link
		if link == "" && it.Target != "" {
			link, _ = m.backend.WebURL(it.Target)
		}
	}
	if link == "" {
		var err error
		link, err = m.backend.WebURL(m.snapshot.Path)
		if err != nil {
			m.setFlash(err.Error(), true)
			return nil
		}
	}
	openURL := m.openURL
	return func() tea.Msg {
		return browserMsg{url: link, err: openURL(link)}
	}
}

func ternary(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx
	// xdg-open and friends write to the terminal the TUI owns.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
