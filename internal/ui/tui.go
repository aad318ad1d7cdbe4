package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mark3labs/llmprices/internal/catalog"
	"github.com/mark3labs/llmprices/internal/localization"
	"github.com/mark3labs/llmprices/internal/pricing"
	"github.com/mark3labs/llmprices/internal/view"
)

// LoadFunc loads the catalog shown by PriceTable.
type LoadFunc func(context.Context) (*catalog.Catalog, error)

// loadedMsg carries the result of the one-time catalog load.
type loadedMsg struct {
	catalog *catalog.Catalog
	err     error
}

type keyMap struct {
	Search       key.Binding
	Provider     key.Binding
	ProviderPrev key.Binding
	Sort         key.Binding
	SortPrev     key.Binding
	Group        key.Binding
	Currency     key.Binding
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Top          key.Binding
	Bottom       key.Binding
	Clear        key.Binding
	Quit         key.Binding
	ForceQuit    key.Binding
}

var keys = keyMap{
	Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Provider:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p/P", "provider")),
	ProviderPrev: key.NewBinding(key.WithKeys("P", "shift+p")),
	Sort:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s/S", "sort")),
	SortPrev:     key.NewBinding(key.WithKeys("S", "shift+s")),
	Group:        key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "group")),
	Currency:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "currency")),
	Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "scroll")),
	Down:         key.NewBinding(key.WithKeys("down", "j")),
	PageUp:       key.NewBinding(key.WithKeys("pgup", "left")),
	PageDown:     key.NewBinding(key.WithKeys("pgdown", "right", "space")),
	Top:          key.NewBinding(key.WithKeys("home")),
	Bottom:       key.NewBinding(key.WithKeys("end")),
	Clear:        key.NewBinding(key.WithKeys("esc")),
	Quit:         key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit:    key.NewBinding(key.WithKeys("ctrl+c")),
}

// helpBindings are listed, in order, on the help line.
var helpBindings = []key.Binding{
	keys.Search, keys.Provider, keys.Sort, keys.Group, keys.Currency, keys.Up, keys.Quit,
}

// PriceTable is the interactive price comparison view. It starts in a
// loading state, runs the catalog load once, and from then on rebuilds the
// table synchronously on every control change.
type PriceTable struct {
	ctx       context.Context
	load      LoadFunc
	localizer *localization.Localizer

	spinner spinner.Model
	search  textinput.Model

	loading   bool
	err       error
	catalog   *catalog.Catalog
	opts      view.Options
	providers []string
	table     view.Table
	lines     []string
	offset    int

	width  int
	height int
}

// NewPriceTable creates the interactive view. opts is the initial control
// state; its Search seeds the search box.
func NewPriceTable(ctx context.Context, load LoadFunc, l *localization.Localizer, opts view.Options) *PriceTable {
	theme := GetTheme()

	sp := spinner.New(spinner.WithSpinner(spinner.Points))
	sp.Style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = l.T(localization.MsgSearchPlaceholder)
	ti.SetValue(opts.Query.Search)

	if opts.Query.Provider == "" {
		opts.Query.Provider = view.AllProviders
	}
	opts.Sort = view.ParseSortKey(string(opts.Sort))
	if opts.Display == "" {
		opts.Display = pricing.CNY
	}
	opts.Language = l.Tag()

	return &PriceTable{
		ctx:       ctx,
		load:      load,
		localizer: l,
		spinner:   sp,
		search:    ti,
		loading:   true,
		opts:      opts,
	}
}

// Init implements tea.Model.
func (m *PriceTable) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m *PriceTable) loadCmd() tea.Cmd {
	return func() tea.Msg {
		cat, err := m.load(m.ctx)
		return loadedMsg{catalog: cat, err: err}
	}
}

// Options returns the current control state.
func (m *PriceTable) Options() view.Options {
	return m.opts
}

// Table returns the table currently on screen.
func (m *PriceTable) Table() view.Table {
	return m.table
}

// Err returns the load error, if any.
func (m *PriceTable) Err() error {
	return m.err
}

// Update implements tea.Model.
func (m *PriceTable) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.SetWidth(max(msg.Width-4, 10))
		if m.catalog != nil {
			m.rebuild()
		}
		return m, nil

	case loadedMsg:
		m.loading = false
		m.err = msg.err
		m.catalog = msg.catalog
		if m.catalog == nil || m.err != nil {
			m.catalog = catalog.Empty()
		}
		m.providers = view.ProviderOptions(m.catalog)
		m.rebuild()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	if m.search.Focused() {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *PriceTable) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.ForceQuit) {
		return m, tea.Quit
	}

	// While loading and after a failed load only quitting is possible.
	if m.loading || m.err != nil {
		if key.Matches(msg, keys.Quit, keys.Clear) {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.search.Focused() {
		if msg.Code == tea.KeyEnter || key.Matches(msg, keys.Clear) {
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if v := m.search.Value(); v != m.opts.Query.Search {
			m.opts.Query.Search = v
			m.offset = 0
			m.rebuild()
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Search):
		return m, m.search.Focus()

	case key.Matches(msg, keys.Clear):
		if m.opts.Query.Search != "" {
			m.search.SetValue("")
			m.opts.Query.Search = ""
			m.offset = 0
			m.rebuild()
		}

	case key.Matches(msg, keys.Provider):
		m.opts.Query.Provider = cycle(m.providers, m.opts.Query.Provider, 1)
		m.offset = 0
		m.rebuild()

	case key.Matches(msg, keys.ProviderPrev):
		m.opts.Query.Provider = cycle(m.providers, m.opts.Query.Provider, -1)
		m.offset = 0
		m.rebuild()

	case key.Matches(msg, keys.Sort):
		m.opts.Sort = cycle(view.SortKeys, m.opts.Sort, 1)
		m.rebuild()

	case key.Matches(msg, keys.SortPrev):
		m.opts.Sort = cycle(view.SortKeys, m.opts.Sort, -1)
		m.rebuild()

	case key.Matches(msg, keys.Group):
		m.opts.GroupByProvider = !m.opts.GroupByProvider
		m.rebuild()

	case key.Matches(msg, keys.Currency):
		m.opts.Display = m.opts.Display.Other()
		m.rebuild()

	case key.Matches(msg, keys.Up):
		m.scroll(-1)
	case key.Matches(msg, keys.Down):
		m.scroll(1)
	case key.Matches(msg, keys.PageUp):
		m.scroll(-m.visibleHeight())
	case key.Matches(msg, keys.PageDown):
		m.scroll(m.visibleHeight())
	case key.Matches(msg, keys.Top):
		m.offset = 0
	case key.Matches(msg, keys.Bottom):
		m.scroll(len(m.lines))
	}
	return m, nil
}

// cycle returns the element step positions away from current, wrapping
// around. An unknown current value restarts at the first element.
func cycle[T comparable](values []T, current T, step int) T {
	if len(values) == 0 {
		return current
	}
	i := slices.Index(values, current)
	if i < 0 {
		return values[0]
	}
	n := len(values)
	return values[((i+step)%n+n)%n]
}

func (m *PriceTable) rebuild() {
	m.table = view.Build(m.catalog, m.opts)
	if m.table.Empty() {
		m.lines = nil
		m.offset = 0
		return
	}

	r := Renderer{Localizer: m.localizer, Width: m.width}
	m.lines = strings.Split(r.Grid(m.table), "\n")
	m.scroll(0)
}

func (m *PriceTable) scroll(delta int) {
	maxOffset := max(len(m.lines)-m.visibleHeight(), 0)
	m.offset = min(max(m.offset+delta, 0), maxOffset)
}

// visibleHeight is the number of table lines that fit on screen.
func (m *PriceTable) visibleHeight() int {
	if m.height == 0 {
		return 20
	}
	// Title, search, status, two separators, footer and help.
	return max(m.height-8, 5)
}

func (m *PriceTable) sortLabel() string {
	ids := map[view.SortKey]string{
		view.SortName:       localization.MsgSortName,
		view.SortInputAsc:   localization.MsgSortInputAsc,
		view.SortInputDesc:  localization.MsgSortInputDesc,
		view.SortOutputAsc:  localization.MsgSortOutputAsc,
		view.SortOutputDesc: localization.MsgSortOutputDesc,
	}
	return m.localizer.T(ids[m.opts.Sort])
}

func (m *PriceTable) providerLabel(theme Theme, value lipgloss.Style) string {
	id := m.opts.Query.Provider
	if id == view.AllProviders {
		return value.Render(m.localizer.T(localization.MsgAllProviders))
	}
	return ProviderBadge(id, m.catalog.ProviderName(id), theme)
}

// View implements tea.Model.
func (m *PriceTable) View() tea.View {
	theme := GetTheme()
	l := m.localizer

	var b strings.Builder
	b.WriteString(ApplyGradient(l.T(localization.MsgTitle), theme.Primary, theme.Accent))
	b.WriteString("  ")
	b.WriteString(StyleMuted(theme).Render(l.T(localization.MsgSubtitle)))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(l.T(localization.MsgLoading)))
		b.WriteString("\n")
		return tea.NewView(b.String())

	case m.err != nil:
		b.WriteString(StyleError(theme).Render(l.Tf(localization.MsgLoadFailed, map[string]any{"Error": m.err.Error()})))
		b.WriteString("\n")
		return tea.NewView(b.String())
	}

	b.WriteString(m.search.View())
	b.WriteString("\n")

	label := lipgloss.NewStyle().Foreground(theme.Muted)
	value := lipgloss.NewStyle().Foreground(theme.Info).Bold(true)
	group := l.T(localization.MsgOff)
	if m.opts.GroupByProvider {
		group = l.T(localization.MsgOn)
	}
	status := []string{
		label.Render(l.T(localization.MsgColumnProvider)+": ") + m.providerLabel(theme, value),
		label.Render(l.T(localization.MsgDisplayCurrency)+": ") + value.Render(string(m.opts.Display)),
		value.Render(m.sortLabel()),
		label.Render(l.T(localization.MsgGroupByProvider)+": ") + value.Render(group),
	}
	b.WriteString(strings.Join(status, label.Render(" · ")))
	b.WriteString("\n")

	separator := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(m.width, 20)))
	b.WriteString(separator)
	b.WriteString("\n")

	if m.table.Empty() {
		b.WriteString(StyleMuted(theme).Render(l.T(localization.MsgNoResults)))
		b.WriteString("\n")
	} else {
		end := min(m.offset+m.visibleHeight(), len(m.lines))
		for _, line := range m.lines[m.offset:end] {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(separator)
	b.WriteString("\n")

	r := Renderer{Localizer: l}
	footer := r.Footer(m.table)
	if len(m.lines) > m.visibleHeight() {
		footer += fmt.Sprintf(" (%d-%d/%d)", m.offset+1, min(m.offset+m.visibleHeight(), len(m.lines)), len(m.lines))
	}
	b.WriteString(StyleMuted(theme).Render(footer))
	b.WriteString("\n")

	help := make([]string, 0, len(helpBindings))
	for _, kb := range helpBindings {
		h := kb.Help()
		help = append(help, h.Key+": "+h.Desc)
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.VeryMuted).Render(strings.Join(help, "  ")))

	return tea.NewView(b.String())
}
