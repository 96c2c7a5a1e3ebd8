package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/hubctl/internal/certify"
	"github.com/blackwell-systems/hubctl/internal/distro"
	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// SignatureSource opens the detached signature for a version.
type SignatureSource func(v hub.CollectionVersion) (io.ReadCloser, string, error)

// DashboardOptions configures RunDashboard.
type DashboardOptions struct {
	// Signatures supplies signature files for the upload action. Nil
	// disables the action.
	Signatures SignatureSource
}

type refreshedMsg struct{ err error }

// actionDoneMsg ends a workflow action. Hub failures surface as dashboard
// alerts; notice carries local failures.
type actionDoneMsg struct {
	err    error
	notice string
}

var pipelineCycle = []certify.State{certify.NeedsReview, certify.Approved, certify.Rejected}

type dashboardModel struct {
	ctx     context.Context
	dash    *certify.Dashboard
	opts    DashboardOptions
	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    DashboardKeys

	loading   bool
	pending   int
	notice    string
	activeCmd string
	width     int
}

func newDashboardModel(ctx context.Context, d *certify.Dashboard, opts DashboardOptions) dashboardModel {
	t := table.New(
		table.WithColumns(dashboardColumns(100)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorCyan)

	m := dashboardModel{
		ctx:     ctx,
		dash:    d,
		opts:    opts,
		table:   t,
		spinner: s,
		help:    help.New(),
		keys:    NewDashboardKeys(),
		loading: true,
	}
	m.syncRows()
	return m
}

func dashboardColumns(width int) []table.Column {
	// Fixed columns; the collection column takes what is left.
	const version, created, repo, dist, status = 14, 12, 12, 18, 28
	name := max(width-version-created-repo-dist-status-12, 20)
	return []table.Column{
		{Title: "Collection", Width: name},
		{Title: "Version", Width: version},
		{Title: "Created", Width: created},
		{Title: "Repository", Width: repo},
		{Title: "Distribution", Width: dist},
		{Title: "Status", Width: status},
	}
}

// dashboardRows renders annotated rows for the table.
func dashboardRows(rows []distro.Annotated, w *certify.Workflow) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		v := r.CollectionVersion
		basePath := ""
		if r.Distribution != nil {
			basePath = r.Distribution.BasePath
		}
		status := certify.StatusText(r.CollectionVersionSearch, w.Flags())
		if w.InFlight(v) {
			status = "Updating…"
		}
		created := ""
		if !v.PulpCreated.IsZero() {
			created = v.PulpCreated.Format("2006-01-02")
		}
		out = append(out, table.Row{
			v.FQCN(),
			v.Version,
			created,
			r.Repository.Name,
			basePath,
			status,
		})
	}
	return out
}

func (m *dashboardModel) syncRows() {
	rows := dashboardRows(m.dash.Rows(), m.dash.Workflow())
	m.table.SetRows(rows)
	// SetRows on an empty table leaves the cursor at -1 and never raises it.
	if m.table.Cursor() < 0 && len(rows) > 0 {
		m.table.SetCursor(0)
	}
}

func (m dashboardModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{err: m.dash.Refresh(m.ctx)}
	}
}

func (m dashboardModel) selected() (distro.Annotated, bool) {
	rows := m.dash.Rows()
	i := m.table.Cursor()
	if i < 0 || i >= len(rows) {
		return distro.Annotated{}, false
	}
	return rows[i], true
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh())
}

// transition starts a move for the selected row. Refused moves are reported
// without contacting the hub.
func (m dashboardModel) transition(to certify.State) (dashboardModel, tea.Cmd) {
	row, ok := m.selected()
	if !ok {
		return m, nil
	}
	if m.dash.Workflow().InFlight(row.CollectionVersion) {
		m.notice = row.CollectionVersion.String() + " is already being updated"
		return m, nil
	}
	if _, err := m.dash.Workflow().Check(row.CollectionVersionSearch, to); err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.pending++
	m.notice = ""
	dash, ctx := m.dash, m.ctx
	cmd := func() tea.Msg {
		return actionDoneMsg{err: dash.Transition(ctx, row.CollectionVersionSearch, to)}
	}
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m dashboardModel) uploadSignature() (dashboardModel, tea.Cmd) {
	row, ok := m.selected()
	if !ok {
		return m, nil
	}
	if m.dash.Workflow().InFlight(row.CollectionVersion) {
		m.notice = row.CollectionVersion.String() + " is already being updated"
		return m, nil
	}
	if m.opts.Signatures == nil {
		m.notice = "no signature source configured (use --signatures-dir)"
		return m, nil
	}
	if _, ok := certify.Find(certify.Actions(row.CollectionVersionSearch, m.dash.Workflow().Flags()), certify.ActionUploadSignature); !ok {
		m.notice = "signature upload is not available for this version"
		return m, nil
	}
	m.pending++
	m.notice = ""
	dash, ctx, open := m.dash, m.ctx, m.opts.Signatures
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		rc, name, err := open(row.CollectionVersion)
		if err != nil {
			return actionDoneMsg{err: err, notice: "reading signature: " + err.Error()}
		}
		defer rc.Close()
		return actionDoneMsg{err: dash.UploadSignature(ctx, row.CollectionVersionSearch, rc, name)}
	})
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Approve):
			m.activeCmd = "a"
			var cmd tea.Cmd
			m, cmd = m.transition(certify.Approved)
			return m, tea.Batch(cmd, HighlightCmd())
		case key.Matches(msg, m.keys.Reject):
			m.activeCmd = "x"
			var cmd tea.Cmd
			m, cmd = m.transition(certify.Rejected)
			return m, tea.Batch(cmd, HighlightCmd())
		case key.Matches(msg, m.keys.Sign):
			m.activeCmd = "s"
			var cmd tea.Cmd
			m, cmd = m.uploadSignature()
			return m, tea.Batch(cmd, HighlightCmd())
		case key.Matches(msg, m.keys.Refresh):
			m.activeCmd = "r"
			m.loading = true
			return m, tea.Batch(m.refresh(), m.spinner.Tick, HighlightCmd())
		case key.Matches(msg, m.keys.NextPage), key.Matches(msg, m.keys.PrevPage):
			p := m.dash.Params()
			if key.Matches(msg, m.keys.NextPage) {
				if p.Page >= p.PageCount(m.dash.Count()) {
					return m, nil
				}
				p.Page++
			} else {
				if p.Page <= 1 {
					return m, nil
				}
				p.Page--
			}
			m.dash.SetParams(p)
			m.loading = true
			return m, tea.Batch(m.refresh(), m.spinner.Tick)
		case key.Matches(msg, m.keys.Filter):
			p := m.dash.Params()
			p.Pipeline = nextPipeline(p.Pipeline)
			p.Page = 1
			m.dash.SetParams(p)
			m.loading = true
			m.activeCmd = "f"
			return m, tea.Batch(m.refresh(), m.spinner.Tick, HighlightCmd())
		case key.Matches(msg, m.keys.Dismiss):
			m.dash.CloseAlert(0)
			m.notice = ""
			return m, nil
		}

	case refreshedMsg:
		m.loading = false
		m.syncRows()
		return m, nil

	case actionDoneMsg:
		m.pending--
		if msg.notice != "" {
			m.notice = msg.notice
		}
		m.syncRows()
		return m, nil

	case ClearActiveCmdMsg:
		m.activeCmd = ""
		return m, nil

	case spinner.TickMsg:
		if !m.loading && m.pending == 0 {
			return m, nil
		}
		// In-flight markers appear and clear while work is pending.
		m.syncRows()
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetColumns(dashboardColumns(msg.Width - 4))
		m.table.SetWidth(msg.Width - 4)
		m.table.SetHeight(max(msg.Height-14, 5))
		m.help.Width = msg.Width
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func nextPipeline(current string) string {
	for i, s := range pipelineCycle {
		if s.Label() == current {
			return pipelineCycle[(i+1)%len(pipelineCycle)].Label()
		}
	}
	return pipelineCycle[0].Label()
}

func (m dashboardModel) View() string {
	var b strings.Builder

	p := m.dash.Params()
	title := "Approval dashboard"
	if st, err := certify.ParseState(p.Pipeline); err == nil {
		title += " · " + StateStyle(st).Render(st.Title())
	}
	b.WriteString(StyleHeader.Render(title))
	b.WriteString("\n")

	width := m.width
	if width <= 0 {
		width = 100
	}
	for _, a := range m.dash.Alerts() {
		line := a.Title
		if a.Description != "" {
			line += " " + a.Description
		}
		b.WriteString(AlertStyle(a.Variant).Render(xansi.Truncate(line, width-2, "…")))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(StyleHighlight.Render(xansi.Truncate(m.notice, width-2, "…")))
		b.WriteString("\n")
	}

	if !m.dash.Loaded() {
		b.WriteString(m.spinner.View() + " Loading…\n")
	} else if len(m.dash.Rows()) == 0 {
		b.WriteString(StyleHelp.Render("No results found.") + "\n")
	} else {
		b.WriteString(StyleBorder.Render(m.table.View()))
		b.WriteString("\n")
	}

	status := fmt.Sprintf("page %d/%d · %d versions", p.Page, max(p.PageCount(m.dash.Count()), 1), m.dash.Count())
	if m.loading || m.pending > 0 {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(StyleHelp.Render(status))
	b.WriteString("\n")
	b.WriteString(RenderFooterBar([]ShortcutEntry{
		{Key: "a", Label: "a approve"},
		{Key: "x", Label: "x reject"},
		{Key: "s", Label: "s sign"},
		{Key: "r", Label: "r refresh"},
		{Key: "f", Label: "f filter"},
	}, m.activeCmd))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// RunDashboard runs the interactive approval dashboard until the user quits.
func RunDashboard(ctx context.Context, d *certify.Dashboard, opts DashboardOptions) error {
	p := tea.NewProgram(newDashboardModel(ctx, d, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
