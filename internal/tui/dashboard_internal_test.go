package tui

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/blackwell-systems/hubctl/internal/certify"
	"github.com/blackwell-systems/hubctl/internal/distro"
	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/blackwell-systems/hubctl/internal/query"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHub struct {
	rows  []hub.CollectionVersionSearch
	moves int

	// gate, when set, holds MoveCollectionVersion until closed; entered
	// is signalled once the move has started.
	gate    chan struct{}
	entered chan struct{}
}

func (s *stubHub) ListCollectionVersions(context.Context, url.Values) (*hub.Page[hub.CollectionVersionSearch], error) {
	return &hub.Page[hub.CollectionVersionSearch]{Meta: hub.Meta{Count: len(s.rows)}, Data: s.rows}, nil
}

func (s *stubHub) ListDistributions(context.Context, url.Values) (*hub.PulpPage[hub.Distribution], error) {
	return &hub.PulpPage[hub.Distribution]{Results: []hub.Distribution{
		{Name: "staging", BasePath: "staging", Repository: "/repo/staging/"},
	}}, nil
}

func (s *stubHub) MoveCollectionVersion(context.Context, string, string, string, string, string, hub.MoveOptions) (*hub.MoveResult, error) {
	s.moves++
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	return &hub.MoveResult{RemoveTaskID: "t1"}, nil
}

func (s *stubHub) RepositoryByName(context.Context, string) (*hub.Repository, error) {
	return &hub.Repository{PulpHref: "/repo/staging/"}, nil
}

func (s *stubHub) UploadSignature(context.Context, io.Reader, string, string, string) (*hub.TaskRef, error) {
	return &hub.TaskRef{Task: "t2"}, nil
}

func (s *stubHub) Wait(context.Context, string) (*hub.Task, error) {
	return &hub.Task{State: hub.TaskCompleted}, nil
}

var staging = hub.Repository{PulpHref: "/repo/staging/", Name: "staging", PulpLabels: map[string]string{"pipeline": "staging"}}

func newTestDashboard(t *testing.T, flags hub.FeatureFlags, rows ...hub.CollectionVersionSearch) (*stubHub, *certify.Dashboard) {
	t.Helper()
	h := &stubHub{rows: rows}
	w := certify.New(certify.Config{Mover: h, Signatures: h, Waiter: h, Flags: flags})
	d := certify.NewDashboard(h, distro.NewJoiner(distro.NewResolver(h, 0)), w, query.Params{})
	return h, d
}

func unsigned(name string) hub.CollectionVersionSearch {
	return hub.CollectionVersionSearch{
		CollectionVersion: hub.CollectionVersion{Namespace: "acme", Name: name, Version: "1.0.0"},
		Repository:        staging,
	}
}

func TestDashboardRows(t *testing.T) {
	_, d := newTestDashboard(t, hub.FeatureFlags{}, unsigned("tools"))
	require.NoError(t, d.Refresh(context.Background()))

	rows := dashboardRows(d.Rows(), d.Workflow())
	require.Len(t, rows, 1)
	assert.Equal(t, "acme.tools", rows[0][0])
	assert.Equal(t, "staging", rows[0][3])
	assert.Equal(t, "staging", rows[0][4])
	assert.Equal(t, "Needs review", rows[0][5])
}

// loaded builds a model and delivers its first refresh the way the
// program does.
func loaded(t *testing.T, d *certify.Dashboard) dashboardModel {
	t.Helper()
	m := newDashboardModel(context.Background(), d, DashboardOptions{})
	next, _ := m.Update(refreshedMsg{err: d.Refresh(context.Background())})
	return next.(dashboardModel)
}

func TestDashboardModel_CursorOnFirstRowAfterLoad(t *testing.T) {
	_, d := newTestDashboard(t, hub.FeatureFlags{}, unsigned("tools"), unsigned("net"))
	m := newDashboardModel(context.Background(), d, DashboardOptions{})
	_, ok := m.selected()
	assert.False(t, ok)

	m = loaded(t, d)
	assert.Equal(t, 0, m.table.Cursor())
	row, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "tools", row.CollectionVersion.Name)
}

func TestDashboardModel_InFlightRowIsNotMovedAgain(t *testing.T) {
	h, d := newTestDashboard(t, hub.FeatureFlags{}, unsigned("tools"))
	m := loaded(t, d)
	h.gate, h.entered = make(chan struct{}), make(chan struct{})

	row, ok := m.selected()
	require.True(t, ok)
	done := make(chan error, 1)
	go func() { done <- d.Transition(context.Background(), row.CollectionVersionSearch, certify.Approved) }()
	<-h.entered

	m, cmd := m.transition(certify.Approved)
	assert.Nil(t, cmd)
	assert.Contains(t, m.notice, "already being updated")
	assert.Zero(t, m.pending)

	m, cmd = m.uploadSignature()
	assert.Nil(t, cmd)
	assert.Contains(t, m.notice, "already being updated")

	close(h.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.moves)
	for _, a := range d.Alerts() {
		assert.NotEqual(t, certify.AlertDanger, a.Variant)
	}
}

func TestDashboardModel_GatedApproveMakesNoCall(t *testing.T) {
	h, d := newTestDashboard(t, hub.FeatureFlags{CanUploadSignatures: true, RequireUploadSignatures: true}, unsigned("tools"))
	m := newDashboardModel(context.Background(), d, DashboardOptions{})

	next, _ := m.Update(refreshedMsg{err: d.Refresh(context.Background())})
	m = next.(dashboardModel)
	m, cmd := m.transition(certify.Approved)

	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.notice)
	assert.Zero(t, h.moves)
	assert.Zero(t, m.pending)
}

func TestDashboardModel_ApproveRunsMove(t *testing.T) {
	h, d := newTestDashboard(t, hub.FeatureFlags{}, unsigned("tools"))
	m := loaded(t, d)

	m, cmd := m.transition(certify.Approved)
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.pending)

	// Run the batched commands; the move is one of them.
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if done, ok := c().(actionDoneMsg); ok {
			next, _ := m.Update(done)
			m = next.(dashboardModel)
		}
	}
	assert.Equal(t, 1, h.moves)
	assert.Zero(t, m.pending)
	require.NotEmpty(t, d.Alerts())
	assert.Equal(t, certify.AlertSuccess, d.Alerts()[0].Variant)
}

func TestDashboardModel_SignWithoutSource(t *testing.T) {
	_, d := newTestDashboard(t, hub.FeatureFlags{CanUploadSignatures: true}, unsigned("tools"))
	m := loaded(t, d)

	m, cmd := m.uploadSignature()
	assert.Nil(t, cmd)
	assert.Contains(t, m.notice, "--signatures-dir")
}

func TestDashboardModel_EmptyView(t *testing.T) {
	_, d := newTestDashboard(t, hub.FeatureFlags{})
	m := newDashboardModel(context.Background(), d, DashboardOptions{})
	assert.Contains(t, m.View(), "Loading")

	next, _ := m.Update(refreshedMsg{err: d.Refresh(context.Background())})
	view := next.(dashboardModel).View()
	assert.Contains(t, view, "No results found.")
	assert.True(t, strings.Contains(view, "Needs review"))
}

func TestNextPipeline(t *testing.T) {
	assert.Equal(t, "approved", nextPipeline("staging"))
	assert.Equal(t, "rejected", nextPipeline("approved"))
	assert.Equal(t, "staging", nextPipeline("rejected"))
	assert.Equal(t, "staging", nextPipeline(""))
}

func TestProgressReader(t *testing.T) {
	pr := NewProgressReader(strings.NewReader(strings.Repeat("x", 4096)))
	n, err := io.Copy(io.Discard, pr)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), n)
	assert.Equal(t, int64(4096), pr.N())
}

func TestProgressModel_CancelWaitsForOperation(t *testing.T) {
	cancelled := false
	m := progressModel{
		progress: progress.New(),
		reader:   NewProgressReader(strings.NewReader("")),
		total:    10,
		label:    "Uploading",
		cancel:   func() { cancelled = true },
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(progressModel)
	assert.True(t, cancelled)
	assert.True(t, m.cancelled)
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Uploading")

	next, _ = m.Update(doneMsg{err: context.Canceled})
	assert.True(t, next.(progressModel).done)
}
