package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/blackwell-systems/hubctl/internal/util"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned by ShowProgress when the user presses Ctrl+C.
var ErrCancelled = errors.New("cancelled by user")

// ProgressReader wraps an io.Reader and counts bytes read.
type ProgressReader struct {
	reader io.Reader
	read   atomic.Int64
}

// NewProgressReader wraps r.
func NewProgressReader(r io.Reader) *ProgressReader {
	return &ProgressReader{reader: r}
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.read.Add(int64(n))
	return n, err
}

// N returns the bytes read so far.
func (pr *ProgressReader) N() int64 { return pr.read.Load() }

type tickMsg time.Time

type doneMsg struct{ err error }

type progressModel struct {
	progress  progress.Model
	reader    *ProgressReader
	total     int64
	label     string
	done      bool
	err       error
	cancelled bool
	cancel    context.CancelFunc
	result    <-chan error
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForResult(m.result))
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForResult(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{err: <-ch}
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			m.cancel()
			// Keep running until the operation observes the cancel.
			return m, nil
		}

	case tickMsg:
		if m.done {
			return m, tea.Quit
		}
		return m, tickCmd()

	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-20, 80)
		return m, nil
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	current := m.reader.N()
	if m.total <= 0 {
		return fmt.Sprintf("%s\n%s sent\n", m.label, util.HumanBytes(current))
	}
	percent := min(float64(current)/float64(m.total), 1)
	return fmt.Sprintf("%s\n%s\n%s / %s (%.0f%%)\n",
		m.label,
		m.progress.ViewAs(percent),
		util.HumanBytes(current),
		util.HumanBytes(m.total),
		percent*100,
	)
}

// ShowProgress runs op with a context that Ctrl+C cancels, rendering the
// bytes consumed from r against total. op must read through r. Returns op's
// error, or ErrCancelled if the user interrupted.
func ShowProgress(ctx context.Context, label string, total int64, r *ProgressReader, op func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- op(ctx) }()

	m := progressModel{
		progress: progress.New(progress.WithDefaultGradient()),
		reader:   r,
		total:    total,
		label:    label,
		cancel:   cancel,
		result:   result,
	}
	finalModel, err := tea.NewProgram(m).Run()
	if err != nil {
		cancel()
		<-result
		return err
	}
	fm, ok := finalModel.(progressModel)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}
	if fm.cancelled {
		return ErrCancelled
	}
	return fm.err
}
