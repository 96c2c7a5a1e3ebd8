package certify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSignatureRequired is returned when approval needs an uploaded
	// signature first. No request is sent.
	ErrSignatureRequired = errors.New("a signature must be uploaded before this version can be approved")
	// ErrInFlight is returned for a version that already has a transition or
	// signature upload running.
	ErrInFlight = errors.New("an update for this version is already in progress")
	// ErrInvalidTransition is returned for moves the pipeline does not allow.
	ErrInvalidTransition = errors.New("transition not permitted")
	// ErrNoPipeline is returned for rows whose repository has no pipeline label.
	ErrNoPipeline = errors.New("repository is not part of the approval pipeline")
)

// Mover moves a version between repositories.
type Mover interface {
	MoveCollectionVersion(ctx context.Context, namespace, name, version, fromRepo, toRepo string, opts hub.MoveOptions) (*hub.MoveResult, error)
}

// SignatureStore uploads detached signatures into a repository.
type SignatureStore interface {
	RepositoryByName(ctx context.Context, name string) (*hub.Repository, error)
	UploadSignature(ctx context.Context, r io.Reader, filename, repositoryHref, signedCollection string) (*hub.TaskRef, error)
}

// TaskWaiter blocks until a task is terminal.
type TaskWaiter interface {
	Wait(ctx context.Context, id string) (*hub.Task, error)
}

// Workflow performs certification transitions. Each version has an advisory
// in-flight marker; the hub serializes the real mutation.
type Workflow struct {
	mover      Mover
	signatures SignatureStore
	waiter     TaskWaiter
	flags      hub.FeatureFlags
	repos      Repos
	logger     *log.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Config wires a Workflow.
type Config struct {
	Mover      Mover
	Signatures SignatureStore
	Waiter     TaskWaiter
	Flags      hub.FeatureFlags
	Repos      Repos
	Logger     *log.Logger
}

// New creates a Workflow.
func New(c Config) *Workflow {
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return &Workflow{
		mover:      c.Mover,
		signatures: c.Signatures,
		waiter:     c.Waiter,
		flags:      c.Flags,
		repos:      c.Repos,
		logger:     c.Logger,
		inFlight:   make(map[string]struct{}),
	}
}

// Flags returns the feature flags the workflow gates on.
func (w *Workflow) Flags() hub.FeatureFlags { return w.flags }

func versionKey(v hub.CollectionVersion) string { return v.String() }

// InFlight reports whether v has an update running.
func (w *Workflow) InFlight(v hub.CollectionVersion) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.inFlight[versionKey(v)]
	return ok
}

func (w *Workflow) acquire(v hub.CollectionVersion) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	k := versionKey(v)
	if _, ok := w.inFlight[k]; ok {
		return false
	}
	w.inFlight[k] = struct{}{}
	return true
}

func (w *Workflow) release(v hub.CollectionVersion) {
	w.mu.Lock()
	delete(w.inFlight, versionKey(v))
	w.mu.Unlock()
}

// Check validates a transition without touching the network.
func (w *Workflow) Check(row hub.CollectionVersionSearch, to State) (State, error) {
	from, ok := StateOf(row)
	if !ok {
		return "", ErrNoPipeline
	}
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if from == NeedsReview && to == Approved && mustUploadSignature(row, w.flags) {
		return from, ErrSignatureRequired
	}
	return from, nil
}

// Transition moves row's version into the repository backing to and waits
// for the hub task. The caller re-fetches its view after success.
func (w *Workflow) Transition(ctx context.Context, row hub.CollectionVersionSearch, to State) (*hub.Task, error) {
	from, err := w.Check(row, to)
	if err != nil {
		return nil, err
	}
	v := row.CollectionVersion
	if !w.acquire(v) {
		return nil, ErrInFlight
	}
	defer w.release(v)

	opts := hub.MoveOptions{Sign: to == Approved && AutoSign(w.flags)}
	fromRepo, toRepo := w.repos.For(from), w.repos.For(to)
	w.logger.Info("moving collection version", "version", v.String(), "from", fromRepo, "to", toRepo, "sign", opts.Sign)

	res, err := w.mover.MoveCollectionVersion(ctx, v.Namespace, v.Name, v.Version, fromRepo, toRepo, opts)
	if err != nil {
		return nil, err
	}
	taskID := res.RemoveTaskID
	if taskID == "" {
		taskID = res.CopyTaskID
	}
	return w.waiter.Wait(ctx, taskID)
}

// UploadSignature uploads a detached signature for row's version into the
// staging repository and waits for the task. Approval gating reads is_signed,
// which only changes after this task completes.
func (w *Workflow) UploadSignature(ctx context.Context, row hub.CollectionVersionSearch, r io.Reader, filename string) (*hub.Task, error) {
	v := row.CollectionVersion
	if !w.acquire(v) {
		return nil, ErrInFlight
	}
	defer w.release(v)

	staging, err := w.signatures.RepositoryByName(ctx, w.repos.For(NeedsReview))
	if err != nil {
		return nil, fmt.Errorf("looking up staging repository: %w", err)
	}
	w.logger.Info("uploading signature", "version", v.String(), "file", filename)
	ref, err := w.signatures.UploadSignature(ctx, r, filename, staging.PulpHref, v.PulpHref)
	if err != nil {
		return nil, err
	}
	return w.waiter.Wait(ctx, ref.ID())
}

// Result is the outcome of one transition in a batch.
type Result struct {
	Row  hub.CollectionVersionSearch
	Task *hub.Task
	Err  error
}

// TransitionAll runs transitions for distinct versions concurrently, at most
// limit at a time. Repeated versions are dropped, keeping the first row.
// Per-row failures are reported in the results, never as the batch error.
func (w *Workflow) TransitionAll(ctx context.Context, rows []hub.CollectionVersionSearch, to State, limit int) []Result {
	rows = distinctVersions(rows)
	results := make([]Result, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, row := range rows {
		i, row := i, row
		results[i].Row = row
		g.Go(func() error {
			results[i].Task, results[i].Err = w.Transition(gctx, row, to)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func distinctVersions(rows []hub.CollectionVersionSearch) []hub.CollectionVersionSearch {
	seen := make(map[string]bool, len(rows))
	out := make([]hub.CollectionVersionSearch, 0, len(rows))
	for _, r := range rows {
		k := versionKey(r.CollectionVersion)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
