package certify

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/blackwell-systems/hubctl/internal/distro"
	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/blackwell-systems/hubctl/internal/query"
)

// Searcher lists collection versions.
type Searcher interface {
	ListCollectionVersions(ctx context.Context, params url.Values) (*hub.Page[hub.CollectionVersionSearch], error)
}

// Alert variants.
const (
	AlertSuccess = "success"
	AlertDanger  = "danger"
)

// Alert is a dismissible notification.
type Alert struct {
	Variant     string
	Title       string
	Description string
}

// Dashboard holds one approval page: the query, the annotated rows and the
// alerts raised by operations on them. Rows are only ever replaced by a full
// re-fetch, never edited in place.
type Dashboard struct {
	search   Searcher
	joiner   *distro.Joiner
	workflow *Workflow

	mu     sync.Mutex
	params query.Params
	rows   []distro.Annotated
	count  int
	loaded bool
	alerts []Alert
}

// NewDashboard creates a Dashboard. An empty Pipeline in params defaults to
// the review queue.
func NewDashboard(s Searcher, j *distro.Joiner, w *Workflow, params query.Params) *Dashboard {
	if params.Pipeline == "" {
		params.Pipeline = NeedsReview.Label()
	}
	return &Dashboard{search: s, joiner: j, workflow: w, params: params.Normalize()}
}

// Params returns the current query.
func (d *Dashboard) Params() query.Params {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.params
}

// SetParams replaces the query. Call Refresh to apply it.
func (d *Dashboard) SetParams(p query.Params) {
	d.mu.Lock()
	d.params = p.Normalize()
	d.mu.Unlock()
}

// Rows returns the annotated rows of the last successful refresh.
func (d *Dashboard) Rows() []distro.Annotated {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]distro.Annotated(nil), d.rows...)
}

// Loaded reports whether a refresh has ever succeeded.
func (d *Dashboard) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// Count is the total number of matching versions across pages.
func (d *Dashboard) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Alerts returns the pending alerts.
func (d *Dashboard) Alerts() []Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Alert(nil), d.alerts...)
}

// CloseAlert dismisses the alert at index i.
func (d *Dashboard) CloseAlert(i int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= 0 && i < len(d.alerts) {
		d.alerts = append(d.alerts[:i], d.alerts[i+1:]...)
	}
}

func (d *Dashboard) addAlert(variant, title, description string) {
	d.mu.Lock()
	d.alerts = append(d.alerts, Alert{Variant: variant, Title: title, Description: description})
	d.mu.Unlock()
}

// Workflow returns the workflow driving transitions.
func (d *Dashboard) Workflow() *Workflow { return d.workflow }

// Refresh re-fetches the page and its distributions. On failure the previous
// rows stay in place and an alert is raised.
func (d *Dashboard) Refresh(ctx context.Context) error {
	params := d.Params()
	page, err := d.search.ListCollectionVersions(ctx, params.Values())
	if err != nil {
		d.addAlert(AlertDanger, "Error loading collections.", hub.Describe(err))
		return err
	}
	rows, err := d.joiner.Join(ctx, page.Data)
	if err != nil {
		d.addAlert(AlertDanger, "Error loading distributions.", hub.Describe(err))
		return err
	}

	d.mu.Lock()
	d.rows = rows
	d.count = page.Meta.Count
	d.loaded = true
	d.mu.Unlock()
	return nil
}

// Transition moves row to the target state, then re-fetches the page.
func (d *Dashboard) Transition(ctx context.Context, row hub.CollectionVersionSearch, to State) error {
	v := row.CollectionVersion
	if _, err := d.workflow.Transition(ctx, row, to); err != nil {
		d.addAlert(AlertDanger,
			fmt.Sprintf("Changes to certification status for collection %q could not be saved.", label(v)),
			hub.Describe(err))
		return err
	}
	d.addAlert(AlertSuccess,
		fmt.Sprintf("Certification status for collection %q has been successfully updated.", label(v)), "")
	return d.Refresh(ctx)
}

// Approve is Transition to Approved.
func (d *Dashboard) Approve(ctx context.Context, row hub.CollectionVersionSearch) error {
	return d.Transition(ctx, row, Approved)
}

// Reject is Transition to Rejected.
func (d *Dashboard) Reject(ctx context.Context, row hub.CollectionVersionSearch) error {
	return d.Transition(ctx, row, Rejected)
}

// UploadSignature uploads a signature for row, then re-fetches the page.
func (d *Dashboard) UploadSignature(ctx context.Context, row hub.CollectionVersionSearch, r io.Reader, filename string) error {
	v := row.CollectionVersion
	if _, err := d.workflow.UploadSignature(ctx, row, r, filename); err != nil {
		d.addAlert(AlertDanger,
			fmt.Sprintf("The signature for %q could not be saved.", label(v)),
			hub.Describe(err))
		return err
	}
	d.addAlert(AlertSuccess,
		fmt.Sprintf("Signature for collection %q has been successfully uploaded.", label(v)), "")
	return d.Refresh(ctx)
}

func label(v hub.CollectionVersion) string {
	return fmt.Sprintf("%s %s v%s", v.Namespace, v.Name, v.Version)
}
