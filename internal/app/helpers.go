package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/blackwell-systems/hubctl/internal/certify"
	"github.com/blackwell-systems/hubctl/internal/detail"
	"github.com/blackwell-systems/hubctl/internal/distro"
	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/blackwell-systems/hubctl/internal/task"
	"github.com/fatih/color"
)

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// failLine prints a red error line without exiting.
func failLine(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.RedString("✗"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(format string, a ...interface{}) {
	fmt.Println(color.CyanString(fmt.Sprintf(format, a...)))
}

// stateColor renders a status string in its state colour.
func stateColor(row hub.CollectionVersionSearch, text string) string {
	state, ok := certify.StateOf(row)
	if !ok {
		return text
	}
	switch state {
	case certify.Approved:
		return color.GreenString(text)
	case certify.Rejected:
		return color.RedString(text)
	default:
		return color.YellowString(text)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Ref names a collection, optionally one version of it.
type Ref struct {
	Namespace string
	Name      string
	Version   string
}

func (r Ref) Key() detail.Key { return detail.Key{Namespace: r.Namespace, Name: r.Name} }

func (r Ref) String() string {
	s := r.Namespace + "." + r.Name
	if r.Version != "" {
		s += ":" + r.Version
	}
	return s
}

// parseRef accepts "namespace.name" or "namespace.name:version".
func parseRef(arg string, needVersion bool) (Ref, error) {
	fqcn, version, _ := strings.Cut(arg, ":")
	ns, name, found := strings.Cut(fqcn, ".")
	if !found || ns == "" || name == "" || strings.Contains(name, ".") {
		return Ref{}, fmt.Errorf("invalid collection %q: want namespace.name[:version]", arg)
	}
	if needVersion && version == "" {
		return Ref{}, fmt.Errorf("invalid collection %q: want namespace.name:version", arg)
	}
	return Ref{Namespace: ns, Name: name, Version: version}, nil
}

func parseRefs(args []string, needVersion bool) ([]Ref, error) {
	refs := make([]Ref, 0, len(args))
	for _, a := range args {
		r, err := parseRef(a, needVersion)
		if err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, nil
}

// versionSearcher lists collection versions.
type versionSearcher interface {
	ListCollectionVersions(ctx context.Context, params url.Values) (*hub.Page[hub.CollectionVersionSearch], error)
}

// findVersion returns the search row for ref. Without repository, rows in a
// pipeline repository win over others.
func findVersion(ctx context.Context, s versionSearcher, ref Ref, repository string) (hub.CollectionVersionSearch, error) {
	params := url.Values{
		"namespace": {ref.Namespace},
		"name":      {ref.Name},
		"version":   {ref.Version},
	}
	if repository != "" {
		params.Set("repository_name", repository)
	}
	page, err := s.ListCollectionVersions(ctx, params)
	if err != nil {
		return hub.CollectionVersionSearch{}, err
	}
	if len(page.Data) == 0 {
		return hub.CollectionVersionSearch{}, &hub.Error{Kind: hub.KindNotFound, Message: fmt.Sprintf("collection version %s not found", ref)}
	}
	for _, r := range page.Data {
		if _, ok := certify.StateOf(r); ok {
			return r, nil
		}
	}
	return page.Data[0], nil
}

func newResolver() *distro.Resolver {
	return distro.NewResolver(hc, cfg.Distributions.PageSize)
}

func newWaiter() *task.Waiter {
	return task.NewWaiter(hc, cfg.Tasks.PollInterval, logger)
}

// featureFlags fetches the hub's flags with config overrides applied.
func featureFlags(ctx context.Context) (hub.FeatureFlags, error) {
	flags, err := hc.FeatureFlags(ctx)
	if err != nil {
		return hub.FeatureFlags{}, fmt.Errorf("loading feature flags: %w", err)
	}
	return cfg.Features.Apply(*flags), nil
}

func newWorkflow(ctx context.Context) (*certify.Workflow, error) {
	flags, err := featureFlags(ctx)
	if err != nil {
		return nil, err
	}
	return certify.New(certify.Config{
		Mover:      hc,
		Signatures: hc,
		Waiter:     newWaiter(),
		Flags:      flags,
		Repos:      cfg.Pipeline,
		Logger:     logger,
	}), nil
}

// basePathForRepo resolves the distribution base path of a named repository.
func basePathForRepo(ctx context.Context, name string) (string, error) {
	repo, err := hc.RepositoryByName(ctx, name)
	if err != nil {
		return "", err
	}
	return newResolver().BasePathFor(ctx, *repo)
}

// waitTask waits for a task and reports its outcome.
func waitTask(ctx context.Context, ref *hub.TaskRef, what string) error {
	if ref == nil || ref.Task == "" {
		return nil
	}
	t, err := newWaiter().Wait(ctx, ref.ID())
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	logger.Debug("task done", "task", t.PulpHref, "state", t.State)
	return nil
}

// confirm asks a yes/no question; non-interactive sessions answer no.
func confirm(prompt string) bool {
	if flagNoInteractive {
		return false
	}
	fmt.Print(prompt + " (y/N): ")
	var response string
	_, _ = fmt.Scanln(&response)
	return response == "y" || response == "Y" || response == "yes"
}

func annotate(row hub.CollectionVersionSearch) distro.Annotated {
	return distro.Annotated{CollectionVersionSearch: row}
}
