package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/hubctl/internal/cache"
	"github.com/blackwell-systems/hubctl/internal/certify"
	"github.com/blackwell-systems/hubctl/internal/distro"
	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/blackwell-systems/hubctl/internal/query"
	"github.com/blackwell-systems/hubctl/internal/tui"
	"github.com/blackwell-systems/hubctl/internal/util"
	"github.com/spf13/cobra"
)

type dashboardOptions struct {
	status        string
	signaturesDir string
	pageSize      int
}

func newDashboardCmd() *cobra.Command {
	var opts dashboardOptions

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive approval dashboard",
		Long: `Open the approval dashboard: a page of collection versions in one
pipeline state, with approve, reject and signature upload actions.

Signatures are read from --signatures-dir as
<namespace>-<name>-<version>.tar.gz.asc.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !util.IsTTY() {
				return fmt.Errorf("the dashboard needs a terminal; use 'hubctl versions' instead")
			}
			return runDashboard(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.status, "status", "needs_review", "Initial status filter (needs_review|approved|rejected)")
	cmd.Flags().StringVar(&opts.signaturesDir, "signatures-dir", "", "Directory holding detached signatures")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Results per page (default from config)")
	return cmd
}

func runDashboard(ctx context.Context, opts dashboardOptions) error {
	params := query.Params{PageSize: cfg.Defaults.PageSize, Sort: cfg.Defaults.Sort}
	if opts.pageSize > 0 {
		params.PageSize = opts.pageSize
	}
	if opts.status != "" {
		st, err := certify.ParseState(opts.status)
		if err != nil {
			return err
		}
		params.Pipeline = st.Label()
	}

	wf, err := newWorkflow(ctx)
	if err != nil {
		return err
	}
	d := certify.NewDashboard(hc, distro.NewJoiner(newResolver()), wf, params)

	var tuiOpts tui.DashboardOptions
	if opts.signaturesDir != "" {
		tuiOpts.Signatures = signaturesFrom(opts.signaturesDir)
	}
	err = tui.RunDashboard(ctx, d, tuiOpts)
	details.Invalidate()
	return err
}

// signaturesFrom reads detached signatures named after the artifact.
func signaturesFrom(dir string) tui.SignatureSource {
	return func(v hub.CollectionVersion) (io.ReadCloser, string, error) {
		name := cache.Filename(v.Namespace, v.Name, v.Version) + ".asc"
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, "", err
		}
		return f, name, nil
	}
}
