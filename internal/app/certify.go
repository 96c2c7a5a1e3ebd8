package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/hubctl/internal/certify"
	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/spf13/cobra"
)

func newApproveCmd() *cobra.Command {
	return newTransitionCmd(certify.Approved, "approve", "Approve collection versions and move them to the published repository",
		`Approve one or more versions. Each is moved from its current pipeline
repository to the published repository and the command waits for the move
task to finish.

When the hub requires uploaded signatures, unsigned versions under review
are refused without contacting the hub; upload a signature first with
'hubctl sign'. When the hub signs on approval, the move asks it to sign.

Examples:
  hubctl approve acme.tools:1.2.0
  hubctl approve acme.tools:1.2.0 acme.net:0.3.1 --concurrency 2`)
}

func newRejectCmd() *cobra.Command {
	return newTransitionCmd(certify.Rejected, "reject", "Reject collection versions and move them to the rejected repository",
		`Reject one or more versions. Approved versions can be rejected too;
rejected versions can later be approved.

Examples:
  hubctl reject acme.tools:1.2.0`)
}

func newTransitionCmd(to certify.State, use, short, long string) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:               use + " <namespace.name:version>...",
		Short:             short,
		Long:              long,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeVersions(certify.NeedsReview),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseRefs(args, true)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			wf, err := newWorkflow(ctx)
			if err != nil {
				return err
			}

			var rows []hub.CollectionVersionSearch
			for _, ref := range refs {
				row, err := findVersion(ctx, hc, ref, "")
				if err != nil {
					return fmt.Errorf("%s: %w", ref, err)
				}
				rows = append(rows, row)
			}

			if !cmd.Flags().Changed("concurrency") {
				concurrency = cfg.Defaults.Concurrency
			}
			results := wf.TransitionAll(ctx, rows, to, concurrency)
			details.Invalidate()

			failed := 0
			for _, r := range results {
				v := r.Row.CollectionVersion
				if r.Err != nil {
					failed++
					failLine("%s: %s", v, transitionError(r.Err))
					continue
				}
				ok("%s: %s", v, to.Title())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d transitions failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum moves in flight")
	return cmd
}

func transitionError(err error) string {
	switch {
	case errors.Is(err, certify.ErrSignatureRequired):
		return "a signature must be uploaded before approval (hubctl sign)"
	case errors.Is(err, certify.ErrInFlight):
		return "already being updated"
	case errors.Is(err, hub.ErrTaskFailed):
		return err.Error()
	}
	return describe(err)
}

func newSignCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "sign <namespace.name:version>",
		Short: "Upload a detached signature for a version under review",
		Long: `Upload a detached signature for a version in the staging repository
and wait for the hub to attach it.

Examples:
  hubctl sign acme.tools:1.2.0 --file acme-tools-1.2.0.tar.gz.asc`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeVersions(certify.NeedsReview),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0], true)
			if err != nil {
				return err
			}
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			ctx := cmd.Context()
			wf, err := newWorkflow(ctx)
			if err != nil {
				return err
			}
			row, err := findVersion(ctx, hc, ref, cfg.Pipeline.For(certify.NeedsReview))
			if err != nil {
				return err
			}
			if _, err := wf.UploadSignature(ctx, row, f, filepath.Base(file)); err != nil {
				return fmt.Errorf("the signature for %s could not be saved: %w", ref, err)
			}
			details.Invalidate()
			ok("Signature for %s uploaded", ref)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Detached signature file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
