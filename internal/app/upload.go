package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/blackwell-systems/hubctl/internal/ingest"
	"github.com/blackwell-systems/hubctl/internal/tui"
	"github.com/blackwell-systems/hubctl/internal/util"
	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	var noWait bool

	cmd := &cobra.Command{
		Use:   "upload <file|url>",
		Short: "Upload a collection tarball for review",
		Long: `Upload a collection artifact. The hub imports it into the staging
repository where it waits for approval.

The filename must be <namespace>-<name>-<version>.tar.gz.

Examples:
  hubctl upload ./acme-tools-1.2.0.tar.gz
  hubctl upload https://ci.example.com/artifacts/acme-tools-1.2.0.tar.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := ingest.Resolve(args[0])
			if err != nil {
				return err
			}
			art, err := ingest.ParseFilename(src.Name)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			ref, err := upload(ctx, src, !isURL(args[0]))
			if err != nil {
				if errors.Is(err, tui.ErrCancelled) || errors.Is(err, context.Canceled) {
					warn("Upload of %s cancelled", art)
					return nil
				}
				return fmt.Errorf("upload %s: %w", art, err)
			}
			ok("Uploaded %s (task %s)", art, ref.ID())

			if noWait {
				return nil
			}
			if err := waitTask(ctx, ref, "import "+art.String()); err != nil {
				return err
			}
			details.Invalidate()
			ok("Imported %s into %s", art, cfg.Pipeline.Staging)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Return once the upload is accepted")
	return cmd
}

// collectionUploader sends a collection artifact to the hub.
type collectionUploader interface {
	UploadCollection(ctx context.Context, r io.Reader, filename string, digest func() string) (*hub.TaskRef, error)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// upload streams src to the hub, with a progress bar in a terminal. With
// withDigest the artifact is hashed as it is sent and the hub verifies the
// sha256; remote sources go without one.
func upload(ctx context.Context, src *ingest.Source, withDigest bool) (*hub.TaskRef, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	if !util.IsTTY() || flagNoInteractive {
		return sendArtifact(ctx, hc, rc, src.Name, withDigest)
	}

	var ref *hub.TaskRef
	pr := tui.NewProgressReader(rc)
	err = tui.ShowProgress(ctx, "Uploading "+src.Name, src.Size, pr, func(ctx context.Context) error {
		var err error
		ref, err = sendArtifact(ctx, hc, pr, src.Name, withDigest)
		return err
	})
	return ref, err
}

// sendArtifact uploads r once, hashing it in flight when withDigest is set.
func sendArtifact(ctx context.Context, u collectionUploader, r io.Reader, filename string, withDigest bool) (*hub.TaskRef, error) {
	if !withDigest {
		return u.UploadCollection(ctx, r, filename, nil)
	}
	hr := ingest.NewReader(r)
	return u.UploadCollection(ctx, hr, filename, hr.SHA256)
}
