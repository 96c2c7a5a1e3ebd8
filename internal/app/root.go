package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/blackwell-systems/hubctl/internal/cache"
	"github.com/blackwell-systems/hubctl/internal/config"
	"github.com/blackwell-systems/hubctl/internal/detail"
	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/blackwell-systems/hubctl/internal/logging"
	"github.com/blackwell-systems/hubctl/internal/tui"
	"github.com/blackwell-systems/hubctl/internal/util"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	hc       *hub.Client
	logger   *log.Logger
	cacheMgr *cache.Manager
	// details is the process-wide collection detail slot. Mutating commands
	// invalidate it.
	details = &detail.Cache{}

	flagNoColor       bool
	flagNoInteractive bool
	flagConfig        string
	flagVerbose       bool
)

// offline commands run without a token.
var offline = map[string]bool{
	"init":       true,
	"version":    true,
	"completion": true,
	"cache":      true,
	"list":       true,
	"clear":      true,
}

var rootCmd = &cobra.Command{
	Use:   "hubctl",
	Short: "Review, certify and publish Ansible collections on a content hub",
	Long: `hubctl drives the collection approval pipeline of an Ansible content hub.

Uploaded versions land in the staging repository. Approving moves them to
published, rejecting moves them to rejected. Signatures can be uploaded
before approval when the hub requires them.

Run 'hubctl' with no arguments in a terminal to open the approval dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tui.ShouldUseTUI(cmd) && hc != nil {
			return runDashboard(cmd.Context(), dashboardOptions{})
		}
		return cmd.Help()
	},
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), describe(err))
		stop()
		os.Exit(1)
	}
}

// describe renders err for the terminal; hub errors carry their status.
func describe(err error) string {
	var he *hub.Error
	if errors.As(err, &he) && he.Status != 0 {
		return fmt.Sprintf("%v (%s)", err, hub.Describe(he))
	}
	return err.Error()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable interactive TUI mode")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/hubctl/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log requests and task polling to stderr")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor)

		path := config.Path()
		if flagConfig != "" {
			path = config.ExpandHome(flagConfig)
		}
		var err error
		cfg, err = config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := cfg.Log.Level
		if flagVerbose {
			level = "debug"
		}
		logger = logging.Configure(level)
		cacheMgr = cache.New(cfg.Defaults.CacheDir)

		if cfg.Hub.Token == "" {
			if offline[cmd.Name()] || cmd == rootCmd {
				return nil
			}
			return fmt.Errorf("no hub token found; set %s or HUBCTL_TOKEN", cfg.Hub.TokenEnv)
		}
		hc = hub.New(cfg.Hub.Token, cfg.Hub.APIBase,
			hub.WithTimeout(cfg.Hub.Timeout),
			hub.WithLogger(logger),
		)
		return nil
	}

	rootCmd.AddCommand(
		newVersionsCmd(),
		newShowCmd(),
		newApproveCmd(),
		newRejectCmd(),
		newSignCmd(),
		newDashboardCmd(),
		newUploadCmd(),
		newDownloadCmd(),
		newDeprecateCmd(true),
		newDeprecateCmd(false),
		newDeleteCmd(),
		newDistributionsCmd(),
		newRolesCmd(),
		newCacheCmd(),
		newInitCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
}
