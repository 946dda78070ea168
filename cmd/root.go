// Package cmd holds the domdebug command line.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/domdebug/config"
	"github.com/chrisuehlinger/domdebug/inspector"
	"github.com/chrisuehlinger/domdebug/observability"
)

const appID = "io.github.chrisuehlinger.domdebug"

// app is the state shared by every subcommand of one root command.
type app struct {
	cfgFile   string
	cfg       *config.Config
	clock     clockwork.Clock
	clipboard inspector.Clipboard
	newApp    func() fyne.App
}

// newRootCmd builds an isolated command tree so tests never share flags
// or loaded configuration.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{
		clock:     clockwork.NewRealClock(),
		clipboard: systemClipboard{},
		newApp:    func() fyne.App { return fyneapp.NewWithID(appID) },
	}

	root := &cobra.Command{
		Use:           "domdebug",
		Short:         "Inspect and live-edit the styles of elements in a web page.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				// Errors still need somewhere to go.
				observability.InitializeLogger(config.NewDefaultConfig().Logger)
				return err
			}
			a.cfg = cfg
			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Configuration loaded",
				zap.String("version", Version),
				zap.String("config", a.cfgFile))
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (YAML, TOML or JSON)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newOpenCmd(a), newInspectCmd(a), newVersionCmd())
	return root, a
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, _ := newRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		observability.GetLogger().Error("Command failed", zap.Error(err))
	}
	observability.Sync()
	if err != nil {
		stop()
		os.Exit(1)
	}
}
