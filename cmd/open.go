package cmd

import (
	"github.com/spf13/cobra"

	"github.com/chrisuehlinger/domdebug/observability"
	"github.com/chrisuehlinger/domdebug/session"
	"github.com/chrisuehlinger/domdebug/ui"
)

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <url|file>",
		Short: "Open a page in a window with the inspector attached",
		Long: `Loads the page, runs its scripts and shows it next to a native style panel.
Press Ctrl+Shift+I or the Inspect button to start inspecting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			fa := a.newApp()
			s, err := session.Open(cmd.Context(), args[0], session.Options{
				Config:    a.cfg,
				Logger:    logger,
				Clock:     a.clock,
				Clipboard: ui.NewClipboard(fa.Clipboard()),
			})
			if err != nil {
				return err
			}
			ui.New(fa, s, ui.Options{Logger: logger, Clock: a.clock}).ShowAndRun()
			return nil
		},
	}
}
