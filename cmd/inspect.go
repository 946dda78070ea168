package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/domdebug/css"
	"github.com/chrisuehlinger/domdebug/dom"
	"github.com/chrisuehlinger/domdebug/inspector"
	"github.com/chrisuehlinger/domdebug/observability"
	"github.com/chrisuehlinger/domdebug/session"
)

// errNoCopy means --copy found nothing selected to copy.
var errNoCopy = errors.New("nothing was copied")

type inspectOptions struct {
	selector string
	sets     []string
	copy     bool
}

// styleEdit is one --set flag.
type styleEdit struct {
	property string
	value    string
}

func newInspectCmd(a *app) *cobra.Command {
	var opts inspectOptions
	cmd := &cobra.Command{
		Use:   "inspect <url|file>",
		Short: "Select an element without a window and print its panel",
		Example: `  domdebug inspect index.html --select "#main"
  domdebug inspect https://example.com --select h1 --set color=red --set font-size=32px --copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := parseStyleEdits(opts.sets)
			if err != nil {
				return err
			}
			return runInspect(cmd, a, args[0], opts, edits)
		},
	}
	cmd.Flags().StringVarP(&opts.selector, "select", "s", "", "CSS selector of the element to inspect")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "edit a panel property, as property=value (repeatable)")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "copy the applied styles as the panel's copy button does")
	_ = cmd.MarkFlagRequired("select")
	return cmd
}

// parseStyleEdits accepts camelCase or kebab-case property names.
func parseStyleEdits(sets []string) ([]styleEdit, error) {
	edits := make([]styleEdit, 0, len(sets))
	for _, set := range sets {
		prop, value, ok := strings.Cut(set, "=")
		prop = strings.TrimSpace(prop)
		if !ok || prop == "" {
			return nil, fmt.Errorf("--set %q: want property=value", set)
		}
		edits = append(edits, styleEdit{
			property: dom.CamelCasePropertyName(dom.NormalizePropertyName(prop)),
			value:    strings.TrimSpace(value),
		})
	}
	return edits, nil
}

func runInspect(cmd *cobra.Command, a *app, target string, opts inspectOptions, edits []styleEdit) error {
	ctx := cmd.Context()
	logger := observability.GetLogger().Named("inspect")
	clipboard := &recordingClipboard{Clipboard: a.clipboard}

	s, err := session.Open(ctx, target, session.Options{
		Config:    a.cfg,
		Logger:    logger,
		Clock:     a.clock,
		Clipboard: clipboard,
	})
	if err != nil {
		return err
	}
	defer s.Close()
	for _, w := range s.Warnings {
		logger.Warn("Page warning", zap.Error(w))
	}
	if err := s.Settle(ctx); err != nil {
		return err
	}

	el, err := css.QuerySelector(s.Document.AsNode(), opts.selector)
	if err != nil {
		return fmt.Errorf("--select %q: %w", opts.selector, err)
	}
	if el == nil {
		return fmt.Errorf("no element matches %q", opts.selector)
	}

	ctrl := s.Inspector
	if err := ctrl.Activate(); err != nil {
		return err
	}
	if err := ctrl.Select(el); err != nil {
		return fmt.Errorf("select %q: %w", opts.selector, err)
	}
	for _, e := range edits {
		if err := ctrl.Apply(e.property, e.value); err != nil {
			if errors.Is(err, inspector.ErrUnknownProperty) {
				return fmt.Errorf("set %s: %w (panel properties: %s)", e.property, err,
					strings.Join(ctrl.Panel().Properties(), ", "))
			}
			return fmt.Errorf("set %s: %w", e.property, err)
		}
	}
	var copyErr error
	if opts.copy {
		ctrl.Copy(ctx)
		copyErr = clipboard.result()
	}

	snap := ctrl.Snapshot()
	printPanel(cmd.OutOrStdout(), snap, opts.copy && copyErr == nil)
	logger.Debug("Inspected element",
		zap.String("header", snap.Header),
		zap.Int("edits", len(edits)))
	if copyErr != nil {
		return fmt.Errorf("--copy: %w", copyErr)
	}
	return nil
}

func printPanel(w io.Writer, snap inspector.Snapshot, copied bool) {
	st := newStyles(w)
	fmt.Fprintln(w, st.Header.Render(snap.Header))
	for _, f := range snap.Fields {
		value := f.Value
		if value == "" {
			value = st.Muted.Render("(unset)")
		}
		fmt.Fprintf(w, "  %s %s\n", st.Label.Render(f.Label+":"), value)
	}

	applied := snap.Applied
	if applied == "" {
		applied = st.Muted.Render("(none)")
	} else {
		applied = st.Applied.Render(applied)
	}
	fmt.Fprintf(w, "%s %s\n", st.Label.Render("Applied:"), applied)

	if copied {
		fmt.Fprintln(w, st.Success.Render(snap.CopyLabel))
	}
}
