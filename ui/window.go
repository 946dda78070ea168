// Package ui shows an inspected page in a fyne window.
package ui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/domdebug/inspector"
	"github.com/chrisuehlinger/domdebug/session"
)

// frameInterval is how often page timers are pumped while the window is open.
const frameInterval = 16 * time.Millisecond

// Options configure a Window.
type Options struct {
	Logger *zap.Logger
	// Clock drives the timer pump. Defaults to the real clock.
	Clock clockwork.Clock
	// Properties are shown in the native panel. Defaults to the
	// inspector's properties.
	Properties []string
}

// Window is the page view, a toolbar and the native style panel.
type Window struct {
	app     fyne.App
	window  fyne.Window
	session *session.Session
	logger  *zap.Logger
	clock   clockwork.Clock

	View   *PageView
	Panel  *StylePanel
	Toggle *widget.Button
	Status *widget.Label

	painted uint64
	cancel  context.CancelFunc
}

// New builds a window for s. Every page access goes through the
// inspector so fyne callbacks, page timers and the copy timer never
// overlap.
func New(a fyne.App, s *session.Session, opts Options) *Window {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if len(opts.Properties) == 0 {
		opts.Properties = s.Inspector.Panel().Properties()
	}

	title := s.Document.Title()
	if title == "" {
		title = s.URL
	}
	view := s.Document.View()

	w := &Window{
		app:     a,
		window:  a.NewWindow(fmt.Sprintf("%s - domdebug", title)),
		session: s,
		logger:  opts.Logger.Named("ui"),
		clock:   opts.Clock,
		View:    NewPageView(float32(view.Width), float32(view.Height)),
		Panel:   NewStylePanel(opts.Properties),
		Status:  widget.NewLabel(s.URL),
	}
	w.Toggle = widget.NewButtonWithIcon("Inspect", theme.SearchIcon(), s.Inspector.Toggle)

	w.setupView()
	w.setupPanel()
	w.setupKeyboardShortcuts()
	s.Inspector.OnChange(w.onChange)

	if n := len(s.Warnings); n > 0 {
		w.Status.SetText(fmt.Sprintf("%s (%d warnings)", s.URL, n))
	}

	toolbar := container.NewBorder(nil, nil, w.Toggle, nil, w.Status)
	split := container.NewHSplit(w.View, w.Panel.Object())
	split.Offset = 0.75
	w.window.SetContent(container.NewBorder(toolbar, nil, nil, nil, split))
	w.window.SetOnClosed(w.stop)

	w.run(func() {})
	return w
}

func (w *Window) setupView() {
	p := w.session.Page
	w.View.OnPointerMove = func(x, y float64) {
		w.run(func() { p.PointerMove(x, y) })
	}
	w.View.OnTap = func(x, y float64) {
		w.run(func() { p.Click(x, y) })
	}
	w.View.OnScroll = func(dx, dy float64) {
		w.run(func() { p.ScrollBy(dx, dy) })
	}
	w.View.OnResize = func(width, height float64) {
		w.run(func() { p.Resize(width, height) })
	}
}

func (w *Window) setupPanel() {
	ctrl := w.session.Inspector
	w.Panel.OnInput = ctrl.Input
	w.Panel.OnCopy = func() { ctrl.Copy(context.Background()) }
	w.Panel.OnClose = ctrl.Close
}

func (w *Window) setupKeyboardShortcuts() {
	ctrl := w.session.Inspector
	c := w.window.Canvas()

	// Ctrl+Shift+I: toggle inspection
	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyI,
		Modifier: fyne.KeyModifierControl | fyne.KeyModifierShift,
	}, func(fyne.Shortcut) {
		ctrl.Toggle()
	})

	// Ctrl+Shift+C: copy applied styles
	c.AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyC,
		Modifier: fyne.KeyModifierControl | fyne.KeyModifierShift,
	}, func(fyne.Shortcut) {
		ctrl.Copy(context.Background())
	})

	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			ctrl.Close()
		}
	})
}

// run executes fn between inspector events and repaints afterwards.
func (w *Window) run(fn func()) {
	w.session.Inspector.Do(func() {
		fn()
		w.repaint()
	})
}

// repaint must run between inspector events.
func (w *Window) repaint() {
	img := w.session.Page.Snapshot()
	w.painted = w.session.Document.Version()
	fyne.Do(func() { w.View.SetImage(img) })
}

// onChange runs inside inspector event handling.
func (w *Window) onChange(s inspector.Snapshot) {
	w.repaint()
	fyne.Do(func() {
		w.Panel.Update(s)
		if s.Mode == inspector.Inactive {
			w.Toggle.Importance = widget.MediumImportance
		} else {
			w.Toggle.Importance = widget.HighImportance
		}
		w.Toggle.Refresh()
	})
}

// pump runs due page timers every frame and repaints when they changed
// the document.
func (w *Window) pump(ctx context.Context) {
	ticker := w.clock.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			w.session.Pump()
			w.session.Inspector.Do(func() {
				if w.session.Document.Version() != w.painted {
					w.repaint()
				}
			})
		}
	}
}

// Start begins pumping page timers. ShowAndRun calls it.
func (w *Window) Start() {
	if w.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.pump(ctx)
}

func (w *Window) stop() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.session.Close()
}

// Window returns the fyne window.
func (w *Window) Window() fyne.Window {
	return w.window
}

// ShowAndRun shows the window and runs the app until it is closed.
func (w *Window) ShowAndRun() {
	w.window.Resize(fyne.NewSize(w.View.MinSize().Width+360, w.View.MinSize().Height+48))
	w.Start()
	w.window.ShowAndRun()
	w.stop()
}
