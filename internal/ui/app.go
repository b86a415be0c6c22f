package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/abelbrown/bookmarks/internal/config"
	"github.com/abelbrown/bookmarks/internal/otel"
	"github.com/abelbrown/bookmarks/internal/render"
	"github.com/abelbrown/bookmarks/internal/view"
)

// canvasTop is the screen row of the canvas (below the title bar).
const canvasTop = 1

// progressWidth is the width of the generation progress bar.
const progressWidth = 20

// Options wires the App to the rest of the program.
type Options struct {
	Controller    *view.Controller
	Config        *config.Config
	Ring          *otel.RingBuffer      // debug overlay source; may be nil
	Trace         *otel.Logger          // may be nil
	ConfigUpdates <-chan *config.Config // hot reload; may be nil
	InitialCount  int                   // > 0 generates on start
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the store. Data arrives through the
// controller's job messages.
type App struct {
	ctrl    *view.Controller
	ring    *otel.RingBuffer
	trace   *otel.Logger
	sampler *otel.Sampler
	updates <-chan *config.Config

	keys    keyMap
	help    help.Model
	prompt  countPrompt
	spinner spinner.Model
	bar     progress.Model

	cellWidth    float64
	layout       render.Layout
	defaultCount int
	maxCount     int
	lastCount    int
	initialCount int

	width, height  int
	ready          bool
	spinning       bool
	debugVisible   bool
	mouseX, mouseY int
	hovering       bool
	err            error
}

// NewApp creates the App.
func NewApp(opts Options) App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StatusBusy
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithoutPercentage(),
		progress.WithWidth(progressWidth),
	)

	a := App{
		ctrl:         opts.Controller,
		ring:         opts.Ring,
		trace:        opts.Trace,
		sampler:      otel.NewSampler(opts.Trace, otel.DefaultSampleInterval),
		updates:      opts.ConfigUpdates,
		keys:         defaultKeys(),
		help:         help.New(),
		prompt:       newCountPrompt(),
		spinner:      sp,
		bar:          bar,
		initialCount: opts.InitialCount,
		debugVisible: cfg.UI.ShowDebug,
	}
	a.applyConfig(cfg)
	return a
}

func (a *App) applyConfig(cfg *config.Config) {
	a.cellWidth = cfg.UI.CellWidthPx
	a.layout = terminalLayout(a.cellWidth)
	a.defaultCount = cfg.Data.DefaultCount
	a.maxCount = cfg.Data.MaxCount
}

// Init starts the config listener and the initial generation, if any.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.waitForConfig()}
	if a.initialCount > 0 {
		cmds = append(cmds, a.ctrl.Regenerate(a.initialCount), a.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// waitForConfig blocks on the next config reload.
func (a App) waitForConfig() tea.Cmd {
	if a.updates == nil {
		return nil
	}
	ch := a.updates
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return configClosed{}
		}
		return ConfigReloaded{Config: cfg}
	}
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.sampler.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.MouseMsg:
		return a.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.help.Width = msg.Width
		return a.withSpinner(a.ctrl.Resize(a.pixelWidth()))

	case ConfigReloaded:
		a.applyConfig(msg.Config)
		cmd := a.ctrl.ApplyConfig(msg.Config)
		cmd = tea.Batch(cmd, a.ctrl.Resize(a.pixelWidth()))
		m, cmd := a.withSpinner(cmd)
		return m, tea.Batch(cmd, a.waitForConfig())

	case configClosed:
		return a, nil

	case spinner.TickMsg:
		if !a.ctrl.Busy() {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Job results and debounce ticks belong to the controller.
	cmd := a.ctrl.Update(msg)
	if a.prompt.focused() {
		var blink tea.Cmd
		a.prompt.input, blink = a.prompt.input.Update(msg)
		cmd = tea.Batch(cmd, blink)
	}
	if err := a.ctrl.Err(); err != nil {
		a.err = err
		a.ctrl.ClearErr()
	}
	return a.withSpinner(cmd)
}

// withSpinner starts the spinner when a job is running.
func (a App) withSpinner(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if a.ctrl.Busy() && !a.spinning {
		a.spinning = true
		return a, tea.Batch(cmd, a.spinner.Tick)
	}
	return a, cmd
}

func (a App) pixelWidth() float64 {
	return float64(a.width) * a.cellWidth
}

// pointerX maps a terminal column to the virtual pixel at its center.
func (a App) pointerX(col int) float64 {
	return (float64(col) + 0.5) * a.cellWidth
}

func (a App) centerX() float64 {
	return a.pixelWidth() / 2
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.prompt.focused() {
		return a.handlePromptKey(msg)
	}

	a.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Msg: msg.String()})

	// Clear any existing error on key press
	if a.err != nil {
		a.err = nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Left):
		return a, a.ctrl.Pan(a.ctrl.PanStep())

	case key.Matches(msg, a.keys.Right):
		return a, a.ctrl.Pan(-a.ctrl.PanStep())

	case key.Matches(msg, a.keys.ZoomIn):
		return a, a.ctrl.Zoom(a.centerX(), true)

	case key.Matches(msg, a.keys.ZoomOut):
		return a, a.ctrl.Zoom(a.centerX(), false)

	case key.Matches(msg, a.keys.Reset):
		return a, a.ctrl.ResetView()

	case key.Matches(msg, a.keys.Generate):
		value := a.lastCount
		if value == 0 {
			value = a.defaultCount
		}
		a.prompt.open(value, a.maxCount)
		a.hovering = false
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Debug):
		a.debugVisible = !a.debugVisible
		return a, nil

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	}

	return a, nil
}

func (a App) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.prompt.close()
		return a, nil

	case tea.KeyCtrlC:
		return a, tea.Quit

	case tea.KeyEnter:
		n, ok := a.prompt.submit()
		if !ok {
			return a, nil
		}
		a.lastCount = n
		return a.withSpinner(a.ctrl.Regenerate(n))
	}

	var cmd tea.Cmd
	a.prompt.input, cmd = a.prompt.input.Update(msg)
	a.prompt.err = ""
	return a, cmd
}

// handleMouseMsg maps wheel to zoom at the pointer, left drag to pan and
// motion to the hover tooltip.
func (a App) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	a.mouseX, a.mouseY = msg.X, msg.Y
	if a.prompt.focused() {
		return a, nil
	}
	x := a.pointerX(msg.X)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return a, a.ctrl.Zoom(x, true)
		case tea.MouseButtonWheelDown:
			return a, a.ctrl.Zoom(x, false)
		case tea.MouseButtonLeft:
			a.ctrl.BeginPan(x)
			a.hovering = false
			return a, nil
		}

	case tea.MouseActionMotion:
		if a.ctrl.Panning() {
			return a, a.ctrl.DragTo(x)
		}
		a.hovering = true
		return a, nil

	case tea.MouseActionRelease:
		a.hovering = true
		return a, a.ctrl.EndPan()
	}
	return a, nil
}

// tooltip returns the summary under the pointer, if any.
func (a App) tooltip() (string, bool) {
	if !a.hovering || a.ctrl.Panning() || a.prompt.focused() {
		return "", false
	}
	y := float64(a.mouseY - canvasTop)
	return a.ctrl.Tooltip(a.pointerX(a.mouseX), y, a.layout.Lane())
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.debugVisible {
		overlay := debugOverlay(a.ring, a.ctrl.History(), a.width, a.height-1)
		return lipgloss.JoinVertical(lipgloss.Left, overlay, debugStatusBar(a.width))
	}

	st := a.ctrl.State()
	canvas := NewCanvas(a.width, int(a.layout.Height()), a.cellWidth)
	render.Frame(canvas, a.layout, st)

	screen := []string{a.titleBar(st)}
	screen = append(screen, canvas.Lines()...)

	var bottom []string
	if a.err != nil {
		bottom = append(bottom, ErrorStyle.Width(a.width).Render("Error: "+a.err.Error()+" (press any key to dismiss)"))
	}
	if a.prompt.focused() {
		bottom = append(bottom, a.prompt.view(a.width))
	} else {
		bottom = append(bottom, a.statusBar(st))
	}
	bottom = append(bottom, strings.Split(HelpStyle.Render(a.help.View(a.keys)), "\n")...)

	// Fill the space between canvas and bottom bars.
	for len(screen)+len(bottom) < a.height {
		screen = append(screen, "")
	}
	screen = append(screen, bottom...)

	if text, ok := a.tooltip(); ok {
		placeTooltip(screen, a.width, a.height, a.mouseX, a.mouseY, text)
	}
	return strings.Join(screen, "\n")
}

func (a App) titleBar(st view.State) string {
	title := TitleBar.Render("bookmarks")
	if !st.Transform.Ready() {
		return title
	}
	lo, hi := st.Transform.Visible(st.Width)
	zoom := st.Transform.Scale() * float64(24*time.Hour/time.Millisecond) / st.Width
	info := fmt.Sprintf("  %s – %s  ×%.2f", formatClock(lo), formatClock(hi), zoom)
	return title + TitleRange.Render(info)
}

func (a App) statusBar(st view.State) string {
	var parts []string
	parts = append(parts, humanize.Comma(int64(st.Snapshot.Len()))+" events")
	if st.Snapshot != nil && st.Snapshot.Version > 0 {
		parts = append(parts, fmt.Sprintf("v%d", st.Snapshot.Version))
	}
	parts = append(parts, humanize.Comma(int64(len(st.Clusters)))+" clusters")
	text := StatusBarText.Render(strings.Join(parts, " · "))

	switch {
	case a.ctrl.Generating():
		done, total := a.ctrl.GenerateProgress()
		pct := 0.0
		if total > 0 {
			pct = float64(done) / float64(total) * 100
		}
		text += "  " + a.spinner.View() + StatusBusy.Render(fmt.Sprintf(" generating %s/%s ",
			humanize.Comma(done), humanize.Comma(total))) + a.bar.ViewAs(pct/100) + StatusBusy.Render(fmt.Sprintf(" %.0f%%", pct))
	case a.ctrl.Clustering():
		text += "  " + a.spinner.View() + StatusBusy.Render(" clustering")
	case st.Dirty:
		text += "  " + StatusBarText.Render("…")
	}
	return StatusBar.Width(a.width).Render(text)
}

// formatClock formats ms since midnight as [-]HH:MM:SS. Hours are not
// wrapped, so times past the day read as 24:00:00 and up.
func formatClock(ms int64) string {
	sign := ""
	if ms < 0 {
		sign, ms = "-", -ms
	}
	s := ms / 1000
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, s/3600, s/60%60, s%60)
}

func (a App) emit(e otel.Event) {
	if a.trace == nil {
		return
	}
	if e.Comp == "" {
		e.Comp = "ui"
	}
	a.trace.Emit(e)
}

// Controller returns the view controller (for testing).
func (a App) Controller() *view.Controller {
	return a.ctrl
}
