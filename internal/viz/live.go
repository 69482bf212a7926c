package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/clothsim/internal/control"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	canvasCols      = 80
	canvasRows      = 24
	historyCapacity = 600
	sphereSegments  = 24

	windStep   = 0.005
	sphereStep = 0.1
	rotateStep = 0.1
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a simulator once per tick and draws the cloth and its
// colliders. Scene changes from the keyboard go through a Manual
// controller so they land between steps.
type Model struct {
	sim           *sim.Simulator
	manual        *control.Manual
	name          string
	dt            float64
	stepsPerFrame int

	pool   *sim.FramePool
	frame  []mgl64.Vec3
	canvas *Canvas
	camera *Camera
	wire   *Wireframe
	theme  Theme
	st     styles

	running  bool
	showHelp bool
	err      error
	sphere   int

	tipHistory    []float64
	energyHistory []float64

	recording bool
	frames    []*image.Paletted
	gifPath   string
}

type Option func(*Model)

// WithStepsPerFrame advances the simulation n steps per tick.
func WithStepsPerFrame(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.stepsPerFrame = n
		}
	}
}

// WithGIFPath sets where the g key saves recordings.
func WithGIFPath(path string) Option {
	return func(m *Model) { m.gifPath = path }
}

func WithTheme(name string) Option {
	return func(m *Model) {
		m.theme = GetTheme(name)
		m.st = newStyles(m.theme)
	}
}

// NewModel builds a live view over s. manual may be nil, in which case the
// scene keys do nothing.
func NewModel(s *sim.Simulator, manual *control.Manual, name string, dt float64, opts ...Option) Model {
	m := Model{
		sim:           s,
		manual:        manual,
		name:          name,
		dt:            dt,
		stepsPerFrame: 1,
		pool:          sim.NewFramePool(s.Grid().Len()),
		canvas:        NewCanvas(canvasCols, canvasRows),
		camera:        NewCamera(),
		wire:          NewWireframe(),
		theme:         Themes[0],
		running:       true,
		tipHistory:    make([]float64, 0, historyCapacity),
		energyHistory: make([]float64, 0, historyCapacity),
		gifPath:       "clothsim.gif",
	}
	m.st = newStyles(m.theme)
	for _, opt := range opts {
		opt(&m)
	}
	m.frame = m.pool.Snapshot(s)
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running {
			m.advance(m.stepsPerFrame)
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case ".":
		if !m.running {
			m.advance(1)
		}
	case "r":
		m.reset()
	case "w":
		m.nudgeWind(mgl64.Vec3{windStep, 0, 0})
	case "W":
		m.nudgeWind(mgl64.Vec3{-windStep, 0, 0})
	case "e":
		m.nudgeWind(mgl64.Vec3{0, 0, windStep})
	case "E":
		m.nudgeWind(mgl64.Vec3{0, 0, -windStep})
	case "left":
		m.nudgeSphere(mgl64.Vec3{-sphereStep, 0, 0})
	case "right":
		m.nudgeSphere(mgl64.Vec3{sphereStep, 0, 0})
	case "up":
		m.nudgeSphere(mgl64.Vec3{0, sphereStep, 0})
	case "down":
		m.nudgeSphere(mgl64.Vec3{0, -sphereStep, 0})
	case "pgup":
		m.nudgeSphere(mgl64.Vec3{0, 0, sphereStep})
	case "pgdown":
		m.nudgeSphere(mgl64.Vec3{0, 0, -sphereStep})
	case "tab":
		if n := len(m.sim.Scene().Spheres); n > 0 {
			m.sphere = (m.sphere + 1) % n
		}
	case "x":
		m.camera.Rotate(0, rotateStep)
	case "X":
		m.camera.Rotate(0, -rotateStep)
	case "y":
		m.camera.Rotate(rotateStep, 0)
	case "Y":
		m.camera.Rotate(-rotateStep, 0)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "t":
		m.theme = m.theme.Next()
		m.st = newStyles(m.theme)
	case "g":
		if m.recording {
			m.err = m.saveGIF()
			m.recording, m.frames = false, nil
		} else {
			m.recording, m.frames = true, make([]*image.Paletted, 0)
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) nudgeWind(dw mgl64.Vec3) {
	if m.manual != nil {
		m.manual.NudgeWind(dw)
	}
}

func (m *Model) nudgeSphere(dc mgl64.Vec3) {
	if m.manual != nil && len(m.sim.Scene().Spheres) > 0 {
		m.manual.NudgeSphere(m.sphere, dc)
	}
}

// advance runs n steps. A failed step pauses the view and keeps the error
// for the status line.
func (m *Model) advance(n int) {
	g := m.sim.Grid()
	for i := 0; i < n; i++ {
		if err := m.sim.Step(m.dt); err != nil {
			m.err, m.running = err, false
			log.Printf("live: step at t=%.3f: %v", m.sim.Time(), err)
			return
		}
		if !g.Valid() {
			m.err, m.running = fmt.Errorf("state diverged at t=%.3f", m.sim.Time()), false
			log.Printf("live: %v", m.err)
			return
		}
	}
	m.tipHistory = pushCapped(m.tipHistory, g.TipDisplacement())
	m.energyHistory = pushCapped(m.energyHistory, g.KineticEnergy()+g.SpringEnergy())

	m.pool.Put(m.frame)
	m.frame = m.pool.Snapshot(m.sim)
}

func pushCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Model) reset() {
	m.sim.Reset()
	if m.manual != nil {
		m.manual.Reset()
	}
	m.err = nil
	m.tipHistory = m.tipHistory[:0]
	m.energyHistory = m.energyHistory[:0]
	m.pool.Put(m.frame)
	m.frame = m.pool.Snapshot(m.sim)
}

func (m *Model) draw() {
	g := m.sim.Grid()
	m.canvas.Clear()
	m.wire.Clear()
	m.wire.AddCloth(m.frame, g.Width(), g.Height())
	for _, s := range m.sim.Scene().Spheres {
		m.wire.AddSphere(s, sphereSegments)
	}
	Render3D(m.canvas, m.wire, m.camera)

	cw, ch := m.canvas.Size()
	for k, p := range m.frame {
		if g.Movable(k%g.Width(), k/g.Width()) {
			continue
		}
		if x, y, _, ok := m.camera.Project(p, cw, ch); ok {
			m.canvas.Dot(x, y, 1)
		}
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.st.failed.Render("HALTED: " + m.err.Error())
	case m.recording:
		return m.st.failed.Render("● REC")
	case m.running:
		return m.st.running.Render("RUNNING")
	default:
		return m.st.paused.Render("PAUSED")
	}
}

func (m Model) View() string {
	m.draw()
	g := m.sim.Grid()
	scene := m.sim.Scene()

	var s strings.Builder
	s.WriteString(m.st.header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n")

	if len(m.tipHistory) > 1 {
		chart := asciigraph.Plot(m.tipHistory, asciigraph.Height(5), asciigraph.Width(32), asciigraph.Caption("tip displacement"))
		s.WriteString(m.st.graph.Render(chart) + "\n")
	}
	if len(m.energyHistory) > 1 {
		s.WriteString(m.st.label.Render("energy") + m.st.value.Render(Sparkline(m.energyHistory, 30)) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	row("time", fmt.Sprintf("%.2fs", m.sim.Time()))
	row("grid", fmt.Sprintf("%dx%d, %d springs", g.Width(), g.Height(), g.SpringCount()))
	row("integrator", g.Integrator().Name())
	row("kinetic", fmt.Sprintf("%.4g", g.KineticEnergy()))
	row("strain", fmt.Sprintf("%.4f", g.MaxStrain()))
	row("wind", formatVec(scene.Wind))
	for i, sp := range scene.Spheres {
		label := fmt.Sprintf("sphere %d", i)
		if i == m.sphere {
			s.WriteString(m.st.selected.Render(fmt.Sprintf("%-12s", label)) + m.st.value.Render(formatVec(sp.Center)) + "\n")
			continue
		}
		row(label, formatVec(sp.Center))
	}

	s.WriteString("\n" + separator(m.st, 40) + "\n")
	s.WriteString(m.st.keyHints("space", "pause", "r", "reset", "q", "quit") + "\n")
	s.WriteString(m.st.keyHints("w/e", "wind", "arrows", "sphere", "?", "help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		m.st.canvas.Render(m.canvas.String()),
		m.st.panel.Render(s.String()))
	if m.showHelp {
		return m.help() + "\n\n" + main
	}
	return main
}

func (m Model) help() string {
	lines := [][2]string{
		{"space", "pause or resume"},
		{".", "single step while paused"},
		{"r", "reset cloth and scene"},
		{"w / W", "wind along +x / -x"},
		{"e / E", "wind along +z / -z"},
		{"arrows", "move sphere in x and y"},
		{"pgup/pgdn", "move sphere in z"},
		{"tab", "select next sphere"},
		{"x/X y/Y", "orbit camera"},
		{"+ / -", "zoom"},
		{"t", "cycle theme"},
		{"g", "start or save GIF recording"},
		{"q", "quit"},
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(m.st.key.Render(fmt.Sprintf("  %-10s", l[0])) + m.st.hint.Render(l[1]) + "\n")
	}
	return b.String()
}

func formatVec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X(), v.Y(), v.Z())
}

func (m *Model) captureFrame() {
	const dot = 4
	cw, ch := m.canvas.Size()
	img := image.NewPaletted(image.Rect(0, 0, cw*dot, ch*dot), color.Palette{color.Black, color.White})
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dot; py++ {
				for px := 0; px < dot; px++ {
					img.SetColorIndex(x*dot+px, y*dot+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return err
	}
	log.Printf("live: saved %d frames to %s", len(m.frames), m.gifPath)
	return nil
}

// Run starts the live view full screen and blocks until it quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
