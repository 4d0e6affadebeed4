package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leandrodaf/beatcoach/internal/chart"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

const (
	frameInterval = 33 * time.Millisecond
	keyHold       = 250 * time.Millisecond
	tempoStep     = 5
	recentNotes   = 8
	minTempo      = 20
	maxTempo      = 300
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7dcfff"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	beatOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#000")).Background(lipgloss.Color("#e0af68"))
	beatOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff")).Reverse(true).Padding(0, 1)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444")).Padding(0, 1)

	severityStyles = map[contracts.Severity]lipgloss.Style{
		contracts.SeverityOk:      lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")),
		contracts.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")),
		contracts.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")),
		contracts.SeverityUnknown: dimStyle,
	}
)

type reportMsg struct{ report contracts.Report }

type sessionClosedMsg struct{}

type frameMsg time.Time

type noteOffMsg uint8

func listenForReports(reports <-chan contracts.Report) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-reports
		if !ok {
			return sessionClosedMsg{}
		}
		return reportMsg{r}
	}
}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

type model struct {
	sess      contracts.PracticeSession
	reports   <-chan contracts.Report
	logger    contracts.Logger
	chartPath string

	lesson      []contracts.Step
	lessonTempo float64
	step        int
	hit         map[uint8]bool

	tempo     float64
	metronome bool
	beat      int
	detected  int
	demo      bool
	demoStep  int
	octave    int

	pos    contracts.BeatPosition
	posOK  bool
	recent []contracts.NoteOnReport
	counts map[contracts.Severity]int
	status string

	quitting bool
}

func newModel(sess contracts.PracticeSession, log contracts.Logger, tempo float64, lesson []contracts.Step, chartPath string) model {
	return model{
		sess:        sess,
		reports:     sess.Subscribe(),
		logger:      log,
		chartPath:   chartPath,
		lesson:      lesson,
		lessonTempo: tempo,
		hit:         map[uint8]bool{},
		tempo:       tempo,
		counts:      map[contracts.Severity]int{},
		status:      "ready",
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(listenForReports(m.reports), nextFrame())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case reportMsg:
		m.handleReport(msg.report)
		return m, listenForReports(m.reports)

	case sessionClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case frameMsg:
		m.pos, m.posOK = m.sess.BeatPosition()
		return m, nextFrame()

	case noteOffMsg:
		m.send(byte(contracts.NoteOff), uint8(msg), 0)
	}
	return m, nil
}

func (m model) handleKey(key string) (tea.Model, tea.Cmd) {
	if note, ok := keyNote(key, m.octave); ok {
		m.send(byte(contracts.NoteOn), note, 100)
		m.report(m.sess.PlayNote(note, keyHold), "")
		return m, tea.Tick(keyHold, func(time.Time) tea.Msg { return noteOffMsg(note) })
	}

	switch key {
	case "ctrl+c", "Q", "esc":
		m.quitting = true
		return m, tea.Quit

	case " ", "M":
		if m.metronome {
			m.report(m.sess.StopMetronome(), "metronome stopped")
			m.metronome = false
		} else if m.report(m.sess.StartMetronome(m.tempo), fmt.Sprintf("metronome at %.0f bpm", m.tempo)) {
			m.metronome, m.demo = true, false
			m.step = 0
			if len(m.lesson) > 0 {
				m.report(m.sess.AdvanceStep(0), "")
			}
			m.hit = map[uint8]bool{}
			m.counts = map[contracts.Severity]int{}
			m.recent = nil
		}

	case "up", "right", "+":
		m.setTempo(m.tempo + tempoStep)

	case "down", "left", "-":
		m.setTempo(m.tempo - tempoStep)

	case "z":
		m.octave = clampOctave(m.octave - 1)
		m.status = fmt.Sprintf("octave %+d", m.octave)

	case "x":
		m.octave = clampOctave(m.octave + 1)
		m.status = fmt.Sprintf("octave %+d", m.octave)

	case "D":
		if len(m.lesson) == 0 {
			m.status = "no lesson loaded"
			break
		}
		if m.report(m.sess.PlayDemo(m.tempo, m.lesson), "demo playing") {
			m.demo, m.metronome, m.demoStep = true, false, 0
		}

	case "S":
		m.report(m.sess.StopDemo(), "demo stopped")
		m.demo = false

	case "N":
		m.advance()

	case "B":
		m.report(m.sess.CountdownBeep(1), "beep")

	case "C":
		entries := m.sess.TimingLog()
		if m.report(chart.SavePNG(m.chartPath, entries), fmt.Sprintf("chart of %d notes saved to %s", len(entries), m.chartPath)) {
			m.logger.Info("timing chart exported", m.logger.Field().String("path", m.chartPath), m.logger.Field().Int("notes", len(entries)))
		}
	}
	return m, nil
}

// report shows err, or ok when err is nil, on the status line.
func (m *model) report(err error, ok string) bool {
	if err != nil {
		m.status = "error: " + err.Error()
		m.logger.Warn("control failed", m.logger.Field().Error("error", err))
		return false
	}
	if ok != "" {
		m.status = ok
	}
	return true
}

func (m *model) setTempo(bpm float64) {
	bpm = max(minTempo, min(maxTempo, bpm))
	if m.report(m.sess.UpdateTempo(bpm), fmt.Sprintf("tempo %.0f bpm", bpm)) {
		m.tempo = bpm
	}
}

func (m *model) send(status, note, velocity byte) {
	msg := contracts.RawMessage{Data: []byte{status, note, velocity}, Timestamp: time.Now()}
	select {
	case m.sess.Input() <- msg:
	default:
		m.logger.Warn("input buffer full; dropping key press")
	}
}

func (m *model) advance() {
	if len(m.lesson) == 0 {
		return
	}
	next := m.step + 1
	if next >= len(m.lesson) {
		m.status = "lesson complete"
		next = len(m.lesson)
	}
	if m.report(m.sess.AdvanceStep(next), "") {
		m.step = next
		m.hit = map[uint8]bool{}
	}
}

func (m *model) handleReport(r contracts.Report) {
	switch r := r.(type) {
	case contracts.NoteOnReport:
		m.recent = append(m.recent, r)
		if len(m.recent) > recentNotes {
			m.recent = m.recent[len(m.recent)-recentNotes:]
		}
		m.counts[r.Severity]++
		if m.metronome && m.step < len(m.lesson) && containsNote(m.lesson[m.step].Notes, r.MIDI) {
			m.hit[r.MIDI] = true
			if len(m.hit) >= len(m.lesson[m.step].Notes) {
				m.advance()
			}
		}
	case contracts.BPMReport:
		m.detected = r.BPM
	case contracts.BeatReport:
		m.beat = r.BeatIndex
	case contracts.DemoStepReport:
		m.demoStep = r.StepIndex
	case contracts.DemoFinishedReport:
		m.demo = false
		m.status = "demo finished"
	}
}

func containsNote(notes []uint8, n uint8) bool {
	for _, x := range notes {
		if x == n {
			return true
		}
	}
	return false
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	state := "idle"
	switch {
	case m.demo:
		state = fmt.Sprintf("demo step %d click %d", m.demoStep, m.beat+1)
	case m.metronome:
		state = "metronome"
	}
	detected := "--"
	if m.detected > 0 {
		detected = fmt.Sprintf("%d", m.detected)
	}
	header := headerStyle.Render(fmt.Sprintf("beatcoach  %3.0f bpm  clock:%s  %s  octave %+d", m.tempo, detected, state, m.octave))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.beatView())
	out.WriteString("\n\n")
	if len(m.lesson) > 0 {
		out.WriteString(m.lessonView())
		out.WriteString("\n\n")
	}
	out.WriteString(panelStyle.Render(m.notesView()))
	out.WriteString("\n")
	out.WriteString(statusStyle.Render(m.status))
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render("a-' play  z/x octave  space metronome  ←/→ tempo  D demo  S stop demo  N next  B beep  C chart  Q quit"))
	return out.String()
}

// beatView draws four beat cells with the current one lit and a progress bar
// through the current beat.
func (m model) beatView() string {
	if !m.posOK {
		return dimStyle.Render("○ ○ ○ ○  metronome off")
	}
	cells := make([]string, 4)
	for i := range cells {
		style := beatOffStyle
		if i == m.pos.BeatIndex%4 {
			style = beatOnStyle
		}
		cells[i] = style.Render(fmt.Sprintf(" %d ", i+1))
	}
	const width = 24
	filled := int(m.pos.BeatFraction * width)
	bar := strings.Repeat("━", filled) + dimStyle.Render(strings.Repeat("─", width-filled))
	return lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(cells, " "), "  ", bar, fmt.Sprintf("  beat %.2f", m.pos.Beat))
}

func (m model) lessonView() string {
	if m.step >= len(m.lesson) {
		return stepStyle.Render("lesson complete")
	}
	s := m.lesson[m.step]
	names := make([]string, len(s.Notes))
	for i, n := range s.Notes {
		name := noteName(n)
		if m.hit[n] {
			name = severityStyles[contracts.SeverityOk].Render(name)
		}
		names[i] = name
	}
	caption := s.Text
	if caption == "" {
		caption = fmt.Sprintf("step %d/%d", m.step+1, len(m.lesson))
	}
	return stepStyle.Render(caption) + "  " + strings.Join(names, " ") + dimStyle.Render(fmt.Sprintf("  %.2g beats", s.Beats()))
}

func (m model) notesView() string {
	if len(m.recent) == 0 {
		return dimStyle.Render("play a note")
	}
	lines := make([]string, 0, len(m.recent)+1)
	for i := len(m.recent) - 1; i >= 0; i-- {
		lines = append(lines, verdictLine(m.recent[i]))
	}
	lines = append(lines, dimStyle.Render(fmt.Sprintf("ok %d  warning %d  error %d",
		m.counts[contracts.SeverityOk], m.counts[contracts.SeverityWarning], m.counts[contracts.SeverityError])))
	return strings.Join(lines, "\n")
}

func verdictLine(r contracts.NoteOnReport) string {
	style, ok := severityStyles[r.Severity]
	if !ok {
		style = dimStyle
	}
	if r.Status == contracts.Unknown {
		return style.Render(fmt.Sprintf("%-4s %-13s", noteName(r.MIDI), r.Status))
	}
	return style.Render(fmt.Sprintf("%-4s %-13s %+7.1f ms", noteName(r.MIDI), r.Status, r.DeviationMs))
}
