package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/roverteleop/pkg/bus"
	"github.com/gwillem/roverteleop/pkg/keys"
	"github.com/gwillem/roverteleop/pkg/robot"
	"github.com/gwillem/roverteleop/pkg/teleop"
)

const (
	headerHeight = 4  // title + status line + blanks
	legendHeight = 2  // legend row + blank
	footerHeight = 7  // log box height
	maxLogs      = 5  // number of log messages to show
	borderSize   = 2  // chart border
	tableWidth   = 24 // joint table incl. border
	chartRange   = 2.0
)

const (
	seriesLinear  = "linear"
	seriesAngular = "angular"
)

var seriesColors = map[string]string{
	seriesLinear:  "46", // green
	seriesAngular: "51", // cyan
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	alertStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	jointStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	offsetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1).Align(lipgloss.Right)
	tableHdStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
)

type dashboardModel struct {
	ctrl     *teleop.Controller
	chart    *streamlinechart.Model
	velocity <-chan any // hub subscription on the velocity topic
	state    teleop.State
	width    int
	height   int
	logs     []string
	quitting bool
}

// Messages from the controller and the bus
type stateMsg teleop.State
type logMsg string
type velocityMsg bus.Twist

func waitForState(ctrl *teleop.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *teleop.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

func waitForVelocity(ch <-chan any) tea.Cmd {
	return func() tea.Msg {
		for v := range ch {
			if m, ok := v.(bus.Message); ok {
				if t, ok := m.Payload.(bus.Twist); ok {
					return velocityMsg(t)
				}
			}
		}
		return nil
	}
}

func newDashboardModel(ctrl *teleop.Controller, velocity <-chan any) dashboardModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-chartRange, chartRange),
	)
	for name, color := range seriesColors {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}

	return dashboardModel{
		ctrl:     ctrl,
		chart:    &chart,
		velocity: velocity,
		state:    ctrl.State(),
	}
}

func (m *dashboardModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *dashboardModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 60, 16
	}
	width = max(m.width-tableWidth-borderSize-2, 30)
	height = max(m.height-headerHeight-legendHeight-footerHeight-borderSize, 9)
	return width, height
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
		waitForVelocity(m.velocity),
	)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chart.Resize(m.chartSize())
		return m, nil

	case tea.KeyMsg:
		res := m.ctrl.Handle(keys.FromTea(msg))
		if res.Status != "" {
			m.addLog(fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), res.Status))
		}
		m.state = m.ctrl.State()
		if res.Quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case stateMsg:
		m.state = teleop.State(msg)
		return m, waitForState(m.ctrl)

	case velocityMsg:
		m.chart.PushDataSet(seriesLinear, clampRange(msg.Linear.X))
		m.chart.PushDataSet(seriesAngular, clampRange(msg.Angular.Z))
		m.chart.DrawAll()
		return m, waitForVelocity(m.velocity)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func clampRange(v float64) float64 {
	return min(max(v, -chartRange), chartRange)
}

func (m dashboardModel) View() string {
	if m.quitting {
		return "Teleoperation stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Rover Teleop"))
	sb.WriteString(fmt.Sprintf(" - every %v, watchdog %v", m.ctrl.Period(), m.ctrl.Timeout()))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")
	sb.WriteString(renderStatus(m.state))
	sb.WriteString("\n\n")

	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		chartStyle.Render(m.chart.View()),
		renderJoints(m.state),
	))
	sb.WriteString("\n")

	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 40))

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Arrows drive, s stops, o/p change speed, 1-7 / qwertyu move the arm. Ctrl-C quits.")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderStatus(s teleop.State) string {
	drive := "stopped"
	switch {
	case s.X > 0:
		drive = "forward"
	case s.X < 0:
		drive = "backward"
	case s.Turn > 0:
		drive = "left"
	case s.Turn < 0:
		drive = "right"
	}

	line := fmt.Sprintf("Speed %.3f  Drive %s", s.Speed, drive)
	if s.TimedOut {
		return line + "  " + alertStyle.Render("WATCHDOG: no input, drive stopped")
	}
	return line
}

func renderJoints(s teleop.State) string {
	rows := make([][]string, 0, robot.NumJoints)
	for i, name := range robot.AllJoints() {
		rows = append(rows, []string{
			fmt.Sprintf("%d %s", i+1, name),
			fmt.Sprintf("%d", s.Motors[i]),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(statusStyle).
		Headers("Joint", "Offset").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHdStyle
			case col == 0:
				return jointStyle
			default:
				return offsetStyle
			}
		}).
		Render()
}

func renderLegend() string {
	var items []string
	for _, name := range []string{seriesLinear, seriesAngular} {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name])).Bold(true)
		items = append(items, style.Render("━━")+" "+name)
	}
	return strings.Join(items, "  ")
}

// runDashboard runs the TUI until Ctrl-C or ctx is done, then halts the
// rover and stops the publish loop.
func runDashboard(ctx context.Context, ctrl *teleop.Controller, hub *bus.Hub, grace time.Duration) error {
	shutdown := ctrl.Background(ctx)
	defer shutdown(grace)

	velocity, unsubscribe := hub.Subscribe(bus.TopicVelocity)
	defer unsubscribe()

	p := tea.NewProgram(newDashboardModel(ctrl, velocity), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
