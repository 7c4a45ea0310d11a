// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Rio Marsh, Subcool Labs

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/subcoolabs/manifold/pkg/givre"
)

// Event log entry
type errorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for informational
}

// TUI model
type watchModel struct {
	connMgr  *connectionManager
	connInfo string

	stats *givre.Statistics

	errorLog      []errorLogEntry
	maxLogEntries int

	sensorTable table.Model
	eventView   viewport.Model

	lastReport   *givre.StatusReport
	lastDecision *givre.OperatingDecision

	synchronized   bool
	invalidBytes   int
	connectionLost bool
	quitting       bool

	lastQueryTime time.Time

	width  int
	height int
}

// Messages
type watchTickMsg time.Time

type watchDataMsg struct {
	frame            *givre.RawFrame
	decodeErr        error
	validationErrors []givre.ValidationError
}

type watchSyncMsg struct {
	invalidBytes int
}

// watchBatchMsg batches decoded frames to avoid overwhelming the TUI
// event loop during status bursts
type watchBatchMsg struct {
	messages []watchDataMsg
	syncMsg  *watchSyncMsg
}

type connectionLostMsg struct{}

type reconnectedMsg struct {
	connInfo string
}

func initialWatchModel(connMgr *connectionManager, connInfo string) watchModel {
	columns := []table.Column{
		{Title: "Sensor", Width: 18},
		{Title: "Reading", Width: 14},
	}

	st := table.New(
		table.WithColumns(columns),
		table.WithRows(sensorRows(nil)),
		table.WithHeight(7),
	)
	// Display only - suppress the selection bar
	styles := table.DefaultStyles()
	styles.Selected = styles.Cell
	st.SetStyles(styles)

	m := watchModel{
		connMgr:       connMgr,
		connInfo:      connInfo,
		stats:         givre.NewStatistics(),
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		sensorTable:   st,
		eventView:     viewport.New(76, 5),
		synchronized:  false,
		lastQueryTime: time.Now(),
		width:         80,
		height:        24,
	}
	m.eventView.SetContent(m.renderEventLog())
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m watchModel) Init() tea.Cmd {
	return watchTickCmd()
}

func watchTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViews()

	case watchTickMsg:
		m.stats.CalculateRates()
		// Poll on the configured cadence; skip while reconnecting
		if !m.connectionLost && time.Since(m.lastQueryTime) >= time.Duration(watchInterval)*time.Second {
			m.lastQueryTime = time.Now()
			m.connMgr.sendQuery()
		}
		return m, watchTickCmd()

	case watchBatchMsg:
		if msg.syncMsg != nil {
			m.synchronized = true
			m.invalidBytes = msg.syncMsg.invalidBytes
			if msg.syncMsg.invalidBytes > 0 {
				m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", msg.syncMsg.invalidBytes), false)
			} else {
				m.addLogEntry("Synchronized", false)
			}
		}
		for _, data := range msg.messages {
			m.processWatchData(data)
		}
		m.refreshViews()

	case connectionLostMsg:
		m.connectionLost = true
		m.addLogEntry("Connection lost - reconnecting...", true)
		m.refreshViews()

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		// The decoder starts fresh on the new connection
		m.synchronized = false
		m.invalidBytes = 0
		m.lastQueryTime = time.Now()
		m.addLogEntry("Reconnected", false)
		m.refreshViews()
	}

	return m, nil
}

func (m *watchModel) processWatchData(msg watchDataMsg) {
	if msg.decodeErr != nil {
		if m.synchronized {
			m.stats.Update(nil, msg.decodeErr, nil)
			m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", msg.decodeErr), true)
		}
		return
	}
	if msg.frame == nil {
		return
	}

	if msg.frame.Type() != givre.FrameStatus {
		m.stats.Update(msg.frame, nil, nil)
		m.addLogEntry(frameBody(msg.frame), false)
		return
	}

	status, err := givre.DecodeStatus(msg.frame)
	if err != nil {
		m.stats.Update(msg.frame, nil, nil)
		m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", err), true)
		return
	}
	report, err := status.Report()
	if err != nil {
		m.stats.Update(msg.frame, nil, nil)
		m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", err), true)
		return
	}

	m.stats.Update(msg.frame, nil, msg.validationErrors)
	m.lastReport = report

	if temps, err := status.RefrigerantTemps(); err == nil {
		decision := givre.Infer(temps)
		m.lastDecision = &decision
	}

	for _, verr := range msg.validationErrors {
		m.addLogEntry(fmt.Sprintf("Anomaly: %v", verr), true)
	}
}

func (m *watchModel) addLogEntry(message string, isError bool) {
	entry := errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	// Keep only last N entries
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

func (m *watchModel) refreshViews() {
	m.sensorTable.SetRows(sensorRows(m.lastReport))
	m.eventView.SetContent(m.renderEventLog())
	m.eventView.GotoBottom()
}

func (m *watchModel) resizeViews() {
	logWidth := m.width - 6
	if logWidth < 20 {
		logWidth = 20
	}
	// Reserve space for header, state lines, table and stats
	logHeight := m.height - 26
	if logHeight < 4 {
		logHeight = 4
	}
	m.eventView.Width = logWidth
	m.eventView.Height = logHeight
	m.eventView.SetContent(m.renderEventLog())
	m.eventView.GotoBottom()
}

func sensorRows(r *givre.StatusReport) []table.Row {
	if r == nil {
		return []table.Row{
			{"Vapor line", "-"},
			{"Vapor pressure", "-"},
			{"Liquid line", "-"},
			{"Liquid pressure", "-"},
			{"Outdoor coil", "-"},
			{"Indoor coil", "-"},
			{"Operational", "-"},
		}
	}
	return []table.Row{
		{"Vapor line", fmt.Sprintf("%.1f °F", r.VaporLineTempF)},
		{"Vapor pressure", fmt.Sprintf("%.1f bar", r.VaporPressureBar)},
		{"Liquid line", fmt.Sprintf("%.1f °F", r.LiquidLineTempF)},
		{"Liquid pressure", fmt.Sprintf("%.0f kPa", r.LiquidPressureKPa)},
		{"Outdoor coil", fmt.Sprintf("%.1f °C", r.OutdoorCoilTempC)},
		{"Indoor coil", fmt.Sprintf("%.1f °C", r.IndoorCoilTempC)},
		{"Operational", fmt.Sprintf("%.0f", r.Operational)},
	}
}

func (m watchModel) renderEventLog() string {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	if len(m.errorLog) == 0 {
		return headerStyle.Render("(no events yet)")
	}

	var b strings.Builder
	for _, entry := range m.errorLog {
		timestamp := entry.timestamp.Format("15:04:05.000")
		if entry.isError {
			b.WriteString(fmt.Sprintf("%s %s\n",
				headerStyle.Render(timestamp),
				errorStyle.Render("✗ "+entry.message),
			))
		} else {
			b.WriteString(fmt.Sprintf("%s %s\n",
				headerStyle.Render(timestamp),
				warningStyle.Render("ℹ "+entry.message),
			))
		}
	}
	return b.String()
}

func (m watchModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("MANIFOLD WATCH"))
	s.WriteString("\n")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = "RECONNECTING..."
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Poll: %ds | Press 'q' to quit",
		connStatus, watchInterval)))
	s.WriteString("\n\n")

	// Sync status
	if !m.synchronized {
		s.WriteString(warningStyle.Render("⏳ Waiting for synchronization..."))
		s.WriteString("\n\n")
	} else {
		s.WriteString(statsValueStyle.Render("✓ Synchronized"))
		if m.invalidBytes > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d invalid bytes)", m.invalidBytes)))
		}
		s.WriteString("\n\n")
	}

	// Unit state
	if m.lastReport != nil {
		r := m.lastReport
		power := "Off"
		if r.Power {
			power = "On"
		}
		line := fmt.Sprintf("%s %s   %s %s   %s %s   %s %s",
			statsLabelStyle.Render("Power:"), statsValueStyle.Render(power),
			statsLabelStyle.Render("Mode:"), statsValueStyle.Render(r.Mode.String()),
			statsLabelStyle.Render("Fan:"), statsValueStyle.Render(fanLabel(r.FanSpeed)),
			statsLabelStyle.Render("Setpoint:"), statsValueStyle.Render(fmt.Sprintf("%.1f°C", r.SetpointC)),
		)
		flags := ""
		if r.Turbo {
			flags += " turbo"
		}
		if r.XFan {
			flags += " xfan"
		}
		if r.Swing {
			flags += " swing"
		}
		if r.Display {
			flags += " display"
		}
		if flags != "" {
			line += "   " + headerStyle.Render("["+flags[1:]+"]")
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	// Inference
	if m.lastDecision != nil {
		d := m.lastDecision
		gate := statsValueStyle.Render("gate open")
		if !d.SafetyGate {
			gate = errorStyle.Render("GATE CLOSED: " + d.SafetyReason)
		}
		s.WriteString(fmt.Sprintf("%s %s %s   %s",
			statsLabelStyle.Render("Inferred:"),
			statsValueStyle.Render(d.Mode.String()),
			headerStyle.Render("("+d.Reason+")"),
			gate,
		))
		s.WriteString("\n")
	}
	if m.lastReport != nil || m.lastDecision != nil {
		s.WriteString("\n")
	}

	// Sensors
	s.WriteString(boxStyle.Render(m.sensorTable.View()))
	s.WriteString("\n\n")

	// Statistics
	m.stats.CalculateRates()
	var validPercent, errorPercent float64
	if m.stats.TotalFrames > 0 {
		validPercent = float64(m.stats.ValidFrames) * 100.0 / float64(m.stats.TotalFrames)
		totalErrors := m.stats.ChecksumErrors + m.stats.FramingErrors + m.stats.AnomalousValues
		errorPercent = float64(totalErrors) * 100.0 / float64(m.stats.TotalFrames)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalFrames)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidFrames, validPercent)),
		statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ChecksumErrors+m.stats.FramingErrors+m.stats.AnomalousValues, errorPercent)),
	))

	if m.stats.ChecksumErrors > 0 || m.stats.FramingErrors > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Checksum Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.ChecksumErrors)),
			statsLabelStyle.Render("Framing Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.FramingErrors)),
		))
	}

	if m.stats.AnomalousValues > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s\n",
			statsLabelStyle.Render("Anomalous:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.AnomalousValues)),
		))
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Frame Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f frames/s", m.stats.FrameRate)),
		statsLabelStyle.Render("Error Rate:"), func() string {
			if m.stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
			}
			return statsValueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Width(m.width - 4).Render(m.eventView.View()))

	return s.String()
}
