package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lichen129/iotdeck/internal/session"
	"github.com/lichen129/iotdeck/pkg/domain"
)

// devicesRefreshedMsg carries the session's device list after a refresh.
type devicesRefreshedMsg struct {
	devices []domain.Device
}

// openHistoryMsg asks the root model to show history for a device.
type openHistoryMsg struct {
	mac string
}

type copyDoneMsg struct {
	err error
}

type monitorModel struct {
	session   *session.Manager
	devices   []domain.Device
	cursor    int
	loading   bool
	statusMsg string
	width     int
	height    int
}

func newMonitorModel(s *session.Manager) monitorModel {
	return monitorModel{session: s}
}

func (m monitorModel) Init() tea.Cmd {
	return m.refresh()
}

// refresh goes through the session so the expiration check runs before any
// request and the cached list survives a failed fetch.
func (m monitorModel) refresh() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		s.FetchDevices(context.Background())
		return devicesRefreshedMsg{devices: s.Devices()}
	}
}

func (m monitorModel) Update(msg tea.Msg) (monitorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case devicesRefreshedMsg:
		m.loading = false
		m.devices = msg.devices
		if m.cursor >= len(m.devices) {
			m.cursor = 0
		}
		return m, nil

	case copyDoneMsg:
		if msg.err != nil {
			m.statusMsg = "copy failed"
		} else {
			m.statusMsg = "MAC copied"
		}
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.devices)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			m.loading = true
			return m, m.refresh()
		case "c":
			if m.cursor < len(m.devices) {
				mac := m.devices[m.cursor].MACAddress
				return m, func() tea.Msg {
					return copyDoneMsg{err: clipboard.WriteAll(mac)}
				}
			}
		case "enter":
			if m.cursor < len(m.devices) {
				mac := m.devices[m.cursor].MACAddress
				return m, func() tea.Msg {
					return openHistoryMsg{mac: mac}
				}
			}
		}
	}
	return m, nil
}

func (m monitorModel) View() string {
	var b strings.Builder

	header := sectionHeaderStyle.Render("  DEVICES")
	if m.loading {
		header += "  " + dimStyle.Render("refreshing...")
	}
	if m.statusMsg != "" {
		header += "  " + accentStyle.Render(m.statusMsg)
	}
	b.WriteString("\n" + header + "\n\n")

	if len(m.devices) == 0 {
		b.WriteString("  " + dimStyle.Render("no devices yet, press r to refresh") + "\n")
		return b.String()
	}

	for i, d := range m.devices {
		dot := offlineDotStyle.Render("●")
		if d.Online {
			dot = onlineDotStyle.Render("●")
		}

		name := truncStr(d.DisplayName(), 24)
		line := fmt.Sprintf(" %s %-24s %s  %s", dot, name, metaStyle.Render(shortMAC(d.MACAddress)), dimStyle.Render(formatTime(d.LastSeen)))
		if i == m.cursor {
			line = selectedRowBg.Render(line)
		}
		b.WriteString(line + "\n")

		// Channel readings for the selected device.
		if i == m.cursor {
			for _, k := range d.Keys {
				badge := TypeStyle(k.Type).Render(k.Type)
				val := k.Value
				if k.Unit != "" {
					val += " " + k.Unit
				}
				b.WriteString(fmt.Sprintf("      %s %s %s\n",
					normalStyle.Render(truncStr(k.DisplayName(), 20)),
					selectedStyle.Render(val),
					badge))
			}
		}
	}

	return b.String()
}

func (m monitorModel) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("c", "copy mac") + "  " + helpEntry("enter", "history")
}
