package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lichen129/iotdeck/internal/session"
	"github.com/lichen129/iotdeck/pkg/client"
	"github.com/lichen129/iotdeck/pkg/domain"
)

type commandSentMsg struct {
	err error
}

// controlModel lets the user write a value to a device channel.
type controlModel struct {
	session   *session.Manager
	api       *client.Client
	devices   []domain.Device
	cursor    int
	keyCursor int
	editing   bool
	value     string
	sending   bool
	statusMsg string
}

func newControlModel(s *session.Manager, api *client.Client) controlModel {
	return controlModel{session: s, api: api}
}

func (m controlModel) Init() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		s.FetchDevices(context.Background())
		return devicesRefreshedMsg{devices: s.Devices()}
	}
}

func (m controlModel) Update(msg tea.Msg) (controlModel, tea.Cmd) {
	switch msg := msg.(type) {
	case devicesRefreshedMsg:
		m.devices = msg.devices
		if m.cursor >= len(m.devices) {
			m.cursor = 0
		}
		m.keyCursor = 0
		// The refresh may have dropped the channel being edited; a pending
		// value must not submit against the new list.
		m.editing = false
		m.value = ""
		return m, nil

	case commandSentMsg:
		m.sending = false
		if msg.err != nil {
			m.statusMsg = "command failed"
		} else {
			m.statusMsg = "command sent"
			m.editing = false
			m.value = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.sending {
			return m, nil
		}
		if m.editing {
			switch msg.String() {
			case "esc":
				m.editing = false
				m.value = ""
			case "enter":
				return m.send()
			default:
				m.value = editRune(m.value, msg.String())
			}
			return m, nil
		}

		m.statusMsg = ""
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.devices)-1 {
				m.cursor++
				m.keyCursor = 0
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
				m.keyCursor = 0
			}
		case "h", "left":
			if m.keyCursor > 0 {
				m.keyCursor--
			}
		case "l", "right":
			if m.cursor < len(m.devices) && m.keyCursor < len(m.devices[m.cursor].Keys)-1 {
				m.keyCursor++
			}
		case "enter":
			if m.cursor < len(m.devices) && m.keyCursor < len(m.devices[m.cursor].Keys) {
				m.editing = true
				m.value = ""
			}
		}
	}
	return m, nil
}

func (m controlModel) send() (controlModel, tea.Cmd) {
	value := strings.TrimSpace(m.value)
	if value == "" {
		m.statusMsg = "value is required"
		return m, nil
	}
	if m.cursor >= len(m.devices) || m.keyCursor >= len(m.devices[m.cursor].Keys) {
		m.editing = false
		m.value = ""
		m.statusMsg = "channel is gone, list changed"
		return m, nil
	}
	mac := m.devices[m.cursor].MACAddress
	// the raw key goes on the wire, not the display alias
	key := m.devices[m.cursor].Keys[m.keyCursor].MACKey

	m.sending = true
	s := m.session
	api := m.api
	return m, func() tea.Msg {
		if !s.CheckTokenExpiration() {
			return commandSentMsg{err: errors.New("session expired")}
		}
		err := api.SendCommand(context.Background(), client.CommandRequest{
			MACAddress: mac,
			MACKey:     key,
			Value:      value,
		})
		return commandSentMsg{err: err}
	}
}

func (m controlModel) View() string {
	var b strings.Builder

	header := sectionHeaderStyle.Render("  DEVICE CONTROL")
	if m.statusMsg != "" {
		header += "  " + accentStyle.Render(m.statusMsg)
	}
	b.WriteString("\n" + header + "\n\n")

	if len(m.devices) == 0 {
		b.WriteString("  " + dimStyle.Render("no devices") + "\n")
		return b.String()
	}

	for i, d := range m.devices {
		line := fmt.Sprintf("  %-24s %s", truncStr(d.DisplayName(), 24), metaStyle.Render(shortMAC(d.MACAddress)))
		if i == m.cursor {
			line = selectedRowBg.Render(line)
		}
		b.WriteString(line + "\n")

		if i != m.cursor {
			continue
		}
		for j, k := range d.Keys {
			badge := TypeStyle(k.Type).Render(k.Type)
			label := normalStyle.Render(truncStr(k.DisplayName(), 20))
			if j == m.keyCursor {
				label = accentStyle.Render("[" + truncStr(k.DisplayName(), 20) + "]")
			}
			b.WriteString("      " + label + " " + badge + "\n")
		}
		if m.editing {
			b.WriteString("\n      " + inputPromptStyle.Render("value> ") + selectedStyle.Render(m.value) + accentStyle.Render("█") + "\n")
		}
		if m.sending {
			b.WriteString("      " + dimStyle.Render("sending...") + "\n")
		}
	}

	return b.String()
}

func (m controlModel) helpKeys() string {
	if m.editing {
		return helpEntry("enter", "send") + "  " + helpEntry("esc", "cancel")
	}
	return helpEntry("j/k", "device") + "  " + helpEntry("h/l", "channel") + "  " + helpEntry("enter", "set value")
}
