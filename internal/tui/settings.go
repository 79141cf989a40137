package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lichen129/iotdeck/internal/session"
	"github.com/lichen129/iotdeck/pkg/domain"
)

// settingsState is the state machine for the device config editor.
type settingsState int

const (
	stPicking settingsState = iota
	stEditing
	stSaving
)

type configSavedMsg struct{}

// settingsModel edits device and channel aliases and channel types, the
// original platform's device configuration screen.
type settingsModel struct {
	session   *session.Manager
	devices   []domain.Device
	cursor    int
	state     settingsState
	dev       domain.Device // working copy while editing
	row       int           // 0 = device alias, 1..n = channels
	typeFocus bool          // on channel rows: false = alias, true = type
}

func newSettingsModel(s *session.Manager) settingsModel {
	return settingsModel{session: s}
}

func (m settingsModel) Init() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		s.FetchDevices(context.Background())
		return devicesRefreshedMsg{devices: s.Devices()}
	}
}

func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case devicesRefreshedMsg:
		m.devices = msg.devices
		if m.cursor >= len(m.devices) {
			m.cursor = 0
		}
		return m, nil

	case configSavedMsg:
		// Success and failure both surface through the session's notifier;
		// just leave the editor and reload.
		m.state = stPicking
		return m, m.Init()

	case tea.KeyMsg:
		switch m.state {
		case stPicking:
			return m.updatePickKeys(msg)
		case stEditing:
			return m.updateEditKeys(msg)
		case stSaving:
			return m, nil
		}
	}
	return m, nil
}

func (m settingsModel) updatePickKeys(msg tea.KeyMsg) (settingsModel, tea.Cmd) {
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
		return m, m.Init()
	case "enter":
		if m.cursor < len(m.devices) {
			m.state = stEditing
			m.dev = copyDevice(m.devices[m.cursor])
			m.row = 0
			m.typeFocus = false
		}
	}
	return m, nil
}

func (m settingsModel) updateEditKeys(msg tea.KeyMsg) (settingsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stPicking
	case "ctrl+s":
		return m.save()
	case "down", "enter":
		if m.row < len(m.dev.Keys) {
			m.row++
			m.typeFocus = false
		}
	case "up":
		if m.row > 0 {
			m.row--
			m.typeFocus = false
		}
	case "tab":
		if m.row > 0 {
			m.typeFocus = !m.typeFocus
		}
	case "left", "right":
		if m.row > 0 && m.typeFocus {
			m.cycleType(msg.String() == "right")
		}
	case "backspace":
		if m.row == 0 {
			m.dev.MACAlias = editRune(m.dev.MACAlias, "backspace")
		} else if !m.typeFocus {
			k := &m.dev.Keys[m.row-1]
			k.KeyAlias = editRune(k.KeyAlias, "backspace")
		}
	default:
		key := msg.String()
		if m.row == 0 {
			m.dev.MACAlias = editRune(m.dev.MACAlias, key)
		} else if !m.typeFocus {
			k := &m.dev.Keys[m.row-1]
			k.KeyAlias = editRune(k.KeyAlias, key)
		}
	}
	return m, nil
}

func (m *settingsModel) cycleType(forward bool) {
	k := &m.dev.Keys[m.row-1]
	idx := 0
	for i, t := range domain.DeviceTypes {
		if t == k.Type {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(domain.DeviceTypes)
	} else {
		idx = (idx - 1 + len(domain.DeviceTypes)) % len(domain.DeviceTypes)
	}
	k.Type = domain.DeviceTypes[idx]
}

func (m settingsModel) save() (settingsModel, tea.Cmd) {
	m.state = stSaving
	s := m.session
	dev := m.dev
	return m, func() tea.Msg {
		s.SaveConfig(context.Background(), dev, dev.MACAddress)
		return configSavedMsg{}
	}
}

func (m settingsModel) View() string {
	var b strings.Builder

	b.WriteString("\n" + sectionHeaderStyle.Render("  DEVICE SETTINGS") + "\n\n")

	if m.state == stPicking {
		if len(m.devices) == 0 {
			b.WriteString("  " + dimStyle.Render("no devices") + "\n")
			return b.String()
		}
		for i, d := range m.devices {
			line := fmt.Sprintf("  %-24s %s  %s", truncStr(d.DisplayName(), 24), metaStyle.Render(shortMAC(d.MACAddress)), dimStyle.Render(fmt.Sprintf("%d channels", len(d.Keys))))
			if i == m.cursor {
				line = selectedRowBg.Render(line)
			}
			b.WriteString(line + "\n")
		}
		return b.String()
	}

	// Editor
	b.WriteString("  " + metaStyle.Render(m.dev.MACAddress) + "\n\n")
	b.WriteString(renderField("alias     ", m.dev.MACAlias, m.row == 0, false, 0) + "\n\n")

	for i, k := range m.dev.Keys {
		aliasFocused := m.row == i+1 && !m.typeFocus
		typeBadge := TypeStyle(k.Type).Render(k.Type)
		if m.row == i+1 && m.typeFocus {
			typeBadge = accentStyle.Render("< " + k.Type + " >")
		}
		b.WriteString(renderField(fmt.Sprintf("%-10s", k.MACKey), k.KeyAlias, aliasFocused, false, 0) + "  " + typeBadge + "\n")
	}

	if m.state == stSaving {
		b.WriteString("\n  " + dimStyle.Render("saving...") + "\n")
	}

	return b.String()
}

// copyDevice deep-copies a device so edits don't leak into the cached list.
func copyDevice(d domain.Device) domain.Device {
	out := d
	out.Keys = make([]domain.DeviceKey, len(d.Keys))
	copy(out.Keys, d.Keys)
	return out
}

func (m settingsModel) helpKeys() string {
	switch m.state {
	case stEditing:
		return helpEntry("up/down", "row") + "  " + helpEntry("tab", "alias/type") + "  " + helpEntry("ctrl+s", "save") + "  " + helpEntry("esc", "cancel")
	default:
		return helpEntry("j/k", "nav") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("enter", "edit")
	}
}
