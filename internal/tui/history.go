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

type historyLoadedMsg struct {
	mac      string
	readings []domain.Reading
	err      error
}

// historyModel shows recent readings for one device.
type historyModel struct {
	session  *session.Manager
	api      *client.Client
	limit    int
	mac      string
	readings []domain.Reading
	loading  bool
	errMsg   string
	height   int
}

func newHistoryModel(s *session.Manager, api *client.Client, limit int) historyModel {
	return historyModel{session: s, api: api, limit: limit}
}

func (m historyModel) Init() tea.Cmd {
	if m.mac == "" {
		return nil
	}
	return m.load()
}

func (m historyModel) load() tea.Cmd {
	s := m.session
	api := m.api
	mac := m.mac
	limit := m.limit
	return func() tea.Msg {
		if !s.CheckTokenExpiration() {
			return historyLoadedMsg{mac: mac, err: errors.New("session expired")}
		}
		readings, err := api.GetHistory(context.Background(), mac, limit)
		return historyLoadedMsg{mac: mac, readings: readings, err: err}
	}
}

func (m historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case historyLoadedMsg:
		if msg.mac != m.mac {
			// stale load from a previous target
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = "could not load history"
			return m, nil
		}
		m.errMsg = ""
		m.readings = msg.readings
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return navigateMsg{target: viewMonitor} }
		case "r":
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m historyModel) View() string {
	var b strings.Builder

	header := sectionHeaderStyle.Render("  HISTORY") + "  " + metaStyle.Render(m.mac)
	if m.loading {
		header += "  " + dimStyle.Render("loading...")
	}
	b.WriteString("\n" + header + "\n\n")

	if m.errMsg != "" {
		b.WriteString("  " + errorStyle.Render(m.errMsg) + "\n")
		return b.String()
	}
	if len(m.readings) == 0 {
		b.WriteString("  " + dimStyle.Render("no readings recorded") + "\n")
		return b.String()
	}

	rows := m.readings
	if m.height > 6 && len(rows) > m.height-6 {
		rows = rows[:m.height-6]
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s  %-16s %s\n",
			metaStyle.Render(r.RecordedAt.Format("01-02 15:04:05")),
			normalStyle.Render(truncStr(r.MACKey, 16)),
			selectedStyle.Render(r.Value)))
	}

	return b.String()
}

func (m historyModel) helpKeys() string {
	return helpEntry("r", "reload") + "  " + helpEntry("esc", "back to monitor")
}
