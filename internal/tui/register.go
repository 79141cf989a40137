package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lichen129/iotdeck/internal/session"
	"github.com/lichen129/iotdeck/pkg/client"
)

type registerField int

const (
	regFieldUsername registerField = iota
	regFieldEmail
	regFieldPassword
	numRegisterFields
)

type registerDoneMsg struct {
	err error
}

type registerModel struct {
	session    *session.Manager
	fields     [numRegisterFields]string
	focus      registerField
	submitting bool
	errMsg     string
	created    bool
}

func newRegisterModel(s *session.Manager) registerModel {
	return registerModel{session: s}
}

func (m registerModel) Init() tea.Cmd {
	return nil
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case registerDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		// Account exists now, but the user still signs in themselves.
		m.created = true
		m.errMsg = ""
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return navigateMsg{target: viewLogin} }
		case "tab", "down":
			m.focus = (m.focus + 1) % numRegisterFields
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numRegisterFields) % numRegisterFields
		case "enter":
			if m.focus < numRegisterFields-1 {
				m.focus++
				return m, nil
			}
			return m.submit()
		case "backspace":
			f := &m.fields[m.focus]
			*f = editRune(*f, "backspace")
		default:
			f := &m.fields[m.focus]
			*f = editRune(*f, msg.String())
		}
	}
	return m, nil
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	username := strings.TrimSpace(m.fields[regFieldUsername])
	password := m.fields[regFieldPassword]
	if username == "" || password == "" {
		m.errMsg = "username and password are required"
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	m.created = false
	req := client.RegisterRequest{
		Username: username,
		Email:    strings.TrimSpace(m.fields[regFieldEmail]),
		Password: password,
	}
	s := m.session
	return m, func() tea.Msg {
		err := s.Register(context.Background(), req)
		return registerDoneMsg{err: err}
	}
}

func (m registerModel) View() string {
	var b strings.Builder

	b.WriteString("\n" + sectionHeaderStyle.Render("  Create an account") + "\n\n")
	b.WriteString(renderField("username", m.fields[regFieldUsername], m.focus == regFieldUsername, false, 0) + "\n")
	b.WriteString(renderField("email   ", m.fields[regFieldEmail], m.focus == regFieldEmail, false, 0) + "\n")
	b.WriteString(renderField("password", m.fields[regFieldPassword], m.focus == regFieldPassword, true, 0) + "\n\n")

	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("registering...") + "\n")
	case m.errMsg != "":
		b.WriteString("  " + errorStyle.Render(m.errMsg) + "\n")
	case m.created:
		b.WriteString("  " + okStyle.Render("account created, press esc and sign in") + "\n")
	default:
		b.WriteString("\n")
	}

	return b.String()
}

func (m registerModel) helpKeys() string {
	return helpEntry("tab", "next field") + "  " + helpEntry("enter", "register") + "  " + helpEntry("esc", "back to login")
}
