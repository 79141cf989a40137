package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lichen129/iotdeck/internal/session"
)

type loginField int

const (
	loginFieldUsername loginField = iota
	loginFieldPassword
	numLoginFields
)

// loginDoneMsg carries the result of a login attempt. Navigation on success
// comes from the session itself, not from this model.
type loginDoneMsg struct {
	err error
}

type loginModel struct {
	session    *session.Manager
	fields     [numLoginFields]string
	focus      loginField
	submitting bool
	errMsg     string
}

func newLoginModel(s *session.Manager) loginModel {
	return loginModel{session: s}
}

func (m loginModel) Init() tea.Cmd {
	return nil
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.errMsg = ""
			m.fields[loginFieldPassword] = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.focus = (m.focus + 1) % numLoginFields
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numLoginFields) % numLoginFields
		case "enter":
			if m.focus == loginFieldUsername {
				m.focus = loginFieldPassword
				return m, nil
			}
			return m.submit()
		case "ctrl+r":
			return m, func() tea.Msg { return navigateMsg{target: viewRegister} }
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

func (m loginModel) submit() (loginModel, tea.Cmd) {
	username := strings.TrimSpace(m.fields[loginFieldUsername])
	password := m.fields[loginFieldPassword]
	if username == "" || password == "" {
		m.errMsg = "username and password are required"
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	s := m.session
	return m, func() tea.Msg {
		err := s.Login(context.Background(), username, password)
		return loginDoneMsg{err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder

	b.WriteString("\n" + sectionHeaderStyle.Render("  Sign in to your dashboard") + "\n\n")
	b.WriteString(renderField("username", m.fields[loginFieldUsername], m.focus == loginFieldUsername, false, 0) + "\n")
	b.WriteString(renderField("password", m.fields[loginFieldPassword], m.focus == loginFieldPassword, true, 0) + "\n\n")

	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("signing in...") + "\n")
	case m.errMsg != "":
		b.WriteString("  " + errorStyle.Render(m.errMsg) + "\n")
	default:
		b.WriteString("\n")
	}

	return b.String()
}

func (m loginModel) helpKeys() string {
	return helpEntry("tab", "next field") + "  " + helpEntry("enter", "sign in") + "  " + helpEntry("ctrl+r", "register") + "  " + helpEntry("ctrl+c", "quit")
}
