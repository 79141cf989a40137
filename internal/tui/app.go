package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lichen129/iotdeck/internal/rules"
	"github.com/lichen129/iotdeck/internal/session"
	"github.com/lichen129/iotdeck/pkg/client"
)

// tabOrder is the set of screens reachable with the number keys once
// signed in.
var tabOrder = []view{viewMonitor, viewControl, viewAutomation, viewHistory, viewSettings}

// App is the root model. It owns one model per screen and routes messages
// to whichever is active. All screen switches, including the first, pass
// through resolveRoute.
type App struct {
	session *session.Manager
	version string

	view   view
	width  int
	height int
	frame  int
	status string

	login      loginModel
	register   registerModel
	monitor    monitorModel
	control    controlModel
	automation automationModel
	history    historyModel
	settings   settingsModel
}

func NewApp(s *session.Manager, api *client.Client, ruleStore *rules.Store, historyLimit int, version string) App {
	a := App{
		session:    s,
		version:    version,
		login:      newLoginModel(s),
		register:   newRegisterModel(s),
		monitor:    newMonitorModel(s),
		control:    newControlModel(s, api),
		automation: newAutomationModel(ruleStore),
		history:    newHistoryModel(s, api, historyLimit),
		settings:   newSettingsModel(s),
	}
	a.view = resolveRoute(routeFor(viewMonitor), s.Authenticated()).View
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.activeInit())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Screens that scroll get the body height, header and footer
		// lines excluded.
		body := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.monitor, _ = a.monitor.Update(body)
		a.history, _ = a.history.Update(body)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case navigateMsg:
		return a.navigate(msg.target)

	case notifyMsg:
		a.status = msg.text
		return a, nil

	case openHistoryMsg:
		a.history.mac = msg.mac
		a.history.readings = nil
		return a.navigate(viewHistory)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.session.Authenticated() && !a.isEditing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "o":
				return a, a.logoutCmd()
			case "1", "2", "3", "4", "5":
				idx := int(msg.String()[0] - '1')
				return a.navigate(tabOrder[idx])
			}
		}
		a.status = ""
	}

	return a.updateActive(msg)
}

// navigate applies the guard and switches screens. A target behind the
// guard resolves to login when the session is not authenticated.
func (a App) navigate(target view) (tea.Model, tea.Cmd) {
	r := resolveRoute(routeFor(target), a.session.Authenticated())
	a.view = r.View
	a.status = ""
	return a, a.activeInit()
}

func (a App) activeInit() tea.Cmd {
	switch a.view {
	case viewLogin:
		return a.login.Init()
	case viewRegister:
		return a.register.Init()
	case viewMonitor:
		return a.monitor.Init()
	case viewControl:
		return a.control.Init()
	case viewAutomation:
		return a.automation.Init()
	case viewHistory:
		return a.history.Init()
	case viewSettings:
		return a.settings.Init()
	}
	return nil
}

func (a App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewRegister:
		a.register, cmd = a.register.Update(msg)
	case viewMonitor:
		a.monitor, cmd = a.monitor.Update(msg)
	case viewControl:
		a.control, cmd = a.control.Update(msg)
	case viewAutomation:
		a.automation, cmd = a.automation.Update(msg)
	case viewHistory:
		a.history, cmd = a.history.Update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.Update(msg)
	}
	return a, cmd
}

// isEditing reports whether the active screen is capturing free text, in
// which case the global shortcuts stay out of the way.
func (a App) isEditing() bool {
	switch a.view {
	case viewControl:
		return a.control.editing
	case viewAutomation:
		return a.automation.adding
	case viewSettings:
		return a.settings.state == stEditing
	}
	return false
}

func (a App) logoutCmd() tea.Cmd {
	s := a.session
	return func() tea.Msg {
		s.Logout(context.Background())
		return navigateMsg{target: viewLogin}
	}
}

func (a App) View() string {
	var b strings.Builder

	header := "  " + renderShimmerLogo(a.frame) + "  " + metaStyle.Render(a.version)
	if a.session.Authenticated() {
		header += "   " + metaStyle.Render(a.session.Snapshot().DisplayName())
	}
	b.WriteString("\n" + header + "\n")

	if a.session.Authenticated() {
		b.WriteString("  " + a.tabBar() + "\n")
	}

	body := a.activeView()
	if a.height > 0 {
		body = truncateToHeight(body, a.height-5)
	}
	b.WriteString(body)

	b.WriteString("\n")
	if a.status != "" {
		b.WriteString("  " + warnStyle.Render(a.status) + "\n")
	}
	b.WriteString("  " + a.helpBar() + "\n")

	return b.String()
}

func (a App) tabBar() string {
	var parts []string
	for i, v := range tabOrder {
		r := routeFor(v)
		var label string
		if v == a.view {
			label = accentStyle.Render(string(rune('1'+i)) + " " + r.Title)
		} else {
			label = dimStyle.Render(string(rune('1'+i))) + " " + metaStyle.Render(r.Title)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "   ")
}

func (a App) activeView() string {
	switch a.view {
	case viewLogin:
		return a.login.View()
	case viewRegister:
		return a.register.View()
	case viewMonitor:
		return a.monitor.View()
	case viewControl:
		return a.control.View()
	case viewAutomation:
		return a.automation.View()
	case viewHistory:
		return a.history.View()
	case viewSettings:
		return a.settings.View()
	}
	return ""
}

func (a App) helpBar() string {
	var h string
	switch a.view {
	case viewLogin:
		h = a.login.helpKeys()
	case viewRegister:
		h = a.register.helpKeys()
	case viewMonitor:
		h = a.monitor.helpKeys()
	case viewControl:
		h = a.control.helpKeys()
	case viewAutomation:
		h = a.automation.helpKeys()
	case viewHistory:
		h = a.history.helpKeys()
	case viewSettings:
		h = a.settings.helpKeys()
	}
	if a.session.Authenticated() && !a.isEditing() {
		h += "  " + helpEntry("o", "sign out") + "  " + helpEntry("q", "quit")
	}
	return h
}
