package tui

type view int

const (
	viewLogin view = iota
	viewRegister
	viewMonitor
	viewControl
	viewAutomation
	viewHistory
	viewSettings
)

// Route describes one navigable screen. RequiresAuth marks screens behind the
// navigation guard.
type Route struct {
	View         view
	Name         string
	Title        string
	RequiresAuth bool
}

// routeTable is the full set of navigable screens. Monitor is the default
// screen after login.
var routeTable = []Route{
	{View: viewLogin, Name: "login", Title: "Login"},
	{View: viewRegister, Name: "register", Title: "Register"},
	{View: viewMonitor, Name: "monitor", Title: "Monitor", RequiresAuth: true},
	{View: viewControl, Name: "control", Title: "Control", RequiresAuth: true},
	{View: viewAutomation, Name: "automation", Title: "Automation", RequiresAuth: true},
	{View: viewHistory, Name: "history", Title: "History", RequiresAuth: true},
	{View: viewSettings, Name: "settings", Title: "Settings", RequiresAuth: true},
}

// routeFor looks up the route descriptor for a view.
func routeFor(v view) Route {
	for _, r := range routeTable {
		if r.View == v {
			return r
		}
	}
	return routeTable[0]
}

// resolveRoute is the navigation guard: a target that requires authentication
// resolves to the login route when the caller is not authenticated, and to
// itself otherwise. Every view switch goes through this, including the first.
func resolveRoute(target Route, authed bool) Route {
	if target.RequiresAuth && !authed {
		return routeFor(viewLogin)
	}
	return target
}
