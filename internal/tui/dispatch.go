package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// navigateMsg asks the root model to switch screens. The guard is applied
// when the message is handled, not when it is sent.
type navigateMsg struct {
	target view
}

// notifyMsg carries a user-visible notification for the status line.
type notifyMsg struct {
	text string
}

// Dispatcher bridges the session's Navigator and Notifier callbacks into the
// running program. The session fires them from command goroutines, so
// delivery goes through Program.Send.
type Dispatcher struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewDispatcher creates a dispatcher. Messages posted before Attach are
// dropped; nothing navigates until the program is running.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Attach connects the dispatcher to a running program.
func (d *Dispatcher) Attach(p *tea.Program) {
	d.mu.Lock()
	d.send = p.Send
	d.mu.Unlock()
}

func (d *Dispatcher) post(msg tea.Msg) {
	d.mu.Lock()
	send := d.send
	d.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// ToLogin implements session.Navigator.
func (d *Dispatcher) ToLogin() {
	d.post(navigateMsg{target: viewLogin})
}

// ToDashboard implements session.Navigator.
func (d *Dispatcher) ToDashboard() {
	d.post(navigateMsg{target: viewMonitor})
}

// Notify implements session.Notifier.
func (d *Dispatcher) Notify(text string) {
	d.post(notifyMsg{text: text})
}
