package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/lichen129/iotdeck/internal/rules"
	"github.com/lichen129/iotdeck/pkg/domain"
)

type ruleField int

const (
	ruleFieldMAC ruleField = iota
	ruleFieldKey
	ruleFieldOp
	ruleFieldThreshold
	ruleFieldAction
	numRuleFields
)

type rulesLoadedMsg struct {
	rules []domain.Rule
	err   error
}

type rulesSavedMsg struct {
	err error
}

// automationModel manages locally persisted automation rules.
type automationModel struct {
	store     *rules.Store
	rules     []domain.Rule
	cursor    int
	adding    bool
	fields    [numRuleFields]string
	opIdx     int
	focus     ruleField
	statusMsg string
}

func newAutomationModel(store *rules.Store) automationModel {
	return automationModel{store: store}
}

func (m automationModel) Init() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		loaded, err := store.Load()
		return rulesLoadedMsg{rules: loaded, err: err}
	}
}

func (m automationModel) persist() tea.Cmd {
	store := m.store
	snapshot := make([]domain.Rule, len(m.rules))
	copy(snapshot, m.rules)
	return func() tea.Msg {
		return rulesSavedMsg{err: store.Save(snapshot)}
	}
}

func (m automationModel) Update(msg tea.Msg) (automationModel, tea.Cmd) {
	switch msg := msg.(type) {
	case rulesLoadedMsg:
		if msg.err != nil {
			m.statusMsg = "could not load rules"
			return m, nil
		}
		m.rules = msg.rules
		if m.cursor >= len(m.rules) {
			m.cursor = 0
		}
		return m, nil

	case rulesSavedMsg:
		if msg.err != nil {
			m.statusMsg = "could not save rules"
		}
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateAddKeys(msg)
		}

		m.statusMsg = ""
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.rules)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "n":
			m.adding = true
			m.fields = [numRuleFields]string{}
			m.opIdx = 0
			m.focus = ruleFieldMAC
		case "e":
			if m.cursor < len(m.rules) {
				m.rules[m.cursor].Enabled = !m.rules[m.cursor].Enabled
				return m, m.persist()
			}
		case "d":
			if m.cursor < len(m.rules) {
				m.rules = append(m.rules[:m.cursor], m.rules[m.cursor+1:]...)
				if m.cursor >= len(m.rules) && m.cursor > 0 {
					m.cursor--
				}
				return m, m.persist()
			}
		}
	}
	return m, nil
}

func (m automationModel) updateAddKeys(msg tea.KeyMsg) (automationModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
	case "tab", "down":
		m.focus = (m.focus + 1) % numRuleFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numRuleFields) % numRuleFields
	case "enter":
		return m.submitRule()
	case "backspace":
		if m.focus != ruleFieldOp {
			f := &m.fields[m.focus]
			*f = editRune(*f, "backspace")
		}
	default:
		key := msg.String()
		if m.focus == ruleFieldOp {
			// op is a cycle field, h/l to choose
			if key == "h" {
				m.opIdx = (m.opIdx - 1 + len(domain.RuleOps)) % len(domain.RuleOps)
			} else if key == "l" {
				m.opIdx = (m.opIdx + 1) % len(domain.RuleOps)
			}
			return m, nil
		}
		f := &m.fields[m.focus]
		*f = editRune(*f, key)
	}
	return m, nil
}

func (m automationModel) submitRule() (automationModel, tea.Cmd) {
	mac := strings.TrimSpace(m.fields[ruleFieldMAC])
	key := strings.TrimSpace(m.fields[ruleFieldKey])
	threshold := strings.TrimSpace(m.fields[ruleFieldThreshold])
	action := strings.TrimSpace(m.fields[ruleFieldAction])
	if mac == "" || key == "" || threshold == "" || action == "" {
		m.statusMsg = "all fields are required"
		return m, nil
	}

	m.rules = append(m.rules, domain.Rule{
		ID:         uuid.New(),
		MACAddress: mac,
		MACKey:     key,
		Op:         domain.RuleOps[m.opIdx],
		Threshold:  threshold,
		Action:     action,
		Enabled:    true,
		CreatedAt:  time.Now().UTC(),
	})
	m.adding = false
	m.statusMsg = "rule added"
	return m, m.persist()
}

func (m automationModel) View() string {
	var b strings.Builder

	header := sectionHeaderStyle.Render("  AUTOMATION")
	if m.statusMsg != "" {
		header += "  " + accentStyle.Render(m.statusMsg)
	}
	b.WriteString("\n" + header + "\n\n")

	if m.adding {
		labels := [numRuleFields]string{"device mac", "channel   ", "compare   ", "threshold ", "action    "}
		for i := ruleField(0); i < numRuleFields; i++ {
			if i == ruleFieldOp {
				op := domain.RuleOps[m.opIdx]
				label := metaStyle.Render(labels[i])
				val := normalStyle.Render(op)
				if m.focus == i {
					label = inputPromptStyle.Render(labels[i])
					val = accentStyle.Render("< " + op + " >")
				}
				b.WriteString("  " + label + " " + val + "\n")
				continue
			}
			b.WriteString(renderField(labels[i], m.fields[i], m.focus == i, false, 0) + "\n")
		}
		b.WriteString("\n")
		return b.String()
	}

	if len(m.rules) == 0 {
		b.WriteString("  " + dimStyle.Render("no rules yet, press n to add one") + "\n")
		return b.String()
	}

	for i, r := range m.rules {
		state := okStyle.Render("on ")
		if !r.Enabled {
			state = metaStyle.Render("off")
		}
		line := fmt.Sprintf("  %s  %s %s %s %s %s %s",
			state,
			normalStyle.Render(shortMAC(r.MACAddress)),
			selectedStyle.Render(r.MACKey),
			warnStyle.Render(r.Op),
			selectedStyle.Render(r.Threshold),
			metaStyle.Render("->"),
			accentStyle.Render(r.Action))
		if i == m.cursor {
			line = selectedRowBg.Render(line)
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

func (m automationModel) helpKeys() string {
	if m.adding {
		return helpEntry("tab", "next") + "  " + helpEntry("h/l", "compare") + "  " + helpEntry("enter", "save") + "  " + helpEntry("esc", "cancel")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("n", "new") + "  " + helpEntry("e", "toggle") + "  " + helpEntry("d", "delete")
}
