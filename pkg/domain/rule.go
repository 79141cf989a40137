package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rule is an automation rule: when a device channel crosses a threshold,
// trigger an action. Rules are created locally and identified by UUID.
type Rule struct {
	ID         uuid.UUID `json:"id"`
	MACAddress string    `json:"mac_address"`
	MACKey     string    `json:"mac_key"`
	Op         string    `json:"op"` // ">", "<", "=="
	Threshold  string    `json:"threshold"`
	Action     string    `json:"action"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

// Valid comparison operators for rules.
var RuleOps = []string{">", "<", "=="}

// ValidRuleOp returns true if op is a known comparison operator.
func ValidRuleOp(op string) bool {
	for _, o := range RuleOps {
		if o == op {
			return true
		}
	}
	return false
}
