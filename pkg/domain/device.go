package domain

import "time"

// Device is one registered IoT endpoint, identified by its MAC address.
type Device struct {
	MACAddress string      `json:"mac_address"`
	MACAlias   string      `json:"mac_alias,omitempty"`
	Online     bool        `json:"online"`
	LastSeen   time.Time   `json:"last_seen,omitempty"`
	Keys       []DeviceKey `json:"keys"`
}

// DeviceKey is a single data channel on a device: a raw key plus the
// user-assigned alias and declared type used for display.
type DeviceKey struct {
	MACKey   string `json:"mac_key"`
	KeyAlias string `json:"key_alias,omitempty"`
	Type     string `json:"device_type"`
	Value    string `json:"value,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// DisplayName returns the alias of a device, falling back to the MAC address.
func (d Device) DisplayName() string {
	if d.MACAlias != "" {
		return d.MACAlias
	}
	return d.MACAddress
}

// DisplayName returns the alias of a channel, falling back to the raw key.
func (k DeviceKey) DisplayName() string {
	if k.KeyAlias != "" {
		return k.KeyAlias
	}
	return k.MACKey
}

// Known channel types.
var DeviceTypes = []string{
	"sensor",
	"switch",
	"dimmer",
	"meter",
	"text",
}

// Reading is one historical data point for a device channel.
type Reading struct {
	MACAddress string    `json:"mac_address"`
	MACKey     string    `json:"mac_key"`
	Value      string    `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}
