package device

import (
	"errors"
	"fmt"
	"strings"
)

// Permission describes whether a key accepts writes.
type Permission int

const (
	// ReadOnly keys reject SET before any network I/O.
	ReadOnly Permission = iota

	// ReadWrite keys accept both GET and SET.
	ReadWrite
)

// String returns the permission as shown by --list.
func (p Permission) String() string {
	if p == ReadWrite {
		return "read/write"
	}
	return "read-only"
}

// Class describes the addressing level of a key.
type Class int

const (
	// DeviceKey applies to the whole unit and takes no channel index.
	DeviceKey Class = iota

	// ChannelKey requires a channel index valid for the family.
	ChannelKey
)

// Registry errors.
var (
	ErrUnknownKey   = errors.New("unknown key")
	ErrInvalidScope = errors.New("invalid scope for key")
	ErrNotWritable  = errors.New("key is read-only")
)

// KeyInfo describes one addressable key of a family.
type KeyInfo struct {
	Name       string
	Class      Class
	Permission Permission
}

// Registry tables. Declaration order is the order used by --list and by the
// bulk query, so it is kept stable.
var ad4dKeys = []KeyInfo{
	{"DEVICE_ID", DeviceKey, ReadWrite},
	{"DEVICE_NAME", DeviceKey, ReadOnly},
	{"MODEL", DeviceKey, ReadOnly},
	{"SERIAL_NUMBER", DeviceKey, ReadOnly},
	{"FW_VER", DeviceKey, ReadOnly},
	{"RF_BAND", DeviceKey, ReadOnly},
	{"TRANSMISSION_MODE", DeviceKey, ReadOnly},
	{"QUADVERSITY_MODE", DeviceKey, ReadOnly},
	{"ENCRYPTION_MODE", DeviceKey, ReadOnly},
	{"FIRMWARE_UPDATE_PROGRESS", DeviceKey, ReadOnly},
	{"EVENT_LOG_STATUS", DeviceKey, ReadOnly},
	{"NETWORK_IP_ADDR", DeviceKey, ReadOnly},
	{"NETWORK_SUBNET_MASK", DeviceKey, ReadOnly},
	{"NETWORK_MAC_ADDR", DeviceKey, ReadOnly},
	{"NETWORK_GATEWAY", DeviceKey, ReadOnly},
	{"DEVICE_NOTES", DeviceKey, ReadOnly},
	{"LOCATION", DeviceKey, ReadOnly},

	{"CHAN_NAME", ChannelKey, ReadWrite},
	{"AUDIO_GAIN", ChannelKey, ReadWrite},
	{"AUDIO_MUTE", ChannelKey, ReadWrite},
	{"FREQUENCY", ChannelKey, ReadWrite},
	{"GROUP_CHANNEL", ChannelKey, ReadWrite},
	{"METER_RATE", ChannelKey, ReadWrite},
	{"FLASH", ChannelKey, ReadWrite},
	{"FD_MODE", ChannelKey, ReadOnly},
	{"ENCRYPTION_STATUS", ChannelKey, ReadOnly},
	{"INTERFERENCE_STATUS", ChannelKey, ReadOnly},
	{"UNREGISTERED_TX_STATUS", ChannelKey, ReadOnly},
	{"AUDIO_LEVEL_PEAK", ChannelKey, ReadOnly},
	{"AUDIO_LEVEL_RMS", ChannelKey, ReadOnly},
	{"CHAN_QUALITY", ChannelKey, ReadOnly},
	{"RSSI", ChannelKey, ReadOnly},
	{"ANTENNA_STATUS", ChannelKey, ReadOnly},
	{"TX_BATT_MINS", ChannelKey, ReadOnly},
	{"TX_BATT_CHARGE_PERCENT", ChannelKey, ReadOnly},
	{"TX_BATT_TYPE", ChannelKey, ReadOnly},
	{"TX_MODEL", ChannelKey, ReadOnly},
	{"TX_DEVICE_ID", ChannelKey, ReadOnly},
	{"TX_POWER_LEVEL", ChannelKey, ReadOnly},
	{"TX_LOCK", ChannelKey, ReadOnly},
	{"TX_TALK_SWITCH", ChannelKey, ReadOnly},
}

var p10tKeys = []KeyInfo{
	{"DEVICE_NAME", DeviceKey, ReadOnly},

	{"CHAN_NAME", ChannelKey, ReadWrite},
	{"AUDIO_IN_LVL", ChannelKey, ReadWrite},
	{"GROUP_CHAN", ChannelKey, ReadWrite},
	{"FREQUENCY", ChannelKey, ReadWrite},
	{"RF_TX_LVL", ChannelKey, ReadWrite},
	{"RF_MUTE", ChannelKey, ReadWrite},
	{"AUDIO_TX_MODE", ChannelKey, ReadWrite},
	{"AUDIO_IN_LINE_LVL", ChannelKey, ReadWrite},
	{"METER_RATE", ChannelKey, ReadWrite},
}

// Keys returns the registry of a family in declaration order.
func Keys(f Family) []KeyInfo {
	switch f {
	case AD4D:
		return ad4dKeys
	case P10T:
		return p10tKeys
	default:
		return nil
	}
}

// Lookup finds a key in the family registry. Key names are case-insensitive
// on input and canonicalized to upper case.
func Lookup(f Family, key string) (KeyInfo, error) {
	name := strings.ToUpper(strings.TrimSpace(key))
	for _, info := range Keys(f) {
		if info.Name == name {
			return info, nil
		}
	}
	return KeyInfo{}, fmt.Errorf("%w: %s", ErrUnknownKey, name)
}
