package device

import "fmt"

// Address is a fully validated (family, scope, key) triple. It is the only
// unit the wire codec will encode, so holding an Address proves validation
// already happened.
type Address struct {
	Family Family
	Scope  Scope
	Key    KeyInfo
}

// NewAddress validates a (scope, key) pair against the family registry.
// It returns ErrUnknownKey for unregistered keys and ErrInvalidScope when a
// channel key is missing its index, a device key carries one, or the index
// is out of range for the family.
func NewAddress(f Family, scope Scope, key string) (Address, error) {
	info, err := Lookup(f, key)
	if err != nil {
		return Address{}, err
	}

	switch info.Class {
	case DeviceKey:
		if scope.IsChannel() {
			return Address{}, fmt.Errorf("%w: %s is device-level, no channel allowed",
				ErrInvalidScope, info.Name)
		}
	case ChannelKey:
		if !scope.IsChannel() {
			return Address{}, fmt.Errorf("%w: %s requires --channel 1-%d",
				ErrInvalidScope, info.Name, f.Channels())
		}
		if !f.ValidChannel(scope.Channel()) {
			return Address{}, fmt.Errorf("%w: channel %d out of range 1-%d",
				ErrInvalidScope, scope.Channel(), f.Channels())
		}
	}

	return Address{Family: f, Scope: scope, Key: info}, nil
}

// CheckWritable returns ErrNotWritable for read-only keys. Called before a
// SET is encoded, never after I/O has started.
func (a Address) CheckWritable() error {
	if a.Key.Permission != ReadWrite {
		return fmt.Errorf("%w: %s", ErrNotWritable, a.Key.Name)
	}
	return nil
}

// String returns the address in wire order, e.g. "2 FREQUENCY" or "MODEL".
func (a Address) String() string {
	if a.Scope.IsChannel() {
		return fmt.Sprintf("%d %s", a.Scope.Channel(), a.Key.Name)
	}
	return a.Key.Name
}
