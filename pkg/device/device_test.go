package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamilyChannels(t *testing.T) {
	assert.Equal(t, 4, AD4D.Channels())
	assert.Equal(t, 2, P10T.Channels())
	assert.Equal(t, "REP", AD4D.ReplyKeyword())
	assert.Equal(t, "REPORT", P10T.ReplyKeyword())
}

func TestParseFamily(t *testing.T) {
	f, err := ParseFamily("ad4d")
	require.NoError(t, err)
	assert.Equal(t, AD4D, f)

	f, err = ParseFamily("p10t")
	require.NoError(t, err)
	assert.Equal(t, P10T, f)

	_, err = ParseFamily("ulxd")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	info, err := Lookup(AD4D, "frequency")
	require.NoError(t, err)
	assert.Equal(t, "FREQUENCY", info.Name)
	assert.Equal(t, ChannelKey, info.Class)
	assert.Equal(t, ReadWrite, info.Permission)

	_, err = Lookup(AD4D, "BOGUS_KEY")
	assert.ErrorIs(t, err, ErrUnknownKey)

	// AUDIO_IN_LVL exists only on P10T.
	_, err = Lookup(AD4D, "AUDIO_IN_LVL")
	assert.ErrorIs(t, err, ErrUnknownKey)
	_, err = Lookup(P10T, "AUDIO_IN_LVL")
	assert.NoError(t, err)
}

func TestNewAddress(t *testing.T) {
	tests := []struct {
		name    string
		family  Family
		scope   Scope
		key     string
		wantErr error
	}{
		{"device key no scope", AD4D, DeviceScope, "MODEL", nil},
		{"channel key with scope", AD4D, ChannelScope(2), "FREQUENCY", nil},
		{"channel key max channel", AD4D, ChannelScope(4), "AUDIO_GAIN", nil},
		{"p10t channel key", P10T, ChannelScope(2), "RF_MUTE", nil},
		{"unknown key", AD4D, DeviceScope, "NOPE", ErrUnknownKey},
		{"channel key missing scope", AD4D, DeviceScope, "FREQUENCY", ErrInvalidScope},
		{"device key with scope", AD4D, ChannelScope(1), "MODEL", ErrInvalidScope},
		{"channel out of range", AD4D, ChannelScope(5), "FREQUENCY", ErrInvalidScope},
		{"p10t channel out of range", P10T, ChannelScope(3), "FREQUENCY", ErrInvalidScope},
		{"zero channel", AD4D, ChannelScope(0), "FREQUENCY", ErrInvalidScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := NewAddress(tt.family, tt.scope, tt.key)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.family, addr.Family)
			assert.Equal(t, tt.scope, addr.Scope)
		})
	}
}

func TestNewAddressAllChannelKeysRoundTrip(t *testing.T) {
	// Every channel key of every family must validate for every in-range
	// index and fail for out-of-range ones.
	for _, f := range []Family{AD4D, P10T} {
		for _, info := range Keys(f) {
			if info.Class != ChannelKey {
				continue
			}
			for ch := 1; ch <= f.Channels(); ch++ {
				_, err := NewAddress(f, ChannelScope(ch), info.Name)
				assert.NoError(t, err, "%s %s ch%d", f, info.Name, ch)
			}
			_, err := NewAddress(f, ChannelScope(f.Channels()+1), info.Name)
			assert.ErrorIs(t, err, ErrInvalidScope, "%s %s", f, info.Name)
		}
	}
}

func TestCheckWritable(t *testing.T) {
	addr, err := NewAddress(AD4D, ChannelScope(1), "AUDIO_LEVEL_PEAK")
	require.NoError(t, err)
	assert.True(t, errors.Is(addr.CheckWritable(), ErrNotWritable))

	addr, err = NewAddress(AD4D, ChannelScope(1), "AUDIO_GAIN")
	require.NoError(t, err)
	assert.NoError(t, addr.CheckWritable())
}

func TestAddressString(t *testing.T) {
	addr, _ := NewAddress(AD4D, ChannelScope(2), "FREQUENCY")
	assert.Equal(t, "2 FREQUENCY", addr.String())

	addr, _ = NewAddress(AD4D, DeviceScope, "MODEL")
	assert.Equal(t, "MODEL", addr.String())
}

func TestScopeString(t *testing.T) {
	assert.Equal(t, "device", DeviceScope.String())
	assert.Equal(t, "channel 3", ChannelScope(3).String())
}
