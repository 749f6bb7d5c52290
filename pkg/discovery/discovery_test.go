package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shuretools/shurelink/pkg/device"
)

func TestFamilyFromInstance(t *testing.T) {
	tests := []struct {
		instance string
		family   device.Family
		known    bool
	}{
		{"AD4D-1A2B3C", device.AD4D, true},
		{"ad4d-rack-7", device.AD4D, true},
		{"P10T-Stage", device.P10T, true},
		{"ULXD4-0042", 0, false},
		{"printer", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.instance, func(t *testing.T) {
			f, known := familyFromInstance(tt.instance)
			assert.Equal(t, tt.known, known)
			if tt.known {
				assert.Equal(t, tt.family, f)
			}
		})
	}
}

func TestMergeAddresses(t *testing.T) {
	merged := mergeAddresses(
		[]string{"192.168.1.10", "fe80::1"},
		[]string{"192.168.1.10", "10.0.0.10"},
	)
	assert.Equal(t, []string{"192.168.1.10", "fe80::1", "10.0.0.10"}, merged)
}
