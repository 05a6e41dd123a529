package procs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidatePorts(t *testing.T) {
	tests := []struct {
		name      string
		listening []int
		want      []int
	}{
		{
			name:      "well-known automation ports admitted",
			listening: []int{9222, 9515},
			want:      []int{9222, 9515},
		},
		{
			name:      "range boundaries inclusive",
			listening: []int{9000, 10000},
			want:      []int{9000, 10000},
		},
		{
			name:      "ports outside the debug range rejected",
			listening: []int{80, 443, 8999, 10001, 35353},
			want:      nil,
		},
		{
			name:      "mixed listening set filtered",
			listening: []int{22, 9222, 8080, 9876, 54321},
			want:      []int{9222, 9876},
		},
		{
			name:      "empty listening set",
			listening: nil,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := candidatePorts(tt.listening)
			assert.Len(t, got, len(tt.want))
			for _, p := range tt.want {
				assert.Contains(t, got, p)
			}
		})
	}
}

func TestPortDelta(t *testing.T) {
	before := PortSet{9222: {}, 9515: {}}
	after := PortSet{9222: {}, 9515: {}, 9333: {}}

	delta := PortDelta(before, after)
	assert.Equal(t, PortSet{9333: {}}, delta)

	// A set against itself is empty, and ports that went away do not
	// reappear as negatives.
	assert.Empty(t, PortDelta(after, after))
	assert.Empty(t, PortDelta(after, before))
}
