//go:build windows

package procs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNetstatDualStackOwners(t *testing.T) {
	out := "  TCP    0.0.0.0:9222        0.0.0.0:0    LISTENING    4321\r\n" +
		"  TCP    [::]:9222           [::]:0       LISTENING    8765\r\n" +
		"  TCP    127.0.0.1:9515      0.0.0.0:0    LISTENING    4321\r\n" +
		"  TCP    0.0.0.0:135         0.0.0.0:0    LISTENING    900\r\n" +
		"  TCP    10.0.0.5:49712      10.0.0.9:443 ESTABLISHED  2222\r\n" +
		"  UDP    0.0.0.0:5353        *:*                       1000\r\n"

	listeners := parseNetstat(out)

	// Distinct per-stack owners of the same port are both kept.
	assert.ElementsMatch(t, []int{4321, 8765}, listeners[9222])
	assert.Equal(t, []int{4321}, listeners[9515])
	assert.Equal(t, []int{900}, listeners[135])

	// Non-listening and non-TCP lines are ignored.
	assert.NotContains(t, listeners, 49712)
	assert.NotContains(t, listeners, 5353)
}

func TestParseNetstatDeduplicatesOwner(t *testing.T) {
	out := "  TCP    0.0.0.0:9222    0.0.0.0:0    LISTENING    4321\r\n" +
		"  TCP    [::]:9222       [::]:0       LISTENING    4321\r\n"

	assert.Equal(t, []int{4321}, parseNetstat(out)[9222])
}
