package procs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVerifier(t *testing.T, lister *fakeLister, sig Signaller) *Verifier {
	t.Helper()
	pred, err := NewPredicate()
	require.NoError(t, err)
	return NewVerifier(NewInventory(lister, pred), sig, nil, WithVerifyPause(func(time.Duration) {}))
}

func TestVerifierCleanHost(t *testing.T) {
	lister := newFakeLister(Record{PID: 1, Name: "systemd"})
	sig := newFakeSignaller(lister)
	vf := testVerifier(t, lister, sig)

	assert.Equal(t, 0, vf.Verify())
	assert.Empty(t, sig.killed, "no kill pass on a clean host")
}

func TestVerifierFinalKillPassReapsSurvivors(t *testing.T) {
	lister := newFakeLister(chromeRecord(50, 1), chromeRecord(51, 50))
	sig := newFakeSignaller(lister)
	vf := testVerifier(t, lister, sig)

	assert.Equal(t, 0, vf.Verify())
	assert.ElementsMatch(t, []int{50, 51}, sig.killed)
}

func TestVerifierReportsUnkillableSurvivors(t *testing.T) {
	lister := newFakeLister(chromeRecord(60, 1))
	sig := &stubbornSignaller{}
	vf := testVerifier(t, lister, sig)

	assert.Equal(t, 1, vf.Verify())
}

// stubbornSignaller swallows kills without effect, like a process owned by
// another user.
type stubbornSignaller struct{}

func (stubbornSignaller) Terminate(int) error { return nil }
func (stubbornSignaller) Kill(int) error      { return nil }
func (stubbornSignaller) Alive(int) bool      { return true }
