package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (testLogger) Infof(string, ...interface{})  {}
func (testLogger) Errorf(string, ...interface{}) {}

func TestNewRejectsNonPositivePeriod(t *testing.T) {
	_, err := New(0, func() {}, testLogger{})
	assert.Error(t, err)

	_, err = New(-time.Minute, func() {}, testLogger{})
	assert.Error(t, err)
}

func TestSchedulerFiresJob(t *testing.T) {
	fired := make(chan struct{}, 1)
	s, err := New(50*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, testLogger{})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not fire within the deadline")
	}
}
