package client_test

import (
	"testing"

	"github.com/UnknownOlympus/athena/internal/client"
	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	t.Parallel()

	var tracker client.Tracker
	assert.Equal(t, client.Status{}, tracker.Snapshot())

	tracker.Begin()
	assert.Equal(t, client.Status{Loading: true}, tracker.Snapshot())

	tracker.Fail("failed to load employees")
	tracker.End()
	assert.Equal(t, client.Status{Err: "failed to load employees"}, tracker.Snapshot())

	// a later operation clears the error of the previous one
	tracker.Begin()
	assert.Equal(t, client.Status{Loading: true}, tracker.Snapshot())
	tracker.End()
	assert.Equal(t, client.Status{}, tracker.Snapshot())
}

func TestTracker_SharedBetweenOverlappingCalls(t *testing.T) {
	t.Parallel()

	var tracker client.Tracker

	tracker.Begin() // call A
	tracker.Begin() // call B
	tracker.Fail("A failed")
	tracker.End() // A finishes while B is still in flight

	assert.Equal(t, client.Status{Err: "A failed"}, tracker.Snapshot())
}
