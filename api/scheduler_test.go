package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebox/dispense-engine/dispense"
	"github.com/carebox/dispense-engine/dispense/store"
)

func TestDailyResetScheduler_RunNow_ClearsAllMarkers(t *testing.T) {
	// GIVEN: Two members, one with the taken-today marker set
	// WHEN: Triggering a reset run directly
	// THEN: Both markers are clear afterwards

	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.SaveMember(ctx, dispense.Member{
		ID: "mem-a", GroupID: "grp-1", Name: "A", Role: dispense.RoleParent, TookToday: 1,
	}))
	require.NoError(t, mem.SaveMember(ctx, dispense.Member{
		ID: "mem-b", GroupID: "grp-1", Name: "B", Role: dispense.RoleChild,
	}))

	s := NewDailyResetScheduler(mem, nil)
	s.RunNow()

	a, err := mem.GetMember(ctx, "mem-a")
	require.NoError(t, err)
	assert.Equal(t, 0, a.TookToday)

	// A cleared marker is markable again.
	marked, err := mem.MarkTookToday(ctx, "mem-a")
	require.NoError(t, err)
	assert.True(t, marked)
}

func TestDailyResetScheduler_UntilNextFire(t *testing.T) {
	s := NewDailyResetScheduler(store.NewMemory(), nil)
	s.ResetHour = 3

	// Before the reset hour: fire later today.
	now := time.Date(2026, time.August, 31, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 2*time.Hour, s.untilNextFire(now))

	// At or after the reset hour: fire tomorrow.
	now = time.Date(2026, time.August, 31, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, 24*time.Hour, s.untilNextFire(now))

	now = time.Date(2026, time.August, 31, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 3*time.Hour+30*time.Minute, s.untilNextFire(now))
}
