package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/services"
)

func TestTrackerService_Session(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "2026-02-25")
	svc := services.NewTrackerService(f.deps, time.Minute)

	_, _, err := svc.Session(ctx, "", "s1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	r1, sid, err := svc.Session(ctx, "u1", "")
	require.NoError(t, err)
	_, err = uuid.Parse(sid)
	assert.NoError(t, err, "a missing session id is generated")

	again, sameSID, err := svc.Session(ctx, "u1", sid)
	require.NoError(t, err)
	assert.Same(t, r1, again)
	assert.Equal(t, sid, sameSID)

	other, _, err := svc.Session(ctx, "u1", "tablet")
	require.NoError(t, err)
	assert.NotSame(t, r1, other)
	assert.Equal(t, 2, svc.SessionCount())

	require.NoError(t, r1.ViewDate(domain.MustParseDate("2026-02-24")))
	assert.True(t, other.View().IsLive(), "view state is per session")

	assert.Equal(t, "2026-02-25", svc.Today().String())
	assert.Equal(t, "early", svc.Catalog().DefaultID())
}

func TestTrackerService_Sweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "2026-02-25")
	svc := services.NewTrackerService(f.deps, time.Minute)

	idle, _, err := svc.Session(ctx, "u1", "idle")
	require.NoError(t, err)
	stuck, _, err := svc.Session(ctx, "u2", "stuck")
	require.NoError(t, err)

	_, err = idle.RecordActivity(ctx, "fasting", true)
	require.NoError(t, err)

	f.repo.SetFail(true)
	_, err = stuck.RecordActivity(ctx, "fasting", true)
	require.NoError(t, err)

	assert.Equal(t, 0, svc.Sweep(ctx, time.Now()), "nothing is idle yet")

	removed := svc.Sweep(ctx, time.Now().Add(2*time.Minute))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, svc.SessionCount(), "sessions with unsynced writes are kept")

	assert.Equal(t, 1, svc.FlushAll(ctx))

	f.repo.SetFail(false)
	assert.Equal(t, 0, svc.FlushAll(ctx))
	assert.True(t, f.stored(t, "u2").Ledger.Get(domain.MustParseDate("2026-02-25")).Fasting)

	require.NoError(t, svc.Close(ctx, "u2", "stuck"))
	assert.Equal(t, 0, svc.SessionCount())
	require.NoError(t, svc.Close(ctx, "u2", "stuck"), "closing twice is harmless")
}

func TestTrackerService_SessionsShareWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "2026-02-23")
	svc := services.NewTrackerService(f.deps, time.Minute)
	first := domain.MustParseDate("2026-02-23")

	phone, _, err := svc.Session(ctx, "u1", "phone")
	require.NoError(t, err)
	tablet, _, err := svc.Session(ctx, "u1", "tablet")
	require.NoError(t, err)

	_, err = phone.RecordActivity(ctx, "fasting", true)
	require.NoError(t, err)

	f.clock.Set("2026-02-24")
	_, err = tablet.RecordActivity(ctx, "fasting", true)
	require.NoError(t, err)

	assert.Equal(t, 2, tablet.Streaks()[domain.ActivityFasting].Current, "the other session's day counts")
	assert.Equal(t, 2, f.stored(t, "u1").Streaks[domain.ActivityFasting].Current)

	require.NoError(t, tablet.ViewDate(first))
	assert.True(t, tablet.EffectiveRecord().Record.Fasting)
	tablet.ReturnToLive()

	rolled, err := phone.CheckDayRollover(ctx)
	require.NoError(t, err)
	assert.True(t, rolled)
	assert.Equal(t, 2, f.stored(t, "u1").Streaks[domain.ActivityFasting].Current, "rollover keeps the shared streak")

	rolled, err = tablet.CheckDayRollover(ctx)
	require.NoError(t, err)
	assert.True(t, rolled, "each session sees its own day change")
	assert.Equal(t, "2026-02-24", f.stored(t, "u1").LastActiveDate.String())

	_, err = phone.RecordActivity(ctx, "taraweeh", true)
	require.NoError(t, err)
	again, _, err := svc.Session(ctx, "u1", "tablet")
	require.NoError(t, err)
	assert.Same(t, tablet, again)
	assert.True(t, again.EffectiveRecord().Record.TaraweehPrayed, "a reused session is refreshed")
	assert.True(t, again.EffectiveRecord().Record.Fasting)
}
