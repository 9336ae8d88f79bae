package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
)

func TestViewState(t *testing.T) {
	assert.True(t, domain.LiveView().IsLive())
	assert.True(t, domain.ViewState{}.IsLive())

	v := domain.HistoricalView(domain.MustParseDate("2026-02-24"))
	assert.False(t, v.IsLive())
	assert.Equal(t, "2026-02-24", v.Date.String())
}

func TestOverlay(t *testing.T) {
	d := domain.MustParseDate("2026-02-24")
	base := domain.NewDailyRecord(d)
	base.Fasting = true
	base.Prayers["fajr"] = true

	o := domain.NewOverlay(base)
	base.Prayers["fajr"] = false
	assert.True(t, o.Baseline.Prayers["fajr"], "overlay keeps its own copy")

	o.Stage(upd("taraweeh", true))
	o.Stage(upd("fasting", false))
	o.Stage(upd("taraweeh", false))
	assert.Len(t, o.Drafts, 2, "later draft for the same key replaces the earlier one")

	ledgerRec := domain.NewDailyRecord(d)
	ledgerRec.Fasting = true
	ledgerRec.TaraweehPrayed = true
	ledgerRec.Prayers["isha"] = true

	got, err := o.Over(ledgerRec)
	require.NoError(t, err)
	assert.False(t, got.Fasting, "draft wins over ledger")
	assert.False(t, got.TaraweehPrayed)
	assert.True(t, got.Prayers["isha"], "ledger wins over defaults")
	assert.True(t, ledgerRec.Fasting, "input record is not modified")

	o.Discard("fasting")
	assert.Len(t, o.Drafts, 1)
	got, err = o.Over(ledgerRec)
	require.NoError(t, err)
	assert.True(t, got.Fasting)
}

func TestOverlayBoundToDate(t *testing.T) {
	d := domain.MustParseDate("2026-02-25")
	o := domain.NewOverlay(domain.NewDailyRecord(d))
	o.Stage(upd("fasting", true))

	assert.True(t, o.For(d))
	assert.False(t, o.For(d.AddDays(1)))

	next := domain.NewDailyRecord(d.AddDays(1))
	got, err := o.Over(next)
	require.Error(t, err)
	assert.False(t, got.Fasting, "drafts stay on their own date")

	cp := o.Clone()
	cp.Stage(upd("taraweeh", true))
	assert.Len(t, o.Drafts, 1, "clone does not share drafts")
	assert.Equal(t, d, cp.Date)
}

func TestOverlayRejectsInvalidDraft(t *testing.T) {
	d := domain.MustParseDate("2026-02-25")
	o := domain.NewOverlay(domain.NewDailyRecord(d))
	o.Stage(domain.FieldUpdate{Key: "fasting", Value: "maybe"})

	rec := domain.NewDailyRecord(d)
	got, err := o.Over(rec)
	require.ErrorIs(t, err, domain.ErrInvalidFieldValue)
	assert.Equal(t, rec, got, "record is returned unchanged")
}
