package services

import (
	"testing"
	"time"

	"github.com/SkyeLoft/HTMLBattlepass/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemIDs(items []models.ContentItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestResolveEligible_EnabledSeasonsOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewEligibilityService(db)
	now := time.Now()

	seedSeason(t, db, "season1", true, true)
	seedSeason(t, db, "season2", false, false)
	in := seedItem(t, db, "a.png", "season1", 0)
	seedItem(t, db, "b.png", "season2", 0)

	eligible, err := svc.ResolveEligible(now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{in.ID}, itemIDs(eligible))
}

func TestResolveEligible_EventDateWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewEligibilityService(db)
	now := time.Now()
	seedSeason(t, db, "season1", true, true)

	past := now.Add(-48 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	seedEvent(t, db, "halloween", true, past, &tomorrow) // active
	seedEvent(t, db, "christmas", true, tomorrow, nil)   // not started
	seedEvent(t, db, "summer", true, past, &yesterday)   // ended
	seedEvent(t, db, "easter", false, past, &tomorrow)   // disabled
	seedEvent(t, db, "anniversary", true, past, nil)     // open-ended, active

	active := seedItem(t, db, "h.png", "halloween", 0)
	seedItem(t, db, "c.png", "christmas", 0)
	seedItem(t, db, "s.png", "summer", 0)
	seedItem(t, db, "e.png", "easter", 0)
	openEnded := seedItem(t, db, "a.png", "anniversary", 0)

	eligible, err := svc.ResolveEligible(now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{active.ID, openEnded.ID}, itemIDs(eligible))
}

func TestResolveEligible_ExcludesCompanionPools(t *testing.T) {
	db := newTestDB(t)
	svc := NewEligibilityService(db)

	seedSeason(t, db, "season1", true, true)
	rotation := seedItem(t, db, "a.png", "season1", 0)
	seedItem(t, db, "tier1.png", models.CompanionPool("season1"), 1)

	eligible, err := svc.ResolveEligible(time.Now())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{rotation.ID}, itemIDs(eligible))
}

func TestResolveEligible_OrphanedItemsIneligibleButRetained(t *testing.T) {
	db := newTestDB(t)
	svc := NewEligibilityService(db)
	lifecycle := NewLifecycleService(db)
	lifecycle.ProvisionPool = nil

	seedSeason(t, db, "season1", true, true)
	seedSeason(t, db, "season2", false, true)
	orphan := seedItem(t, db, "o.png", "season2", 0)

	require.NoError(t, lifecycle.DeleteSeason("season2"))

	eligible, err := svc.ResolveEligible(time.Now())
	require.NoError(t, err)
	assert.NotContains(t, itemIDs(eligible), orphan.ID)

	// The orphan stays queryable in the catalog.
	var kept models.ContentItem
	require.NoError(t, db.Where("id = ?", orphan.ID).First(&kept).Error)
	assert.Equal(t, "season2", kept.Pool)
}

func TestResolveEligible_EmptyLedger(t *testing.T) {
	db := newTestDB(t)
	svc := NewEligibilityService(db)

	eligible, err := svc.ResolveEligible(time.Now())
	require.NoError(t, err)
	assert.Empty(t, eligible)
}

func TestEnsureCurrentSeason_BootstrapsDefault(t *testing.T) {
	db := newTestDB(t)
	svc := NewEligibilityService(db)

	season, err := svc.EnsureCurrentSeason(time.Now())
	require.NoError(t, err)
	assert.Equal(t, DefaultSeasonName, season.Name)
	assert.True(t, season.IsCurrent)
	assert.True(t, season.IsEnabled)

	// Idempotent: a second call changes nothing.
	again, err := svc.EnsureCurrentSeason(time.Now())
	require.NoError(t, err)
	assert.Equal(t, season.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.Season{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnsureCurrentSeason_PromotesExistingDefault(t *testing.T) {
	db := newTestDB(t)
	svc := NewEligibilityService(db)

	existing := seedSeason(t, db, DefaultSeasonName, false, false)

	season, err := svc.EnsureCurrentSeason(time.Now())
	require.NoError(t, err)
	assert.Equal(t, existing.ID, season.ID)
	assert.True(t, season.IsCurrent)
	assert.True(t, season.IsEnabled)
}

func TestEnsureCurrentSeason_RevivesSoftDeletedDefault(t *testing.T) {
	db := newTestDB(t)
	svc := NewEligibilityService(db)
	lifecycle := newLifecycleService(t, db)

	seedSeason(t, db, DefaultSeasonName, false, true)
	require.NoError(t, lifecycle.DeleteSeason(DefaultSeasonName))

	// The soft-deleted row still holds the unique name; the bootstrap
	// must revive it rather than fail on every resolve.
	season, err := svc.EnsureCurrentSeason(time.Now())
	require.NoError(t, err)
	assert.Equal(t, DefaultSeasonName, season.Name)
	assert.True(t, season.IsCurrent)
	assert.True(t, season.IsEnabled)

	var count int64
	require.NoError(t, db.Model(&models.Season{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "revived season is visible again")

	_, err = svc.ResolveEligible(time.Now())
	require.NoError(t, err)
}

func TestEnsureCurrentSeason_ConcurrentSetCurrent(t *testing.T) {
	db := newTestDB(t)
	svc := NewEligibilityService(db)
	lifecycle := newLifecycleService(t, db)

	seedSeason(t, db, DefaultSeasonName, false, false)
	seedSeason(t, db, "season2", false, true)

	done := make(chan error, 2)
	go func() {
		_, err := svc.EnsureCurrentSeason(time.Now())
		done <- err
	}()
	go func() {
		_, err := lifecycle.SetCurrentSeason("season2")
		done <- err
	}()
	for i := 0; i < 2; i++ {
		require.NoError(t, <-done)
	}

	// Whichever ordering, exactly one season ends up current.
	assert.EqualValues(t, 1, currentSeasonCount(t, db))
}

func TestEnsureCurrentSeason_KeepsExistingCurrent(t *testing.T) {
	db := newTestDB(t)
	svc := NewEligibilityService(db)

	current := seedSeason(t, db, "season7", true, true)

	season, err := svc.EnsureCurrentSeason(time.Now())
	require.NoError(t, err)
	assert.Equal(t, current.ID, season.ID)
}
