package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typeledger/internal/model"
)

func TestLocalPBRespectsFunboxes(t *testing.T) {
	h := newHarness(t)
	h.init(t)
	h.store.Get().PersonalBests.Upsert(model.ModeTime, "60", english, model.PBStats{WPM: 101}, testNow)

	pb, ok := h.store.LocalPB(model.ModeTime, "60", english, nil)
	require.True(t, ok)
	assert.Equal(t, 101.0, pb.WPM)

	_, ok = h.store.LocalPB(model.ModeTime, "60", english, []string{"capitals"})
	assert.True(t, ok)

	_, ok = h.store.LocalPB(model.ModeTime, "60", english, []string{"capitals", "58008"})
	assert.False(t, ok, "a funbox that cannot set PBs hides them")

	_, ok = h.store.LocalPB(model.ModeQuote, "60", english, nil)
	assert.False(t, ok)
}

func TestTagPBs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.init(t)

	a, _ := h.store.AddTag(ctx, "a")
	b, _ := h.store.AddTag(ctx, "b")

	assert.Zero(t, h.store.TagPB(a.ID, model.ModeTime, "30", english))
	assert.True(t, h.store.SaveTagPB(a.ID, model.ModeTime, "30", english, model.PBStats{WPM: 90}))
	assert.True(t, h.store.SaveTagPB(b.ID, model.ModeTime, "30", english, model.PBStats{WPM: 120}))
	assert.Equal(t, 90.0, h.store.TagPB(a.ID, model.ModeTime, "30", english))

	assert.False(t, h.store.SaveTagPB("missing", model.ModeTime, "30", english, model.PBStats{WPM: 1}))
	assert.False(t, h.store.SaveTagPB(a.ID, model.ModeQuote, "1", english, model.PBStats{WPM: 1}))
	assert.Zero(t, h.store.TagPB("missing", model.ModeTime, "30", english))

	assert.Zero(t, h.store.ActiveTagsPB(model.ModeTime, "30", english), "no active tags")
	h.store.SetTagActive(ctx, a.ID, true)
	assert.Equal(t, 90.0, h.store.ActiveTagsPB(model.ModeTime, "30", english))
	h.store.SetTagActive(ctx, b.ID, true)
	assert.Equal(t, 120.0, h.store.ActiveTagsPB(model.ModeTime, "30", english))

	// Global table is untouched by tag writes.
	_, ok := h.store.Get().PersonalBests.Find(model.ModeTime, "30", english)
	assert.False(t, ok)
}

func TestSaveTagPBResetsLegacyCell(t *testing.T) {
	h := newHarness(t)
	h.init(t)
	snap := h.store.Get()
	var tag model.Tag
	require.NoError(t, tag.PersonalBests.Time.UnmarshalJSON([]byte(`{"30":{"wpm":55}}`)))
	tag.ID = "legacy"
	snap.Tags = append(snap.Tags, tag)

	assert.Zero(t, h.store.TagPB("legacy", model.ModeTime, "30", english))
	require.True(t, h.store.SaveTagPB("legacy", model.ModeTime, "30", english, model.PBStats{WPM: 70}))

	stored, ok := snap.Tags[0].PersonalBests.Bucket(model.ModeTime, "30")
	require.True(t, ok)
	assert.False(t, stored.Legacy())
	require.Len(t, stored.Entries, 1)
	assert.Equal(t, 70.0, stored.Entries[0].WPM)
}

func TestUpdateTagPBUsesStrictMatching(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.init(t)
	tag, _ := h.store.AddTag(ctx, "focus")

	legacy := result("legacy", model.ModeTime, "30", 200, testNow, tag.ID)
	legacy.LazyMode = nil
	h.store.Get().Results = []model.Result{
		result("untagged", model.ModeTime, "30", 300, testNow),
		legacy,
		result("best", model.ModeTime, "30", 110, testNow, tag.ID),
		result("slower", model.ModeTime, "30", 90, testNow, tag.ID),
		result("other", model.ModeTime, "60", 150, testNow, tag.ID),
	}
	h.events = nil

	h.store.UpdateTagPB(ctx, tag.ID, model.ModeTime, "30", english)
	assert.Equal(t, 110.0, h.store.TagPB(tag.ID, model.ModeTime, "30", english))
	assert.Empty(t, h.events)

	persisted := h.persisted(t)
	pt, ok := persisted.Tag(tag.ID)
	require.True(t, ok)
	pb, ok := pt.PersonalBests.Find(model.ModeTime, "30", english)
	require.True(t, ok)
	assert.Equal(t, 110.0, pb.WPM)
	assert.Equal(t, 115.0, pb.Raw)

	h.store.UpdateTagPB(ctx, tag.ID, model.ModeTime, "15", english)
	pb, ok = h.store.Get().Tags[0].PersonalBests.Find(model.ModeTime, "15", english)
	require.True(t, ok, "no matching history writes a zero entry")
	assert.Zero(t, pb.WPM)

	assert.NotPanics(t, func() {
		h.store.UpdateTagPB(ctx, "missing", model.ModeTime, "30", english)
	})
}
