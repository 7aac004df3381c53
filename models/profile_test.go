package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusinessProfileInitializesCollections(t *testing.T) {
	p := NewBusinessProfile("run-1", "https://maps.example/listing")

	assert.Equal(t, "run-1", p.RunID)
	assert.NotNil(t, p.Overview.OperationalInfo.WeeklyHours)
	assert.NotNil(t, p.Overview.AdditionalInfo.SpecialFeatures)
	assert.NotNil(t, p.Overview.AdditionalInfo.PopularTimes)
	assert.NotNil(t, p.Reviews.Data.Reviews)
	assert.True(t, p.Reviews.Data.Complete)
	assert.NotNil(t, p.About.Accessibility.Available)
	assert.NotNil(t, p.PhotosVideos.Categories)
	assert.False(t, p.ScrapedAt.IsZero())
}

// The serialized shape must be identical for a fully absent profile and a
// populated one: absent scalars are null, absent collections are empty, and
// every section key is always present.
func TestEmptyProfileSerializesSchemaStable(t *testing.T) {
	p := NewBusinessProfile("run-1", "https://maps.example/listing")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{"run_id", "listing_url", "scraped_at", "overview", "reviews", "about", "photos_videos"} {
		assert.Contains(t, decoded, key)
	}

	overview := decoded["overview"].(map[string]any)
	basic := overview["basic_info"].(map[string]any)
	assert.Nil(t, basic["business_name"])
	assert.Contains(t, basic, "business_name")

	operational := overview["operational_info"].(map[string]any)
	hours, ok := operational["weekly_hours"].(map[string]any)
	require.True(t, ok, "weekly_hours must serialize as an object, not null")
	assert.Empty(t, hours)

	reviews := decoded["reviews"].(map[string]any)
	assert.Equal(t, false, reviews["available"])
	reviewData := reviews["data"].(map[string]any)
	list, ok := reviewData["reviews"].([]any)
	require.True(t, ok, "reviews must serialize as an array, not null")
	assert.Empty(t, list)

	media := decoded["photos_videos"].(map[string]any)
	cats, ok := media["categories"].(map[string]any)
	require.True(t, ok, "categories must serialize as an object, not null")
	assert.Empty(t, cats)
}

func TestReviewRecordOmitsNothing(t *testing.T) {
	rec := ReviewRecord{ReviewID: "r1", ReviewerName: "Alice", ReviewPhotos: []string{}}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{"review_id", "reviewer_name", "reviewer_photo_url", "rating", "review_time", "review_text", "review_photos", "owner_response"} {
		assert.Contains(t, decoded, key)
	}
	assert.Nil(t, decoded["owner_response"])
}
