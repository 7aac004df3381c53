package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aboutSection(sel Selectors, title string, features ...string) *fakeElement {
	s := el(sel.Sel("about_section_items")).add(elText(sel.Sel("about_section_titles"), title))
	for _, f := range features {
		item := el(sel.Sel("about_feature_items")).add(
			elAttr(sel.Sel("about_feature_text"), map[string]string{"aria-label": f}),
		)
		s.add(item)
	}
	return s
}

func TestAboutExtractorBucketsSections(t *testing.T) {
	sel := DefaultSelectors()
	root := el("root").add(
		aboutSection(sel, "Accessibility",
			"Has wheelchair accessible entrance",
			"No wheelchair accessible parking lot",
		),
		aboutSection(sel, "Service options", "Dine-in", "Takeout"),
		aboutSection(sel, "Amenities", "Restroom"),
		aboutSection(sel, "Crowd", "LGBTQ+ friendly"),
		aboutSection(sel, "Planning", "Accepts reservations"),
		aboutSection(sel, "Payments", "Credit cards"),
		aboutSection(sel, "Parking", "Free street parking"),
	)
	e := NewAboutExtractor(newFakeSurface(root), sel, testConfig(), testLogger())

	about := e.Extract(context.Background())

	require.True(t, about.Available)
	assert.Equal(t, []string{"Has wheelchair accessible entrance"}, about.Accessibility.Available)
	assert.Equal(t, []string{"No wheelchair accessible parking lot"}, about.Accessibility.Unavailable)
	assert.Equal(t, []string{"Dine-in", "Takeout"}, about.ServiceOptions)
	assert.Equal(t, []string{"Restroom"}, about.Amenities)
	assert.Equal(t, []string{"LGBTQ+ friendly"}, about.CrowdInfo)
	assert.Equal(t, []string{"Accepts reservations"}, about.PlanningInfo)
	assert.Equal(t, []string{"Credit cards"}, about.PaymentMethods)
	assert.Equal(t, []string{"Free street parking"}, about.ParkingOptions)
}

func TestAboutExtractorIgnoresUnknownSections(t *testing.T) {
	sel := DefaultSelectors()
	root := el("root").add(aboutSection(sel, "Highlights", "Great coffee"))
	e := NewAboutExtractor(newFakeSurface(root), sel, testConfig(), testLogger())

	about := e.Extract(context.Background())

	assert.True(t, about.Available)
	assert.Empty(t, about.Amenities)
	assert.Empty(t, about.ServiceOptions)
}

func TestAboutExtractorEmptyTab(t *testing.T) {
	sel := DefaultSelectors()
	e := NewAboutExtractor(newFakeSurface(el("root")), sel, testConfig(), testLogger())

	about := e.Extract(context.Background())

	assert.True(t, about.Available)
	assert.NotNil(t, about.Accessibility.Available)
	assert.Empty(t, about.Accessibility.Available)
}
