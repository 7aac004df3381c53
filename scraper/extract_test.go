package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicInfoExtractor(t *testing.T) {
	sel := DefaultSelectors()
	root := el("root").add(
		elText(sel.Sel("business_name"), "Blue Bottle Coffee"),
		elText(sel.Sel("rating"), "4.4"),
		elText(sel.Sel("review_count"), "(1,234)"),
		elText(sel.Sel("business_type"), "Coffee shop"),
		elAttr(sel.Sel("hero_image"), map[string]string{"src": "https://img.example/hero.jpg"}),
		el(sel.Sel("wheelchair_accessible")),
	)
	e := NewBasicInfoExtractor(newFakeSurface(root), sel, testConfig(), testLogger())

	info := e.Extract(context.Background())

	require.NotNil(t, info.BusinessName)
	assert.Equal(t, "Blue Bottle Coffee", *info.BusinessName)
	require.NotNil(t, info.Rating)
	assert.Equal(t, "4.4", *info.Rating)
	require.NotNil(t, info.HeroImageURL)
	assert.Equal(t, "https://img.example/hero.jpg", *info.HeroImageURL)
	assert.True(t, info.WheelchairAccessible)
	assert.Nil(t, info.BusinessNameSecondary)
}

func TestBasicInfoExtractorAbsentFields(t *testing.T) {
	sel := DefaultSelectors()
	e := NewBasicInfoExtractor(newFakeSurface(el("root")), sel, testConfig(), testLogger())

	info := e.Extract(context.Background())

	assert.Nil(t, info.BusinessName)
	assert.Nil(t, info.Rating)
	assert.False(t, info.WheelchairAccessible)
}

func TestContactExtractorStripsLabelPrefixes(t *testing.T) {
	sel := DefaultSelectors()
	root := el("root").add(
		el(sel.Sel("info_section")),
		elAttr(sel.Sel("address"), map[string]string{"aria-label": "Address: 300 Webster St, Oakland, CA"}),
		elAttr(sel.Sel("phone"), map[string]string{"aria-label": "Phone: +1 510-653-3394"}),
		elAttr(sel.Sel("plus_code"), map[string]string{"aria-label": "Plus code: QQXV+XP Oakland"}),
		elAttr(sel.Sel("website"), map[string]string{"href": "https://bluebottlecoffee.com"}),
	)
	e := NewContactExtractor(newFakeSurface(root), sel, testConfig(), testLogger())

	info := e.Extract(context.Background())

	require.NotNil(t, info.Address)
	assert.Equal(t, "300 Webster St, Oakland, CA", *info.Address)
	require.NotNil(t, info.Phone)
	assert.Equal(t, "+1 510-653-3394", *info.Phone)
	require.NotNil(t, info.PlusCode)
	assert.Equal(t, "QQXV+XP Oakland", *info.PlusCode)
	require.NotNil(t, info.Website)
	assert.Equal(t, "https://bluebottlecoffee.com", *info.Website)
	assert.Nil(t, info.ServicesURL)
}

func TestOperationalExtractorFormatsHours(t *testing.T) {
	sel := DefaultSelectors()
	monday := el(sel.Sel("hours_rows")).add(
		elText(sel.Sel("hours_cell"), "Monday"),
		elText(sel.Sel("hours_cell"), "9am–5pm"),
	)
	sunday := el(sel.Sel("hours_rows")).add(
		elText(sel.Sel("hours_cell"), "Sunday"),
		elText(sel.Sel("hours_cell"), "Closed"),
	)
	root := el("root").add(elText(sel.Sel("status"), "Open · Closes 5 PM"), monday, sunday)
	e := NewOperationalExtractor(newFakeSurface(root), sel, testConfig(), testLogger())

	info := e.Extract(context.Background())

	require.NotNil(t, info.Status)
	assert.Equal(t, "Open · Closes 5 PM", *info.Status)
	assert.Equal(t, "9:00 AM – 5:00 PM", info.WeeklyHours["Monday"])
	assert.Equal(t, "Closed", info.WeeklyHours["Sunday"])
}

func TestSpecialFeaturesExtractor(t *testing.T) {
	sel := DefaultSelectors()
	root := el("root").add(
		elText(sel.Sel("special_features"), "Onsite services"),
		elText(sel.Sel("special_features"), "Online appointments"),
	)
	e := NewSpecialFeaturesExtractor(newFakeSurface(root), sel, testConfig(), testLogger())

	assert.Equal(t, []string{"Onsite services", "Online appointments"}, e.Extract(context.Background()))
}

// staleSurface reports reads on one marked element as stale. staleFor counts
// how many reads fail before the element recovers; -1 never recovers.
type staleSurface struct {
	*fakeSurface
	stale    *fakeElement
	staleFor int
}

func (s *staleSurface) isStale(e Element) bool {
	if fe, ok := e.(*fakeElement); !ok || fe != s.stale {
		return false
	}
	if s.staleFor == 0 {
		return false
	}
	if s.staleFor > 0 {
		s.staleFor--
	}
	return true
}

func (s *staleSurface) Text(ctx context.Context, e Element) (string, error) {
	if s.isStale(e) {
		return "", ErrStaleElement
	}
	return s.fakeSurface.Text(ctx, e)
}

func (s *staleSurface) Attr(ctx context.Context, e Element, name string) (string, bool, error) {
	if s.isStale(e) {
		return "", false, ErrStaleElement
	}
	return s.fakeSurface.Attr(ctx, e, name)
}

func TestReaderStaleScopedChildReadsAbsent(t *testing.T) {
	sel := DefaultSelectors()
	spanA := elText(sel.Sel("review_text_span"), "weak coffee")
	spanB := elText(sel.Sel("review_text_span"), "great pastries")
	root := el("root").add(
		elAttr(sel.Sel("review_container"), map[string]string{"data-review-id": "a"}).add(spanA),
		elAttr(sel.Sel("review_container"), map[string]string{"data-review-id": "b"}).add(spanB),
	)
	dom := &staleSurface{fakeSurface: newFakeSurface(root), stale: spanB, staleFor: -1}
	r := newReader(dom, sel, testConfig(), testLogger(), "test")

	containers, err := dom.Find(context.Background(), sel.Sel("review_container"), nil)
	require.NoError(t, err)
	require.Len(t, containers, 2)

	span := r.firstIn(context.Background(), "review_text_span", containers[1])
	require.NotNil(t, span)

	// The span's selector matches the first container's span too. A stale
	// scoped child must read as absent, never as the other container's text.
	assert.Nil(t, r.textIn(context.Background(), span))
}

func TestReaderStaleGlobalElementRelocatesAtSameIndex(t *testing.T) {
	sel := DefaultSelectors()
	root := el("root").add(
		elText(sel.Sel("special_features"), "Onsite services"),
		elText(sel.Sel("special_features"), "Online appointments"),
	)
	fake := newFakeSurface(root)

	els, err := fake.Find(context.Background(), sel.Sel("special_features"), nil)
	require.NoError(t, err)
	require.Len(t, els, 2)

	dom := &staleSurface{fakeSurface: fake, stale: els[1].(*fakeElement), staleFor: 1}
	r := newReader(dom, sel, testConfig(), testLogger(), "test")

	got := r.textIn(context.Background(), els[1])
	require.NotNil(t, got)
	assert.Equal(t, "Online appointments", *got)
}
