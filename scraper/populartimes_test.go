package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestPopularTimes(dom Surface, sel Selectors, cfg Config) *PopularTimesExtractor {
	loader := NewLoader(cfg, rate.NewLimiter(rate.Inf, 1))
	return NewPopularTimesExtractor(dom, sel, cfg, testLogger(), loader)
}

func TestPopularTimesReadsBarsInOrder(t *testing.T) {
	sel := DefaultSelectors()
	root := el("root").add(
		elText(sel.Sel("popular_times_current_day"), "Friday"),
		elAttr(sel.Sel("popular_times_bars"), map[string]string{"aria-label": "25% busy at 9 AM"}),
		elAttr(sel.Sel("popular_times_bars"), map[string]string{"aria-label": "80% busy at 6 PM"}),
	)
	// No next-day control: only the landing day is readable.
	out := newTestPopularTimes(newFakeSurface(root), sel, testConfig()).Extract(context.Background())

	require.Contains(t, out, "Friday")
	require.Len(t, out["Friday"], 2)
	assert.Equal(t, "9 AM", out["Friday"][0].Time)
	assert.Equal(t, 25, out["Friday"][0].BusyPercentage)
	assert.Equal(t, "6 PM", out["Friday"][1].Time)
	assert.Equal(t, 80, out["Friday"][1].BusyPercentage)
	assert.Len(t, out, 1)
}

func TestPopularTimesWalksTheWeek(t *testing.T) {
	sel := DefaultSelectors()
	bar := elAttr(sel.Sel("popular_times_bars"), map[string]string{"aria-label": "50% busy at 12 PM"})
	next := el(sel.Sel("next_day_button"))
	advances := 0
	next.onClick = func() { advances++ }
	root := el("root").add(
		elText(sel.Sel("popular_times_current_day"), "Wednesday"),
		bar,
		next,
	)

	out := newTestPopularTimes(newFakeSurface(root), sel, testConfig()).Extract(context.Background())

	assert.Equal(t, 6, advances)
	assert.Len(t, out, 7)
	require.Contains(t, out, "Wednesday")
	require.Contains(t, out, "Tuesday")
	assert.Equal(t, 50, out["Tuesday"][0].BusyPercentage)
}

func TestPopularTimesSkipsMalformedBars(t *testing.T) {
	sel := DefaultSelectors()
	root := el("root").add(
		elText(sel.Sel("popular_times_current_day"), "Monday"),
		elAttr(sel.Sel("popular_times_bars"), map[string]string{"aria-label": "150% busy at 9 AM"}),
		elAttr(sel.Sel("popular_times_bars"), map[string]string{"aria-label": "Currently 40% busy"}),
	)

	out := newTestPopularTimes(newFakeSurface(root), sel, testConfig()).Extract(context.Background())

	assert.Empty(t, out)
}

func TestPopularTimesAbsentChart(t *testing.T) {
	sel := DefaultSelectors()
	out := newTestPopularTimes(newFakeSurface(el("root")), sel, testConfig()).Extract(context.Background())

	assert.Empty(t, out)
	assert.NotNil(t, out)
}
