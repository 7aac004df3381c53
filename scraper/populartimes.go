package scraper

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/alokumarjaiswal/gmaps-scraper/models"
	"github.com/alokumarjaiswal/gmaps-scraper/utils"
)

// PopularTimesExtractor walks the popularity chart day by day. The chart
// opens on the page's current day; each step clicks the next-day control and
// waits, through the Convergence Loader, for the bar set to repaint before
// reading. Bar values come from aria-labels, never pixel measurement.
type PopularTimesExtractor struct {
	reader
	loader *Loader
}

func NewPopularTimesExtractor(dom Surface, sel Selectors, cfg Config, log zerolog.Logger, loader *Loader) *PopularTimesExtractor {
	return &PopularTimesExtractor{
		reader: newReader(dom, sel, cfg, log, "popular_times"),
		loader: loader,
	}
}

func (e *PopularTimesExtractor) Extract(ctx context.Context) models.PopularTimes {
	out := models.PopularTimes{}

	currentDay := "Monday"
	if d := e.textOf(ctx, "popular_times_current_day"); d != nil {
		currentDay = *d
	}

	for i, day := range utils.DayOrderFrom(currentDay) {
		if i > 0 {
			if !e.stepToNextDay(ctx) {
				e.log.Warn().Str("day", day).Msg("could not advance day selector, stopping")
				break
			}
		}
		slots := e.readDay(ctx)
		if len(slots) > 0 {
			out[day] = slots
		}
	}

	e.log.Info().Int("days", len(out)).Msg("popular times extracted")
	return out
}

// stepToNextDay clicks the next-day control and waits for the bar set to
// settle on the new day's values.
func (e *PopularTimesExtractor) stepToNextDay(ctx context.Context) bool {
	btn := e.first(ctx, "next_day_button")
	if btn == nil {
		return false
	}
	clickCtx, cancel := opCtx(ctx, e.cfg.ActionTimeout)
	err := e.dom.Click(clickCtx, btn)
	cancel()
	if err != nil {
		return false
	}

	// The repaint is done once the bar count stops changing.
	probe := func(ctx context.Context) (int, error) { return e.barCount(ctx), nil }
	noop := func(ctx context.Context) error { return nil }
	e.loader.Run(ctx, probe, noop)
	return true
}

func (e *PopularTimesExtractor) barCount(ctx context.Context) int {
	findCtx, cancel := opCtx(ctx, e.cfg.ActionTimeout)
	defer cancel()
	bars, err := e.dom.Find(findCtx, e.sel.Sel("popular_times_bars"), nil)
	if err != nil {
		return 0
	}
	return len(bars)
}

// readDay reads every bar's aria-label in document order, which matches
// chronological order within the day.
func (e *PopularTimesExtractor) readDay(ctx context.Context) []models.BusySlot {
	findCtx, cancel := opCtx(ctx, e.cfg.ActionTimeout)
	bars, err := e.dom.Find(findCtx, e.sel.Sel("popular_times_bars"), nil)
	cancel()
	if err != nil {
		return nil
	}

	slots := make([]models.BusySlot, 0, len(bars))
	for _, bar := range bars {
		label := e.attrIn(ctx, bar, "aria-label")
		if label == nil {
			continue
		}
		timeLabel, percent, ok := utils.ParseBusySlot(*label)
		if !ok {
			continue
		}
		slots = append(slots, models.BusySlot{Time: timeLabel, BusyPercentage: percent})
	}
	return slots
}
