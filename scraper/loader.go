package scraper

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// LoadOutcome tags how a convergence run stopped.
type LoadOutcome int

const (
	// LoadReachedTarget means the probe reached the caller's target count.
	LoadReachedTarget LoadOutcome = iota
	// LoadPlateaued means the probe was unchanged for PlateauAfter
	// consecutive attempts: the content is exhausted.
	LoadPlateaued
	// LoadExhausted means the step budget ran out first; the result is
	// partial and callers report it as incomplete rather than discard it.
	LoadExhausted
)

func (o LoadOutcome) String() string {
	switch o {
	case LoadReachedTarget:
		return "reached_target"
	case LoadPlateaued:
		return "plateaued"
	default:
		return "exhausted"
	}
}

// LoadResult is the final probe value plus the stop reason.
type LoadResult struct {
	Final   int
	Steps   int
	Outcome LoadOutcome
}

// Complete reports whether the load can be trusted as covering everything
// the page had.
func (r LoadResult) Complete() bool {
	return r.Outcome == LoadReachedTarget || r.Outcome == LoadPlateaued
}

// Probe measures the current content size: a count of loaded items or a
// scroll height. It must be cheap; it runs once per step.
type Probe func(ctx context.Context) (int, error)

// Action performs one load trigger: scroll to bottom, scroll a container by
// a fixed step, or click a "show more" control.
type Action func(ctx context.Context) error

// Loader is the repeat-until-stable primitive shared by every dynamic list
// on the page: trigger, settle, re-measure, stop on plateau, budget, or
// target. Actions are paced by a shared limiter so lazy-load triggers do not
// hammer the page.
type Loader struct {
	MaxSteps     int
	PlateauAfter int
	// Target stops the run early when the probe reaches it; zero means no
	// target is known.
	Target int
	Settle time.Duration

	limiter *rate.Limiter
}

func NewLoader(cfg Config, limiter *rate.Limiter) *Loader {
	return &Loader{
		MaxSteps:     cfg.MaxScrollSteps,
		PlateauAfter: cfg.PlateauAfter,
		Settle:       cfg.SettleDelay,
		limiter:      limiter,
	}
}

// WithTarget returns a copy of the loader that stops once the probe reaches
// target.
func (l *Loader) WithTarget(target int) *Loader {
	out := *l
	out.Target = target
	return &out
}

// Run drives the probe/action loop. A probe or action error ends the run
// with the last known value; the loop itself never fails. Termination is
// guaranteed by MaxSteps regardless of probe behaviour.
func (l *Loader) Run(ctx context.Context, probe Probe, action Action) LoadResult {
	last, err := probe(ctx)
	if err != nil {
		last = 0
	}
	if l.Target > 0 && last >= l.Target {
		return LoadResult{Final: last, Outcome: LoadReachedTarget}
	}

	unchanged := 0
	for step := 1; step <= l.MaxSteps; step++ {
		if ctx.Err() != nil {
			return LoadResult{Final: last, Steps: step - 1, Outcome: LoadExhausted}
		}
		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				return LoadResult{Final: last, Steps: step - 1, Outcome: LoadExhausted}
			}
		}
		if err := action(ctx); err != nil {
			return LoadResult{Final: last, Steps: step, Outcome: LoadExhausted}
		}
		sleepCtx(ctx, l.Settle)

		cur, err := probe(ctx)
		if err != nil {
			cur = last
		}
		if l.Target > 0 && cur >= l.Target {
			return LoadResult{Final: cur, Steps: step, Outcome: LoadReachedTarget}
		}
		if cur == last {
			unchanged++
			if unchanged >= l.PlateauAfter {
				return LoadResult{Final: cur, Steps: step, Outcome: LoadPlateaued}
			}
		} else {
			unchanged = 0
		}
		last = cur
	}
	return LoadResult{Final: last, Steps: l.MaxSteps, Outcome: LoadExhausted}
}

// sleepCtx is a context-aware settle delay.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
