package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func testLoader(maxSteps, plateauAfter int) *Loader {
	cfg := testConfig()
	cfg.MaxScrollSteps = maxSteps
	cfg.PlateauAfter = plateauAfter
	return NewLoader(cfg, rate.NewLimiter(rate.Inf, 1))
}

func countingProbe(values []int) Probe {
	i := -1
	return func(context.Context) (int, error) {
		if i < len(values)-1 {
			i++
		}
		return values[i], nil
	}
}

func noopAction(context.Context) error { return nil }

func TestLoaderStopsOnPlateau(t *testing.T) {
	l := testLoader(15, 2)
	res := l.Run(context.Background(), countingProbe([]int{3, 6, 9, 9, 9}), noopAction)

	assert.Equal(t, LoadPlateaued, res.Outcome)
	assert.Equal(t, 9, res.Final)
	assert.True(t, res.Complete())
}

func TestLoaderStopsOnTarget(t *testing.T) {
	l := testLoader(15, 2).WithTarget(8)
	res := l.Run(context.Background(), countingProbe([]int{3, 6, 9}), noopAction)

	assert.Equal(t, LoadReachedTarget, res.Outcome)
	assert.Equal(t, 9, res.Final)
	assert.True(t, res.Complete())
}

func TestLoaderTargetAlreadyMet(t *testing.T) {
	l := testLoader(15, 2).WithTarget(3)
	res := l.Run(context.Background(), countingProbe([]int{5}), noopAction)

	assert.Equal(t, LoadReachedTarget, res.Outcome)
	assert.Zero(t, res.Steps)
}

func TestLoaderExhaustsBudget(t *testing.T) {
	n := 0
	growing := func(context.Context) (int, error) {
		n++
		return n, nil
	}
	l := testLoader(4, 2)
	res := l.Run(context.Background(), growing, noopAction)

	assert.Equal(t, LoadExhausted, res.Outcome)
	assert.Equal(t, 4, res.Steps)
	assert.False(t, res.Complete())
}

func TestLoaderOscillationDoesNotPlateauEarly(t *testing.T) {
	// Count dips before stabilizing; only consecutive unchanged probes count.
	l := testLoader(15, 2)
	res := l.Run(context.Background(), countingProbe([]int{5, 4, 5, 4, 7, 7, 7}), noopAction)

	assert.Equal(t, LoadPlateaued, res.Outcome)
	assert.Equal(t, 7, res.Final)
}

func TestLoaderActionErrorEndsRun(t *testing.T) {
	failing := func(context.Context) error { return errors.New("scroll failed") }
	l := testLoader(15, 2)
	res := l.Run(context.Background(), countingProbe([]int{2}), failing)

	assert.Equal(t, LoadExhausted, res.Outcome)
	assert.Equal(t, 2, res.Final)
}

func TestLoaderHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := testLoader(15, 2)
	res := l.Run(ctx, countingProbe([]int{1, 2, 3}), noopAction)

	assert.Equal(t, LoadExhausted, res.Outcome)
}
