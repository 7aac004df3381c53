package scraper

import "time"

type Config struct {
	ListingURL string
	OutputDir  string
	Headless   bool

	// Per-operation timeouts. Every DOM call is bounded; a timeout aborts
	// only the current field or step, never the run.
	PageLoadTimeout   time.Duration
	ElementTimeout    time.Duration
	TabTimeout        time.Duration
	ActionTimeout     time.Duration
	NavigationTimeout time.Duration

	// Convergence budgets.
	SettleDelay     time.Duration
	MaxScrollSteps  int
	PlateauAfter    int
	MaxExpandPasses int

	// Pacing for load-triggering browser actions.
	ActionsPerSecond float64
	ActionBurst      int

	// Media limits.
	MaxMediaPerCategory int
	MaxImagesToClick    int
	GalleryScrollStep   int
	CaptureScreenshots  bool
	ExtractMediaURLs    bool
}

func DefaultConfig() Config {
	return Config{
		OutputDir:           "scraped_data",
		Headless:            true,
		PageLoadTimeout:     60 * time.Second,
		ElementTimeout:      30 * time.Second,
		TabTimeout:          15 * time.Second,
		ActionTimeout:       5 * time.Second,
		NavigationTimeout:   60 * time.Second,
		SettleDelay:         800 * time.Millisecond,
		MaxScrollSteps:      15,
		PlateauAfter:        2,
		MaxExpandPasses:     3,
		ActionsPerSecond:    4,
		ActionBurst:         2,
		MaxMediaPerCategory: 50,
		MaxImagesToClick:    3,
		GalleryScrollStep:   600,
		CaptureScreenshots:  true,
		ExtractMediaURLs:    true,
	}
}
