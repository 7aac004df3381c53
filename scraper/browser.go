package scraper

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Browser owns the chromedp allocator and tab contexts for one run. The run
// model is one browser, one tab, one listing; parallel scrapes need fully
// independent Browser instances.
type Browser struct {
	cfg Config
	log zerolog.Logger

	allocatorCtx context.Context
	tabCtx       context.Context
	cancelAlloc  context.CancelFunc
	cancelTab    context.CancelFunc
}

func NewBrowser(ctx context.Context, cfg Config, log zerolog.Logger) *Browser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(1280, 800),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)

	b := &Browser{cfg: cfg, log: log.With().Str("component", "browser").Logger()}
	b.allocatorCtx, b.cancelAlloc = chromedp.NewExecAllocator(ctx, opts...)
	b.tabCtx, b.cancelTab = chromedp.NewContext(b.allocatorCtx)
	return b
}

// Tab returns the context all DOM operations descend from.
func (b *Browser) Tab() context.Context { return b.tabCtx }

func (b *Browser) Close() {
	b.cancelTab()
	b.cancelAlloc()
}

// LoadListing navigates to the listing URL and waits for the page-ready and
// hero-image signals. A failure here is the run's single fatal outcome.
func (b *Browser) LoadListing(dom Surface, sel Selectors, url string) error {
	navCtx, cancel := opCtx(b.tabCtx, b.cfg.NavigationTimeout)
	defer cancel()

	if err := dom.Navigate(navCtx, url); err != nil {
		return fmt.Errorf("load listing: %w", err)
	}

	readyCtx, cancelReady := opCtx(b.tabCtx, b.cfg.PageLoadTimeout)
	defer cancelReady()
	if err := dom.WaitVisible(readyCtx, sel.Sel("page_ready")); err != nil {
		return fmt.Errorf("%w: no heading rendered: %v", ErrNotListingPage, err)
	}

	// The hero image only renders on business-listing pages; search result
	// and error pages never show it.
	heroCtx, cancelHero := opCtx(b.tabCtx, b.cfg.TabTimeout)
	defer cancelHero()
	if err := dom.WaitVisible(heroCtx, sel.Sel("hero_image_ready")); err != nil {
		return fmt.Errorf("%w: no listing hero image: %v", ErrNotListingPage, err)
	}

	b.log.Info().Str("url", url).Msg("listing page loaded")
	return nil
}
