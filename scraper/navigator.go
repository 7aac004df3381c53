package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alokumarjaiswal/gmaps-scraper/utils"
)

// Tab names one of the listing page's top-level sub-views.
type Tab string

const (
	TabOverview Tab = "Overview"
	TabReviews  Tab = "Reviews"
	TabAbout    Tab = "About"
	TabPhotos   Tab = "Photos"
)

// loadedSignal maps each tab to the selector-table key whose presence marks
// the tab's content as painted.
var loadedSignal = map[Tab]string{
	TabOverview: "overview_loaded",
	TabReviews:  "reviews_loaded",
	TabAbout:    "about_loaded",
	TabPhotos:   "photos_loaded",
}

// Navigator is the state machine over the page's top-level tabs. A tab whose
// control cannot be located, or whose switch fails twice, is permanently
// unavailable for the rest of the run; callers receive that as data.
type Navigator struct {
	dom Surface
	sel Selectors
	cfg Config
	log zerolog.Logger

	current     Tab
	unavailable map[Tab]bool
}

func NewNavigator(dom Surface, sel Selectors, cfg Config, log zerolog.Logger) *Navigator {
	return &Navigator{
		dom:         dom,
		sel:         sel,
		cfg:         cfg,
		log:         log.With().Str("component", "navigator").Logger(),
		current:     TabOverview,
		unavailable: map[Tab]bool{},
	}
}

// Current reports the tab the page is on.
func (n *Navigator) Current() Tab { return n.current }

// Available probes which tab controls exist on this listing. Absence of a
// tab is a legitimate page variant, not an error.
func (n *Navigator) Available(ctx context.Context) map[Tab]bool {
	out := map[Tab]bool{TabOverview: true}
	for _, t := range []Tab{TabReviews, TabAbout, TabPhotos} {
		el, err := n.locateTab(ctx, t)
		out[t] = err == nil && el != nil
	}
	return out
}

// Switch moves the page to the named tab and waits for its loaded signal.
// One retry; a second failure marks the tab unavailable for the rest of the
// run and returns ErrTabUnavailable.
func (n *Navigator) Switch(ctx context.Context, tab Tab) error {
	if n.unavailable[tab] {
		return fmt.Errorf("%w: %s", ErrTabUnavailable, tab)
	}
	if n.current == tab {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if lastErr = n.switchOnce(ctx, tab); lastErr == nil {
			n.current = tab
			n.log.Info().Str("tab", string(tab)).Msg("switched tab")
			return nil
		}
		n.log.Warn().Err(lastErr).Str("tab", string(tab)).Int("attempt", attempt+1).Msg("tab switch failed")
	}
	n.unavailable[tab] = true
	return fmt.Errorf("%w: %s: %v", ErrTabUnavailable, tab, lastErr)
}

func (n *Navigator) switchOnce(ctx context.Context, tab Tab) error {
	el, err := n.locateTab(ctx, tab)
	if err != nil {
		return err
	}
	if el == nil {
		return ErrFieldAbsent
	}

	clickCtx, cancel := opCtx(ctx, n.cfg.ActionTimeout)
	err = n.dom.Click(clickCtx, el)
	cancel()
	if err != nil {
		return fmt.Errorf("click tab control: %w", err)
	}

	waitCtx, cancelWait := opCtx(ctx, n.cfg.TabTimeout)
	defer cancelWait()
	if err := n.dom.WaitVisible(waitCtx, n.sel.Sel(loadedSignal[tab])); err != nil {
		return fmt.Errorf("tab content did not load: %w", err)
	}
	return nil
}

// locateTab scans the tab controls and matches on the aria-label so the
// selector table stays free of per-tab selectors.
func (n *Navigator) locateTab(ctx context.Context, tab Tab) (Element, error) {
	findCtx, cancel := opCtx(ctx, n.cfg.ActionTimeout)
	defer cancel()

	controls, err := n.dom.Find(findCtx, n.sel.Sel("tab_button"), nil)
	if err != nil {
		return nil, err
	}
	for _, el := range controls {
		label, ok, err := n.dom.Attr(findCtx, el, "aria-label")
		if err != nil || !ok {
			continue
		}
		if strings.Contains(utils.NormalizeText(label), string(tab)) {
			return el, nil
		}
	}
	return nil, nil
}
