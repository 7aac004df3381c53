package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/alokumarjaiswal/gmaps-scraper/models"
)

// Scraper assembles a complete business profile from one listing page. The
// phases run in a fixed order so partial failures still produce a
// schema-stable profile: overview fields, popular times, reviews, about,
// then media.
type Scraper struct {
	cfg         Config
	sel         Selectors
	log         zerolog.Logger
	screenshots ScreenshotSink
}

func NewScraper(cfg Config, log zerolog.Logger, screenshots ScreenshotSink) *Scraper {
	return &Scraper{
		cfg:         cfg,
		sel:         DefaultSelectors(),
		log:         log.With().Str("component", "scraper").Logger(),
		screenshots: screenshots,
	}
}

// Run scrapes one listing end to end. Only a page that never presents as a
// business listing fails the run; every extractor below that degrades to
// absent markers in the profile.
func (s *Scraper) Run(ctx context.Context, listingURL string) (*models.BusinessProfile, error) {
	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Logger()
	profile := models.NewBusinessProfile(runID, listingURL)

	browser := NewBrowser(ctx, s.cfg, log)
	defer browser.Close()

	dom := NewChromeSurface()
	if err := browser.LoadListing(dom, s.sel, listingURL); err != nil {
		return nil, err
	}

	tab := browser.Tab()
	limiter := rate.NewLimiter(rate.Limit(s.cfg.ActionsPerSecond), s.cfg.ActionBurst)
	loader := NewLoader(s.cfg, limiter)
	nav := NewNavigator(dom, s.sel, s.cfg, log)

	start := time.Now()
	s.extractOverview(tab, dom, log, loader, profile)

	profile.Reviews = NewReviewPipeline(dom, s.sel, s.cfg, log, nav, loader, limiter).Extract(tab)

	s.extractAbout(tab, dom, log, nav, profile)

	s.extractMedia(tab, dom, log, nav, loader, limiter, profile)

	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("reviews", profile.Reviews.Data.TotalReviews).
		Int("media", profile.PhotosVideos.TotalMediaCount).
		Msg("profile assembled")
	return profile, nil
}

// extractOverview runs the field extractors that read directly off the
// landing tab, including the day-by-day popular times walk.
func (s *Scraper) extractOverview(ctx context.Context, dom Surface, log zerolog.Logger, loader *Loader, profile *models.BusinessProfile) {
	profile.Overview.BasicInfo = NewBasicInfoExtractor(dom, s.sel, s.cfg, log).Extract(ctx)
	profile.Overview.ContactInfo = NewContactExtractor(dom, s.sel, s.cfg, log).Extract(ctx)
	profile.Overview.OperationalInfo = NewOperationalExtractor(dom, s.sel, s.cfg, log).Extract(ctx)
	profile.Overview.AdditionalInfo.SpecialFeatures = NewSpecialFeaturesExtractor(dom, s.sel, s.cfg, log).Extract(ctx)
	profile.Overview.AdditionalInfo.PopularTimes = NewPopularTimesExtractor(dom, s.sel, s.cfg, log, loader).Extract(ctx)
}

func (s *Scraper) extractAbout(ctx context.Context, dom Surface, log zerolog.Logger, nav *Navigator, profile *models.BusinessProfile) {
	if err := nav.Switch(ctx, TabAbout); err != nil {
		if !errors.Is(err, ErrTabUnavailable) {
			log.Warn().Err(err).Msg("about tab switch failed")
		}
		return
	}
	profile.About = NewAboutExtractor(dom, s.sel, s.cfg, log).Extract(ctx)
}

// extractMedia returns to the overview tab first: the gallery entry point
// only renders there.
func (s *Scraper) extractMedia(ctx context.Context, dom Surface, log zerolog.Logger, nav *Navigator, loader *Loader, limiter *rate.Limiter, profile *models.BusinessProfile) {
	if err := nav.Switch(ctx, TabOverview); err != nil {
		log.Warn().Err(err).Msg("could not return to overview for media")
		return
	}
	profile.PhotosVideos = NewMediaPipeline(dom, s.sel, s.cfg, log, loader, limiter, s.screenshots).Extract(ctx)
}
