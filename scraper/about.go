package scraper

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alokumarjaiswal/gmaps-scraper/models"
	"github.com/alokumarjaiswal/gmaps-scraper/utils"
)

// AboutExtractor reads the About tab's attribute sections and buckets them
// by section title. Accessibility features are split into available and
// unavailable by their aria-label wording.
type AboutExtractor struct{ reader }

func NewAboutExtractor(dom Surface, sel Selectors, cfg Config, log zerolog.Logger) *AboutExtractor {
	return &AboutExtractor{newReader(dom, sel, cfg, log, "about")}
}

func (e *AboutExtractor) Extract(ctx context.Context) models.About {
	about := models.About{
		Available:      true,
		Accessibility:  models.Accessibility{Available: []string{}, Unavailable: []string{}},
		ServiceOptions: []string{},
		Amenities:      []string{},
		CrowdInfo:      []string{},
		PlanningInfo:   []string{},
		PaymentMethods: []string{},
		ParkingOptions: []string{},
	}

	findCtx, cancel := opCtx(ctx, e.cfg.ElementTimeout)
	sections, err := e.dom.Find(findCtx, e.sel.Sel("about_section_items"), nil)
	cancel()
	if err != nil {
		e.log.Warn().Err(err).Msg("about sections not readable")
		return about
	}

	total := 0
	for _, section := range sections {
		title, features := e.readSection(ctx, section)
		if title == "" || len(features) == 0 {
			continue
		}
		total += len(features)
		e.bucket(&about, title, features)
	}

	e.log.Info().Int("features", total).Int("sections", len(sections)).Msg("about tab extracted")
	return about
}

func (e *AboutExtractor) readSection(ctx context.Context, section Element) (string, []string) {
	findCtx, cancel := opCtx(ctx, e.cfg.ActionTimeout)
	defer cancel()

	titles, err := e.dom.Find(findCtx, e.sel.Sel("about_section_titles"), section)
	if err != nil || len(titles) == 0 {
		return "", nil
	}
	title := e.textIn(ctx, titles[0])
	if title == nil {
		return "", nil
	}

	items, err := e.dom.Find(findCtx, e.sel.Sel("about_feature_items"), section)
	if err != nil {
		return "", nil
	}

	features := make([]string, 0, len(items))
	for _, item := range items {
		spans, err := e.dom.Find(findCtx, e.sel.Sel("about_feature_text"), item)
		if err != nil || len(spans) == 0 {
			continue
		}
		// The aria-label carries the full feature description.
		if label := e.attrIn(ctx, spans[0], "aria-label"); label != nil {
			features = append(features, *label)
		}
	}
	return strings.ToLower(utils.NormalizeText(*title)), features
}

func (e *AboutExtractor) bucket(about *models.About, title string, features []string) {
	switch {
	case strings.Contains(title, "accessibility"):
		for _, f := range features {
			if accessibilityAvailable(f) {
				about.Accessibility.Available = append(about.Accessibility.Available, f)
			} else {
				about.Accessibility.Unavailable = append(about.Accessibility.Unavailable, f)
			}
		}
	case strings.Contains(title, "service"):
		about.ServiceOptions = append(about.ServiceOptions, features...)
	case strings.Contains(title, "amenities"):
		about.Amenities = append(about.Amenities, features...)
	case strings.Contains(title, "crowd"):
		about.CrowdInfo = append(about.CrowdInfo, features...)
	case strings.Contains(title, "planning"):
		about.PlanningInfo = append(about.PlanningInfo, features...)
	case strings.Contains(title, "payment"):
		about.PaymentMethods = append(about.PaymentMethods, features...)
	case strings.Contains(title, "parking"):
		about.ParkingOptions = append(about.ParkingOptions, features...)
	}
}

// accessibilityAvailable classifies a feature label like "Has wheelchair
// accessible entrance" vs "No wheelchair accessible parking lot".
func accessibilityAvailable(feature string) bool {
	f := strings.ToLower(feature)
	if strings.Contains(f, "no ") || strings.Contains(f, "does not") {
		return false
	}
	return strings.Contains(f, "has ") || strings.Contains(f, "accessible")
}
