package scraper

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/alokumarjaiswal/gmaps-scraper/models"
	"github.com/alokumarjaiswal/gmaps-scraper/utils"
)

// reader bundles the DOM surface with the selector table and the absent-field
// policy every extractor shares: a selector that finds nothing yields the
// absent marker and extraction continues.
type reader struct {
	dom Surface
	sel Selectors
	cfg Config
	log zerolog.Logger
}

func newReader(dom Surface, sel Selectors, cfg Config, log zerolog.Logger, component string) reader {
	return reader{dom: dom, sel: sel, cfg: cfg, log: log.With().Str("component", component).Logger()}
}

// first resolves a logical field name to its first matching element, nil if
// the selector found nothing.
func (r *reader) first(ctx context.Context, key string) Element {
	findCtx, cancel := opCtx(ctx, r.cfg.ActionTimeout)
	defer cancel()
	els, err := r.dom.Find(findCtx, r.sel.Sel(key), nil)
	if err != nil || len(els) == 0 {
		return nil
	}
	return els[0]
}

// textOf reads the normalized text of a field, nil when absent.
func (r *reader) textOf(ctx context.Context, key string) *string {
	el := r.first(ctx, key)
	if el == nil {
		return nil
	}
	return r.textIn(ctx, el)
}

// textIn reads an element's text with one relocate-and-retry on a stale
// reference.
func (r *reader) textIn(ctx context.Context, el Element) *string {
	readCtx, cancel := opCtx(ctx, r.cfg.ActionTimeout)
	defer cancel()
	text, err := r.dom.Text(readCtx, el)
	if errors.Is(err, ErrStaleElement) {
		if el = r.relocate(ctx, el); el != nil {
			text, err = r.dom.Text(readCtx, el)
		}
	}
	if err != nil {
		return nil
	}
	if t := utils.NormalizeText(text); t != "" {
		return &t
	}
	return nil
}

// attrOf reads an attribute of a field's first element, nil when absent.
func (r *reader) attrOf(ctx context.Context, key, attr string) *string {
	el := r.first(ctx, key)
	if el == nil {
		return nil
	}
	return r.attrIn(ctx, el, attr)
}

func (r *reader) attrIn(ctx context.Context, el Element, attr string) *string {
	readCtx, cancel := opCtx(ctx, r.cfg.ActionTimeout)
	defer cancel()
	val, ok, err := r.dom.Attr(readCtx, el, attr)
	if errors.Is(err, ErrStaleElement) {
		if el = r.relocate(ctx, el); el != nil {
			val, ok, err = r.dom.Attr(readCtx, el, attr)
		}
	}
	if err != nil || !ok {
		return nil
	}
	if v := utils.NormalizeText(val); v != "" {
		return &v
	}
	return nil
}

// relocate re-resolves a stale element through the surface. A scoped child
// that cannot be re-resolved is treated as absent rather than matched
// against another scope's element.
func (r *reader) relocate(ctx context.Context, el Element) Element {
	findCtx, cancel := opCtx(ctx, r.cfg.ActionTimeout)
	defer cancel()
	repl, err := r.dom.Relocate(findCtx, el)
	if err != nil {
		return nil
	}
	return repl
}

// BasicInfoExtractor reads the identity facts off the Overview tab.
type BasicInfoExtractor struct{ reader }

func NewBasicInfoExtractor(dom Surface, sel Selectors, cfg Config, log zerolog.Logger) *BasicInfoExtractor {
	return &BasicInfoExtractor{newReader(dom, sel, cfg, log, "basic_info")}
}

func (e *BasicInfoExtractor) Extract(ctx context.Context) models.BasicInfo {
	info := models.BasicInfo{
		HeroImageURL:          e.attrOf(ctx, "hero_image", "src"),
		BusinessName:          e.textOf(ctx, "business_name"),
		BusinessNameSecondary: e.textOf(ctx, "business_name_secondary"),
		Rating:                e.textOf(ctx, "rating"),
		ReviewCount:           e.textOf(ctx, "review_count"),
		BusinessType:          e.textOf(ctx, "business_type"),
	}
	info.WheelchairAccessible = e.first(ctx, "wheelchair_accessible") != nil
	if info.BusinessName == nil {
		e.log.Warn().Msg("business name not found")
	}
	return info
}

// ContactExtractor reads address, phone, website, plus code, and services
// link. Address, phone, and plus code live in aria-labels with a fixed
// prefix.
type ContactExtractor struct{ reader }

func NewContactExtractor(dom Surface, sel Selectors, cfg Config, log zerolog.Logger) *ContactExtractor {
	return &ContactExtractor{newReader(dom, sel, cfg, log, "contact_info")}
}

func (e *ContactExtractor) Extract(ctx context.Context) models.ContactInfo {
	waitCtx, cancel := opCtx(ctx, e.cfg.ActionTimeout)
	if err := e.dom.WaitVisible(waitCtx, e.sel.Sel("info_section")); err != nil {
		e.log.Warn().Err(err).Msg("info section not visible, reading anyway")
	}
	cancel()

	return models.ContactInfo{
		Address:     stripPrefixed(e.attrOf(ctx, "address", "aria-label"), "Address:"),
		Phone:       stripPrefixed(e.attrOf(ctx, "phone", "aria-label"), "Phone:"),
		Website:     e.attrOf(ctx, "website", "href"),
		PlusCode:    stripPrefixed(e.attrOf(ctx, "plus_code", "aria-label"), "Plus code:"),
		ServicesURL: e.attrOf(ctx, "services_url", "href"),
	}
}

func stripPrefixed(v *string, prefix string) *string {
	if v == nil {
		return nil
	}
	s := utils.StripLabelPrefix(*v, prefix)
	if s == "" {
		return nil
	}
	return &s
}

// OperationalExtractor reads open/closed status and the weekly hours table.
type OperationalExtractor struct{ reader }

func NewOperationalExtractor(dom Surface, sel Selectors, cfg Config, log zerolog.Logger) *OperationalExtractor {
	return &OperationalExtractor{newReader(dom, sel, cfg, log, "operational_info")}
}

func (e *OperationalExtractor) Extract(ctx context.Context) models.OperationalInfo {
	info := models.OperationalInfo{
		Status:      e.textOf(ctx, "status"),
		WeeklyHours: map[string]string{},
	}

	findCtx, cancel := opCtx(ctx, e.cfg.ActionTimeout)
	rows, err := e.dom.Find(findCtx, e.sel.Sel("hours_rows"), nil)
	cancel()
	if err != nil {
		e.log.Warn().Err(err).Msg("hours table not readable")
		return info
	}

	for _, row := range rows {
		findCtx, cancel := opCtx(ctx, e.cfg.ActionTimeout)
		cells, err := e.dom.Find(findCtx, e.sel.Sel("hours_cell"), row)
		cancel()
		if err != nil || len(cells) < 2 {
			continue
		}
		day := e.textIn(ctx, cells[0])
		hours := e.textIn(ctx, cells[1])
		if day == nil || hours == nil {
			continue
		}
		info.WeeklyHours[*day] = utils.FormatHours(*hours)
	}
	return info
}

// SpecialFeaturesExtractor reads the place-info link rows on the Overview
// tab.
type SpecialFeaturesExtractor struct{ reader }

func NewSpecialFeaturesExtractor(dom Surface, sel Selectors, cfg Config, log zerolog.Logger) *SpecialFeaturesExtractor {
	return &SpecialFeaturesExtractor{newReader(dom, sel, cfg, log, "special_features")}
}

func (e *SpecialFeaturesExtractor) Extract(ctx context.Context) []string {
	findCtx, cancel := opCtx(ctx, e.cfg.ActionTimeout)
	els, err := e.dom.Find(findCtx, e.sel.Sel("special_features"), nil)
	cancel()
	if err != nil {
		return []string{}
	}
	out := make([]string, 0, len(els))
	for _, el := range els {
		if t := e.textIn(ctx, el); t != nil {
			out = append(out, *t)
		}
	}
	return out
}
