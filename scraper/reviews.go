package scraper

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/alokumarjaiswal/gmaps-scraper/models"
	"github.com/alokumarjaiswal/gmaps-scraper/utils"
)

// findIn resolves a logical field name inside a scope element.
func (r *reader) findIn(ctx context.Context, key string, scope Element) []Element {
	findCtx, cancel := opCtx(ctx, r.cfg.ActionTimeout)
	defer cancel()
	els, err := r.dom.Find(findCtx, r.sel.Sel(key), scope)
	if err != nil {
		return nil
	}
	return els
}

func (r *reader) firstIn(ctx context.Context, key string, scope Element) Element {
	els := r.findIn(ctx, key, scope)
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// ReviewPipeline loads, deduplicates, expands, and parses the review list.
// Per-review failures are skipped and logged; only the tab switch can make
// the whole pipeline report unavailability.
type ReviewPipeline struct {
	reader
	nav     *Navigator
	loader  *Loader
	limiter *rate.Limiter
}

func NewReviewPipeline(dom Surface, sel Selectors, cfg Config, log zerolog.Logger, nav *Navigator, loader *Loader, limiter *rate.Limiter) *ReviewPipeline {
	return &ReviewPipeline{
		reader:  newReader(dom, sel, cfg, log, "reviews"),
		nav:     nav,
		loader:  loader,
		limiter: limiter,
	}
}

func (p *ReviewPipeline) Extract(ctx context.Context) models.Reviews {
	out := models.Reviews{
		Data: models.ReviewsData{Complete: true, Reviews: []models.ReviewRecord{}},
	}

	if err := p.nav.Switch(ctx, TabReviews); err != nil {
		p.log.Warn().Err(err).Msg("reviews tab unavailable")
		return out
	}
	out.Available = true

	// The page's own count is a target hint, not a correctness requirement.
	declared := 0
	if t := p.textOf(ctx, "reviews_declared_total"); t != nil {
		if n, ok := utils.ParseCount(*t); ok {
			declared = n
		}
	}
	out.Data.DeclaredTotal = declared

	result := p.loadAll(ctx, declared)

	ids, byID := p.collectDistinct(ctx)
	p.log.Info().
		Int("distinct", len(ids)).
		Int("declared", declared).
		Str("load", result.Outcome.String()).
		Msg("review list loaded")

	for _, id := range ids {
		container := byID[id]
		p.expand(ctx, container)
		rec, err := p.parseOne(ctx, id, container)
		if err != nil {
			p.log.Warn().Err(err).Str("review_id", id).Msg("skipping malformed review")
			continue
		}
		out.Data.Reviews = append(out.Data.Reviews, rec)
	}

	out.Data.TotalReviews = len(out.Data.Reviews)
	out.Data.Complete = result.Complete() && (declared == 0 || out.Data.TotalReviews >= declared)
	if !out.Data.Complete {
		p.log.Warn().
			Int("achieved", out.Data.TotalReviews).
			Int("declared", declared).
			Msg("review shortfall: scroll exhausted before declared total")
	}
	return out
}

// loadAll scrolls the review list until the set of distinct review ids stops
// growing (or the declared total is reached).
func (p *ReviewPipeline) loadAll(ctx context.Context, declared int) LoadResult {
	probe := func(ctx context.Context) (int, error) {
		ids, _ := p.collectDistinct(ctx)
		return len(ids), nil
	}
	action := func(ctx context.Context) error {
		scrollCtx, cancel := opCtx(ctx, p.cfg.ActionTimeout)
		defer cancel()
		err := p.dom.ScrollContainer(scrollCtx, p.sel.Sel("reviews_scroll_container"), p.cfg.GalleryScrollStep*2)
		if errors.Is(err, ErrFieldAbsent) {
			return p.dom.ScrollToBottom(scrollCtx)
		}
		return err
	}
	return p.loader.WithTarget(declared).Run(ctx, probe, action)
}

// collectDistinct gathers the identity key of every review element in
// document order. Re-rendered duplicates collapse onto the first sighting.
func (p *ReviewPipeline) collectDistinct(ctx context.Context) ([]string, map[string]Element) {
	findCtx, cancel := opCtx(ctx, p.cfg.ActionTimeout)
	els, err := p.dom.Find(findCtx, p.sel.Sel("review_container"), nil)
	cancel()
	if err != nil {
		return nil, nil
	}

	order := make([]string, 0, len(els))
	byID := make(map[string]Element, len(els))
	for _, el := range els {
		id := p.attrIn(ctx, el, "data-review-id")
		if id == nil {
			continue
		}
		if _, seen := byID[*id]; seen {
			continue
		}
		byID[*id] = el
		order = append(order, *id)
	}
	return order, byID
}

// expand clicks through the review's "see more" controls until a pass finds
// nothing to click and the visible text stops growing. Some passes only
// reveal further truncation, so a single pass is not enough; MaxExpandPasses
// bounds termination.
func (p *ReviewPipeline) expand(ctx context.Context, container Element) {
	lastLen := p.textLen(ctx, container)
	for pass := 0; pass < p.cfg.MaxExpandPasses; pass++ {
		clicked := p.clickSeeMore(ctx, container)
		if clicked == 0 {
			return
		}
		sleepCtx(ctx, p.cfg.SettleDelay)
		curLen := p.textLen(ctx, container)
		if curLen == lastLen {
			return
		}
		lastLen = curLen
	}
}

// clickSeeMore clicks every visible expansion control in the container, for
// both review text and the owner reply, and reports how many were clicked.
func (p *ReviewPipeline) clickSeeMore(ctx context.Context, container Element) int {
	clicked := 0
	for _, key := range []string{"review_see_more", "owner_see_more"} {
		for _, btn := range p.findIn(ctx, key, container) {
			visCtx, cancel := opCtx(ctx, p.cfg.ActionTimeout)
			visible, err := p.dom.IsVisible(visCtx, btn)
			cancel()
			if err != nil || !visible {
				continue
			}
			if p.limiter != nil {
				if err := p.limiter.Wait(ctx); err != nil {
					return clicked
				}
			}
			clickCtx, cancel := opCtx(ctx, p.cfg.ActionTimeout)
			err = p.dom.Click(clickCtx, btn)
			cancel()
			if err == nil {
				clicked++
			}
		}
	}
	return clicked
}

func (p *ReviewPipeline) textLen(ctx context.Context, container Element) int {
	total := 0
	if t := p.firstIn(ctx, "review_text_span", container); t != nil {
		if s := p.textIn(ctx, t); s != nil {
			total += len(*s)
		}
	}
	if owner := p.firstIn(ctx, "owner_response_div", container); owner != nil {
		if t := p.firstIn(ctx, "owner_response_text_div", owner); t != nil {
			if s := p.textIn(ctx, t); s != nil {
				total += len(*s)
			}
		}
	}
	return total
}

// parseOne turns a fully expanded review container into a record. A missing
// reviewer name invalidates the element; everything else degrades to absent
// markers.
func (p *ReviewPipeline) parseOne(ctx context.Context, id string, container Element) (models.ReviewRecord, error) {
	rec := models.ReviewRecord{ReviewID: id, ReviewPhotos: []string{}}

	info := p.firstIn(ctx, "reviewer_info_button", container)
	if info == nil {
		return rec, errors.New("no reviewer block")
	}
	name := p.firstIn(ctx, "reviewer_name", info)
	if name == nil {
		return rec, errors.New("no reviewer name element")
	}
	n := p.textIn(ctx, name)
	if n == nil {
		return rec, errors.New("empty reviewer name")
	}
	rec.ReviewerName = *n
	if d := p.firstIn(ctx, "reviewer_details", info); d != nil {
		rec.ReviewerDetails = p.textIn(ctx, d)
	}

	if btn := p.firstIn(ctx, "reviewer_photo_button", container); btn != nil {
		if img := p.firstIn(ctx, "reviewer_photo_image", btn); img != nil {
			rec.ReviewerPhotoURL = p.attrIn(ctx, img, "src")
		}
	}

	if rt := p.firstIn(ctx, "review_rating_time", container); rt != nil {
		if span := p.firstIn(ctx, "review_rating_span", rt); span != nil {
			if label := p.attrIn(ctx, span, "aria-label"); label != nil {
				if stars, ok := utils.ParseRatingStars(*label); ok {
					rec.Rating = &stars
				}
			}
		}
		if span := p.firstIn(ctx, "review_time_span", rt); span != nil {
			rec.ReviewTime = p.textIn(ctx, span)
		}
	}

	if t := p.firstIn(ctx, "review_text_span", container); t != nil {
		rec.ReviewText = p.textIn(ctx, t)
	}

	for _, btn := range p.findIn(ctx, "review_photo_button", container) {
		style := p.attrIn(ctx, btn, "style")
		if style == nil {
			continue
		}
		if url, ok := utils.URLFromStyle(*style); ok {
			rec.ReviewPhotos = append(rec.ReviewPhotos, url)
		}
	}

	if owner := p.firstIn(ctx, "owner_response_div", container); owner != nil {
		var text *string
		if t := p.firstIn(ctx, "owner_response_text_div", owner); t != nil {
			text = p.textIn(ctx, t)
		}
		if text != nil {
			resp := models.OwnerResponse{ResponseText: *text}
			if t := p.firstIn(ctx, "owner_response_time_span", owner); t != nil {
				resp.ResponseTime = p.textIn(ctx, t)
			}
			rec.OwnerResponse = &resp
		}
	}

	return rec, nil
}
