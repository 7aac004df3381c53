package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/alokumarjaiswal/gmaps-scraper/models"
	"github.com/alokumarjaiswal/gmaps-scraper/utils"
)

// ScreenshotSink receives whole-tab PNG captures. The pipeline never touches
// the filesystem itself.
type ScreenshotSink func(filename string, png []byte) error

// MediaPipeline walks the photo gallery tab by tab. Photo tabs yield
// thumbnail and high-res URLs from background-image styles; video tabs need
// an iframe crossing to reach the player element.
type MediaPipeline struct {
	reader
	loader      *Loader
	limiter     *rate.Limiter
	screenshots ScreenshotSink
}

func NewMediaPipeline(dom Surface, sel Selectors, cfg Config, log zerolog.Logger, loader *Loader, limiter *rate.Limiter, screenshots ScreenshotSink) *MediaPipeline {
	return &MediaPipeline{
		reader:      newReader(dom, sel, cfg, log, "media"),
		loader:      loader,
		limiter:     limiter,
		screenshots: screenshots,
	}
}

func (p *MediaPipeline) Extract(ctx context.Context) models.PhotosVideos {
	out := models.PhotosVideos{Categories: map[string]models.MediaCategory{}}

	if err := p.openGallery(ctx); err != nil {
		p.log.Warn().Err(err).Msg("photo gallery unavailable")
		return out
	}
	out.Available = true

	tabCount := len(p.find(ctx, "photo_tabs"))
	p.log.Info().Int("tabs", tabCount).Msg("photo gallery opened")

	for i := 0; i < tabCount; i++ {
		// Re-query each pass: switching tabs re-renders the tablist.
		tabs := p.find(ctx, "photo_tabs")
		if i >= len(tabs) {
			break
		}
		tab := tabs[i]
		name := p.tabName(ctx, tab)
		if _, dup := out.Categories[name]; dup {
			name = fmt.Sprintf("%s_%d", name, i+1)
		}

		if err := p.clickPaced(ctx, tab); err != nil {
			p.log.Warn().Err(err).Str("tab", name).Msg("tab switch failed, skipping category")
			continue
		}
		sleepCtx(ctx, p.cfg.SettleDelay)

		cat := models.MediaCategory{Photos: []models.Photo{}, Videos: []models.Video{}}
		if p.cfg.ExtractMediaURLs {
			if strings.Contains(strings.ToLower(name), "video") {
				cat.Videos = p.extractVideos(ctx)
			} else {
				cat.Photos, cat.Incomplete = p.extractPhotos(ctx)
			}
		}
		if p.cfg.CaptureScreenshots {
			if file := p.captureTab(ctx, name); file != nil {
				cat.ScreenshotFile = file
			}
		}

		out.Categories[name] = cat
		out.TotalMediaCount += len(cat.Photos) + len(cat.Videos)
	}
	return out
}

// openGallery clicks the "All" entry point and waits for the tablist and the
// first photo containers. Any failure means the listing has no gallery.
func (p *MediaPipeline) openGallery(ctx context.Context) error {
	btn := p.first(ctx, "photos_all_button")
	if btn == nil {
		return ErrFieldAbsent
	}
	if err := p.clickPaced(ctx, btn); err != nil {
		return err
	}
	for _, key := range []string{"photo_tablist", "photo_containers"} {
		waitCtx, cancel := opCtx(ctx, p.cfg.ElementTimeout)
		err := p.dom.WaitVisible(waitCtx, p.sel.Sel(key))
		cancel()
		if err != nil {
			return fmt.Errorf("waiting for %s: %w", key, err)
		}
	}
	return nil
}

func (p *MediaPipeline) find(ctx context.Context, key string) []Element {
	findCtx, cancel := opCtx(ctx, p.cfg.ActionTimeout)
	defer cancel()
	els, err := p.dom.Find(findCtx, p.sel.Sel(key), nil)
	if err != nil {
		return nil
	}
	return els
}

func (p *MediaPipeline) tabName(ctx context.Context, tab Element) string {
	if div := p.firstIn(ctx, "photo_tab_name", tab); div != nil {
		if name := p.textIn(ctx, div); name != nil {
			return *name
		}
	}
	return "Unknown"
}

func (p *MediaPipeline) clickPaced(ctx context.Context, el Element) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	clickCtx, cancel := opCtx(ctx, p.cfg.ActionTimeout)
	defer cancel()
	return p.dom.Click(clickCtx, el)
}

// extractPhotos scrolls the gallery container until the container count
// plateaus, then reads each tile's thumbnail and high-res styles. Tiles whose
// high-res layer never painted get a bounded number of open-and-close clicks
// to force it.
func (p *MediaPipeline) extractPhotos(ctx context.Context) ([]models.Photo, bool) {
	probe := func(ctx context.Context) (int, error) {
		return len(p.find(ctx, "photo_containers")), nil
	}
	action := func(ctx context.Context) error {
		scrollCtx, cancel := opCtx(ctx, p.cfg.ActionTimeout)
		defer cancel()
		return p.dom.ScrollContainer(scrollCtx, p.sel.Sel("photo_gallery_container"), p.cfg.GalleryScrollStep)
	}
	result := p.loader.Run(ctx, probe, action)

	containers := p.find(ctx, "photo_containers")
	capped := false
	if len(containers) > p.cfg.MaxMediaPerCategory {
		containers = containers[:p.cfg.MaxMediaPerCategory]
		capped = true
	}

	photos := make([]models.Photo, 0, len(containers))
	clicksLeft := p.cfg.MaxImagesToClick
	for i, container := range containers {
		photo := p.readPhoto(ctx, i, container)
		if photo.HighResURL == nil && clicksLeft > 0 {
			clicksLeft--
			p.forceHighRes(ctx, container, &photo)
		}
		if photo.ThumbnailURL == nil && photo.HighResURL == nil {
			p.log.Debug().Int("index", i).Msg("photo tile without any url")
			continue
		}
		photos = append(photos, photo)
	}
	return photos, capped || !result.Complete()
}

func (p *MediaPipeline) readPhoto(ctx context.Context, i int, container Element) models.Photo {
	photo := models.Photo{Index: i}
	if idx := p.attrIn(ctx, container, "data-photo-index"); idx != nil {
		if n, err := strconv.Atoi(*idx); err == nil {
			photo.Index = n
		}
	}
	if label := p.attrIn(ctx, container, "aria-label"); label != nil {
		desc := utils.NormalizeText(*label)
		if desc != "" {
			photo.Description = &desc
		}
	}
	photo.ThumbnailURL = p.styleURL(ctx, container, "photo_thumbnail_div")
	photo.HighResURL = p.styleURL(ctx, container, "photo_highres_div")
	return photo
}

func (p *MediaPipeline) styleURL(ctx context.Context, container Element, key string) *string {
	div := p.firstIn(ctx, key, container)
	if div == nil {
		return nil
	}
	style := p.attrIn(ctx, div, "style")
	if style == nil {
		return nil
	}
	url, ok := utils.URLFromStyle(*style)
	if !ok {
		return nil
	}
	return &url
}

// forceHighRes scrolls the tile into view, opens it so the full-size layer
// loads, re-reads it, and closes the viewer again.
func (p *MediaPipeline) forceHighRes(ctx context.Context, container Element, photo *models.Photo) {
	viewCtx, cancel := opCtx(ctx, p.cfg.ActionTimeout)
	if err := p.dom.ScrollIntoView(viewCtx, container); err != nil {
		p.log.Debug().Err(err).Msg("could not scroll tile into view")
	}
	cancel()
	if err := p.clickPaced(ctx, container); err != nil {
		return
	}
	sleepCtx(ctx, p.cfg.SettleDelay)
	photo.HighResURL = p.styleURL(ctx, container, "photo_highres_div")
	p.closeViewer(ctx)
}

func (p *MediaPipeline) closeViewer(ctx context.Context) {
	if btn := p.first(ctx, "photo_modal_close"); btn != nil {
		if err := p.clickPaced(ctx, btn); err == nil {
			sleepCtx(ctx, p.cfg.SettleDelay)
			return
		}
	}
	escCtx, cancel := opCtx(ctx, p.cfg.ActionTimeout)
	defer cancel()
	if err := p.dom.PressEscape(escCtx); err != nil {
		p.log.Warn().Err(err).Msg("could not close photo viewer")
	}
	sleepCtx(ctx, p.cfg.SettleDelay)
}

// extractVideos crosses into each player iframe and reads the video element's
// attributes. An iframe without a reachable video element is skipped.
func (p *MediaPipeline) extractVideos(ctx context.Context) []models.Video {
	sleepCtx(ctx, p.cfg.SettleDelay)

	iframes := p.find(ctx, "video_iframe")
	if len(iframes) > p.cfg.MaxMediaPerCategory {
		iframes = iframes[:p.cfg.MaxMediaPerCategory]
	}

	videos := make([]models.Video, 0, len(iframes))
	for i, iframe := range iframes {
		frameCtx, cancel := opCtx(ctx, p.cfg.ElementTimeout)
		frame, err := p.dom.ContentFrame(frameCtx, iframe)
		cancel()
		if err != nil {
			p.log.Warn().Err(err).Int("iframe", i).Msg("could not reach iframe content")
			continue
		}
		player := p.firstIn(ctx, "video_element", frame)
		if player == nil {
			p.log.Warn().Int("iframe", i).Msg("no video element inside iframe")
			continue
		}
		src := p.attrIn(ctx, player, "src")
		if src == nil {
			continue
		}
		videos = append(videos, models.Video{
			SourceURL: *src,
			PosterURL: p.attrIn(ctx, player, "poster"),
			Format:    p.attrIn(ctx, player, "format"),
			DocID:     p.attrIn(ctx, player, "docid"),
			CPN:       p.attrIn(ctx, player, "cpn"),
		})
	}
	return videos
}

// captureTab screenshots the viewport for the active category and hands the
// PNG to the sink. Returns the written filename.
func (p *MediaPipeline) captureTab(ctx context.Context, name string) *string {
	if p.screenshots == nil {
		return nil
	}
	shotCtx, cancel := opCtx(ctx, p.cfg.ElementTimeout)
	png, err := p.dom.Screenshot(shotCtx)
	cancel()
	if err != nil {
		p.log.Warn().Err(err).Str("tab", name).Msg("screenshot capture failed")
		return nil
	}
	slug := strings.ToLower(strings.ReplaceAll(utils.CleanFilename(name), " ", "_"))
	file := fmt.Sprintf("photo_tab_%s.png", slug)
	if err := p.screenshots(file, png); err != nil {
		p.log.Warn().Err(err).Str("file", file).Msg("screenshot write failed")
		return nil
	}
	return &file
}
