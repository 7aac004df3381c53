package scraper

// Selectors maps logical field names to CSS selectors. Google changes these
// class names regularly; they are isolated here so an update is config, not
// code. The core never hard-codes a selector string.
type Selectors map[string]string

// DefaultSelectors is the selector table for the current Google Maps markup.
func DefaultSelectors() Selectors {
	return Selectors{
		// Basic info
		"business_name":           "h1.DUwDvf",
		"business_name_secondary": "h2.bwoZTb",
		"hero_image":              `button[aria-label^="Photo of"] img`,
		"rating":                  `.F7nice span[aria-hidden="true"]`,
		"review_count":            `.F7nice span[aria-label$="reviews"]`,
		"business_type":           `button[jsaction="pane.wfvdle17.category"]`,
		"wheelchair_accessible":   `span[aria-label*="accessible entrance"]`,

		// Contact info
		"info_section": `div[aria-label^="Information for"]`,
		"address":      `button[aria-label^="Address:"]`,
		"phone":        `button[aria-label^="Phone:"]`,
		"website":      `a[data-item-id="authority"]`,
		"plus_code":    `button[aria-label^="Plus code:"]`,
		"services_url": `a[data-item-id="services"]`,

		// Operational info
		"status":           ".ZDu9vd",
		"hours_rows":       "table.eK4R0e tr",
		"hours_cell":       "td",
		"special_features": `div[data-item-id^="place-info-links"] div.Io6YTe`,

		// Popular times
		"popular_times_current_day": `div[role='option'][aria-selected='true']`,
		"popular_times_bars":        `div[role='img'][aria-label*='% busy']`,
		"next_day_button":           `button[aria-label='Go to the next day']`,

		// Top-level tabs
		"tab_button":       `button[role="tab"]`,
		"reviews_loaded":   `div.jftiEf[data-review-id]`,
		"about_loaded":     `div.iP2t7d.fontBodyMedium`,
		"overview_loaded":  "h1.DUwDvf",
		"photos_loaded":    `div[role="tablist"]`,
		"page_ready":       "h1",
		"hero_image_ready": `button[aria-label^="Photo of"] img`,

		// About tab
		"about_section_items":  "div.iP2t7d.fontBodyMedium",
		"about_section_titles": "h2.iL3Qke.fontTitleSmall",
		"about_feature_items":  "ul.ZQ6we li.hpLkke",
		"about_feature_text":   "span[aria-label]",

		// Reviews tab
		"review_container":           `div.jftiEf[data-review-id]`,
		"review_see_more":            `button.w8nwRe.kyuRq[aria-label="See more"]`,
		"owner_see_more":             `button.w8nwRe.kyuRq[aria-label="See more"][jsaction*="expandOwnerResponse"]`,
		"reviewer_photo_button":      "button.WEBjve",
		"reviewer_photo_image":       "img.NBa7we",
		"reviewer_info_button":       "button.al6Kxe",
		"reviewer_name":              "div.d4r55",
		"reviewer_details":           "div.RfnDt",
		"review_rating_time":         "div.DU9Pgb",
		"review_rating_span":         "span.kvMYJc",
		"review_time_span":           "span.rsqaWe",
		"review_text_span":           "span.wiI7pd",
		"review_photo_button":        "button.Tya61d",
		"owner_response_div":         "div.CDe7pd",
		"owner_response_time_span":   "span.DZSIDd",
		"owner_response_text_div":    "div.wiI7pd",
		"reviews_scroll_container":   "div.m6QErb.DxyBCb.kA9KIf.dS8AEf",
		"reviews_declared_total":     `div.jANrlb div.fontBodySmall`,

		// Photos / media
		"photos_all_button":       `button[aria-label="All"]`,
		"photo_tablist":           `div[role="tablist"]`,
		"photo_tabs":              `div[role="tablist"] button[role="tab"]`,
		"photo_tab_name":          "div.Gpq6kf",
		"photo_gallery_container": "div.m6QErb.DxyBCb.kA9KIf.dS8AEf.XiKgde",
		"photo_containers":        "a.OKAoZd",
		"photo_thumbnail_div":     "div.U39Pmb",
		"photo_highres_div":       "div.Uf0tqf.loaded",
		"photo_modal_close":       `button[aria-label="Close"]`,
		"video_iframe":            "iframe.widget-scene-imagery-iframe",
		"video_element":           "video",
	}
}

// Sel returns the selector for a logical name; missing names resolve to an
// empty selector, which the DOM surface treats as "find nothing".
func (s Selectors) Sel(name string) string {
	return s[name]
}
