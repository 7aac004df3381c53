package models

import "time"

// BusinessProfile is the root aggregate produced by one scraping run.
// Every field is always present in the serialized output; values that could
// not be read carry their zero/null marker instead of being omitted.
type BusinessProfile struct {
	RunID      string    `json:"run_id"`
	ListingURL string    `json:"listing_url"`
	ScrapedAt  time.Time `json:"scraped_at"`

	Overview     Overview     `json:"overview"`
	Reviews      Reviews      `json:"reviews"`
	About        About        `json:"about"`
	PhotosVideos PhotosVideos `json:"photos_videos"`
}

type Overview struct {
	BasicInfo       BasicInfo       `json:"basic_info"`
	ContactInfo     ContactInfo     `json:"contact_info"`
	OperationalInfo OperationalInfo `json:"operational_info"`
	AdditionalInfo  AdditionalInfo  `json:"additional_info"`
}

type BasicInfo struct {
	HeroImageURL          *string `json:"hero_image_url"`
	BusinessName          *string `json:"business_name"`
	BusinessNameSecondary *string `json:"business_name_secondary"`
	Rating                *string `json:"rating"`
	ReviewCount           *string `json:"review_count"`
	BusinessType          *string `json:"business_type"`
	WheelchairAccessible  bool    `json:"wheelchair_accessible"`
}

type ContactInfo struct {
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Website     *string `json:"website"`
	PlusCode    *string `json:"plus_code"`
	ServicesURL *string `json:"services_url"`
}

type OperationalInfo struct {
	Status      *string           `json:"status"`
	WeeklyHours map[string]string `json:"weekly_hours"`
}

type AdditionalInfo struct {
	SpecialFeatures []string     `json:"special_features"`
	PopularTimes    PopularTimes `json:"popular_times"`
}

// PopularTimes maps a weekday name to its hourly busyness entries in
// chronological order. Days the chart never painted are absent from the map.
type PopularTimes map[string][]BusySlot

type BusySlot struct {
	Time           string `json:"time"`
	BusyPercentage int    `json:"busy_percentage"`
}

type Reviews struct {
	Available bool        `json:"available"`
	Data      ReviewsData `json:"data"`
}

type ReviewsData struct {
	// DeclaredTotal is the page's own review count, read best-effort.
	DeclaredTotal int `json:"declared_total"`
	// TotalReviews is the number of reviews actually extracted.
	TotalReviews int `json:"total_reviews"`
	// Complete reports whether scroll-loading reached the declared total
	// (or plateaued with no declared total known).
	Complete bool           `json:"complete"`
	Reviews  []ReviewRecord `json:"reviews"`
}

// ReviewRecord is one review in document order. ReviewID is the page-assigned
// identity key used for deduplication.
type ReviewRecord struct {
	ReviewID         string         `json:"review_id"`
	ReviewerName     string         `json:"reviewer_name"`
	ReviewerPhotoURL *string        `json:"reviewer_photo_url"`
	ReviewerDetails  *string        `json:"reviewer_details"`
	Rating           *string        `json:"rating"`
	ReviewTime       *string        `json:"review_time"`
	ReviewText       *string        `json:"review_text"`
	ReviewPhotos     []string       `json:"review_photos"`
	OwnerResponse    *OwnerResponse `json:"owner_response"`
}

type OwnerResponse struct {
	ResponseText string  `json:"response_text"`
	ResponseTime *string `json:"response_time"`
}

type About struct {
	Available      bool          `json:"available"`
	Accessibility  Accessibility `json:"accessibility"`
	ServiceOptions []string      `json:"service_options"`
	Amenities      []string      `json:"amenities"`
	CrowdInfo      []string      `json:"crowd_info"`
	PlanningInfo   []string      `json:"planning_info"`
	PaymentMethods []string      `json:"payment_methods"`
	ParkingOptions []string      `json:"parking_options"`
}

type Accessibility struct {
	Available   []string `json:"available"`
	Unavailable []string `json:"unavailable"`
}

type PhotosVideos struct {
	Available       bool                     `json:"available"`
	TotalMediaCount int                      `json:"total_media_count"`
	Categories      map[string]MediaCategory `json:"categories"`
}

// MediaCategory holds the media extracted from one gallery tab. Photos and
// Videos are distinct variants; a category carries one or the other.
type MediaCategory struct {
	Photos []Photo `json:"photos"`
	Videos []Video `json:"videos"`
	// ScreenshotFile is set when the run captured a whole-tab screenshot
	// instead of (or in addition to) item URLs.
	ScreenshotFile *string `json:"screenshot_file"`
	// Incomplete marks a category whose lazy-load scrolling hit its step
	// budget before the item count plateaued.
	Incomplete bool `json:"incomplete"`
}

type Photo struct {
	Index        int     `json:"index"`
	Description  *string `json:"description"`
	ThumbnailURL *string `json:"thumbnail_url"`
	HighResURL   *string `json:"high_res_url"`
}

type Video struct {
	SourceURL string  `json:"source_url"`
	PosterURL *string `json:"poster_url"`
	Format    *string `json:"format"`
	DocID     *string `json:"doc_id"`
	CPN       *string `json:"cpn"`
}

// NewBusinessProfile returns a profile with every collection initialized so
// the serialized shape is identical for businesses missing tabs or fields.
func NewBusinessProfile(runID, listingURL string) *BusinessProfile {
	return &BusinessProfile{
		RunID:      runID,
		ListingURL: listingURL,
		ScrapedAt:  time.Now().UTC(),
		Overview: Overview{
			OperationalInfo: OperationalInfo{WeeklyHours: map[string]string{}},
			AdditionalInfo: AdditionalInfo{
				SpecialFeatures: []string{},
				PopularTimes:    PopularTimes{},
			},
		},
		Reviews: Reviews{
			Data: ReviewsData{Complete: true, Reviews: []ReviewRecord{}},
		},
		About: About{
			Accessibility:  Accessibility{Available: []string{}, Unavailable: []string{}},
			ServiceOptions: []string{},
			Amenities:      []string{},
			CrowdInfo:      []string{},
			PlanningInfo:   []string{},
			PaymentMethods: []string{},
			ParkingOptions: []string{},
		},
		PhotosVideos: PhotosVideos{Categories: map[string]MediaCategory{}},
	}
}
