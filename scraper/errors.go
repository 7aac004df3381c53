package scraper

import "errors"

var (
	// ErrFieldAbsent reports that a selector resolved to zero elements.
	// Always recovered at the field level; the field keeps its absent marker.
	ErrFieldAbsent = errors.New("field absent")

	// ErrTabUnavailable reports that a tab control could not be located or
	// switched to after one retry. Absence of a tab is data, not a defect.
	ErrTabUnavailable = errors.New("tab unavailable")

	// ErrStaleElement reports that an element reference became invalid
	// mid-operation, usually after a scroll-triggered re-render. Callers
	// re-locate via selector and retry the single operation once.
	ErrStaleElement = errors.New("element is stale or detached from the document")

	// ErrNotListingPage reports that the navigated page is not a business
	// listing. Fatal: no partial profile is emitted.
	ErrNotListingPage = errors.New("page is not a business listing")
)
