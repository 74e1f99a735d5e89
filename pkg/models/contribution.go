package models

// ContributionRecord is one calendar day that had activity. Date is the raw
// data-date token from the profile page; Items is the activity count, encoded
// as a string on the wire to match the page's attribute values.
type ContributionRecord struct {
	Date  string `json:"date"`
	Items int    `json:"items,string"`
}

// ScrapeResult is the outcome of one successful profile extraction. Records
// are in document order and every record has Items > 0. Results are immutable
// once built; the cache hands out the same value to every reader.
type ScrapeResult struct {
	Records []ContributionRecord
}

// CalendarResponse is the success payload for calendar endpoints.
type CalendarResponse struct {
	Contributions []ContributionRecord `json:"contributions"`
	Message       string               `json:"message"`
	Success       bool                 `json:"success"`
}

// ErrorResponse is the failure payload for calendar endpoints.
type ErrorResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
