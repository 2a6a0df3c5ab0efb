package model

import "time"

// URL represents a shortened URL record.
// ShortCode is empty between record creation and code assignment.
type URL struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	ClickCount  int64     `json:"click_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// AnalyticsEntry is one row of the append-only click log. The short code
// is an unenforced reference: entries may outlive or precede a matching
// URL record.
type AnalyticsEntry struct {
	ID        int64     `json:"id"`
	ShortCode string    `json:"short_code"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

// ClickEvent is the unit of work handed to the analytics recorder and
// mirrored to the broker when one is configured.
type ClickEvent struct {
	ID         string    `json:"id"`
	ShortCode  string    `json:"short_code"`
	Country    string    `json:"country"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ShortenRequest represents the request body for POST /shorten.
// The url field must be present but its contents are not validated.
type ShortenRequest struct {
	URL string `json:"url" binding:"required"`
}

// ShortenResult represents the response for POST /shorten.
type ShortenResult struct {
	ShortCode string `json:"short_code"`
	Original  string `json:"original"`
	Existed   bool   `json:"existed"`
}

// RedirectResponse carries the redirect target of GET /:code. The 302 is
// conveyed as a body field rather than an actual HTTP redirect; the
// frontend performs the navigation itself.
type RedirectResponse struct {
	Status   string `json:"status"`
	Location string `json:"location"`
}

// CountryClicks is one aggregated row of GET /api/analytics.
type CountryClicks struct {
	Name   string `json:"name"`
	Clicks int64  `json:"clicks"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
