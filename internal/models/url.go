package models

import "time"

// URL represents a shortened URL record and its view counter.
type URL struct {
	// ID is the storage identifier of the record.
	ID int64
	// ShortCode is the unique token the record is looked up by. It never changes after creation.
	ShortCode string
	// OriginalURL is the target the short code redirects to.
	OriginalURL string
	// AccessCount is the number of successful redirects through the short code.
	AccessCount int64
	// CreatedAt is the timestamp indicating when the record was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp indicating when the record was last updated.
	UpdatedAt time.Time
}
