package model

import "time"

// SourceAsset is an uploaded image identified by its storage path. It is
// owned by the uploading user and immutable once written.
type SourceAsset struct {
	ID          string
	UserID      string
	Path        string
	ContentType string
	Bytes       int64
	Width       int
	Height      int
	CreatedAt   time.Time
}

// GeneratedAsset is a provider result prior to persistence. Either Data is
// populated (inline result) or URL points at the provider's copy.
type GeneratedAsset struct {
	ContentType string
	Data        []byte
	URL         string
	Width       int
	Height      int
}
