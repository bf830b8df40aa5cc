package adapter

import "io"

// CompressedImage is the output of the upload ingest pipeline: a bounded
// re-encode ready for object storage.
type CompressedImage struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// ImageCompressor normalizes user uploads before they hit storage.
type ImageCompressor interface {
	Compress(r io.Reader) (*CompressedImage, error)
}
