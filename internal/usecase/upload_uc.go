package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tryonjewel-server/internal/domain"
	"tryonjewel-server/internal/domain/model"
	"tryonjewel-server/internal/domain/ports/adapter"
)

var allowedUploadExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".heic": true,
}

// UploadService validates and normalizes source images, then writes them to
// a user-scoped storage path. Every accepted upload is re-encoded, so the
// stored object is always a bounded JPEG regardless of what came in.
type UploadService struct {
	storage  adapter.ObjectStorage
	comp     adapter.ImageCompressor
	maxBytes int64
	log      *zerolog.Logger
}

func NewUploadService(storage adapter.ObjectStorage, comp adapter.ImageCompressor, maxBytes int64, log *zerolog.Logger) *UploadService {
	return &UploadService{storage: storage, comp: comp, maxBytes: maxBytes, log: log}
}

func (s *UploadService) Upload(ctx context.Context, userID, filename, contentType string, r io.Reader, size int64) (*model.SourceAsset, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if size > s.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidArgument, s.maxBytes)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedUploadExt[ext] {
		return nil, fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidArgument, ext)
	}
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrInvalidArgument, contentType)
	}

	compressed, err := s.comp.Compress(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	asset := &model.SourceAsset{
		ID:          model.NewID(),
		UserID:      userID,
		ContentType: compressed.ContentType,
		Bytes:       int64(len(compressed.Data)),
		Width:       compressed.Width,
		Height:      compressed.Height,
		CreatedAt:   time.Now().UTC(),
	}
	asset.Path = fmt.Sprintf("users/%s/uploads/%s.jpg", userID, asset.ID)

	if err := s.storage.Put(ctx, asset.Path, bytes.NewReader(compressed.Data), asset.Bytes, asset.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	s.log.Info().Str("user_id", userID).Str("path", asset.Path).
		Int64("bytes", asset.Bytes).Msg("upload stored")
	return asset, nil
}
