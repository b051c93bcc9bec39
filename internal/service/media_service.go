package service

import (
	"context"
	"strings"

	"github.com/flickster/flickster/backend/pkg/apperr"
	"github.com/flickster/flickster/backend/pkg/logger"
	"github.com/flickster/flickster/backend/pkg/sanitize"
	"github.com/flickster/flickster/backend/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
)

// MediaService pushes catalog media to object storage. File types are
// decided by sniffing the payload, never by trusting the client's
// Content-Type or filename extension.
type MediaService struct {
	store storage.ObjectStore
}

func NewMediaService(store storage.ObjectStore) *MediaService {
	return &MediaService{store: store}
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpeg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

var videoExtensions = map[string]string{
	"video/mp4":       ".mp4",
	"video/x-msvideo": ".avi",
	"video/quicktime": ".mov",
	"video/webm":      ".webm",
}

// UploadImage stores an image under keyPrefix and returns its public URL.
// keyPrefix is e.g. "public/movies/covers/cover-" and the sanitized name plus
// sniffed extension complete the key.
func (s *MediaService) UploadImage(ctx context.Context, keyPrefix, originalName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperr.BadRequest("no image received")
	}

	mtype := mimetype.Detect(data)
	ext, ok := imageExtensions[normalizedMIME(mtype.String())]
	if !ok {
		return "", apperr.BadRequest("unsupported image type")
	}

	key := keyPrefix + sanitize.ObjectKeyPart(originalName) + ext
	url, err := s.store.Upload(ctx, key, mtype.String(), data)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to store image", err)
	}
	return url, nil
}

// UploadVideo stores a video under keyPrefix and returns its public URL.
func (s *MediaService) UploadVideo(ctx context.Context, keyPrefix, originalName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperr.BadRequest("no video data received")
	}

	mtype := mimetype.Detect(data)
	ext, ok := videoExtensions[normalizedMIME(mtype.String())]
	if !ok {
		return "", apperr.BadRequest("unsupported video type")
	}

	key := keyPrefix + sanitize.ObjectKeyPart(originalName) + ext
	url, err := s.store.Upload(ctx, key, mtype.String(), data)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to store video", err)
	}
	return url, nil
}

// DeleteByURL best-effort removes a previously uploaded object given its
// public URL. Used when replacing media on update; failures are logged, not
// surfaced, because the replacement upload has already succeeded.
func (s *MediaService) DeleteByURL(ctx context.Context, url string) {
	if url == "" {
		return
	}
	idx := strings.Index(url, ".s3.amazonaws.com/")
	if idx < 0 {
		return
	}
	key := url[idx+len(".s3.amazonaws.com/"):]
	if err := s.store.Delete(ctx, key); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to delete replaced media object")
	}
}

// normalizedMIME strips any parameters mimetype may include.
func normalizedMIME(m string) string {
	if idx := strings.IndexByte(m, ';'); idx >= 0 {
		m = m[:idx]
	}
	return strings.TrimSpace(m)
}
