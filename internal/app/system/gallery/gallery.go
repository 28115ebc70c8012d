// Package gallery accepts photo submissions and moderates them before they
// appear in the public gallery.
package gallery

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/app/system/filestore"
	"github.com/dalemusser/congregate/internal/app/system/htmlsanitize"
	"github.com/dalemusser/congregate/internal/app/system/moderation"
	"github.com/dalemusser/congregate/internal/app/system/normalize"
	"github.com/dalemusser/congregate/internal/app/system/timeouts"
	"github.com/dalemusser/congregate/internal/domain/models"
	"go.uber.org/zap"
)

// MaxCaptionLen is the longest caption accepted, in runes.
const MaxCaptionLen = 280

// DefaultMaxBytes caps an upload when no limit is configured.
const DefaultMaxBytes int64 = 10 << 20

// PhotoStore is the photo persistence the service needs. *photostore.Store implements it.
type PhotoStore interface {
	moderation.Store[models.Photo]
	Create(ctx context.Context, p models.Photo) (models.Photo, error)
}

// Upload is one submitted file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service implements submit, approve, reject and list for photos.
type Service struct {
	photos    PhotoStore
	files     filestore.Store
	moderator *moderation.Moderator[models.Photo]
	maxBytes  int64
	log       *zap.Logger
	now       func() time.Time
}

// New creates a Service. maxBytes <= 0 uses DefaultMaxBytes.
func New(photos PhotoStore, files filestore.Store, maxBytes int64, logger *zap.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{
		photos:    photos,
		files:     files,
		moderator: moderation.New[models.Photo](photos, "photo"),
		maxBytes:  maxBytes,
		log:       logger,
		now:       time.Now,
	}
}

// MaxBytes returns the upload size limit.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Submit stores the file and creates an unapproved photo.
func (s *Service) Submit(ctx context.Context, caption string, up *Upload) (models.Photo, error) {
	caption = normalize.Caption(htmlsanitize.PlainText(caption))
	if caption == "" {
		return models.Photo{}, apperr.Validation("Caption is required.")
	}
	if len([]rune(caption)) > MaxCaptionLen {
		return models.Photo{}, apperr.Validation(fmt.Sprintf("Caption must be at most %d characters.", MaxCaptionLen))
	}
	if up == nil || up.Body == nil {
		return models.Photo{}, apperr.Validation("A photo file is required.")
	}
	if up.Size == 0 {
		return models.Photo{}, apperr.Validation("The photo file is empty.")
	}
	if up.Size > s.maxBytes {
		return models.Photo{}, apperr.Validation(fmt.Sprintf("The photo must be at most %d MB.", s.maxBytes>>20))
	}
	ct := strings.ToLower(strings.TrimSpace(up.ContentType))
	if !strings.HasPrefix(ct, "image/") {
		return models.Photo{}, apperr.Validation("Only image files can be uploaded.")
	}

	key := filestore.NewKey("gallery", up.Filename, s.now())

	putCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	err := s.files.Put(putCtx, key, io.LimitReader(up.Body, s.maxBytes), up.Size, ct)
	cancel()
	if err != nil {
		return models.Photo{}, apperr.Dependency("Failed to save photo.", fmt.Errorf("store file: %w", err))
	}

	createCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	p, err := s.photos.Create(createCtx, models.Photo{
		URL:         s.files.URL(key),
		StoragePath: key,
		Caption:     caption,
		ContentType: ct,
		Size:        up.Size,
	})
	cancel()
	if err != nil {
		s.removeFile(ctx, key)
		return models.Photo{}, apperr.Dependency("Failed to save photo.", fmt.Errorf("create photo: %w", err))
	}

	s.log.Info("photo submitted", zap.String("photo_id", p.ID.Hex()), zap.Int64("size", p.Size))
	return p, nil
}

// Approve makes a photo publicly visible.
func (s *Service) Approve(ctx context.Context, id string) (*models.Photo, error) {
	p, err := s.moderator.Approve(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	s.log.Info("photo approved", zap.String("photo_id", p.ID.Hex()))
	return p, nil
}

// Reject deletes the photo record and then its stored file. A file delete
// failure is logged; the record is already gone.
func (s *Service) Reject(ctx context.Context, id string) error {
	p, err := s.moderator.Reject(ctx, id)
	if err != nil {
		return err
	}
	s.removeFile(ctx, p.StoragePath)
	s.log.Info("photo rejected", zap.String("photo_id", p.ID.Hex()))
	return nil
}

// GetApproved returns one publicly visible photo. A pending photo is
// reported as not found.
func (s *Service) GetApproved(ctx context.Context, id string) (*models.Photo, error) {
	p, err := s.moderator.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Approved {
		return nil, apperr.NotFound("Photo not found.")
	}
	return p, nil
}

// List returns photos in the given approval state, newest first.
func (s *Service) List(ctx context.Context, approved bool) ([]models.Photo, error) {
	return s.moderator.List(ctx, approved)
}

func (s *Service) removeFile(ctx context.Context, key string) {
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Medium())
	defer cancel()
	if err := s.files.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete stored photo", zap.String("key", key), zap.Error(err))
	}
}
