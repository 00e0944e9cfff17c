package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"marketapi/internal/config"
	"marketapi/internal/model"
	"marketapi/internal/repository"
	"marketapi/internal/storage"
)

const (
	defaultMaxFileSize  = 2 << 20
	defaultExt          = ".jpg"
	defaultPublicPrefix = "/uploads/"
)

// AllowedImageTypes is the content-type allow-set for uploads.
var AllowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"}

// Upload is one incoming file as declared by the client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// FileContent is an opened stored file. The caller closes Body.
type FileContent struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	FileName    string
}

// MediaCoordinator sequences the two writes behind every media upload and
// delete. Upload writes the file before the metadata row; delete removes the
// file before the row. Either way a failure between the steps can leave an
// orphan file but never a row pointing at a missing file.
type MediaCoordinator struct {
	store        storage.Storage
	repo         repository.MediaRepository
	publicPrefix string
	maxSize      int64
	allowed      map[string]struct{}
	log          zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// NewMediaCoordinator creates a coordinator over store and repo. Zero values in
// cfg fall back to a 2 MiB limit and the /uploads/ prefix.
func NewMediaCoordinator(store storage.Storage, repo repository.MediaRepository, cfg config.MediaConfig, log zerolog.Logger) *MediaCoordinator {
	c := &MediaCoordinator{
		store:        store,
		repo:         repo,
		publicPrefix: cfg.PublicPrefix,
		maxSize:      cfg.MaxFileSize,
		allowed:      make(map[string]struct{}, len(AllowedImageTypes)),
		log:          log.With().Str("component", "media_coordinator").Logger(),
		tracer:       otel.Tracer("marketapi/service/media"),
		now:          time.Now,
	}
	if c.publicPrefix == "" {
		c.publicPrefix = defaultPublicPrefix
	}
	if c.maxSize <= 0 {
		c.maxSize = defaultMaxFileSize
	}
	for _, t := range AllowedImageTypes {
		c.allowed[t] = struct{}{}
	}
	return c
}

// Validate runs before any I/O. The checks run in a fixed order and the first
// failing one is reported: size, then content type, then emptiness.
func (c *MediaCoordinator) Validate(u Upload) error {
	if u.Size > c.maxSize {
		return BadRequest(fmt.Sprintf("File size exceeds maximum limit of %dMB", c.maxSize>>20))
	}
	if _, ok := c.allowed[normalizeContentType(u.ContentType)]; !ok {
		return BadRequest("Invalid file type. Only images are allowed (JPEG, PNG, GIF, WebP)")
	}
	if u.Size == 0 || u.Content == nil {
		return BadRequest("File is empty")
	}
	return nil
}

// Store validates u, writes the file, then inserts the metadata row.
func (c *MediaCoordinator) Store(ctx context.Context, u Upload, ownerID string, productID *string) (*model.Media, error) {
	ctx, span := c.tracer.Start(ctx, "media.store", trace.WithAttributes(
		attribute.String("media.content_type", u.ContentType),
		attribute.Int64("media.size", u.Size),
	))
	defer span.End()

	// Validating
	if err := c.Validate(u); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	// WritingFile
	key := uuid.NewString() + extension(u.FileName)
	span.SetAttributes(attribute.String("media.key", key))
	if _, err := c.store.Put(ctx, key, u.Content, storage.PutObjectOptions{
		Size:        u.Size,
		ContentType: normalizeContentType(u.ContentType),
		Metadata:    map[string]string{"original-filename": u.FileName},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write file")
		c.log.Error().Err(err).Str("key", key).Msg("file write failed, no metadata created")
		return nil, Internal("Failed to upload file", err)
	}

	// PersistingMetadata
	m := &model.Media{
		ID:          uuid.NewString(),
		FileName:    u.FileName,
		ContentType: normalizeContentType(u.ContentType),
		FileSize:    u.Size,
		ImagePath:   c.publicPrefix + key,
		ProductID:   productID,
		UserID:      ownerID,
		CreatedAt:   c.now().UTC(),
	}
	stored, err := c.repo.Create(ctx, m)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist metadata")
		// The file stays behind as an orphan; cleanup is out-of-band.
		c.log.Error().Err(err).Str("key", key).Str("media_id", m.ID).Msg("metadata insert failed, orphan file left in storage")
		return nil, Internal("Failed to upload file", err)
	}

	// Committed
	span.SetAttributes(attribute.String("media.id", stored.ID))
	return stored, nil
}

// Remove deletes the file and then the metadata row. A missing file is fine;
// any other storage failure aborts with the row intact.
func (c *MediaCoordinator) Remove(ctx context.Context, m *model.Media) error {
	ctx, span := c.tracer.Start(ctx, "media.remove", trace.WithAttributes(attribute.String("media.id", m.ID)))
	defer span.End()

	key := c.StorageKey(m.ImagePath)
	if err := c.store.Delete(ctx, key); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete file")
		return Internal("Failed to delete file", err)
	}

	if err := c.repo.Delete(ctx, m.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("Media not found with id: " + m.ID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete metadata")
		c.log.Error().Err(err).Str("media_id", m.ID).Str("key", key).Msg("metadata delete failed after file removal")
		return Internal("Failed to delete media", err)
	}
	return nil
}

// Open returns the stored bytes for m. The row can outlive its file; that case is NotFound.
func (c *MediaCoordinator) Open(ctx context.Context, m *model.Media) (*FileContent, error) {
	ctx, span := c.tracer.Start(ctx, "media.open", trace.WithAttributes(attribute.String("media.id", m.ID)))
	defer span.End()

	body, info, err := c.store.Get(ctx, c.StorageKey(m.ImagePath))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, NotFound("File not found for media: " + m.ID)
		}
		span.RecordError(err)
		return nil, Internal("Failed to read file", err)
	}

	ct := m.ContentType
	if ct == "" {
		ct = info.ContentType
	}
	return &FileContent{Body: body, ContentType: ct, Size: info.Size, FileName: m.FileName}, nil
}

// StorageKey maps a public image path (/uploads/{name}) to its storage key.
func (c *MediaCoordinator) StorageKey(imagePath string) string {
	return strings.TrimPrefix(imagePath, c.publicPrefix)
}

func extension(fileName string) string {
	ext := filepath.Ext(filepath.Base(fileName))
	if ext == "" || ext == "." || strings.ContainsAny(ext, `/\ `) {
		return defaultExt
	}
	return ext
}

func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
