package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"marketapi/internal/events"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// MediaService covers the media service's use cases. The file and metadata
// writes go through a MediaCoordinator.
type MediaService interface {
	// Upload stores a file for actor, optionally associated with productID
	// (empty for none). The product id is not checked against the product service.
	Upload(ctx context.Context, actor Actor, u Upload, productID string) (*model.Media, error)
	Get(ctx context.Context, id string) (*model.Media, error)
	ListByProduct(ctx context.Context, productID string) ([]model.Media, error)
	ListMine(ctx context.Context, actor Actor) ([]model.Media, error)
	// Delete does not touch products that still list the media id.
	Delete(ctx context.Context, actor Actor, id string) error
	File(ctx context.Context, id string) (*FileContent, error)
}

type mediaService struct {
	repo   repository.MediaRepository
	coord  *MediaCoordinator
	events events.Publisher
	topic  string
	log    zerolog.Logger
}

// NewMediaService constructs a MediaService publishing to topic.
func NewMediaService(repo repository.MediaRepository, coord *MediaCoordinator, pub events.Publisher, topic string, log zerolog.Logger) MediaService {
	return &mediaService{
		repo:   repo,
		coord:  coord,
		events: pub,
		topic:  topic,
		log:    log.With().Str("component", "media_service").Logger(),
	}
}

func (s *mediaService) Upload(ctx context.Context, actor Actor, u Upload, productID string) (*model.Media, error) {
	s.log.Info().Str("user_id", actor.ID).Str("file_name", u.FileName).Int64("size", u.Size).Msg("uploading media")

	var pid *string
	if p := strings.TrimSpace(productID); p != "" {
		pid = &p
	}
	m, err := s.coord.Store(ctx, u, actor.ID, pid)
	if err != nil {
		return nil, err
	}

	_ = s.events.Publish(ctx, s.topic, events.New(events.MediaUploaded, m.ID, actor.ID, strings.TrimSpace(productID)))
	return m, nil
}

func (s *mediaService) Get(ctx context.Context, id string) (*model.Media, error) {
	return s.find(ctx, id)
}

func (s *mediaService) ListByProduct(ctx context.Context, productID string) ([]model.Media, error) {
	items, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, Internal("Failed to list media", err)
	}
	return items, nil
}

func (s *mediaService) ListMine(ctx context.Context, actor Actor) ([]model.Media, error) {
	items, err := s.repo.FindByUserID(ctx, actor.ID)
	if err != nil {
		return nil, Internal("Failed to list media", err)
	}
	return items, nil
}

func (s *mediaService) Delete(ctx context.Context, actor Actor, id string) error {
	s.log.Info().Str("media_id", id).Str("user_id", actor.ID).Msg("deleting media")

	m, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeTo("delete this media", actor.ID, m.UserID); err != nil {
		return err
	}
	if err := s.coord.Remove(ctx, m); err != nil {
		return err
	}

	_ = s.events.Publish(ctx, s.topic, events.New(events.MediaDeleted, m.ID, actor.ID))
	return nil
}

func (s *mediaService) File(ctx context.Context, id string) (*FileContent, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.coord.Open(ctx, m)
}

func (s *mediaService) find(ctx context.Context, id string) (*model.Media, error) {
	if id == "" {
		return nil, BadRequest("Media id is required")
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Media not found with id: " + id)
		}
		return nil, Internal("Failed to fetch media", err)
	}
	return m, nil
}
