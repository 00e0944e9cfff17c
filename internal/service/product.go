package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"marketapi/internal/events"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// CreateProductInput is the body of POST /api/products.
type CreateProductInput struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Quantity    *int             `json:"quantity" validate:"required,gte=0"`
	ImageIDs    []string         `json:"imageIds" validate:"omitempty,dive,required"`
}

// UpdateProductInput is a partial update: only fields present with a value are applied.
type UpdateProductInput struct {
	Name        model.Optional[string]          `json:"name"`
	Description model.Optional[string]          `json:"description"`
	Price       model.Optional[decimal.Decimal] `json:"price"`
	Quantity    model.Optional[int]             `json:"quantity"`
	ImageIDs    model.Optional[[]string]        `json:"imageIds"`
}

// ProductService covers the product service's use cases. Image ids are stored
// as given and never checked against the media service.
type ProductService interface {
	Create(ctx context.Context, actor Actor, in CreateProductInput) (*model.Product, error)
	Get(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	ListMine(ctx context.Context, actor Actor) ([]model.Product, error)
	Update(ctx context.Context, actor Actor, id string, in UpdateProductInput) (*model.Product, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type productService struct {
	repo   repository.ProductRepository
	events events.Publisher
	topic  string
	log    zerolog.Logger
	now    func() time.Time
}

// NewProductService constructs a ProductService publishing to topic.
func NewProductService(repo repository.ProductRepository, pub events.Publisher, topic string, log zerolog.Logger) ProductService {
	return &productService{
		repo:   repo,
		events: pub,
		topic:  topic,
		log:    log.With().Str("component", "product_service").Logger(),
		now:    time.Now,
	}
}

func (s *productService) Create(ctx context.Context, actor Actor, in CreateProductInput) (*model.Product, error) {
	s.log.Info().Str("user_id", actor.ID).Msg("creating product")

	if strings.TrimSpace(in.Name) == "" {
		return nil, BadRequest("Product name is required")
	}
	p := &model.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		UserID:      actor.ID,
		ImageIDs:    in.ImageIDs,
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if err := checkStock(p.Price, p.Quantity); err != nil {
		return nil, err
	}
	if p.ImageIDs == nil {
		p.ImageIDs = []string{}
	}
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, Internal("Failed to create product", err)
	}

	_ = s.events.Publish(ctx, s.topic, events.New(events.ProductCreated, created.ID, actor.ID))
	return created, nil
}

func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	return s.find(ctx, id)
}

func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, Internal("Failed to list products", err)
	}
	return items, nil
}

func (s *productService) ListMine(ctx context.Context, actor Actor) ([]model.Product, error) {
	items, err := s.repo.FindByUserID(ctx, actor.ID)
	if err != nil {
		return nil, Internal("Failed to list products", err)
	}
	return items, nil
}

func (s *productService) Update(ctx context.Context, actor Actor, id string, in UpdateProductInput) (*model.Product, error) {
	s.log.Info().Str("product_id", id).Str("user_id", actor.ID).Msg("updating product")

	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeTo("update this product", actor.ID, p.UserID); err != nil {
		return nil, err
	}

	if in.Name.Present() && strings.TrimSpace(in.Name.Value) == "" {
		return nil, BadRequest("Product name must not be blank")
	}
	in.Name.Apply(&p.Name)
	in.Description.Apply(&p.Description)
	in.Price.Apply(&p.Price)
	in.Quantity.Apply(&p.Quantity)
	in.ImageIDs.Apply(&p.ImageIDs)
	if err := checkStock(p.Price, p.Quantity); err != nil {
		return nil, err
	}
	if p.ImageIDs == nil {
		p.ImageIDs = []string{}
	}
	p.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Product not found with id: " + id)
		}
		return nil, Internal("Failed to update product", err)
	}

	_ = s.events.Publish(ctx, s.topic, events.New(events.ProductUpdated, updated.ID, actor.ID))
	return updated, nil
}

// Delete leaves the product's media in the media service untouched.
func (s *productService) Delete(ctx context.Context, actor Actor, id string) error {
	s.log.Info().Str("product_id", id).Str("user_id", actor.ID).Msg("deleting product")

	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeTo("delete this product", actor.ID, p.UserID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("Product not found with id: " + id)
		}
		return Internal("Failed to delete product", err)
	}

	_ = s.events.Publish(ctx, s.topic, events.New(events.ProductDeleted, p.ID, actor.ID))
	return nil
}

func (s *productService) find(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		return nil, BadRequest("Product id is required")
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("Product not found with id: " + id)
		}
		return nil, Internal("Failed to fetch product", err)
	}
	return p, nil
}

func checkStock(price decimal.Decimal, quantity int) error {
	if price.IsNegative() {
		return BadRequest("Price must not be negative")
	}
	if quantity < 0 {
		return BadRequest("Quantity must not be negative")
	}
	return nil
}
