package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketapi/internal/events"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

const invalidCredentials = "Invalid email or password"

// RegisterInput is the body of POST /register.
type RegisterInput struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Role     string  `json:"role" validate:"required"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=2048"`
}

// LoginInput is the body of POST /login.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserInput is a partial update of the caller's profile. A blank name is
// ignored; an explicit null avatar clears it.
type UpdateUserInput struct {
	Name   model.Optional[string] `json:"name"`
	Avatar model.Optional[string] `json:"avatar"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// TokenIssuer signs a session token for a user.
type TokenIssuer interface {
	Issue(u *model.User) (string, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// UserService covers the user service's use cases, authentication included.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Get(ctx context.Context, id string) (*model.User, error)
	Me(ctx context.Context, actor Actor) (*model.User, error)
	UpdateMe(ctx context.Context, actor Actor, in UpdateUserInput) (*model.User, error)
	// DeleteMe removes only the user record. Products and media owned by the
	// user are left in place in their own services.
	DeleteMe(ctx context.Context, actor Actor) error
}

type userService struct {
	repo   repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	events events.Publisher
	topic  string
	log    zerolog.Logger
	now    func() time.Time
}

// NewUserService constructs a UserService publishing to topic.
func NewUserService(repo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, pub events.Publisher, topic string, log zerolog.Logger) UserService {
	return &userService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		events: pub,
		topic:  topic,
		log:    log.With().Str("component", "user_service").Logger(),
		now:    time.Now,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	s.log.Info().Str("email", email).Msg("registering user")

	role, err := model.ParseRole(in.Role)
	if err != nil {
		return nil, BadRequest("Role must be CLIENT or SELLER")
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, Internal("Failed to register user", err)
	}
	if exists {
		return nil, Conflict("Email already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, Internal("Failed to register user", err)
	}

	now := s.now().UTC()
	u, err := s.repo.Create(ctx, &model.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Password:  hash,
		Role:      role,
		Avatar:    in.Avatar,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Conflict("Email already exists")
		}
		return nil, Internal("Failed to register user", err)
	}

	_ = s.events.Publish(ctx, s.topic, events.New(events.UserRegistered, u.ID, u.Email, u.Role.String()))

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, Internal("Failed to issue token", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

// Login reports the same error for an unknown email and a wrong password.
func (s *userService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	s.log.Info().Str("email", email).Msg("login attempt")

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, BadRequest(invalidCredentials)
		}
		return nil, Internal("Failed to login", err)
	}
	if err := s.hasher.Compare(u.Password, in.Password); err != nil {
		return nil, BadRequest(invalidCredentials)
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, Internal("Failed to issue token", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.find(ctx, id)
}

func (s *userService) Me(ctx context.Context, actor Actor) (*model.User, error) {
	return s.find(ctx, actor.ID)
}

func (s *userService) UpdateMe(ctx context.Context, actor Actor, in UpdateUserInput) (*model.User, error) {
	s.log.Info().Str("user_id", actor.ID).Msg("updating user")

	u, err := s.find(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if in.Name.Present() && strings.TrimSpace(in.Name.Value) != "" {
		u.Name = strings.TrimSpace(in.Name.Value)
	}
	switch {
	case in.Avatar.Present():
		avatar := in.Avatar.Value
		u.Avatar = &avatar
	case in.Avatar.Set && in.Avatar.Null:
		u.Avatar = nil
	}
	u.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("User not found with id: " + actor.ID)
		}
		return nil, Internal("Failed to update user", err)
	}

	_ = s.events.Publish(ctx, s.topic, events.New(events.UserUpdated, updated.ID, actor.ID))
	return updated, nil
}

func (s *userService) DeleteMe(ctx context.Context, actor Actor) error {
	s.log.Info().Str("user_id", actor.ID).Msg("deleting user")

	u, err := s.find(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("User not found with id: " + u.ID)
		}
		return Internal("Failed to delete user", err)
	}

	_ = s.events.Publish(ctx, s.topic, events.New(events.UserDeleted, u.ID, actor.ID))
	return nil
}

func (s *userService) find(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, BadRequest("User id is required")
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("User not found with id: " + id)
		}
		return nil, Internal("Failed to fetch user", err)
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
