package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/cinebook/internal/auth"
	"github.com/Shivanand-hulikatti/cinebook/internal/clock"
	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const minPasswordLength = 8

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(u model.User) (string, time.Time, error)
}

// BookingLister lists a user's bookings.
type BookingLister interface {
	ListByUser(ctx context.Context, userID string) ([]model.BookingSummary, error)
}

// UserService handles registration, login and account administration.
type UserService struct {
	users      UserStore
	bookings   BookingLister
	cache      AvailabilityCache
	tokens     TokenIssuer
	clock      clock.Clock
	bcryptCost int
	log        *zap.Logger
}

// NewUserService constructs a UserService. cache may be nil. A bcryptCost
// of zero selects the library default.
func NewUserService(users UserStore, bookings BookingLister, cache AvailabilityCache, tokens TokenIssuer, clk clock.Clock, bcryptCost int, log *zap.Logger) *UserService {
	return &UserService{
		users:      users,
		bookings:   bookings,
		cache:      cache,
		tokens:     tokens,
		clock:      clk,
		bcryptCost: bcryptCost,
		log:        log.Named("accounts"),
	}
}

// Register creates an account with the user role.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case name == "":
		return nil, model.Invalid("name is required")
	case !isValidEmail(email):
		return nil, model.Invalid("email is not a valid email address")
	case len(req.Password) < minPasswordLength:
		return nil, model.Invalid("password must be at least %d characters", minPasswordLength)
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", model.ErrConflict)
		}
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

// Login verifies credentials and issues a bearer token.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	ctx, span := startSpan(ctx, "service.accounts.login")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, fail(span, model.Invalid("email and password are required"))
	}

	badCredentials := fmt.Errorf("%w: invalid email or password", model.ErrUnauthorized)

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fail(span, badCredentials)
	}
	if err != nil {
		return nil, fail(span, err)
	}

	ok, err := auth.CheckPassword(u.PasswordHash, req.Password)
	if err != nil {
		return nil, fail(span, err)
	}
	if !ok {
		return nil, fail(span, badCredentials)
	}

	token, expiresAt, err := s.tokens.Issue(*u)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.String("user_id", u.ID), attribute.String("role", string(u.Role)))
	return &model.LoginResponse{Token: token, ExpiresAt: expiresAt, User: *u}, nil
}

// AdminUsers lists every account.
func (s *UserService) AdminUsers(ctx context.Context, id model.Identity) ([]model.User, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// ChangeRole sets another account's role.
func (s *UserService) ChangeRole(ctx context.Context, id model.Identity, userID, role string) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	r, err := model.ParseRole(strings.ToLower(strings.TrimSpace(role)))
	if err != nil {
		return err
	}
	if userID == id.UserID {
		return model.Invalid("admins cannot change their own role")
	}

	if err := s.users.UpdateRole(ctx, userID, r); err != nil {
		return err
	}
	s.log.Info("role changed", zap.String("user_id", userID), zap.String("role", string(r)), zap.String("by", id.UserID))
	return nil
}

// DeleteUser removes another account together with its bookings and
// invalidates cached availability of the events those bookings held seats in.
func (s *UserService) DeleteUser(ctx context.Context, id model.Identity, userID string) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	if userID == id.UserID {
		return model.Invalid("admins cannot delete their own account")
	}

	var affected []string
	if s.cache != nil {
		held, err := s.bookings.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, b := range held {
			if !slices.Contains(affected, b.EventID) {
				affected = append(affected, b.EventID)
			}
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	for _, eventID := range affected {
		invalidateAvailability(ctx, s.cache, s.log, eventID)
	}
	s.log.Info("user deleted", zap.String("user_id", userID), zap.String("by", id.UserID))
	return nil
}

func requireAdmin(id model.Identity) error {
	switch id.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleUser, model.RoleOrganizer:
		return fmt.Errorf("%w: admin role required", model.ErrForbidden)
	default:
		return fmt.Errorf("%w: unknown role %q", model.ErrForbidden, id.Role)
	}
}
