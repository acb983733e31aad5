package service

import (
	"context"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/cinebook/internal/auth"
	"github.com/Shivanand-hulikatti/cinebook/internal/clock"
	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (*UserService, *auth.TokenManager, *memDB) {
	t.Helper()
	db := newMemDB()
	clk := clock.NewFixed(testNow)
	tokens := auth.NewTokenManager("test-secret", time.Hour, "cinebook", clk)
	return NewUserService(fakeUsers{db}, fakeBookings{db}, nil, tokens, clk, bcrypt.MinCost, zap.NewNop()), tokens, db
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens, _ := newUserService(t)

	u, err := svc.Register(ctx, model.RegisterRequest{Name: " Asha ", Email: "Asha@Example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	resp, err := svc.Login(ctx, model.LoginRequest{Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.Equal(t, testNow.Add(time.Hour), resp.ExpiresAt)

	id, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, model.Identity{UserID: u.ID, Role: model.RoleUser}, id)
}

func TestRegister_Rejects(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)
	_, err := svc.Register(ctx, model.RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  model.RegisterRequest
		want error
	}{
		{"duplicate email", model.RegisterRequest{Name: "A", Email: "ASHA@example.com", Password: "password1"}, model.ErrConflict},
		{"missing name", model.RegisterRequest{Email: "x@example.com", Password: "password1"}, model.ErrInvalidRequest},
		{"bad email", model.RegisterRequest{Name: "X", Email: "not-an-email", Password: "password1"}, model.ErrInvalidRequest},
		{"display name email", model.RegisterRequest{Name: "X", Email: "X <x@example.com>", Password: "password1"}, model.ErrInvalidRequest},
		{"short password", model.RegisterRequest{Name: "X", Email: "x@example.com", Password: "short"}, model.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)
	_, err := svc.Register(ctx, model.RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "asha@example.com", Password: "wrong-horse"})
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, err = svc.Login(ctx, model.LoginRequest{})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestAdminUserOperations(t *testing.T) {
	ctx := context.Background()
	svc, _, db := newUserService(t)

	u, err := svc.Register(ctx, model.RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.AdminUsers(ctx, alice)
	assert.ErrorIs(t, err, model.ErrForbidden)
	assert.ErrorIs(t, svc.ChangeRole(ctx, organizer, u.ID, "admin"), model.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(ctx, organizer, u.ID), model.ErrForbidden)

	users, err := svc.AdminUsers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, users, 1)

	assert.ErrorIs(t, svc.ChangeRole(ctx, admin, u.ID, "superuser"), model.ErrInvalidRequest)
	assert.ErrorIs(t, svc.ChangeRole(ctx, admin, "missing", "organizer"), model.ErrNotFound)
	assert.ErrorIs(t, svc.ChangeRole(ctx, admin, admin.UserID, "user"), model.ErrInvalidRequest)

	require.NoError(t, svc.ChangeRole(ctx, admin, u.ID, " Organizer "))
	assert.Equal(t, model.RoleOrganizer, db.users[u.ID].Role)

	assert.ErrorIs(t, svc.DeleteUser(ctx, admin, admin.UserID), model.ErrInvalidRequest)
	require.NoError(t, svc.DeleteUser(ctx, admin, u.ID))
	assert.ErrorIs(t, svc.DeleteUser(ctx, admin, u.ID), model.ErrNotFound)
}

func TestDeleteUser_InvalidatesHeldEvents(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	cache := newMemCache()
	clk := clock.NewFixed(testNow)
	tokens := auth.NewTokenManager("test-secret", time.Hour, "cinebook", clk)
	svc := NewUserService(fakeUsers{db}, fakeBookings{db}, cache, tokens, clk, bcrypt.MinCost, zap.NewNop())
	ledger := NewBookingService(&fakeTx{}, fakeEvents{db}, fakeBookings{db}, zap.NewNop(), WithAvailabilityCache(cache))

	u, err := svc.Register(ctx, model.RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	asha := model.Identity{UserID: u.ID, Role: model.RoleUser}

	for _, id := range []string{"e1", "e2", "e3"} {
		e := model.Event{ID: id, Title: id, Prices: model.DefaultTierPrices, Seats: model.TierCounts{VIP: 10}}
		require.NoError(t, fakeEvents{db}.Create(ctx, &e))
	}
	for _, id := range []string{"e1", "e1", "e2"} {
		_, err := ledger.Book(ctx, asha, id, model.TierCounts{VIP: 2})
		require.NoError(t, err)
	}
	for _, id := range []string{"e1", "e2", "e3"} {
		_, err := ledger.Availability(ctx, id)
		require.NoError(t, err)
	}
	cache.invalidated = nil

	require.NoError(t, svc.DeleteUser(ctx, admin, u.ID))
	assert.ElementsMatch(t, []string{"e1", "e2"}, cache.invalidated)

	a, err := ledger.Availability(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 10, a.Remaining.VIP)

	cached, _, _ := cache.Get(ctx, "e3")
	assert.NotNil(t, cached)
}
