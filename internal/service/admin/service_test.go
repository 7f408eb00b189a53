package admin_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/udinder/internal/app"
	"github.com/oggyb/udinder/internal/auth"
	"github.com/oggyb/udinder/internal/db"
	"github.com/oggyb/udinder/internal/service/admin"
	"github.com/oggyb/udinder/internal/testutil"
)

// setupService seeds users 1..3; user 1 is an admin, user 3 a blocked admin.
func setupService(t *testing.T) (*admin.Service, *app.AppContext) {
	t.Helper()
	appCtx, _ := testutil.NewAppContext(t)
	for i := uint64(1); i <= 3; i++ {
		testutil.SeedUser(t, appCtx.DB, i, fmt.Sprintf("u%d@example.com", i), "pw")
	}
	require.NoError(t, appCtx.DB.Create(&db.Admin{UserID: 1}).Error)
	require.NoError(t, appCtx.DB.Create(&db.Admin{UserID: 3, IsBlocked: true}).Error)
	return admin.NewAdminService(appCtx), appCtx
}

func tokenFor(t *testing.T, appCtx *app.AppContext, userID uint64) string {
	t.Helper()
	tok, _, err := appCtx.Tokens.IssueForUser(userID)
	require.NoError(t, err)
	return tok
}

func TestPromote(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	a, err := svc.Promote(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), a.UserID)
	assert.False(t, a.IsBlocked)

	_, err = svc.Promote(ctx, 2)
	assert.ErrorIs(t, err, admin.ErrAlreadyAdmin)

	_, err = svc.Promote(ctx, 99)
	assert.ErrorIs(t, err, admin.ErrUserNotFound)
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)

	a, err := svc.Authorize(ctx, tokenFor(t, appCtx, 1))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), a.UserID)

	expired, _, err := auth.NewTokenIssuer(testutil.TokenSecret, time.Minute).
		WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).
		IssueForUser(1)
	require.NoError(t, err)

	foreign, _, err := auth.NewTokenIssuer("other-secret", time.Minute).IssueForUser(1)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", admin.ErrUnauthorized},
		{"garbage", "not.a.jwt", admin.ErrInvalidToken},
		{"expired", expired, admin.ErrInvalidToken},
		{"wrong key", foreign, admin.ErrInvalidToken},
		{"not admin", tokenFor(t, appCtx, 2), admin.ErrNotAdmin},
		{"unknown subject", tokenFor(t, appCtx, 99), admin.ErrNotAdmin},
		{"blocked", tokenFor(t, appCtx, 3), admin.ErrBlockedAdmin},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authorize(ctx, tc.token)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestBlockUnblock(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)

	actor, err := svc.Authorize(ctx, tokenFor(t, appCtx, 1))
	require.NoError(t, err)

	a, err := svc.Unblock(ctx, actor, 3)
	require.NoError(t, err)
	assert.False(t, a.IsBlocked)

	_, err = svc.Authorize(ctx, tokenFor(t, appCtx, 3))
	assert.NoError(t, err)

	a, err = svc.Block(ctx, actor, 3)
	require.NoError(t, err)
	assert.True(t, a.IsBlocked)

	var stored db.Admin
	require.NoError(t, appCtx.DB.Where("user_id = ?", 3).First(&stored).Error)
	assert.True(t, stored.IsBlocked)

	_, err = svc.Block(ctx, actor, 2)
	assert.ErrorIs(t, err, admin.ErrAdminNotFound)

	_, err = svc.Block(ctx, nil, 3)
	assert.ErrorIs(t, err, admin.ErrUnauthorized)
}

func TestAdminRoutes(t *testing.T) {
	_, appCtx := setupService(t)
	r := testutil.NewRouter(appCtx, admin.NewRegistrar(appCtx))

	bearer := func(userID uint64) http.Header {
		return http.Header{"Authorization": {"Bearer " + tokenFor(t, appCtx, userID)}}
	}

	w := testutil.Do(t, r, http.MethodPost, "/admin/create-admin/2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"Admin created successfully"}`, w.Body.String())

	w = testutil.Do(t, r, http.MethodPost, "/admin/create-admin/2", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"User is already an admin"}`, w.Body.String())

	w = testutil.Do(t, r, http.MethodPut, "/admin/block-user/2", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.Do(t, r, http.MethodPut, "/admin/block-user/2", nil, http.Header{"Authorization": {"Bearer junk"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.Do(t, r, http.MethodPut, "/admin/block-user/2", nil, bearer(3))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.Do(t, r, http.MethodPut, "/admin/block-user/2", nil, bearer(1))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"User blocked successfully"}`, w.Body.String())

	// the query parameter form is accepted as well
	w = testutil.Do(t, r, http.MethodPut, "/admin/unblock-user/2?token="+tokenFor(t, appCtx, 1), nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"User unblocked successfully"}`, w.Body.String())

	w = testutil.Do(t, r, http.MethodPut, "/admin/unblock-user/99", nil, bearer(1))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Admin entry not found"}`, w.Body.String())
}

func TestSelfBlockIsRejected(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)
	r := testutil.NewRouter(appCtx, admin.NewRegistrar(appCtx))

	actor, err := svc.Authorize(ctx, tokenFor(t, appCtx, 1))
	require.NoError(t, err)

	_, err = svc.Block(ctx, actor, 1)
	assert.ErrorIs(t, err, admin.ErrSelfBlock)

	var stored db.Admin
	require.NoError(t, appCtx.DB.Where("user_id = ?", 1).First(&stored).Error)
	assert.False(t, stored.IsBlocked)

	w := testutil.Do(t, r, http.MethodPut, "/admin/block-user/1", nil,
		http.Header{"Authorization": {"Bearer " + tokenFor(t, appCtx, 1)}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"You cannot block yourself"}`, w.Body.String())

	// still an active admin afterwards
	_, err = svc.Authorize(ctx, tokenFor(t, appCtx, 1))
	assert.NoError(t, err)
}
