package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/udinder/internal/testutil"
)

// A unique violation on insert is reported by which key is already taken.
func TestDuplicateCause(t *testing.T) {
	appCtx, _ := testutil.NewAppContext(t)
	testutil.SeedUser(t, appCtx.DB, 1, "a@example.com", "pw")
	svc := NewUserService(appCtx)

	assert.ErrorIs(t, svc.duplicateCause(context.Background(), 1), ErrUserIDTaken)
	assert.ErrorIs(t, svc.duplicateCause(context.Background(), 2), ErrEmailTaken)
}
