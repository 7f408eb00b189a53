package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/udinder/internal/auth"
)

func TestIssueAndParse(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", 30*time.Minute)

	token, exp, err := issuer.IssueForUser(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 2*time.Second)

	id, err := issuer.ParseUserID(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestParseRejectsWrongKey(t *testing.T) {
	token, _, err := auth.NewTokenIssuer("one", time.Minute).Issue("7", 0)
	require.NoError(t, err)

	_, err = auth.NewTokenIssuer("two", time.Minute).Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := start
	issuer := auth.NewTokenIssuer("secret", 30*time.Minute).WithClock(func() time.Time { return clock })

	token, _, err := issuer.Issue("7", 0)
	require.NoError(t, err)

	clock = start.Add(29 * time.Minute)
	_, err = issuer.Parse(token)
	require.NoError(t, err)

	clock = start.Add(31 * time.Minute)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseRejectsMalformedAndMissingSubject(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Minute)

	_, err := issuer.Parse("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = issuer.Parse(noSub)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, _, err = issuer.Issue("", 0)
	assert.Error(t, err)
}

func TestParseUserIDRejectsNonNumericSubject(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Minute)
	token, _, err := issuer.Issue("alice", 0)
	require.NoError(t, err)

	_, err = issuer.ParseUserID(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	ok, err := auth.CheckPassword(hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}
