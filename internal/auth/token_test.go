package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratyek/grocery-app/internal/domain/model"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestTokenManager_IssueAndResolve(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour, nil)

	tok, exp, err := m.Issue(model.User{ID: 42, Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	actor, err := m.Resolve(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), actor.UserID)
	assert.True(t, actor.IsAdmin())
	assert.True(t, actor.Authenticated())
}

func TestTokenManager_Resolve_Expired(t *testing.T) {
	past := NewTokenManager("s3cret", time.Minute, fixedClock{t: time.Now().Add(-2 * time.Hour)})
	tok, _, err := past.Issue(model.User{ID: 1, Role: model.RoleBuyer})
	require.NoError(t, err)

	_, err = NewTokenManager("s3cret", time.Minute, nil).Resolve(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Resolve_WrongSecret(t *testing.T) {
	tok, _, err := NewTokenManager("one", time.Hour, nil).Issue(model.User{ID: 1, Role: model.RoleBuyer})
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour, nil).Resolve(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Resolve_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{"sub": "1", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = NewTokenManager("s3cret", time.Hour, nil).Resolve(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Resolve_BadClaims(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour, nil)
	exp := time.Now().Add(time.Hour).Unix()

	cases := map[string]jwt.MapClaims{
		"missing sub":  {"role": "buyer", "exp": exp},
		"zero sub":     {"sub": "0", "role": "buyer", "exp": exp},
		"unknown role": {"sub": "1", "role": "root", "exp": exp},
		"missing role": {"sub": "1", "exp": exp},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
			require.NoError(t, err)

			_, err = m.Resolve(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err := m.Resolve("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBcryptPasswordHasher(t *testing.T) {
	h := NewBcryptPasswordHasher(4)

	hashed, err := h.Hash("fresh-carrots")
	require.NoError(t, err)
	assert.NotEqual(t, "fresh-carrots", hashed)

	assert.True(t, h.Verify("fresh-carrots", hashed))
	assert.False(t, h.Verify("stale-carrots", hashed))
}
