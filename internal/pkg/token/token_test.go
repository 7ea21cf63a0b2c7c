package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	id := uuid.New()
	raw, err := Issue("secret", id, time.Minute)
	require.NoError(t, err)

	got, err := Parse("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_WrongSecret(t *testing.T) {
	raw, err := Issue("secret", uuid.New(), time.Minute)
	require.NoError(t, err)

	_, err = Parse("other-secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Expired(t *testing.T) {
	raw, err := Issue("secret", uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = Parse("secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse("secret", "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
