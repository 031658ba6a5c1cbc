package share_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motordesk/dealer-api/internal/domain/share"
)

func TestNew_TokenVerifiesAgainstOwnHash(t *testing.T) {
	tok, err := share.New()
	require.NoError(t, err)
	require.NotEmpty(t, tok.Plain)
	require.NotEmpty(t, tok.Hash)
	assert.NotEqual(t, tok.Plain, tok.Hash, "plain token must never equal the stored digest")

	now := time.Now()
	assert.True(t, share.Verify(tok.Plain, tok.Hash, now.Add(time.Hour), now))
}

func TestNew_TokensAreUnique(t *testing.T) {
	a, err := share.New()
	require.NoError(t, err)
	b, err := share.New()
	require.NoError(t, err)
	assert.NotEqual(t, a.Plain, b.Plain)
	assert.NotEqual(t, a.Hash, b.Hash)
}

func TestHash_Deterministic(t *testing.T) {
	assert.Equal(t, share.Hash("abc"), share.Hash("abc"))
	assert.NotEqual(t, share.Hash("abc"), share.Hash("abd"))
}

func TestVerify_ExpiredAndMismatchedBothFail(t *testing.T) {
	tok, err := share.New()
	require.NoError(t, err)
	now := time.Now()

	assert.False(t, share.Verify(tok.Plain, tok.Hash, now.Add(-time.Minute), now), "expired")
	assert.False(t, share.Verify("wrong-token", tok.Hash, now.Add(time.Hour), now), "mismatch")
}
