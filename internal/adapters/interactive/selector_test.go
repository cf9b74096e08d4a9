package interactive

import (
	"context"
	"testing"

	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzySearch(t *testing.T) {
	items := []string{"sepolia", "zero_testnet", "mainnet"}
	search := createFuzzySearchFunc(items)

	assert.True(t, search("", 0))
	assert.True(t, search("SEP", 0))
	assert.True(t, search("zrt", 1))
	assert.False(t, search("zrt", 0))
}

func TestSelectorAdapter_NonInteractive(t *testing.T) {
	s := NewSelectorAdapter(&config.RuntimeConfig{NonInteractive: true})
	ctx := context.Background()

	ok, err := s.Confirm(ctx, "Deploy?")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.SelectNetwork(ctx, []string{"a", "b"})
	assert.Error(t, err)
}

func TestSelectorAdapter_SingleNetwork(t *testing.T) {
	s := NewSelectorAdapter(&config.RuntimeConfig{})

	name, err := s.SelectNetwork(context.Background(), []string{"sepolia"})
	require.NoError(t, err)
	assert.Equal(t, "sepolia", name)
}
