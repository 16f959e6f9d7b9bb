package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ecoChallengeAPI/internal/store"
)

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(store.NewMemoryStore(), zap.NewNop())
	require.NoError(t, svc.SeedDefaults(ctx))

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 4)

	challenges, err := svc.ListChallengesByCategory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, challenges, 1)
	assert.Equal(t, int64(1), challenges[0].CategoryID)

	_, err = svc.ListChallengesByCategory(ctx, 42)
	assert.ErrorIs(t, err, store.ErrCategoryNotFound)

	ch, err := svc.GetChallenge(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, ch.Days)

	_, err = svc.GetChallenge(ctx, 42)
	assert.ErrorIs(t, err, store.ErrChallengeNotFound)
}
