package memstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finlink/internal/categorize"
	"github.com/MrJamesThe3rd/finlink/internal/categorize/memstore"
)

func TestStore_WithService(t *testing.T) {
	ctx := context.Background()
	svc := categorize.NewService(memstore.New())

	_, err := svc.AddRule(ctx, "u1", "amazon", "Shopping")
	require.NoError(t, err)

	_, err = svc.AddRule(ctx, "u1", "amazon prime", "Subscriptions")
	require.NoError(t, err)

	_, err = svc.AddRule(ctx, "u2", "amazon", "Other user")
	require.NoError(t, err)

	rules, err := svc.Rules(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "amazon", rules[0].Pattern)

	got, err := svc.Suggest(ctx, "u1", "AMAZON PRIME VIDEO")
	require.NoError(t, err)
	assert.Equal(t, "Subscriptions", got)

	got, err = svc.Suggest(ctx, "u1", "Amazon Marketplace")
	require.NoError(t, err)
	assert.Equal(t, "Shopping", got)

	got, err = svc.Suggest(ctx, "u3", "Amazon")
	require.NoError(t, err)
	assert.Empty(t, got)
}
