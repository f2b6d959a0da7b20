package enrich

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"smart-grocer/internal/core/catalog"
	"smart-grocer/internal/core/rank"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogCSV = `product_id,product_name,category,brand,size,unit,price_per_unit
1,Extra Virgin Olive Oil,Pantry,Colavita,500,ml,8.99
2,Olive Oil Spray,Pantry,Pam,200,ml,4.49
3,Light Olive Oil,Pantry,Bertolli,1,l,11.99
4,Pure Olive Oil,Pantry,Goya,750,ml,9.49
5,Whole Milk,Dairy,Organic Valley,1,gal,4.29
6,Roasted Almond Mix,Snacks,Blue Diamond,250,g,6.99
`

func writeTestCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogCSV), 0o644))
	return catalog.NewStore(path)
}

type fixedRanker struct {
	ranks map[int]int
	err   error
	seen  [][]int
}

func (f *fixedRanker) Rank(ctx context.Context, productIDs []int, userID int) (map[int]int, error) {
	f.seen = append(f.seen, productIDs)
	if f.err != nil {
		return nil, f.err
	}
	return f.ranks, nil
}

func TestEnrichRecipeOmitsUnmatchedIngredients(t *testing.T) {
	store := writeTestCatalog(t)
	svc := NewService(store, rank.NewService(&fixedRanker{}))

	got := svc.EnrichRecipe(context.Background(), []string{"olive oil", "unicorn tears", "milk"}, 7)

	require.Len(t, got, 2)
	assert.Equal(t, "olive oil", got[0].Name)
	assert.Equal(t, "milk", got[1].Name)
}

func TestEnrichRecipeCapsOptionsPerIngredient(t *testing.T) {
	store := writeTestCatalog(t)
	svc := NewService(store, rank.NewService(&fixedRanker{}))

	got := svc.EnrichRecipe(context.Background(), []string{"olive oil"}, 7)

	require.Len(t, got, 1)
	// 目錄有四項橄欖油相關商品，每項食材最多三個選項
	assert.Len(t, got[0].Options, maxOptionsPerIngredient)
}

func TestEnrichRecipeAppliesPersonalization(t *testing.T) {
	store := writeTestCatalog(t)
	ranker := &fixedRanker{ranks: map[int]int{3: 1, 1: 2}}
	svc := NewService(store, rank.NewService(ranker))

	got := svc.EnrichRecipe(context.Background(), []string{"olive oil"}, 7)

	require.Len(t, got, 1)
	opts := got[0].Options
	require.Len(t, opts, 3)
	assert.Equal(t, 3, opts[0].ProductID)
	assert.Equal(t, 1, opts[0].Rank)
	assert.Equal(t, 1, opts[1].ProductID)
	assert.Equal(t, 2, opts[1].Rank)

	require.Len(t, ranker.seen, 1)
	assert.Len(t, ranker.seen[0], 3)
}

func TestEnrichRecipeFailOpenOnRankerError(t *testing.T) {
	store := writeTestCatalog(t)
	svc := NewService(store, rank.NewService(&fixedRanker{err: errors.New("timeout")}))

	got := svc.EnrichRecipe(context.Background(), []string{"almond mix"}, 7)

	require.Len(t, got, 1)
	require.NotEmpty(t, got[0].Options)
	assert.Equal(t, 1, got[0].Options[0].Rank)
	assert.Equal(t, 6, got[0].Options[0].ProductID)
}

func TestEnrichRecipeEmptyInput(t *testing.T) {
	store := writeTestCatalog(t)
	svc := NewService(store, rank.NewService(&fixedRanker{}))

	assert.Empty(t, svc.EnrichRecipe(context.Background(), nil, 7))
}
