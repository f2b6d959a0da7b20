package match

import (
	"testing"

	"smart-grocer/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = []common.CatalogEntry{
	{ProductID: 1, ProductName: "Organic Fuji Apples", Category: "Produce", Brand: "Nature's Best", Size: "3 lb", Unit: "lb", PricePerUnit: 3.49},
	{ProductID: 2, ProductName: "Whole Milk", Category: "Dairy", Brand: "FarmFresh", Size: "1 gal", Unit: "gal", PricePerUnit: 2.49},
	{ProductID: 3, ProductName: "Extra Virgin Olive Oil", Category: "Pantry Staples", Brand: "Bella", Size: "500 ml", Unit: "ml", PricePerUnit: 8.99},
	{ProductID: 4, ProductName: "Olive Oil Spray", Category: "Pantry Staples", Brand: "Bella", Size: "200 ml", Unit: "ml", PricePerUnit: 4.99},
	{ProductID: 5, ProductName: "Dark Chocolate Bar", Category: "Snacks", Brand: "CocoaWorks", Size: "100 g", Unit: "g", PricePerUnit: 2.99},
}

func TestMatchCandidatesAppleExample(t *testing.T) {
	got := MatchCandidates("apple", testCatalog[:1], 3)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ProductID)
	assert.InDelta(t, 0.8, Score("apple", got[0]), 1e-9)
}

func TestMatchCandidatesThreshold(t *testing.T) {
	got := MatchCandidates("unicorn tears", testCatalog, 3)
	for _, e := range got {
		assert.Greater(t, Score("unicorn tears", e), 0.2, "entry %d below threshold", e.ProductID)
	}
}

func TestMatchCandidatesOrderedByScoreDescending(t *testing.T) {
	got := MatchCandidates("olive oil", testCatalog, 5)
	require.NotEmpty(t, got)

	prev := 2.0
	for _, e := range got {
		s := Score("olive oil", e)
		assert.LessOrEqual(t, s, prev)
		prev = s
	}
}

func TestMatchCandidatesStableTieBreak(t *testing.T) {
	// 兩筆條目對查詢同分（皆為子字串層），應保持目錄順序
	catalog := []common.CatalogEntry{
		{ProductID: 10, ProductName: "Olive Oil Classic", Category: "Pantry Staples"},
		{ProductID: 11, ProductName: "Olive Oil Premium", Category: "Pantry Staples"},
	}
	got := MatchCandidates("olive oil", catalog, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 10, got[0].ProductID)
	assert.Equal(t, 11, got[1].ProductID)
}

func TestMatchCandidatesTruncatesToMaxResults(t *testing.T) {
	got := MatchCandidates("olive oil", testCatalog, 1)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ProductID)
}

func TestMatchCandidatesEmptyCatalog(t *testing.T) {
	assert.Empty(t, MatchCandidates("apple", nil, 3))
	assert.Empty(t, MatchCandidates("apple", []common.CatalogEntry{}, 3))
}
