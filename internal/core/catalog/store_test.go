package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadParsesHeaderInAnyOrder(t *testing.T) {
	path := writeCatalog(t, `"brand","product_id","price_per_unit","product_name","category","size","unit"
Nature's Best,1,3.49,Organic Fuji Apples,Produce,3 lb,lb
`)
	store := NewStore(path)
	entries := store.Load()

	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].ProductID)
	assert.Equal(t, "Organic Fuji Apples", entries[0].ProductName)
	assert.Equal(t, "Nature's Best", entries[0].Brand)
	assert.Equal(t, "Produce", entries[0].Category)
	assert.Equal(t, "3 lb", entries[0].Size)
	assert.Equal(t, "lb", entries[0].Unit)
	assert.InDelta(t, 3.49, entries[0].PricePerUnit, 1e-9)
}

func TestLoadDedupKeepsLowerPrice(t *testing.T) {
	path := writeCatalog(t, `product_id,product_name,category,brand,size,unit,price_per_unit
1,Whole Milk,Dairy,FarmFresh,1 gal,gal,2.99
2,Whole Milk,Dairy,FarmFresh,1 gal,gal,2.49
`)
	store := NewStore(path)
	entries := store.Load()

	require.Len(t, entries, 1)
	assert.InDelta(t, 2.49, entries[0].PricePerUnit, 1e-9)
	assert.Equal(t, 2, entries[0].ProductID)
}

func TestLoadDedupEqualPriceKeepsFirstSeen(t *testing.T) {
	path := writeCatalog(t, `product_id,product_name,category,brand,size,unit,price_per_unit
1,Whole Milk,Dairy,FarmFresh,1 gal,gal,2.99
2,whole milk ,Dairy,farmfresh,1 gal,gal,2.99
`)
	store := NewStore(path)
	entries := store.Load()

	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].ProductID)
}

func TestLoadDedupNoTwoEntriesShareKey(t *testing.T) {
	path := writeCatalog(t, `product_id,product_name,category,brand,size,unit,price_per_unit
1,Eggs,Dairy,SunnySide,12 ct,ct,4.99
2,Eggs,Dairy,SunnySide,12 ct,ct,3.99
3,Eggs,Dairy,SunnySide,18 ct,ct,5.99
4,Eggs,Dairy,HappyHen,12 ct,ct,4.49
`)
	store := NewStore(path)
	entries := store.Load()

	seen := make(map[string]bool)
	for _, e := range entries {
		assert.False(t, seen[e.DedupKey()], "duplicate key %q", e.DedupKey())
		seen[e.DedupKey()] = true
	}
	require.Len(t, entries, 3)
}

func TestLoadSkipsShortRowsAndDefaultsBadNumbers(t *testing.T) {
	path := writeCatalog(t, `product_id,product_name,category,brand,size,unit,price_per_unit
abc,Mystery Item,Pantry Staples,Generic,1 box,box,not-a-price
1,Short Row,Pantry
2,Olive Oil,Pantry Staples,Bella,500 ml,ml,8.99
`)
	store := NewStore(path)
	entries := store.Load()

	require.Len(t, entries, 2)
	assert.Equal(t, 0, entries[0].ProductID)
	assert.Zero(t, entries[0].PricePerUnit)
	assert.Equal(t, "Olive Oil", entries[1].ProductName)
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.csv"))
	entries := store.Load()
	assert.Empty(t, entries)
}

func TestLoadEmptyFileReturnsEmpty(t *testing.T) {
	store := NewStore(writeCatalog(t, ""))
	assert.Empty(t, store.Load())
}

func TestLoadIsMemoizedAndReloadReparses(t *testing.T) {
	path := writeCatalog(t, `product_id,product_name,category,brand,size,unit,price_per_unit
1,Butter,Dairy,FarmFresh,8 oz,oz,3.29
`)
	store := NewStore(path)
	require.Len(t, store.Load(), 1)

	// 覆寫檔案後 Load 仍回傳快取，Reload 才重新解析
	require.NoError(t, os.WriteFile(path, []byte(`product_id,product_name,category,brand,size,unit,price_per_unit
1,Butter,Dairy,FarmFresh,8 oz,oz,3.29
2,Salted Butter,Dairy,FarmFresh,8 oz,oz,3.59
`), 0644))

	assert.Len(t, store.Load(), 1)
	assert.Len(t, store.Reload(), 2)
	assert.Len(t, store.Load(), 2)
}
