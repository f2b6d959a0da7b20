package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityReflexive(t *testing.T) {
	for _, s := range []string{"apple", "olive oil", "Dark Chocolate 70%", "eggs 12 ct"} {
		assert.Equal(t, 1.0, Similarity(s, s), "similarity(%q, %q)", s, s)
	}
}

func TestSimilarityExact(t *testing.T) {
	// 正規化後相等也算完全相等
	assert.Equal(t, 1.0, Similarity("Olive Oil!", "olive oil"))
}

func TestSimilaritySubstring(t *testing.T) {
	assert.Equal(t, 0.8, Similarity("apple", "Organic Fuji Apples"))
	assert.Equal(t, 0.8, Similarity("Organic Fuji Apples", "apple"))
}

func TestSimilaritySynonymTier(t *testing.T) {
	// "dark chocolate" 含正規名稱 chocolate，"milk chocolate bar" 含同義詞
	// 同義層要先於字詞重疊層命中
	assert.Equal(t, 0.7, Similarity("dark chocolate", "milk chocolate bar"))
	assert.Equal(t, 0.7, Similarity("cheese", "Aged Cheddar Block"))
	assert.Equal(t, 0.7, Similarity("nuts", "Roasted Almond Mix"))
}

func TestSimilarityWordOverlap(t *testing.T) {
	// 共享 {red}，較大集合 3 個詞：0.5 * 1/3
	assert.InDelta(t, 0.5/3.0, Similarity("red onion", "red bell pepper"), 1e-9)
	// 全部字詞共享但順序不同：非子字串，0.5 * 2/2
	assert.InDelta(t, 0.5, Similarity("oil olive", "olive oil"), 1e-9)
}

func TestSimilarityCharOverlapFallback(t *testing.T) {
	// 無共享字詞時退回逐位字元重疊
	got := Similarity("abcd", "abxy")
	assert.InDelta(t, 0.2*2.0/4.0, got, 1e-9)
}

func TestSimilarityNoOverlapIsZero(t *testing.T) {
	assert.Zero(t, Similarity("xyz", "abc"))
}

func TestSimilarityEmptyInput(t *testing.T) {
	assert.Zero(t, Similarity("", "apple"))
	assert.Zero(t, Similarity("apple", ""))
	assert.Zero(t, Similarity("!!!", "apple"))
}

func TestSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"apple", "Organic Fuji Apples"},
		{"dark chocolate", "milk chocolate bar"},
		{"unicorn tears", "Whole Milk"},
		{"a", "b"},
		{"red onion", "onion rings snack pack"},
	}
	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, got, 0.0, "similarity(%q, %q)", p[0], p[1])
		assert.LessOrEqual(t, got, 1.0, "similarity(%q, %q)", p[0], p[1])
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "organic fuji apples", Normalize("  Organic Fuji Apples! "))
	assert.Equal(t, "3 lb", Normalize(`"3 lb"`))
	assert.Equal(t, "", Normalize("!@#$%"))
}
