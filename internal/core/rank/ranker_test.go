package rank

import (
	"context"
	"errors"
	"testing"

	"smart-grocer/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRanker 測試用排序來源
type fakeRanker struct {
	ranks map[int]int
	err   error
	calls int
}

func (f *fakeRanker) Rank(ctx context.Context, productIDs []int, userID int) (map[int]int, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.ranks, nil
}

func candidates(ids ...int) []common.CatalogEntry {
	out := make([]common.CatalogEntry, len(ids))
	for i, id := range ids {
		out[i] = common.CatalogEntry{ProductID: id}
	}
	return out
}

func TestPersonalizeFallbackOnFailure(t *testing.T) {
	svc := NewService(&fakeRanker{err: errors.New("subprocess exited 1")})

	got := svc.Personalize(context.Background(), candidates(7, 3, 9), 42)

	require.Len(t, got, 3)
	// 來源失敗時保持輸入順序，序位 1..n
	assert.Equal(t, []int{7, 3, 9}, []int{got[0].ProductID, got[1].ProductID, got[2].ProductID})
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Rank, got[1].Rank, got[2].Rank})
}

func TestPersonalizePartialCoverage(t *testing.T) {
	// 外部只對 9 有意見：rank 1，其他用回退序位
	svc := NewService(&fakeRanker{ranks: map[int]int{9: 1}})

	got := svc.Personalize(context.Background(), candidates(7, 3, 9), 42)

	require.Len(t, got, 3)
	// 9 的外部排名 1 與 7 的回退序位 1 同名次，有外部排名者優先
	assert.Equal(t, 9, got[0].ProductID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 7, got[1].ProductID)
	assert.Equal(t, 1, got[1].Rank)
	assert.Equal(t, 3, got[2].ProductID)
	assert.Equal(t, 2, got[2].Rank)
}

func TestPersonalizeOrdinalCanBeatExternalRank(t *testing.T) {
	// 未覆蓋候選的回退序位數值較小時排前面，有效排名比較決定絕對順序
	svc := NewService(&fakeRanker{ranks: map[int]int{3: 5}})

	got := svc.Personalize(context.Background(), candidates(7, 3, 9), 42)

	require.Len(t, got, 3)
	assert.Equal(t, []int{7, 9, 3}, []int{got[0].ProductID, got[1].ProductID, got[2].ProductID})
	assert.Equal(t, []int{1, 3, 5}, []int{got[0].Rank, got[1].Rank, got[2].Rank})
}

func TestPersonalizeFullCoverageReorders(t *testing.T) {
	svc := NewService(&fakeRanker{ranks: map[int]int{7: 3, 3: 1, 9: 2}})

	got := svc.Personalize(context.Background(), candidates(7, 3, 9), 42)

	require.Len(t, got, 3)
	assert.Equal(t, []int{3, 9, 7}, []int{got[0].ProductID, got[1].ProductID, got[2].ProductID})
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Rank, got[1].Rank, got[2].Rank})
}

func TestPersonalizeIgnoresNonPositiveRanks(t *testing.T) {
	svc := NewService(&fakeRanker{ranks: map[int]int{7: 0, 3: -2}})

	got := svc.Personalize(context.Background(), candidates(7, 3), 42)

	require.Len(t, got, 2)
	assert.Equal(t, []int{1, 2}, []int{got[0].Rank, got[1].Rank})
}

func TestPersonalizeEmptyCandidates(t *testing.T) {
	fake := &fakeRanker{ranks: map[int]int{1: 1}}
	svc := NewService(fake)

	got := svc.Personalize(context.Background(), nil, 42)

	assert.Empty(t, got)
	assert.Zero(t, fake.calls, "不應為空候選呼叫排序來源")
}

func TestPersonalizeNilRanker(t *testing.T) {
	svc := NewService(nil)

	got := svc.Personalize(context.Background(), candidates(5, 6), 42)

	require.Len(t, got, 2)
	assert.Equal(t, []int{1, 2}, []int{got[0].Rank, got[1].Rank})
}

func TestParseRankOutput(t *testing.T) {
	out := []byte(`[
  {"product_id": 12, "product_name": "Olive Oil", "kumo_rank": 2},
  {"product_id": 8, "product_name": "Butter", "kumo_rank": 1},
  {"product_id": 99, "product_name": "Bad Row", "kumo_rank": 0}
]`)
	ranks, err := parseRankOutput(out)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{12: 2, 8: 1}, ranks)
}

func TestParseRankOutputWithStdoutNoise(t *testing.T) {
	// 腳本偶爾會在 JSON 前後混入雜訊，擷取陣列後仍要能解析
	out := []byte("Kumo AI RFM initialized\n[{\"product_id\": 1, \"kumo_rank\": 1}]\n")
	ranks, err := parseRankOutput(out)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 1}, ranks)
}

func TestParseRankOutputMalformed(t *testing.T) {
	_, err := parseRankOutput([]byte("Traceback (most recent call last): ..."))
	assert.Error(t, err)
}
