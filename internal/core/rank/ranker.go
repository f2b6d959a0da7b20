package rank

import (
	"context"
	"sort"

	"smart-grocer/internal/pkg/common"

	"go.uber.org/zap"
)

// Ranker 個人化排序來源
// 回傳 product_id → 排名（正整數，越小越優先）的部分映射；
// 不在映射中的商品視為「沒有意見」，由呼叫端補序位
// 實際傳輸方式（子行程、HTTP、內嵌）由實作決定，測試可用假實作替換
type Ranker interface {
	Rank(ctx context.Context, productIDs []int, userID int) (map[int]int, error)
}

// Service 個人化合併服務
type Service struct {
	ranker Ranker
}

// NewService 創建個人化合併服務
func NewService(ranker Ranker) *Service {
	return &Service{ranker: ranker}
}

// Personalize 將外部個人化排名合併到候選列表
// 每個候選的有效排名 = 外部排名（若有）否則原始序位，
// 依有效排名遞增排序；同名次時有外部排名者優先，再比原始位置
// 排序來源失敗時整批回退原始順序，不把錯誤往上拋
func (s *Service) Personalize(ctx context.Context, candidates []common.CatalogEntry, userID int) []common.PersonalizedOption {
	options := make([]common.PersonalizedOption, len(candidates))
	for i, entry := range candidates {
		options[i] = common.PersonalizedOption{
			CatalogEntry: entry,
			Rank:         i + 1, // 回退序位
		}
	}
	if len(options) == 0 || s.ranker == nil {
		return options
	}

	ids := make([]int, len(candidates))
	for i, entry := range candidates {
		ids[i] = entry.ProductID
	}

	ranks, err := s.ranker.Rank(ctx, ids, userID)
	if err != nil {
		common.LogWarn("個人化排序來源不可用，回退原始順序",
			zap.Int("user_id", userID),
			zap.Int("candidates", len(candidates)),
			zap.Error(err),
		)
		return options
	}

	type ranked struct {
		opt     common.PersonalizedOption
		covered bool
		pos     int
	}
	merged := make([]ranked, len(options))
	for i, opt := range options {
		merged[i] = ranked{opt: opt, pos: i}
		if r, ok := ranks[opt.ProductID]; ok && r > 0 {
			merged[i].opt.Rank = r
			merged[i].covered = true
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].opt.Rank != merged[j].opt.Rank {
			return merged[i].opt.Rank < merged[j].opt.Rank
		}
		if merged[i].covered != merged[j].covered {
			return merged[i].covered
		}
		return merged[i].pos < merged[j].pos
	})

	for i, m := range merged {
		options[i] = m.opt
	}
	return options
}
