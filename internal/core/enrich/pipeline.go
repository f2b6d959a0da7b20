package enrich

import (
	"context"

	"smart-grocer/internal/core/catalog"
	"smart-grocer/internal/core/match"
	"smart-grocer/internal/core/rank"
	"smart-grocer/internal/pkg/common"

	"go.uber.org/zap"
)

// maxOptionsPerIngredient 每項缺少食材最多回傳的商品選項數
const maxOptionsPerIngredient = 3

// Service 食材購買選項豐富化管線
// 對每項缺少的食材依序做候選比對與個人化合併，
// 組出「食材 → 排名後商品選項」列表
type Service struct {
	store  *catalog.Store
	ranker *rank.Service
}

// NewService 創建豐富化管線
func NewService(store *catalog.Store, ranker *rank.Service) *Service {
	return &Service{store: store, ranker: ranker}
}

// EnrichRecipe 為每項缺少食材找出排名後的購買選項
// 保持輸入食材順序；目錄中找不到任何候選的食材直接省略
func (s *Service) EnrichRecipe(ctx context.Context, missing []string, userID int) []common.IngredientOptions {
	entries := s.store.Load()
	results := make([]common.IngredientOptions, 0, len(missing))

	for _, name := range missing {
		candidates := match.MatchCandidates(name, entries, maxOptionsPerIngredient)
		if len(candidates) == 0 {
			common.LogDebug("食材在商品目錄中沒有候選，省略",
				zap.String("ingredient", name),
			)
			continue
		}

		options := s.ranker.Personalize(ctx, candidates, userID)
		results = append(results, common.IngredientOptions{
			Name:    name,
			Options: options,
		})
	}

	common.LogInfo("食材購買選項豐富化完成",
		zap.Int("user_id", userID),
		zap.Int("missing_ingredients", len(missing)),
		zap.Int("enriched", len(results)),
	)
	return results
}
