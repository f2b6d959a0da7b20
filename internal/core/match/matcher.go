package match

import (
	"sort"

	"smart-grocer/internal/pkg/common"
)

// 低於這個分數的候選不列入結果
const minScore = 0.2

// candidate 附帶分數的目錄條目，只在單次比對內存活
type candidate struct {
	entry common.CatalogEntry
	score float64
}

// Score 計算單一目錄條目對食材名稱的最佳欄位分數
// 取 name / category / brand 三個欄位相似度的最大值
func Score(ingredient string, entry common.CatalogEntry) float64 {
	best := Similarity(ingredient, entry.ProductName)
	if s := Similarity(ingredient, entry.Category); s > best {
		best = s
	}
	if s := Similarity(ingredient, entry.Brand); s > best {
		best = s
	}
	return best
}

// MatchCandidates 對整份目錄比對食材名稱，回傳分數遞減的前 maxResults 筆
// 同分時保持目錄迭代順序（穩定排序，先出現者優先）
// 目錄為空或全數低於門檻時回傳空切片，不算錯誤
func MatchCandidates(ingredient string, catalog []common.CatalogEntry, maxResults int) []common.CatalogEntry {
	if len(catalog) == 0 || maxResults <= 0 {
		return nil
	}

	scored := make([]candidate, 0, len(catalog))
	for _, entry := range catalog {
		if s := Score(ingredient, entry); s > minScore {
			scored = append(scored, candidate{entry: entry, score: s})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	result := make([]common.CatalogEntry, len(scored))
	for i, c := range scored {
		result[i] = c.entry
	}
	return result
}
