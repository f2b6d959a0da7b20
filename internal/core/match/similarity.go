package match

import (
	"strings"
)

// 相似度分層常數
// 這組數值是沿用已上線版本的啟發式常數，改動會影響既有比對結果，視為相容性邊界
const (
	scoreExact     = 1.0
	scoreSubstring = 0.8
	scoreSynonym   = 0.7
	scoreWordScale = 0.5
	scoreCharScale = 0.2
)

// synonymTable 固定同義詞表
// 正規名稱 → 相關詞彙；任一字串含正規名稱、另一字串含其同義詞即命中同義層
var synonymTable = map[string][]string{
	"nuts":      {"almond", "cashew", "peanut", "pecan", "walnut", "pistachio"},
	"cheese":    {"cheddar", "mozzarella", "parmesan", "gouda", "feta", "brie"},
	"herbs":     {"basil", "cilantro", "oregano", "parsley", "rosemary", "thyme"},
	"spices":    {"cinnamon", "cumin", "paprika", "pepper", "turmeric", "nutmeg"},
	"chocolate": {"cocoa", "dark chocolate", "milk chocolate", "chocolate chips"},
}

// Normalize 比對前正規化：轉小寫、去掉 [a-z0-9 ] 以外字元、去頭尾空白
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Similarity 計算查詢字串與目錄欄位的相似度，範圍 [0,1]
// 分層依序判斷，先命中者優先：完全相等 1.0、子字串 0.8、同義詞 0.7、
// 字詞重疊 0.5×比例、字元重疊 0.2×比例
// 純函數，同輸入必同輸出
func Similarity(query, candidate string) float64 {
	a := Normalize(query)
	b := Normalize(candidate)
	if a == "" || b == "" {
		return 0
	}

	// 第一層：完全相等
	if a == b {
		return scoreExact
	}

	// 第二層：子字串包含
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return scoreSubstring
	}

	// 第三層：同義詞表
	if matchesSynonym(a, b) || matchesSynonym(b, a) {
		return scoreSynonym
	}

	// 第四層：字詞重疊
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	setA := make(map[string]struct{}, len(wordsA))
	for _, w := range wordsA {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		setB[w] = struct{}{}
	}
	shared := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			shared++
		}
	}
	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	if shared > 0 {
		return scoreWordScale * float64(shared) / float64(larger)
	}

	// 第五層：逐位字元重疊
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	matching := 0
	for i := 0; i < len(shorter); i++ {
		if shorter[i] == longer[i] {
			matching++
		}
	}
	return scoreCharScale * float64(matching) / float64(len(longer))
}

// matchesSynonym 檢查 a 含正規名稱且 b 含其同義詞
func matchesSynonym(a, b string) bool {
	for canonical, synonyms := range synonymTable {
		if !strings.Contains(a, canonical) {
			continue
		}
		for _, syn := range synonyms {
			if strings.Contains(b, syn) {
				return true
			}
		}
	}
	return false
}
