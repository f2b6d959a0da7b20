package common

import (
	"fmt"
	"strings"
)

// CatalogEntry 商品目錄條目
// 欄位名稱與 products.csv / 前端 JSON 完全一致，不要改動
type CatalogEntry struct {
	ProductID    int     `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Category     string  `json:"category"`
	Brand        string  `json:"brand"`
	Size         string  `json:"size"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// DedupKey 去重鍵：小寫去空白的 name|brand|size
func (e CatalogEntry) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(e.ProductName)) + "|" +
		strings.ToLower(strings.TrimSpace(e.Brand)) + "|" +
		strings.ToLower(strings.TrimSpace(e.Size))
}

// PersonalizedOption 帶個人化排名的商品選項
// Rank 為有效排名：有外部排名用外部值，否則用原始序位（1 起算）
type PersonalizedOption struct {
	CatalogEntry
	Rank int `json:"rank"`
}

// IngredientOptions 單一食材對應的商品選項列表（依有效排名遞增排序）
type IngredientOptions struct {
	Name    string               `json:"name"`
	Options []PersonalizedOption `json:"options"`
}

// PredictedItem 預測購物車／推薦商品條目
type PredictedItem struct {
	CatalogEntry
	Quantity   int     `json:"quantity,omitempty"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// DeliverySlot 配送時段預測
type DeliverySlot struct {
	TimeWindow   string  `json:"time_window"`
	DateLabel    string  `json:"date_label"`
	FullDatetime string  `json:"full_datetime"`
	Score        float64 `json:"score"`
}

// RecipeIngredient 食譜食材
type RecipeIngredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

// Recipe AI 生成的食譜
// missing_ingredients 為購物車中沒有、需要加購的食材名稱
type Recipe struct {
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Ingredients        []RecipeIngredient `json:"ingredients"`
	Instructions       []string           `json:"instructions"`
	PrepTime           string             `json:"prep_time"`
	CookTime           string             `json:"cook_time"`
	Servings           int                `json:"servings"`
	MissingIngredients []string           `json:"missing_ingredients"`
}

// FormatCartItems 格式化購物車商品列表（組 prompt 用）
func FormatCartItems(items []PredictedItem) string {
	if len(items) == 0 {
		return "(cart is empty, use common affordable ingredients)"
	}
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s (%s, %s %s)\n",
			item.ProductName, item.Brand, item.Size, item.Unit))
	}
	return sb.String()
}
