package recipe

import (
	"context"
	"fmt"

	"smart-grocer/internal/core/ai/service"
	"smart-grocer/internal/pkg/common"

	"go.uber.org/zap"
)

// aiClient AI 服務入口，測試時可用假實作替換
type aiClient interface {
	ProcessRequest(ctx context.Context, prompt string) (*service.Response, error)
}

// RecipeService 食譜生成服務
// --------------------------------------------------
type RecipeService struct {
	aiService aiClient
}

// NewRecipeService 創建新的食譜生成服務
func NewRecipeService(aiService *service.Service) *RecipeService {
	return &RecipeService{aiService: aiService}
}

// GenerateRecipe 根據購物車內容生成食譜
// AI 失敗、空回應或格式錯誤一律回退靜態食譜，永遠不回傳錯誤；
// missing_ingredients 是食譜需要但購物車沒有的食材，後續交給豐富化管線
func (s *RecipeService) GenerateRecipe(ctx context.Context, cartItems []common.PredictedItem, theme string) *common.Recipe {
	if theme == "" {
		theme = "weeknight dinner"
	}

	prompt := fmt.Sprintf(`You are a home-cooking assistant. Create one %s recipe using the shopper's cart below.
		Cart items:
		%s
		Requirements:
		1. Prefer ingredients already in the cart; keep extra ingredients to a minimum
		2. List every needed ingredient that is NOT in the cart under "missing_ingredients", using plain ingredient names
		3. Instructions must be concrete steps a beginner can follow
		4. All fields must use double quotes
		5. Return the most compact JSON possible, no markdown, no commentary
		6. "servings" must be an integer

		Return JSON in exactly this shape (example only, do not copy the content):
		{
		"name": "Recipe name",
		"description": "One sentence description",
		"ingredients": [
			{"name": "ingredient", "amount": "2", "unit": "cups"}
		],
		"instructions": ["Step one", "Step two"],
		"prep_time": "10 minutes",
		"cook_time": "20 minutes",
		"servings": 2,
		"missing_ingredients": ["ingredient not in cart"]
		}
		`,
		theme,
		common.FormatCartItems(cartItems))

	resp, err := s.aiService.ProcessRequest(ctx, prompt)
	if err != nil {
		common.LogWarn("AI 食譜生成失敗，回退靜態食譜",
			zap.String("theme", theme),
			zap.Error(err),
		)
		return fallbackRecipe()
	}

	if resp == nil || resp.Content == "" {
		common.LogWarn("AI 回應為空，回退靜態食譜",
			zap.String("theme", theme),
		)
		return fallbackRecipe()
	}

	content := common.ExtractJSONObject(resp.Content)

	common.LogDebug("AI 回應內容 (recipe/generate)",
		zap.Int("ai_response_length", len(content)),
	)

	var result common.Recipe
	if err := common.ParseJSON(content, &result); err != nil {
		common.LogWarn("AI 食譜解析失敗，回退靜態食譜",
			zap.String("theme", theme),
			zap.Error(err),
		)
		return fallbackRecipe()
	}

	// 檢查並補充空值
	if result.Name == "" {
		result.Name = "Untitled Recipe"
	}
	if result.Servings <= 0 {
		result.Servings = 2
	}

	return &result
}

// fallbackRecipe AI 不可用時的靜態食譜，不帶缺少食材所以不觸發豐富化
func fallbackRecipe() *common.Recipe {
	return &common.Recipe{
		Name:        "Simple Garlic Butter Pasta",
		Description: "A reliable pantry pasta for nights when inspiration runs out.",
		Ingredients: []common.RecipeIngredient{
			{Name: "spaghetti", Amount: "200", Unit: "g"},
			{Name: "butter", Amount: "3", Unit: "tbsp"},
			{Name: "garlic", Amount: "3", Unit: "cloves"},
			{Name: "parmesan", Amount: "1/4", Unit: "cup"},
		},
		Instructions: []string{
			"Cook the spaghetti in salted boiling water until al dente, about 9 minutes.",
			"Melt the butter in a pan over medium heat and cook the sliced garlic until fragrant.",
			"Toss the drained pasta in the garlic butter with a splash of pasta water.",
			"Serve topped with grated parmesan and black pepper.",
		},
		PrepTime:           "5 minutes",
		CookTime:           "15 minutes",
		Servings:           2,
		MissingIngredients: []string{},
	}
}
