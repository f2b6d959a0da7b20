package recipe

import (
	"net/http"

	"smart-grocer/internal/core/enrich"
	"smart-grocer/internal/core/predict"
	recipeService "smart-grocer/internal/core/recipe"
	"smart-grocer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 預測購物車時取的商品數，食譜用不到太多
const cartItemsForRecipe = 5

// GenerateRequest 生成食譜請求
type GenerateRequest struct {
	UserID int    `json:"user_id" binding:"required"` // 使用者編號
	Theme  string `json:"theme,omitempty"`            // 食譜主題（如：breakfast、weeknight dinner）
}

// GenerateResponse 生成食譜響應
// 缺少食材一律附上排名後的購買選項，沒有任何選項的食材不出現
type GenerateResponse struct {
	Recipe            *common.Recipe             `json:"recipe"`
	IngredientOptions []common.IngredientOptions `json:"ingredient_options"`
}

// OptionsRequest 食材購買選項請求
type OptionsRequest struct {
	UserID      int      `json:"user_id" binding:"required"`
	Ingredients []string `json:"ingredients" binding:"required"`
}

// Handler 食譜處理程序
type Handler struct {
	recipeService  *recipeService.RecipeService
	predictService *predict.Service
	enrichService  *enrich.Service
}

// NewHandler 創建新的食譜處理程序
func NewHandler(recipeSvc *recipeService.RecipeService, predictSvc *predict.Service, enrichSvc *enrich.Service) *Handler {
	return &Handler{
		recipeService:  recipeSvc,
		predictService: predictSvc,
		enrichService:  enrichSvc,
	}
}

// HandleGenerate 根據使用者的預測購物車生成食譜並補上缺少食材的購買選項
func (h *Handler) HandleGenerate(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.UserID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": common.ErrInvalidUserID.Message})
		return
	}

	ctx := c.Request.Context()

	cartItems := h.predictService.PredictCart(ctx, req.UserID, cartItemsForRecipe)
	recipe := h.recipeService.GenerateRecipe(ctx, cartItems, req.Theme)
	options := h.enrichService.EnrichRecipe(ctx, recipe.MissingIngredients, req.UserID)

	common.LogInfo("食譜生成完成",
		zap.String("request_id", requestID),
		zap.Int("user_id", req.UserID),
		zap.String("recipe", recipe.Name),
		zap.Int("missing_ingredients", len(recipe.MissingIngredients)),
		zap.Int("enriched_ingredients", len(options)),
	)

	c.JSON(http.StatusOK, GenerateResponse{
		Recipe:            recipe,
		IngredientOptions: options,
	})
}

// HandleIngredientOptions 為任意食材清單找購買選項
func (h *Handler) HandleIngredientOptions(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	var req OptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.UserID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": common.ErrInvalidUserID.Message})
		return
	}

	options := h.enrichService.EnrichRecipe(c.Request.Context(), req.Ingredients, req.UserID)

	c.JSON(http.StatusOK, gin.H{
		"ingredient_options": options,
	})
}
