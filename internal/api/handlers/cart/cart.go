package cart

import (
	"net/http"
	"strconv"

	"smart-grocer/internal/core/predict"
	"smart-grocer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 各端點的預設回傳數量
const (
	defaultCartItems       = 5
	defaultRecommendations = 5
	defaultDeliverySlots   = 3
)

// Handler 購物預測處理程序
type Handler struct {
	predictService *predict.Service
}

// NewHandler 創建購物預測處理程序
func NewHandler(predictSvc *predict.Service) *Handler {
	return &Handler{predictService: predictSvc}
}

// HandleCart 預測使用者下一次購物車
func (h *Handler) HandleCart(c *gin.Context) {
	userID, count, ok := h.params(c, defaultCartItems)
	if !ok {
		return
	}

	items := h.predictService.PredictCart(c.Request.Context(), userID, count)

	common.LogInfo("購物車預測完成",
		zap.Int("user_id", userID),
		zap.Int("items", len(items)),
	)
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"items":   items,
	})
}

// HandleRecommendations 預測使用者可能喜歡的新商品
func (h *Handler) HandleRecommendations(c *gin.Context) {
	userID, count, ok := h.params(c, defaultRecommendations)
	if !ok {
		return
	}

	items := h.predictService.PredictRecommendations(c.Request.Context(), userID, count)

	common.LogInfo("商品推薦完成",
		zap.Int("user_id", userID),
		zap.Int("items", len(items)),
	)
	c.JSON(http.StatusOK, gin.H{
		"user_id":         userID,
		"recommendations": items,
	})
}

// HandleDelivery 預測使用者偏好的配送時段
func (h *Handler) HandleDelivery(c *gin.Context) {
	userID, count, ok := h.params(c, defaultDeliverySlots)
	if !ok {
		return
	}

	slots := h.predictService.PredictDelivery(c.Request.Context(), userID, count)

	common.LogInfo("配送時段預測完成",
		zap.Int("user_id", userID),
		zap.Int("slots", len(slots)),
	)
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"slots":   slots,
	})
}

// params 解析路徑上的 user_id 與查詢參數 count
func (h *Handler) params(c *gin.Context, defaultCount int) (userID, count int, ok bool) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil || userID <= 0 {
		common.LogWarn("無效的用戶編號",
			zap.String("user_id", c.Param("user_id")),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": common.ErrInvalidUserID.Message})
		return 0, 0, false
	}

	count = defaultCount
	if raw := c.Query("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			count = n
		}
	}
	return userID, count, true
}
