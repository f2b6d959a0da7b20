package catalog

import (
	"net/http"
	"strings"

	catalogStore "smart-grocer/internal/core/catalog"
	"smart-grocer/internal/core/match"

	"github.com/gin-gonic/gin"
)

// Handler 商品目錄處理程序
type Handler struct {
	store *catalogStore.Store
}

// NewHandler 創建商品目錄處理程序
func NewHandler(store *catalogStore.Store) *Handler {
	return &Handler{store: store}
}

// HandleList 列出商品目錄
// 可用 ?q= 做簡單的名稱子字串過濾
func (h *Handler) HandleList(c *gin.Context) {
	entries := h.store.Load()

	if q := match.Normalize(c.Query("q")); q != "" {
		filtered := entries[:0:0]
		for _, entry := range entries {
			if strings.Contains(match.Normalize(entry.ProductName), q) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(entries),
		"products": entries,
	})
}
