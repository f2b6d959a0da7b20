package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"smart-grocer/internal/core/ai/cache"
	openrouter "smart-grocer/internal/core/service"
	"smart-grocer/internal/infrastructure/config"
	"smart-grocer/internal/pkg/common"
)

// Response AI 回應結構
type Response struct {
	Content string
}

// Service AI 服務
// 統一入口：速率檢查、快取查詢、呼叫 OpenRouter、回寫快取
type Service struct {
	config       *config.Config
	openRouter   *openrouter.OpenRouterService
	cacheManager *cache.CacheManager
	mu           sync.RWMutex
	lastRequest  time.Time
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, cacheManager *cache.CacheManager) (*Service, error) {
	openRouter := openrouter.NewOpenRouterService(cfg)

	return &Service{
		config:       cfg,
		openRouter:   openRouter,
		cacheManager: cacheManager,
	}, nil
}

// ProcessRequest 統一對外方法
func (s *Service) ProcessRequest(ctx context.Context, prompt string) (*Response, error) {
	if err := s.checkRequestRate(); err != nil {
		return nil, err
	}

	// 統一 prompt 格式，去除多餘空白、tab、換行，確保快取 key 一致
	prompt = strings.Join(strings.Fields(strings.TrimSpace(prompt)), " ")

	// 檢查緩存（用 cacheManager）
	if s.config.Cache.Enabled && s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, prompt); err == nil && val != "" {
			return &Response{Content: val}, nil
		}
	}

	start := time.Now()
	content, err := s.openRouter.GenerateResponse(ctx, prompt)
	common.LogAICall(prompt, time.Since(start), err, "")
	if err != nil {
		return nil, err
	}

	response := &Response{Content: content}

	if s.config.Cache.Enabled && s.cacheManager != nil {
		_ = s.cacheManager.Set(ctx, prompt, content)
	}

	return response, nil
}

// checkRequestRate 檢查請求頻率
func (s *Service) checkRequestRate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.config.RateLimit.Enabled && now.Sub(s.lastRequest) < s.config.RateLimit.Window {
		return errors.New("request rate limit exceeded")
	}

	s.lastRequest = now
	return nil
}
