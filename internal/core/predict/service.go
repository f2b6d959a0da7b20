package predict

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"smart-grocer/internal/core/catalog"
	"smart-grocer/internal/infrastructure/config"
	"smart-grocer/internal/pkg/common"

	"go.uber.org/zap"
)

// 預測模式，對應腳本第一個參數
const (
	modeCart            = "cart"
	modeRecommendations = "recommendations"
	modeDelivery        = "delivery"
)

// defaultSlotWindows 配送時段回退清單，依偏好遞減
var defaultSlotWindows = []string{"9am-11am", "11am-1pm", "1pm-3pm", "3pm-5pm", "5pm-7pm"}

// runFunc 執行預測子行程，測試時可替換
type runFunc func(ctx context.Context, mode string, userID, count int) ([]byte, error)

// Service 購物預測服務
// 透過 Kumo python 子行程取得購物車補貨、推薦商品與配送時段預測；
// 子行程失敗時就地回退到目錄導出的預設結果，不把錯誤往上拋
type Service struct {
	store *catalog.Store
	run   runFunc
	now   func() time.Time
}

// NewService 創建購物預測服務
// 腳本用法：python3 kumo_predictions.py <cart|recommendations|delivery> <user_id> [n]
func NewService(cfg *config.Config, store *catalog.Store) *Service {
	pythonBin := cfg.Kumo.PythonBin
	script := cfg.Kumo.PredictScript
	timeout := cfg.Kumo.Timeout

	return &Service{
		store: store,
		now:   time.Now,
		run: func(ctx context.Context, mode string, userID, count int) ([]byte, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			cmd := exec.CommandContext(ctx, pythonBin, script, mode, strconv.Itoa(userID), strconv.Itoa(count))
			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			start := time.Now()
			err := cmd.Run()
			common.LogKumoCall(script, time.Since(start), err)
			if err != nil {
				return nil, fmt.Errorf("predict subprocess failed: %w (stderr: %s)", err, firstStderrLine(stderr.String()))
			}
			return stdout.Bytes(), nil
		},
	}
}

// PredictCart 預測使用者下一次購物車內容
func (s *Service) PredictCart(ctx context.Context, userID, count int) []common.PredictedItem {
	return s.predictItems(ctx, modeCart, userID, count)
}

// PredictRecommendations 預測使用者可能感興趣的新商品
func (s *Service) PredictRecommendations(ctx context.Context, userID, count int) []common.PredictedItem {
	return s.predictItems(ctx, modeRecommendations, userID, count)
}

func (s *Service) predictItems(ctx context.Context, mode string, userID, count int) []common.PredictedItem {
	out, err := s.run(ctx, mode, userID, count)
	if err == nil {
		items, perr := parseItems(out)
		if perr == nil {
			return items
		}
		err = perr
	}

	common.LogWarn("商品預測不可用，回退目錄預設",
		zap.String("mode", mode),
		zap.Int("user_id", userID),
		zap.Error(err),
	)
	return s.fallbackItems(count)
}

// PredictDelivery 預測使用者偏好的配送時段
func (s *Service) PredictDelivery(ctx context.Context, userID, count int) []common.DeliverySlot {
	out, err := s.run(ctx, modeDelivery, userID, count)
	if err == nil {
		slots, perr := parseSlots(out)
		if perr == nil {
			return slots
		}
		err = perr
	}

	common.LogWarn("配送時段預測不可用，回退預設時段",
		zap.Int("user_id", userID),
		zap.Error(err),
	)
	return fallbackSlots(s.now(), count)
}

func parseItems(out []byte) ([]common.PredictedItem, error) {
	raw := common.ExtractJSONArray(string(out))
	var items []common.PredictedItem
	if err := common.ParseJSON(raw, &items); err != nil {
		return nil, fmt.Errorf("malformed prediction output: %w", err)
	}
	return items, nil
}

func parseSlots(out []byte) ([]common.DeliverySlot, error) {
	raw := common.ExtractJSONArray(string(out))
	var slots []common.DeliverySlot
	if err := common.ParseJSON(raw, &slots); err != nil {
		return nil, fmt.Errorf("malformed delivery output: %w", err)
	}
	return slots, nil
}

// fallbackItems 用商品目錄做預設清單：價格由低到高取前 count 項
func (s *Service) fallbackItems(count int) []common.PredictedItem {
	entries := s.store.Load()
	if len(entries) == 0 {
		return []common.PredictedItem{}
	}

	sorted := make([]common.CatalogEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PricePerUnit < sorted[j].PricePerUnit
	})
	if count > 0 && count < len(sorted) {
		sorted = sorted[:count]
	}

	items := make([]common.PredictedItem, len(sorted))
	for i, entry := range sorted {
		items[i] = common.PredictedItem{
			CatalogEntry: entry,
			Quantity:     1,
			Confidence:   0.5,
			Reason:       "fallback: affordable catalog item",
		}
	}
	return items
}

// fallbackSlots 產生預設配送時段
// 時段起點已過（含 30 分鐘緩衝）就標記為明天，偏好分數 0.7 起每格遞減 0.1
func fallbackSlots(now time.Time, count int) []common.DeliverySlot {
	if count <= 0 || count > len(defaultSlotWindows) {
		count = len(defaultSlotWindows)
	}

	slots := make([]common.DeliverySlot, 0, count)
	for i, window := range defaultSlotWindows[:count] {
		hour, err := parseWindowStartHour(window)
		if err != nil {
			continue
		}

		label := "Today"
		date := now
		if now.Hour() > hour || (now.Hour() == hour && now.Minute() >= 30) {
			label = "Tomorrow"
			date = now.AddDate(0, 0, 1)
		}
		slotTime := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())

		slots = append(slots, common.DeliverySlot{
			TimeWindow:   window,
			DateLabel:    label,
			FullDatetime: slotTime.Format(time.RFC3339),
			Score:        0.7 - float64(i)*0.1,
		})
	}
	return slots
}

// parseWindowStartHour 把 "9am-11am" 這種時段字串的起始時間轉成 24 小時制
func parseWindowStartHour(window string) (int, error) {
	start := strings.TrimSpace(strings.SplitN(window, "-", 2)[0])
	lower := strings.ToLower(start)

	isPM := strings.HasSuffix(lower, "pm")
	digits := strings.TrimSuffix(strings.TrimSuffix(lower, "pm"), "am")
	hour, err := strconv.Atoi(strings.TrimSpace(digits))
	if err != nil {
		return 0, fmt.Errorf("invalid time window %q: %w", window, err)
	}

	if isPM && hour != 12 {
		hour += 12
	}
	if !isPM && hour == 12 {
		hour = 0
	}
	return hour, nil
}

// firstStderrLine 取 stderr 第一行，避免整段 python traceback 進錯誤訊息
func firstStderrLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
