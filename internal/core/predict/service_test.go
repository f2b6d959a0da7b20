package predict

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"smart-grocer/internal/core/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogCSV = `product_id,product_name,category,brand,size,unit,price_per_unit
1,Whole Milk,Dairy,Organic Valley,1,gal,4.29
2,Sourdough Bread,Bakery,Boudin,1,loaf,5.99
3,Bananas,Produce,Dole,1,lb,0.69
4,Eggs,Dairy,Vital Farms,12,ct,6.49
`

func newTestService(t *testing.T, run runFunc) *Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogCSV), 0o644))
	return &Service{
		store: catalog.NewStore(path),
		run:   run,
		now:   time.Now,
	}
}

func TestPredictCartParsesScriptOutput(t *testing.T) {
	svc := newTestService(t, func(ctx context.Context, mode string, userID, count int) ([]byte, error) {
		assert.Equal(t, "cart", mode)
		assert.Equal(t, 7, userID)
		return []byte(`Kumo AI RFM initialized
[{"product_id": 1, "product_name": "Whole Milk", "quantity": 2, "confidence": 0.95, "reason": "Kumo RFM prediction"}]`), nil
	})

	items := svc.PredictCart(context.Background(), 7, 5)

	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.InDelta(t, 0.95, items[0].Confidence, 1e-9)
}

func TestPredictCartFallsBackOnSubprocessError(t *testing.T) {
	svc := newTestService(t, func(ctx context.Context, mode string, userID, count int) ([]byte, error) {
		return nil, errors.New("exit status 1")
	})

	items := svc.PredictCart(context.Background(), 7, 3)

	// 回退清單依價格由低到高
	require.Len(t, items, 3)
	assert.Equal(t, "Bananas", items[0].ProductName)
	assert.Equal(t, "Whole Milk", items[1].ProductName)
	assert.Equal(t, "Sourdough Bread", items[2].ProductName)
	for _, item := range items {
		assert.Equal(t, 1, item.Quantity)
		assert.InDelta(t, 0.5, item.Confidence, 1e-9)
	}
}

func TestPredictRecommendationsFallsBackOnMalformedOutput(t *testing.T) {
	svc := newTestService(t, func(ctx context.Context, mode string, userID, count int) ([]byte, error) {
		assert.Equal(t, "recommendations", mode)
		return []byte("Traceback (most recent call last): ..."), nil
	})

	items := svc.PredictRecommendations(context.Background(), 7, 2)

	require.Len(t, items, 2)
	assert.Equal(t, "Bananas", items[0].ProductName)
}

func TestPredictDeliveryParsesScriptOutput(t *testing.T) {
	svc := newTestService(t, func(ctx context.Context, mode string, userID, count int) ([]byte, error) {
		assert.Equal(t, "delivery", mode)
		return []byte(`[{"time_window": "2pm-4pm", "date_label": "Today", "full_datetime": "2026-08-29T14:00:00Z", "score": 0.9}]`), nil
	})

	slots := svc.PredictDelivery(context.Background(), 7, 3)

	require.Len(t, slots, 1)
	assert.Equal(t, "2pm-4pm", slots[0].TimeWindow)
	assert.InDelta(t, 0.9, slots[0].Score, 1e-9)
}

func TestFallbackSlotsMorning(t *testing.T) {
	// 早上 8 點：所有時段都還沒開始，全部標記今天
	now := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)

	slots := fallbackSlots(now, 3)

	require.Len(t, slots, 3)
	assert.Equal(t, "9am-11am", slots[0].TimeWindow)
	assert.Equal(t, "Today", slots[0].DateLabel)
	assert.Equal(t, "2026-08-29T09:00:00Z", slots[0].FullDatetime)
	assert.InDelta(t, 0.7, slots[0].Score, 1e-9)
	assert.InDelta(t, 0.6, slots[1].Score, 1e-9)
	assert.InDelta(t, 0.5, slots[2].Score, 1e-9)
}

func TestFallbackSlotsEveningRollsToTomorrow(t *testing.T) {
	// 晚上 8 點：所有時段起點已過，全部標記明天
	now := time.Date(2026, 8, 29, 20, 0, 0, 0, time.UTC)

	slots := fallbackSlots(now, 2)

	require.Len(t, slots, 2)
	for _, slot := range slots {
		assert.Equal(t, "Tomorrow", slot.DateLabel)
	}
	assert.Equal(t, "2026-08-30T09:00:00Z", slots[0].FullDatetime)
}

func TestFallbackSlotsBufferWithinThirtyMinutes(t *testing.T) {
	// 9:30：第一個時段在 30 分鐘緩衝內，改明天；其餘維持今天
	now := time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)

	slots := fallbackSlots(now, 2)

	require.Len(t, slots, 2)
	assert.Equal(t, "Tomorrow", slots[0].DateLabel)
	assert.Equal(t, "Today", slots[1].DateLabel)
}

func TestParseWindowStartHour(t *testing.T) {
	cases := []struct {
		window string
		hour   int
	}{
		{"9am-11am", 9},
		{"11am-1pm", 11},
		{"1pm-3pm", 13},
		{"12pm-2pm", 12},
		{"12am-2am", 0},
	}
	for _, tc := range cases {
		hour, err := parseWindowStartHour(tc.window)
		require.NoError(t, err, tc.window)
		assert.Equal(t, tc.hour, hour, tc.window)
	}

	_, err := parseWindowStartHour("soon-ish")
	assert.Error(t, err)
}
