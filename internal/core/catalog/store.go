package catalog

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"smart-grocer/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 商品目錄快取
// 第一次 Load 解析 CSV 並去重，之後都回傳同一份唯讀切片
// 目錄載入後不再變動，讀取不需要鎖；鎖只保護首次載入的競爭
type Store struct {
	mu      sync.Mutex
	path    string
	entries []common.CatalogEntry
	loaded  bool
}

// NewStore 創建商品目錄快取
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load 載入商品目錄（記憶化）
// 目錄來源不可讀或為空時回傳空切片，不回傳錯誤，後續比對自然降級為零結果
func (s *Store) Load() []common.CatalogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.entries
	}

	s.entries = s.parse()
	s.loaded = true
	return s.entries
}

// Reload 強制重新解析目錄（測試用）
func (s *Store) Reload() []common.CatalogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.parse()
	s.loaded = true
	return s.entries
}

// Len 回傳目前目錄條目數
func (s *Store) Len() int {
	return len(s.Load())
}

// parse 解析 CSV 來源並去重，呼叫端需持有鎖
func (s *Store) parse() []common.CatalogEntry {
	file, err := os.Open(s.path)
	if err != nil {
		common.LogWarn("商品目錄來源不可讀，目錄為空",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return []common.CatalogEntry{}
	}
	defer file.Close()

	entries := parseCatalog(file)
	common.LogInfo("商品目錄已載入",
		zap.String("path", s.path),
		zap.Int("count", len(entries)),
	)
	return entries
}

// parseCatalog 解析帶標頭的 CSV 商品資料
// 標頭欄位順序不固定；數值欄位解析失敗補 0；欄位數不足標頭的資料列直接略過
func parseCatalog(r io.Reader) []common.CatalogEntry {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return []common.CatalogEntry{}
	}

	// 標頭名稱去空白、去引號後建立欄位索引
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.Trim(strings.TrimSpace(name), `"`)
		colIdx[name] = i
	}

	field := func(row []string, name string) string {
		idx, ok := colIdx[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	entries := make([]common.CatalogEntry, 0, 64)
	keyIdx := make(map[string]int) // 去重鍵 → entries 索引

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(row) < len(header) {
			continue
		}

		id, err := strconv.Atoi(field(row, "product_id"))
		if err != nil {
			id = 0
		}
		price, err := strconv.ParseFloat(field(row, "price_per_unit"), 64)
		if err != nil {
			price = 0
		}

		entry := common.CatalogEntry{
			ProductID:    id,
			ProductName:  field(row, "product_name"),
			Category:     field(row, "category"),
			Brand:        field(row, "brand"),
			Size:         field(row, "size"),
			Unit:         field(row, "unit"),
			PricePerUnit: price,
		}

		// 去重：同 name|brand|size 只留價格較低者，價格相同留先出現的
		key := entry.DedupKey()
		if i, exists := keyIdx[key]; exists {
			if entry.PricePerUnit < entries[i].PricePerUnit {
				entries[i] = entry
			}
			continue
		}
		keyIdx[key] = len(entries)
		entries = append(entries, entry)
	}

	return entries
}
