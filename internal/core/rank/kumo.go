package rank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"smart-grocer/internal/infrastructure/config"
	"smart-grocer/internal/pkg/common"
)

// KumoRanker 透過 Kumo python 子行程取得個人化排名
// 腳本用法：python3 kumo_personalized_ingredients.py <product_ids_json> <user_id>
// stdout 輸出 JSON 陣列，stderr 是腳本自己的 log
type KumoRanker struct {
	pythonBin string
	script    string
	timeout   time.Duration
}

// NewKumoRanker 創建子行程排序來源
func NewKumoRanker(cfg *config.Config) *KumoRanker {
	return &KumoRanker{
		pythonBin: cfg.Kumo.PythonBin,
		script:    cfg.Kumo.RankScript,
		timeout:   cfg.Kumo.Timeout,
	}
}

// Rank 執行排序腳本並解析輸出
// 非零退出碼、超時、輸出格式錯誤一律回傳錯誤，由合併端統一回退
func (r *KumoRanker) Rank(ctx context.Context, productIDs []int, userID int) (map[int]int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	idsJSON, err := json.Marshal(productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product ids: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.pythonBin, r.script, string(idsJSON), strconv.Itoa(userID))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	common.LogKumoCall(r.script, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("rank subprocess failed: %w (stderr: %s)", err, firstLine(stderr.String()))
	}

	return parseRankOutput(stdout.Bytes())
}

// rankRow 腳本輸出的單筆結果，只取需要的欄位
type rankRow struct {
	ProductID int `json:"product_id"`
	KumoRank  int `json:"kumo_rank"`
}

// parseRankOutput 解析腳本 stdout 為 product_id → 排名映射
func parseRankOutput(out []byte) (map[int]int, error) {
	raw := common.ExtractJSONArray(string(out))

	var rows []rankRow
	if err := common.ParseJSON(raw, &rows); err != nil {
		return nil, fmt.Errorf("malformed rank output: %w", err)
	}

	ranks := make(map[int]int, len(rows))
	for _, row := range rows {
		if row.KumoRank <= 0 {
			continue
		}
		ranks[row.ProductID] = row.KumoRank
	}
	return ranks, nil
}

// firstLine 取 stderr 第一行，避免整段 python traceback 進錯誤訊息
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
