package platform

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/etodastandetka/bingo-recon-service/internal/config"
	"github.com/etodastandetka/bingo-recon-service/internal/domain"
	"github.com/shopspring/decimal"
)

// CashdeskClient получает актуальный лимит кассы по каждому казино.
// Каждый вызов ограничен таймаутом; отказ одного казино не влияет
// на остальные.
type CashdeskClient struct {
	casinos map[string]config.CasinoConfig
	keys    []string
	client  *http.Client
	timeout time.Duration
}

type balanceResponse struct {
	Balance float64 `json:"Balance"`
	Limit   float64 `json:"Limit"`
}

func NewCashdeskClient(casinos []config.CasinoConfig, timeout time.Duration) *CashdeskClient {
	byKey := make(map[string]config.CasinoConfig, len(casinos))
	keys := make([]string, 0, len(casinos))
	for _, c := range casinos {
		byKey[c.Key] = c
		keys = append(keys, c.Key)
	}
	return &CashdeskClient{
		casinos: byKey,
		keys:    keys,
		client:  &http.Client{},
		timeout: timeout,
	}
}

func (c *CashdeskClient) Casinos() []string {
	return c.keys
}

func (c *CashdeskClient) GetLimit(ctx context.Context, casino string) (decimal.Decimal, error) {
	cfg, ok := c.casinos[casino]
	if !ok {
		return decimal.Zero, &domain.UpstreamError{Casino: casino, Err: fmt.Errorf("casino is not configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Касса подписывает запрос sha256 от id:hash:даты в UTC
	now := time.Now().UTC().Format("2006.01.02 15:04:05")
	confirm := sha256Hex(fmt.Sprintf("%d:%s:%s", cfg.CashdeskID, cfg.Hash, now))

	url := fmt.Sprintf("%s/Cashdesk/%d/Balance?confirm=%s&dt=%s", cfg.BaseURL, cfg.CashdeskID, confirm, now)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, &domain.UpstreamError{Casino: casino, Err: err}
	}
	req.Header.Set("sign", sha256Hex(cfg.Login+":"+cfg.Cashierpass))

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, &domain.UpstreamError{Casino: casino, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, &domain.UpstreamError{Casino: casino, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var body balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, &domain.UpstreamError{Casino: casino, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return decimal.NewFromFloat(body.Limit), nil
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
