package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// MarketDataClient 期权行情API客户端
type MarketDataClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// ContractRecord 上游API返回的单个合约记录
type ContractRecord struct {
	ContractID        string  `json:"contract_id"`
	Symbol            string  `json:"symbol"`
	Expiration        string  `json:"expiration"`
	Strike            float64 `json:"strike"`
	Type              string  `json:"type"`
	Last              float64 `json:"last"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	Volume            float64 `json:"volume"`
	OpenInterest      float64 `json:"open_interest"`
	ImpliedVolatility float64 `json:"implied_volatility"`
	Delta             float64 `json:"delta"`
	Gamma             float64 `json:"gamma"`
	Theta             float64 `json:"theta"`
	Vega              float64 `json:"vega"`
	Rho               float64 `json:"rho"`
	UnderlyingPrice   float64 `json:"underlying_price"`
}

// chainResponse 期权链查询响应结构
type chainResponse struct {
	Data []ContractRecord `json:"data"`
}

// NewMarketDataClient 创建新的行情API客户端
func NewMarketDataClient(apiKey, baseURL string, timeout time.Duration) *MarketDataClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MarketDataClient{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetEOD 查询指定标的指定日期的日终期权链
// 非200状态码和缺失data字段都视为"当日无数据"，返回空列表而非错误
func (c *MarketDataClient) GetEOD(symbol, date string) ([]ContractRecord, error) {
	url := fmt.Sprintf("%s/v1/options/%s/eod?date=%s", c.BaseURL, symbol, date)

	httpReq, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("执行HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("API返回非200状态码: %d，视为 %s 当日无数据", resp.StatusCode, date)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	var chainResp chainResponse
	if err := json.Unmarshal(body, &chainResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	if chainResp.Data == nil {
		log.Warnf("响应缺少data字段，视为 %s 当日无数据", date)
		return nil, nil
	}

	return chainResp.Data, nil
}
