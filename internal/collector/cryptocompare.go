package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"CryptoSentinel/internal/model"
)

const defaultBaseURL = "https://min-api.cryptocompare.com"

// CryptoCompareFetcher implements Fetcher using the CryptoCompare public API.
// All prices are quoted in USD.
type CryptoCompareFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewCryptoCompareFetcher creates a new CryptoCompare fetcher with optional proxy support.
func NewCryptoCompareFetcher(baseURL, apiKey, proxyURL string) *CryptoCompareFetcher {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &CryptoCompareFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *CryptoCompareFetcher) Name() string { return "cryptocompare" }

func (f *CryptoCompareFetcher) get(path string, params url.Values, out interface{}) error {
	if f.APIKey != "" {
		params.Set("api_key", f.APIKey)
	}
	u := fmt.Sprintf("%s%s?%s", f.BaseURL, path, params.Encode())

	resp, err := f.Client.Get(u)
	if err != nil {
		return fmt.Errorf("cryptocompare fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cryptocompare read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cryptocompare: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("cryptocompare decode: %w", err)
	}
	return nil
}

// CurrentPrice returns the latest USD price for the symbol.
func (f *CryptoCompareFetcher) CurrentPrice(symbol string) (float64, error) {
	params := url.Values{}
	params.Set("fsym", symbol)
	params.Set("tsyms", "USD")

	var result map[string]float64
	if err := f.get("/data/price", params, &result); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, symbol, err)
	}
	price, ok := result["USD"]
	if !ok {
		return 0, fmt.Errorf("%w: %s: no USD quote in response", ErrPriceUnavailable, symbol)
	}
	return price, nil
}

// histoDayResponse is the response structure from the histoday endpoint.
type histoDayResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		Data []struct {
			Time  int64   `json:"time"`
			Close float64 `json:"close"`
		} `json:"Data"`
	} `json:"Data"`
}

// HistoricalSeries returns up to limit+1 daily closing prices for the symbol,
// ascending by time.
func (f *CryptoCompareFetcher) HistoricalSeries(symbol string, limit int) (model.PriceSeries, error) {
	params := url.Values{}
	params.Set("fsym", symbol)
	params.Set("tsym", "USD")
	params.Set("limit", fmt.Sprintf("%d", limit))

	var result histoDayResponse
	if err := f.get("/data/v2/histoday", params, &result); err != nil {
		return nil, err
	}
	if result.Response == "Error" {
		return nil, fmt.Errorf("cryptocompare api error: %s", result.Message)
	}

	series := make(model.PriceSeries, 0, len(result.Data.Data))
	for _, item := range result.Data.Data {
		series = append(series, model.PricePoint{
			Time:  time.Unix(item.Time, 0),
			Price: item.Close,
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	return series, nil
}

// coinListResponse is the response structure from the coinlist endpoint.
type coinListResponse struct {
	Data map[string]struct {
		Symbol string `json:"Symbol"`
	} `json:"Data"`
}

// ListSymbols returns all tradable symbols, sorted alphabetically.
func (f *CryptoCompareFetcher) ListSymbols() ([]string, error) {
	var result coinListResponse
	if err := f.get("/data/all/coinlist", url.Values{}, &result); err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(result.Data))
	for _, coin := range result.Data {
		symbols = append(symbols, coin.Symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}
