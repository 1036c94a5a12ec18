// Package finnhub reads the OANDA gold quote from the Finnhub REST API.
package finnhub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"GoldPredict/internal/domain/models"
	drepo "GoldPredict/internal/domain/repository"
	xhttp "GoldPredict/pkg/http"
)

const (
	Name          = "finnhub"
	DefaultSymbol = "OANDA:XAU_USD"
)

var ErrNoAPIKey = errors.New("finnhub: api key not configured")

// quoteResponse is the /quote payload. t is unix seconds.
type quoteResponse struct {
	C  decimal.Decimal `json:"c"`
	D  decimal.Decimal `json:"d"`
	DP decimal.Decimal `json:"dp"`
	H  decimal.Decimal `json:"h"`
	L  decimal.Decimal `json:"l"`
	O  decimal.Decimal `json:"o"`
	PC decimal.Decimal `json:"pc"`
	T  int64           `json:"t"`
}

type Client struct {
	baseURL string
	apiKey  string
	symbol  string
	http    *xhttp.Client
}

// New creates a Finnhub quote source. An empty symbol selects DefaultSymbol.
func New(baseURL, apiKey, symbol string, http *xhttp.Client) drepo.PriceSource {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, symbol: symbol, http: http}
}

func (c *Client) Name() string { return Name }

func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) FetchCurrent(ctx context.Context) (models.Quote, error) {
	if !c.Configured() {
		return models.Quote{}, ErrNoAPIKey
	}

	var resp quoteResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/quote",
		Headers:     map[string]string{"X-Finnhub-Token": c.apiKey},
		QueryParams: map[string][]string{"symbol": {c.symbol}},
	}, &resp)
	if err != nil {
		return models.Quote{}, fmt.Errorf("finnhub: %w", err)
	}
	// Unknown symbols come back as an all-zero quote.
	if !resp.C.IsPositive() {
		return models.Quote{}, fmt.Errorf("finnhub: no quote for %s", c.symbol)
	}

	ts := time.Now().UTC()
	if resp.T > 0 {
		ts = time.Unix(resp.T, 0).UTC()
	}
	return models.Quote{
		Current:       resp.C,
		Open:          orPrice(resp.O, resp.C),
		High:          orPrice(resp.H, resp.C),
		Low:           orPrice(resp.L, resp.C),
		PreviousClose: orPrice(resp.PC, resp.C),
		Change:        resp.D,
		ChangePercent: resp.DP,
		Timestamp:     ts,
		Source:        Name,
	}, nil
}

func orPrice(v, price decimal.Decimal) decimal.Decimal {
	if v.IsZero() {
		return price
	}
	return v
}
