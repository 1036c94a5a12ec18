// Package goldapi reads the spot XAU/USD quote from goldapi.io.
package goldapi

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

const Name = "goldapi"

var ErrNoAPIKey = errors.New("goldapi: api key not configured")

type quoteResponse struct {
	Timestamp      int64           `json:"timestamp"`
	Metal          string          `json:"metal"`
	Currency       string          `json:"currency"`
	Price          decimal.Decimal `json:"price"`
	OpenPrice      decimal.Decimal `json:"open_price"`
	HighPrice      decimal.Decimal `json:"high_price"`
	LowPrice       decimal.Decimal `json:"low_price"`
	PrevClosePrice decimal.Decimal `json:"prev_close_price"`
	Ch             decimal.Decimal `json:"ch"`
	Chp            decimal.Decimal `json:"chp"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
}

func New(baseURL, apiKey string, http *xhttp.Client) drepo.PriceSource {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: http}
}

func (c *Client) Name() string { return Name }

// Configured reports whether the client has a key to call with.
func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) FetchCurrent(ctx context.Context) (models.Quote, error) {
	if !c.Configured() {
		return models.Quote{}, ErrNoAPIKey
	}

	var resp quoteResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/XAU/USD",
		Headers: map[string]string{
			"x-access-token": c.apiKey,
			"Content-Type":   "application/json",
		},
	}, &resp)
	if err != nil {
		return models.Quote{}, fmt.Errorf("goldapi: %w", err)
	}
	if !resp.Price.IsPositive() {
		return models.Quote{}, fmt.Errorf("goldapi: missing price in response")
	}

	ts := time.Now().UTC()
	if resp.Timestamp > 0 {
		ts = time.Unix(resp.Timestamp, 0).UTC()
	}
	return models.Quote{
		Current:       resp.Price,
		Open:          orPrice(resp.OpenPrice, resp.Price),
		High:          orPrice(resp.HighPrice, resp.Price),
		Low:           orPrice(resp.LowPrice, resp.Price),
		PreviousClose: orPrice(resp.PrevClosePrice, resp.Price),
		Change:        resp.Ch,
		ChangePercent: resp.Chp,
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
