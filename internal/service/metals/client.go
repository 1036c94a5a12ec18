// Package metals reads the gold price from metals.dev. It only reports a
// spot price, so every quote field carries that price.
package metals

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
	"GoldPredict/pkg/util"
)

const Name = "metals.dev"

var ErrNoAPIKey = errors.New("metals.dev: api key not configured")

type latestResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Metals    struct {
		Gold decimal.Decimal `json:"gold"`
	} `json:"metals"`
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

func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) FetchCurrent(ctx context.Context) (models.Quote, error) {
	if !c.Configured() {
		return models.Quote{}, ErrNoAPIKey
	}

	var resp latestResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v1/latest",
		QueryParams: map[string][]string{
			"api_key":  {c.apiKey},
			"currency": {"USD"},
			"unit":     {"toz"},
		},
	}, &resp)
	if err != nil {
		return models.Quote{}, fmt.Errorf("metals.dev: %w", err)
	}
	if resp.Status != "" && resp.Status != "success" {
		return models.Quote{}, fmt.Errorf("metals.dev: status %q", resp.Status)
	}
	price := resp.Metals.Gold
	if !price.IsPositive() {
		return models.Quote{}, fmt.Errorf("metals.dev: missing gold price in response")
	}

	ts := util.ParseTimeDefault(resp.Timestamp, time.Now())
	return models.Quote{
		Current:       price,
		Open:          price,
		High:          price,
		Low:           price,
		PreviousClose: price,
		Timestamp:     ts.UTC(),
		Source:        Name,
	}, nil
}
