package finnhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	xhttp "GoldPredict/pkg/http"
)

func TestFetchCurrentMapsQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/quote" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != DefaultSymbol {
			t.Errorf("symbol = %q", got)
		}
		if r.Header.Get("X-Finnhub-Token") != "tok" {
			t.Errorf("missing token header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"c":2045.5,"d":5.5,"dp":0.27,"h":2050,"l":2038.1,"o":2041,"pc":2040,"t":1709582400}`))
	}))
	defer srv.Close()

	q, err := New(srv.URL+"/api/v1", "tok", "", xhttp.NewClient(xhttp.WithTimeout(time.Second))).FetchCurrent(context.Background())
	if err != nil {
		t.Fatalf("FetchCurrent: %v", err)
	}
	if !q.Current.Equal(decimal.RequireFromString("2045.5")) || !q.PreviousClose.Equal(decimal.NewFromInt(2040)) {
		t.Fatalf("quote = %+v", q)
	}
	if !q.Change.Equal(decimal.RequireFromString("5.5")) || q.Source != Name || q.Timestamp.Unix() != 1709582400 {
		t.Fatalf("quote = %+v", q)
	}
}

func TestFetchCurrentRejectsEmptyQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "tok", "OANDA:XAG_USD", xhttp.NewClient()).FetchCurrent(context.Background()); err == nil {
		t.Fatal("expected error for zero quote")
	}
}

func TestFetchCurrentWithoutKey(t *testing.T) {
	c := New("http://unused", "", "", xhttp.NewClient())
	if _, err := c.FetchCurrent(context.Background()); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v", err)
	}
}
