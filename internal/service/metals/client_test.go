package metals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	xhttp "GoldPredict/pkg/http"
)

func TestFetchCurrentUsesGoldForEveryField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/v1/latest" || q.Get("api_key") != "k" || q.Get("unit") != "toz" || q.Get("currency") != "USD" {
			t.Errorf("unexpected request %s", r.URL)
		}
		_, _ = w.Write([]byte(`{"status":"success","timestamp":"2024-03-04T12:00:00Z","metals":{"gold":2041.12,"silver":22.9}}`))
	}))
	defer srv.Close()

	q, err := New(srv.URL, "k", xhttp.NewClient()).FetchCurrent(context.Background())
	if err != nil {
		t.Fatalf("FetchCurrent: %v", err)
	}
	want := decimal.RequireFromString("2041.12")
	for name, v := range map[string]decimal.Decimal{"current": q.Current, "open": q.Open, "high": q.High, "low": q.Low} {
		if !v.Equal(want) {
			t.Fatalf("%s = %s", name, v)
		}
	}
	if !q.Change.IsZero() || q.Timestamp.Hour() != 12 {
		t.Fatalf("quote = %+v", q)
	}
}

func TestFetchCurrentRejectsFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"failure","error_message":"invalid key"}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "bad", xhttp.NewClient()).FetchCurrent(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
