package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type listReq struct {
	Page     int    `query:"page" json:"page" default:"1" validate:"gte=1"`
	PageSize int    `query:"pageSize" json:"pageSize" default:"10" validate:"gte=1,lte=100"`
	Kind     string `query:"kind" json:"kind" default:"points" validate:"oneof=points accuracy streak"`
}

func TestReadAndValidateRequestAppliesDefaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?page=3", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	var r listReq
	if errs := ReadAndValidateRequest(c, &r); errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if r.Page != 3 || r.PageSize != 10 || r.Kind != "points" {
		t.Fatalf("unexpected request %+v", r)
	}
}

func TestReadAndValidateRequestReportsJSONFieldNames(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?pageSize=500", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	var r listReq
	errs, ok := ReadAndValidateRequest(c, &r).([]ValidationError)
	if !ok || len(errs) != 1 {
		t.Fatalf("expected one validation error, got %#v", errs)
	}
	if errs[0].Field != "pageSize" || errs[0].Code != "ERR_LTE" {
		t.Fatalf("unexpected error %+v", errs[0])
	}
	if !strings.Contains(errs[0].Message, "less than or equal to 100") {
		t.Fatalf("unexpected message %q", errs[0].Message)
	}
}

type band string

func (b band) Valid() bool { return b == "small" || b == "large" }

type bandReq struct {
	Band band `query:"band" json:"band" validate:"required,band"`
}

func TestRegisterEnum(t *testing.T) {
	RegisterEnum("band", band("small"), band("large"))
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?band=large", nil), httptest.NewRecorder())
	var ok bandReq
	if errs := ReadAndValidateRequest(c, &ok); errs != nil {
		t.Fatalf("unexpected errors: %+v", errs)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?band=huge", nil), httptest.NewRecorder())
	var bad bandReq
	errs, _ := ReadAndValidateRequest(c, &bad).([]ValidationError)
	if len(errs) != 1 || errs[0].Code != "ERR_BAND" {
		t.Fatalf("unexpected errors %#v", errs)
	}
	if errs[0].Message != "band must be one of: small, large" {
		t.Fatalf("unexpected message %q", errs[0].Message)
	}
}

func TestPageOffset(t *testing.T) {
	if got := PageOffset(1, 10); got != 0 {
		t.Fatalf("PageOffset(1,10) = %d", got)
	}
	if got := PageOffset(3, 20); got != 40 {
		t.Fatalf("PageOffset(3,20) = %d", got)
	}
	if got := PageOffset(0, 10); got != 0 {
		t.Fatalf("PageOffset(0,10) = %d", got)
	}
}
