package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestValidationMessage(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&registerReq{Name: "Al", Email: "a@x.com", Password: "secret1"})
	assert.Equal(t, `"name" length must be at least 3`, validationMessage(err))

	err = v.Validate(&registerReq{Name: "Alice", Email: "not-an-email", Password: "secret1"})
	assert.Equal(t, `"email" must be a valid email`, validationMessage(err))

	err = v.Validate(&registerReq{Name: "Alice", Email: "a@x.com"})
	assert.Equal(t, `"password" is required`, validationMessage(err))

	err = v.Validate(&productInput{Name: "Chair", Price: -1, CategoryID: "c", BrandID: "b"})
	assert.Equal(t, `"price" must be greater than or equal to 0`, validationMessage(err))

	assert.Equal(t, "plain", validationMessage(errors.New("plain")))
}

func TestHealth(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	run := func(deps map[string]Pinger) *httptest.ResponseRecorder {
		e := echo.New()
		rec := httptest.NewRecorder()
		_ = Health(deps)(e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec))
		return rec
	}

	rec := run(map[string]Pinger{"store": ok})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = run(map[string]Pinger{"store": ok, "redis": down})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
	assert.NotContains(t, rec.Body.String(), `"store"`)
}
