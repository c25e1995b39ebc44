package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/furniture-catalog/internal/config"
	"github.com/iliyamo/furniture-catalog/internal/handler"
	"github.com/iliyamo/furniture-catalog/internal/middleware"
	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
	"github.com/iliyamo/furniture-catalog/internal/repository/memstore"
	"github.com/iliyamo/furniture-catalog/internal/router"
	"github.com/iliyamo/furniture-catalog/internal/service"
	"github.com/iliyamo/furniture-catalog/internal/storage"
	"github.com/iliyamo/furniture-catalog/internal/utils"
)

const api = "/api/v1/"

// testApp is the full HTTP surface over an in-memory store.
type testApp struct {
	e        *echo.Echo
	stores   *repository.Stores
	accounts *service.Accounts
	images   *service.ImageTracker
	codec    *utils.TokenCodec
	uploads  string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	stores := memstore.New()
	uploads := filepath.Join(t.TempDir(), "uploads")
	files, err := storage.NewFiles(uploads)
	require.NoError(t, err)

	codec := utils.NewTokenCodec(utils.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     50 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	resolver := service.NewResolver(stores)
	accounts := service.NewAccounts(stores, bcrypt.MinCost)
	roles := service.NewRoleService(stores, nil, log)
	images := service.NewImageTracker(stores, files, log)

	e := echo.New()
	e.Validator = handler.NewValidator()
	guards := router.Guards{
		Access:  middleware.AccessGuard(codec, resolver, log),
		Refresh: middleware.RefreshGuard(codec, resolver, log),
		Limit:   middleware.NewTokenBucket(config.RateLimitConfig{}, nil, log),
	}
	grp := e.Group(api)
	router.RegisterAuth(grp, handler.NewAuthHandler(accounts, roles, codec, stores.Users, log), guards)
	router.RegisterPrincipals(grp,
		handler.NewPrincipalHandler(model.KindUser, stores, accounts, log),
		handler.NewPrincipalHandler(model.KindAdmin, stores, accounts, log),
		guards)
	router.RegisterCatalog(grp, router.Catalog{
		Categories: handler.NewCategoryHandler(stores, files, images, log),
		Brands:     handler.NewBrandHandler(stores, log),
		Products:   handler.NewProductHandler(stores, files, images, log),
		Cache:      middleware.NewRedisCache(config.CacheConfig{}, nil, log),
		Invalidate: middleware.InvalidateCache(config.CacheConfig{}, nil, log),
	}, guards)

	return &testApp{e: e, stores: stores, accounts: accounts, images: images, codec: codec, uploads: uploads}
}

type request struct {
	method, path, token string
	contentType         string
	body                io.Reader
}

func (a *testApp) do(r request) *httptest.ResponseRecorder {
	req := httptest.NewRequest(r.method, api+r.path, r.body)
	if r.contentType != "" {
		req.Header.Set(echo.HeaderContentType, r.contentType)
	}
	if r.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) json(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		bs, _ := json.Marshal(body)
		rd = bytes.NewReader(bs)
	}
	return a.do(request{method: method, path: path, token: token, contentType: echo.MIMEApplicationJSON, body: rd})
}

func (a *testApp) form(method, path, token string, vals url.Values) *httptest.ResponseRecorder {
	return a.do(request{method: method, path: path, token: token,
		contentType: echo.MIMEApplicationForm, body: strings.NewReader(vals.Encode())})
}

// multipart sends fields plus an optional "image" file.
func (a *testApp) multipart(t *testing.T, method, path, token string, fields map[string]string, filename string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG fake image"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return a.do(request{method: method, path: path, token: token, contentType: w.FormDataContentType(), body: &buf})
}

type tokenBody struct {
	ID           string     `json:"_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         model.Role `json:"role"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (a *testApp) register(t *testing.T, name, email, password string) tokenBody {
	t.Helper()
	rec := a.json(http.MethodPost, "auth/register", "", map[string]string{"name": name, "email": email, "password": password})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out tokenBody
	decode(t, rec, &out)
	return out
}

func (a *testApp) login(t *testing.T, email, password string) tokenBody {
	t.Helper()
	rec := a.json(http.MethodPost, "auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out tokenBody
	decode(t, rec, &out)
	return out
}

// adminToken seeds an admin and returns its access token.
func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	_, _, err := a.accounts.EnsureAdmin(context.Background(), "Root Admin", "root@x.com", "rootpass")
	require.NoError(t, err)
	return a.login(t, "root@x.com", "rootpass").AccessToken
}
