package api

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/listing"
)

type seenRequest struct {
	method, path, query, auth, requestID string
	body                                 map[string]interface{}
}

func newTestClient(t *testing.T, status int, resp string, opts ...Option) (*Client, *seenRequest) {
	seen := &seenRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.method = r.Method
		seen.path = r.URL.Path
		seen.query = r.URL.RawQuery
		seen.auth = r.Header.Get("Authorization")
		seen.requestID = r.Header.Get(RequestIDHeader)
		if data, _ := ioutil.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &seen.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)

	conf := core.NewTestConfig().API
	conf.BaseURL = srv.URL + "/"
	return NewClient(conf, opts...), seen
}

func signed(t *testing.T, exp time.Time) string {
	claims := jwt.StandardClaims{Subject: "1"}
	if !exp.IsZero() {
		claims.ExpiresAt = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestResource(t *testing.T) {
	ctx := context.Background()
	token := signed(t, time.Now().Add(time.Hour))

	tests := []struct {
		name       string
		call       func(r *Resource) (interface{}, error)
		wantMethod string
		wantPath   string
		wantQuery  string
		wantBody   map[string]interface{}
	}{
		{
			name:       "list",
			call:       func(r *Resource) (interface{}, error) { return r.List(ctx, listing.Params{"class_id": "3"}) },
			wantMethod: http.MethodGet, wantPath: "/v1/sections", wantQuery: "class_id=3",
		},
		{
			name:       "create",
			call:       func(r *Resource) (interface{}, error) { return r.Create(ctx, map[string]interface{}{"section_name": "C"}) },
			wantMethod: http.MethodPost, wantPath: "/v1/sections", wantBody: map[string]interface{}{"section_name": "C"},
		},
		{
			name:       "update",
			call:       func(r *Resource) (interface{}, error) { return r.Update(ctx, "4", map[string]interface{}{"is_active": false}) },
			wantMethod: http.MethodPatch, wantPath: "/v1/sections/4", wantBody: map[string]interface{}{"is_active": false},
		},
		{
			name:       "delete",
			call:       func(r *Resource) (interface{}, error) { return r.Delete(ctx, "4") },
			wantMethod: http.MethodDelete, wantPath: "/v1/sections/4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, seen := newTestClient(t, http.StatusOK, `{"status":"SUCCESS","data":[{"id":1}]}`, WithToken(token))
			payload, err := tt.call(c.Resource("sections"))
			require.NoError(t, err)

			assert.Equal(t, tt.wantMethod, seen.method)
			assert.Equal(t, tt.wantPath, seen.path)
			assert.Equal(t, tt.wantQuery, seen.query)
			assert.Equal(t, tt.wantBody, seen.body)
			assert.Equal(t, "Bearer "+token, seen.auth)
			_, err = uuid.Parse(seen.requestID)
			assert.NoError(t, err)

			recs, err := listing.Coerce(payload)
			require.NoError(t, err)
			assert.Len(t, recs, 1)
		})
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNotFound, `{"status":"ERROR","message":"sections 9 not found"}`)
	_, err := c.Resource("sections").Delete(context.Background(), "9")

	apiErr, ok := core.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "ERROR", apiErr.Status)
	assert.Equal(t, "sections 9 not found", listing.ErrorMessage(err, "failed"))

	c, _ = newTestClient(t, http.StatusBadGateway, `<html>bad gateway</html>`)
	_, err = c.Resource("sections").List(context.Background(), nil)
	assert.Equal(t, "request failed: 502 Bad Gateway", listing.ErrorMessage(err, "failed"))
}

func TestClient_TransportError(t *testing.T) {
	conf := core.NewTestConfig().API
	conf.BaseURL = "http://127.0.0.1:1"
	_, err := NewClient(conf).Resource("sections").List(context.Background(), nil)
	require.Error(t, err)
	_, isAPIErr := core.IsAPIError(err)
	assert.False(t, isAPIErr)
}

func TestClient_ExpiredToken(t *testing.T) {
	c, seen := newTestClient(t, http.StatusOK, `[]`, WithToken(signed(t, time.Now().Add(-time.Minute))))
	_, err := c.Resource("sections").List(context.Background(), nil)
	assert.Equal(t, ErrTokenExpired, err)
	assert.Empty(t, seen.method, "no request sent")

	c.SetToken(signed(t, time.Time{}))
	_, err = c.Resource("sections").List(context.Background(), nil)
	assert.NoError(t, err)

	c.SetToken("garbage")
	_, err = c.Resource("sections").List(context.Background(), nil)
	assert.Error(t, err)
}

func TestClient_Login(t *testing.T) {
	token := signed(t, time.Now().Add(time.Hour))
	c, seen := newTestClient(t, http.StatusOK, `{"status":"SUCCESS","data":{"token":"`+token+`"}}`)

	got, err := c.Login(context.Background(), "admin", "Adm1n!pass")
	require.NoError(t, err)
	assert.Equal(t, token, got)
	assert.Equal(t, token, c.Token())
	assert.Equal(t, "/v1/auth/login", seen.path)
	assert.Equal(t, map[string]interface{}{"username": "admin", "password": "Adm1n!pass"}, seen.body)
	assert.Empty(t, seen.auth)

	exp, err := TokenExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	c, _ = newTestClient(t, http.StatusOK, `{"status":"ERROR","message":"invalid credentials"}`)
	_, err = c.Login(context.Background(), "admin", "nope")
	assert.EqualError(t, err, "logging in: invalid credentials")

	c, _ = newTestClient(t, http.StatusOK, `{"status":"SUCCESS","data":{}}`)
	_, err = c.Login(context.Background(), "admin", "nope")
	assert.Equal(t, ErrNoToken, err)
}

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preskool.token")

	token, err := LoadToken(path)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, SaveToken(path, "abc.def.ghi"))
	token, err = LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)
}
