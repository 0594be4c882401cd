package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/listing"
)

const (
	apiPrefix       = "/v1"
	RequestIDHeader = "X-Request-ID"
)

var (
	ErrTokenExpired = errors.New("token expired, please log in again")
	ErrNoToken      = errors.New("login response carries no token")
)

// Client talks to the school backend REST API.
type Client struct {
	baseURL string
	token   string
	http    *rest.Client
	logger  core.Logger
	now     func() time.Time
}

type Option func(*Client)

func WithToken(token string) Option { return func(c *Client) { c.token = strings.TrimSpace(token) } }

func WithLogger(logger core.Logger) Option { return func(c *Client) { c.logger = logger } }

// WithHTTPClient replaces the underlying http.Client (eg. an httptest server's).
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = &rest.Client{HTTPClient: hc} } }

func NewClient(conf core.APIConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		token:   strings.TrimSpace(conf.Token),
		http:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.Timeout}},
		logger:  core.NopLogger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string { return c.token }

func (c *Client) SetToken(token string) { c.token = strings.TrimSpace(token) }

// Resource returns the endpoints of one entity collection.
func (c *Client) Resource(entity string) *Resource {
	return &Resource{client: c, entity: entity}
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token and keeps it for the following calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	payload, err := c.send(ctx, rest.Post, apiPrefix+"/auth/login", nil, body, false)
	if err != nil {
		return "", errors.Wrap(err, "logging in")
	}
	if err = listing.CheckStatus(payload); err != nil {
		return "", errors.Wrap(err, "logging in")
	}

	var resp loginResponse
	if env, ok := payload.(map[string]interface{}); ok {
		if data, ok := env["data"].(map[string]interface{}); ok {
			resp.Token, _ = data["token"].(string)
		}
	}
	if resp.Token == "" {
		return "", ErrNoToken
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// TokenExpiry reads the expiry of a JWT without verifying its signature; zero when it never expires.
func TokenExpiry(token string) (time.Time, error) {
	var claims jwt.StandardClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return time.Time{}, errors.Wrap(err, "parsing token")
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}, nil
	}
	return time.Unix(claims.ExpiresAt, 0), nil
}

func (c *Client) checkToken() error {
	if c.token == "" {
		return nil
	}
	exp, err := TokenExpiry(c.token)
	if err != nil {
		return err
	}
	if !exp.IsZero() && !c.now().Before(exp) {
		return ErrTokenExpired
	}
	return nil
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// send performs one request and decodes the JSON body.
// Non-2xx answers become a *core.APIError carrying the server's message when there is one.
func (c *Client) send(ctx context.Context, method rest.Method, path string, query map[string]string, body interface{}, authed bool) (interface{}, error) {
	if authed {
		if err := c.checkToken(); err != nil {
			return nil, err
		}
	}

	reqID := uuid.New().String()
	req := rest.Request{
		Method:      method,
		BaseURL:     c.baseURL + path,
		QueryParams: query,
		Headers: map[string]string{
			"Accept":        "application/json",
			RequestIDHeader: reqID,
		},
	}
	if authed && c.token != "" {
		req.Headers["Authorization"] = "Bearer " + c.token
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		req.Body = data
		req.Headers["Content-Type"] = "application/json"
	}

	c.logger.Debug("api request", map[string]interface{}{"method": method, "path": path, "requestID": reqID})
	resp, err := c.http.SendWithContext(ctx, req)
	if err != nil {
		return nil, errors.WithStack(unwrapURLError(err))
	}

	var payload interface{}
	if strings.TrimSpace(resp.Body) != "" {
		if err = json.Unmarshal([]byte(resp.Body), &payload); err != nil && resp.StatusCode < 300 {
			return nil, errors.Wrapf(err, "decoding %s %s response", method, path)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		_ = json.Unmarshal([]byte(resp.Body), &env)
		return nil, errors.WithStack(core.NewAPIError(resp.StatusCode, env.Status, env.Message))
	}
	return payload, nil
}

// unwrapURLError drops the "Get http://...:" prefix net/http adds, leaving the transport cause.
func unwrapURLError(err error) error {
	if uErr, ok := err.(*url.Error); ok && uErr.Err != nil {
		return uErr.Err
	}
	return err
}
