// Package gatewaysvc implements the remote-backend gateway over HTTP/JSON.
package gatewaysvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

// refresh this long before the access token actually expires
const expiryLeeway = 30 * time.Second

var nowFunc = time.Now // mockable

type (
	// TokenStore persists session tokens between requests.
	TokenStore interface {
		SaveTokens(sess core.Session) error
		Tokens() (core.Session, error)
	}

	// HTTPGateway talks to the planning backend. Safe for concurrent use.
	HTTPGateway struct {
		baseURL string
		client  *http.Client
		tokens  TokenStore
		log     core.Logger

		mu sync.Mutex // guards token refresh
	}
)

var _ core.Gateway = (*HTTPGateway)(nil)

func NewHTTPGateway(conf *core.Config, tokens TokenStore, log core.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(conf.Backend.BaseURL, "/"),
		client:  &http.Client{Timeout: conf.Backend.RequestTimeout},
		tokens:  tokens,
		log:     log,
	}
}

// Login trades credentials for a session. Unauthenticated.
func (gw *HTTPGateway) Login(ctx context.Context, username, password string) (core.Session, error) {
	var sess core.Session
	payload := map[string]string{"username": username, "password": password}
	if err := gw.do(ctx, http.MethodPost, "/auth/login", payload, &sess, false); err != nil {
		return core.Session{}, err
	}
	return sess, nil
}

func (gw *HTTPGateway) Register(ctx context.Context, reg core.Registration) (core.Session, error) {
	var sess core.Session
	if err := gw.do(ctx, http.MethodPost, "/auth/register", reg, &sess, false); err != nil {
		return core.Session{}, err
	}
	return sess, nil
}

func (gw *HTTPGateway) Logout(ctx context.Context) error {
	return gw.do(ctx, http.MethodPost, "/auth/logout", nil, nil, true)
}

// RefreshSession trades the stored refresh token for a new session and
// persists it.
func (gw *HTTPGateway) RefreshSession(ctx context.Context) (core.Session, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	return gw.refresh(ctx)
}

func (gw *HTTPGateway) Profile(ctx context.Context) (core.Profile, error) {
	var profile core.Profile
	if err := gw.do(ctx, http.MethodGet, "/me", nil, &profile, true); err != nil {
		return core.Profile{}, err
	}
	return profile, nil
}

func (gw *HTTPGateway) UpdateProfile(ctx context.Context, up core.ProfileUpdate) (core.Profile, error) {
	var profile core.Profile
	if err := gw.do(ctx, http.MethodPatch, "/me", up, &profile, true); err != nil {
		return core.Profile{}, err
	}
	return profile, nil
}

// do performs one JSON round trip. body and out may be nil.
func (gw *HTTPGateway) do(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	op := method + " " + path

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "%s: encoding request", op)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, gw.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrapf(err, "%s: building request", op)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return gw.send(req, op, out, authed)
}

// send finalizes headers, runs the request and decodes the response.
func (gw *HTTPGateway) send(req *http.Request, op string, out interface{}, authed bool) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())

	if authed {
		token, err := gw.accessToken(req.Context())
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := gw.client.Do(req)
	if err != nil {
		return core.NewBackendError(op, 0, "", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= http.StatusBadRequest {
		return core.NewBackendError(op, res.StatusCode, errorMessage(res.Body), nil)
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "%s: decoding response", op)
	}
	return nil
}

// accessToken returns a usable bearer token, refreshing first when the stored
// one is expired or about to be.
func (gw *HTTPGateway) accessToken(ctx context.Context) (string, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()

	sess, err := gw.tokens.Tokens()
	if err != nil {
		return "", errors.Wrap(err, "no stored session, log in first")
	}
	if !tokenExpired(sess.AccessToken) {
		return sess.AccessToken, nil
	}

	sess, err = gw.refresh(ctx)
	if err != nil {
		return "", err
	}
	return sess.AccessToken, nil
}

// refresh expects gw.mu to be held.
func (gw *HTTPGateway) refresh(ctx context.Context) (core.Session, error) {
	stored, err := gw.tokens.Tokens()
	if err != nil {
		return core.Session{}, errors.Wrap(err, "no stored session, log in first")
	}

	op := "POST /auth/refresh"
	payload := map[string]string{"refreshToken": stored.RefreshToken}
	raw, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gw.baseURL+"/auth/refresh", bytes.NewReader(raw))
	if err != nil {
		return core.Session{}, errors.Wrapf(err, "%s: building request", op)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())

	res, err := gw.client.Do(req)
	if err != nil {
		return core.Session{}, core.NewBackendError(op, 0, "", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= http.StatusBadRequest {
		return core.Session{}, core.NewBackendError(op, res.StatusCode, errorMessage(res.Body), nil)
	}

	var sess core.Session
	if err = json.NewDecoder(res.Body).Decode(&sess); err != nil {
		return core.Session{}, errors.Wrapf(err, "%s: decoding response", op)
	}
	if err = gw.tokens.SaveTokens(sess); err != nil {
		return core.Session{}, err
	}
	return sess, nil
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; only the server can do that, we just avoid a doomed request.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false // no expiry claim, let the server decide
	}
	return nowFunc().Add(expiryLeeway).Unix() >= int64(exp)
}

// errorMessage extracts a human readable message from an error response body.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4<<10))
	if err != nil {
		return ""
	}
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err = json.Unmarshal(raw, &payload); err == nil {
		for _, msg := range []string{payload.Detail, payload.Message, payload.Error} {
			if msg != "" {
				return msg
			}
		}
	}
	return strings.TrimSpace(string(raw))
}

func queryPath(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

func pathEscape(id core.ID) string {
	return url.PathEscape(id.String())
}

func intVal(i int) string {
	return fmt.Sprintf("%d", i)
}
