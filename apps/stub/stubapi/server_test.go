package stubapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ratiba/core"
)

func newTestServer() *server {
	return NewServer(&Options{SecretKey: []byte("test-secret"), DisableReqLogs: true}).(*server)
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func getSession(t *testing.T, app *server, username string) core.Session {
	t.Helper()
	stu, ok := app.store.students[username]
	if !ok {
		t.Fatalf("getSession(): unknown student %q", username)
	}
	sess, err := app.session(stu)
	if err != nil {
		t.Fatalf("getSession(): %v", err)
	}
	return sess
}

func Test_stubApi_auth(t *testing.T) {
	app := newTestServer()
	sess := getSession(t, app, "asha")

	tests := []struct {
		name     string
		method   string
		path     string
		body     []byte
		token    string
		wantCode int
	}{
		{name: "home is open", method: http.MethodGet, path: "/", wantCode: http.StatusOK},
		{name: "missing token", method: http.MethodGet, path: "/me", wantCode: http.StatusUnauthorized},
		{name: "garbage token", method: http.MethodGet, path: "/me", token: "lol", wantCode: http.StatusUnauthorized},
		{name: "refresh token cannot access", method: http.MethodGet, path: "/me", token: sess.RefreshToken, wantCode: http.StatusUnauthorized},
		{name: "access token ok", method: http.MethodGet, path: "/me", token: sess.AccessToken, wantCode: http.StatusOK},
		{name: "access token cannot refresh", method: http.MethodPost, path: "/auth/refresh",
			body:     []byte(fmt.Sprintf(`{"refreshToken":%q}`, sess.AccessToken)),
			wantCode: http.StatusForbidden},
		{name: "refresh ok", method: http.MethodPost, path: "/auth/refresh",
			body:     []byte(fmt.Sprintf(`{"refreshToken":%q}`, sess.RefreshToken)),
			wantCode: http.StatusOK},
		{name: "login unknown user", method: http.MethodPost, path: "/auth/login",
			body:     []byte(`{"username":"nobody","password":"nope"}`),
			wantCode: http.StatusBadRequest},
		{name: "register missing fields", method: http.MethodPost, path: "/auth/register",
			body:     []byte(`{"username":"newbie"}`),
			wantCode: http.StatusBadRequest},
		{name: "register taken username", method: http.MethodPost, path: "/auth/register",
			body:     marshallObj(t, core.Registration{Username: "asha", Email: "other@test.test", Password: "x"}),
			wantCode: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func Test_stubApi_friendRequestLifecycle(t *testing.T) {
	app := newTestServer()
	ashaSess := getSession(t, app, "asha")
	jumaSess := getSession(t, app, "juma")

	// register a third student for asha to befriend
	req, rec := newAuthRequest(http.MethodPost, "/auth/register", "",
		marshallObj(t, core.Registration{Username: "neema", Email: "neema@test.test", DisplayName: "Neema W.", Password: "pwd"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: code = %v; body %s", rec.Code, rec.Body.String())
	}
	neema := app.store.students["neema"]

	// asha sends the request
	req, rec = newAuthRequest(http.MethodPost, "/friends/requests", ashaSess.AccessToken,
		[]byte(fmt.Sprintf(`{"friendId":%q,"message":"study group?"}`, neema.id)))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("send request: code = %v; body %s", rec.Code, rec.Body.String())
	}
	var sent core.FriendRequest
	if err := json.NewDecoder(rec.Body).Decode(&sent); err != nil {
		t.Fatal(err)
	}
	if !sent.Outgoing || sent.Name != "Neema W." {
		t.Fatalf("unexpected outgoing request: %+v", sent)
	}

	// neema sees the mirrored incoming request
	neemaSess := getSession(t, app, "neema")
	req, rec = newAuthRequest(http.MethodGet, "/friends/requests", neemaSess.AccessToken)
	app.ServeHTTP(rec, req)
	var incoming []core.FriendRequest
	if err := json.NewDecoder(rec.Body).Decode(&incoming); err != nil {
		t.Fatal(err)
	}
	if len(incoming) != 1 || incoming[0].Outgoing || incoming[0].Email != "asha@test.test" {
		t.Fatalf("unexpected incoming requests: %+v", incoming)
	}

	// neema accepts; both sides become friends and the requests clear
	req, rec = newAuthRequest(http.MethodPost, "/friends/requests/"+incoming[0].ID.String()+"/accept", neemaSess.AccessToken)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	if assert.Len(t, neema.friends, 1) {
		assert.Equal(t, "asha@test.test", neema.friends[0].Email)
	}
	asha := app.store.students["asha"]
	assert.Len(t, asha.friends, 2) // juma from the seed + neema
	assert.Empty(t, asha.requests)
	assert.Empty(t, neema.requests)

	// accepting an outgoing request is not possible
	req, rec = newAuthRequest(http.MethodPost, "/friends/requests/"+sent.ID.String()+"/accept", jumaSess.AccessToken)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_stubApi_sharedSchedules(t *testing.T) {
	app := newTestServer()
	ashaSess := getSession(t, app, "asha")
	jumaSess := getSession(t, app, "juma")
	asha := app.store.students["asha"]

	// juma plans a semester with one class
	req, rec := newAuthRequest(http.MethodPost, "/semesters", jumaSess.AccessToken,
		marshallObj(t, core.NewBackendSemester{Year: 2025, Name: "Fall", Position: 1}))
	app.ServeHTTP(rec, req)
	var sem core.BackendSemester
	if err := json.NewDecoder(rec.Body).Decode(&sem); err != nil {
		t.Fatal(err)
	}
	req, rec = newAuthRequest(http.MethodPost, "/semesters/"+sem.ID.String()+"/classes", jumaSess.AccessToken,
		marshallObj(t, core.NewBackendClass{Name: "Databases", Credits: 4}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create class: code = %v; body %s", rec.Code, rec.Body.String())
	}

	// nothing shared with asha yet
	req, rec = newAuthRequest(http.MethodGet, "/schedule-shares/received", ashaSess.AccessToken)
	app.ServeHTTP(rec, req)
	var received []core.BackendSemester
	if err := json.NewDecoder(rec.Body).Decode(&received); err != nil {
		t.Fatal(err)
	}
	if len(received) != 0 {
		t.Fatalf("expected nothing shared yet, got %+v", received)
	}

	// juma shares with asha
	req, rec = newAuthRequest(http.MethodPost, "/schedule-shares", jumaSess.AccessToken,
		[]byte(fmt.Sprintf(`{"friendId":%q,"canView":true}`, asha.id)))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("share: code = %v; body %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/schedule-shares/received", ashaSess.AccessToken)
	app.ServeHTTP(rec, req)
	if err := json.NewDecoder(rec.Body).Decode(&received); err != nil {
		t.Fatal(err)
	}
	if len(received) != 1 || len(received[0].Classes) != 1 || received[0].Classes[0].Name != "Databases" {
		t.Fatalf("unexpected shared schedules: %+v", received)
	}
}
