package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eventease/portal/internal/application/tab"
	"github.com/eventease/portal/internal/config"
	"github.com/eventease/portal/internal/infrastructure/eventapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI stands in for the remote event API.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password == "wrong" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Incorrect email or password"}`)
			return
		}
		role, _, _ := strings.Cut(body.Email, "@")
		id := map[string]int{"admin": 1, "organizer": 2, "attendee": 3}[role]
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-" + role,
			"user":         map[string]any{"id": id, "name": role, "email": body.Email, "role": role},
		})
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id":1,"title":"A","date":"2030-01-01T10:00:00","organizer_id":2,"status":"active"},
			{"id":2,"title":"B","date":"2020-01-01T10:00:00","organizer_id":9,"status":"cancelled"}
		]`)
	})
	mux.HandleFunc("GET /events/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":1,"title":"A","date":"2030-01-01T10:00:00","organizer_id":2,"status":"active","attendees":[{"id":3,"name":"attendee","email":"attendee@x.io","role":"attendee"}]}`)
	})
	mux.HandleFunc("GET /events/1/attendees", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id":10,"user_id":3,"event_id":1,"registration_date":"2025-02-03T08:00:00","status":"confirmed","attended":true,"user":{"id":3,"name":"","email":"zoe@x.io","role":"attendee"}},
			{"id":11,"user_id":4,"event_id":1,"registration_date":"2025-02-04T08:00:00","status":"pending","attended":false,"user":{"id":4,"name":"Yan","email":"yan@x.io","role":"attendee"}}
		]`)
	})
	mux.HandleFunc("POST /events/{id}/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /events/5", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("GET /admin/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("GET /interactions/notifications", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"title":"t","message":"m","is_read":false,"user_id":3},{"id":2,"title":"t","message":"m","is_read":true,"user_id":3}]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T) *browser {
	t.Helper()
	api := fakeAPI(t)
	cfg := &config.Config{AppEnv: "test", AllowedOrigins: []string{"*"}, SessionCookieName: "eventease_tab"}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	registry := tab.NewRegistry(eventapi.NewClient(api.URL))
	gw := httptest.NewServer(NewRouter(ctx, cfg, &Deps{Registry: registry}))
	t.Cleanup(gw.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: gw.URL + "/v1", client: &http.Client{Jar: jar}}
}

func (b *browser) do(method, path, body string) (int, []byte, http.Header) {
	b.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, b.base+path, rd)
	require.NoError(b.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, data, resp.Header
}

func (b *browser) login(role string) {
	b.t.Helper()
	code, body, _ := b.do(http.MethodPost, "/sessions/login", `{"email":"`+role+`@example.com","password":"pw"}`)
	require.Equal(b.t, http.StatusOK, code, string(body))
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestHealthCheck(t *testing.T) {
	b := newBrowser(t)
	code, body, _ := b.do(http.MethodGet, "/health-check/ping", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"pong"}`, string(body))

	code, _, _ = b.do(http.MethodGet, "/health-check/other", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSessionLifecycle(t *testing.T) {
	b := newBrowser(t)

	code, body, _ := b.do(http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, code)
	assert.False(t, decode[map[string]any](t, body)["authenticated"].(bool))

	code, body, _ = b.do(http.MethodPost, "/sessions/login", `{"email":"attendee@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Incorrect email or password", decode[map[string]any](t, body)["error"])

	b.login("attendee")
	code, body, _ = b.do(http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, code)
	sess := decode[map[string]any](t, body)
	assert.True(t, sess["authenticated"].(bool))
	assert.Equal(t, "attendee", sess["user"].(map[string]any)["role"])

	code, _, _ = b.do(http.MethodPost, "/sessions/logout", "")
	assert.Equal(t, http.StatusOK, code)
	code, body, _ = b.do(http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, code)
	assert.False(t, decode[map[string]any](t, body)["authenticated"].(bool))
}

func TestLogin_ValidationError(t *testing.T) {
	b := newBrowser(t)
	code, body, _ := b.do(http.MethodPost, "/sessions/login", `{"email":"nope","password":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, decode[map[string]any](t, body)["error"], "email")
}

func TestEvents_PublicListFilters(t *testing.T) {
	b := newBrowser(t)
	code, body, _ := b.do(http.MethodGet, "/events?status=active", "")
	require.Equal(t, http.StatusOK, code)

	snap := decode[struct {
		Status string `json:"status"`
		Data   []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"data"`
	}](t, body)
	assert.Equal(t, "ready", snap.Status)
	require.Len(t, snap.Data, 1)
	assert.Equal(t, "A", snap.Data[0].Title)
}

func TestEvents_DetailShowsRegistration(t *testing.T) {
	b := newBrowser(t)
	b.login("attendee")
	code, body, _ := b.do(http.MethodGet, "/events/1", "")
	require.Equal(t, http.StatusOK, code)
	snap := decode[map[string]any](t, body)
	assert.True(t, snap["data"].(map[string]any)["is_registered"].(bool))

	code, _, _ = b.do(http.MethodGet, "/events/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEvents_RegisterSurvivesFailedRefresh(t *testing.T) {
	b := newBrowser(t)
	b.login("attendee")
	code, body, _ := b.do(http.MethodPost, "/events/5/register", "")
	require.Equal(t, http.StatusOK, code, string(body))
	assert.JSONEq(t, `{"event":null,"is_registered":true}`, string(body))
}

func TestSignedInRoutes_RequireLogin(t *testing.T) {
	b := newBrowser(t)
	code, _, _ := b.do(http.MethodGet, "/tickets", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _, _ = b.do(http.MethodGet, "/organizer/events", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdmin_AccessDeniedForAttendee(t *testing.T) {
	b := newBrowser(t)
	b.login("attendee")
	code, body, _ := b.do(http.MethodGet, "/admin/dashboard", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "access-denied", decode[map[string]any](t, body)["view"])
}

func TestAdmin_DashboardPartialFailure(t *testing.T) {
	b := newBrowser(t)
	b.login("admin")
	code, body, _ := b.do(http.MethodGet, "/admin/dashboard", "")
	require.Equal(t, http.StatusOK, code)

	view := decode[map[string]any](t, body)
	events := view["total_events"].(map[string]any)
	users := view["total_users"].(map[string]any)
	assert.Equal(t, true, events["ok"])
	assert.EqualValues(t, 2, events["value"])
	assert.Equal(t, false, users["ok"])
	assert.EqualValues(t, 0, users["value"])
}

func TestNotifications_Flow(t *testing.T) {
	b := newBrowser(t)
	b.login("attendee")

	code, body, _ := b.do(http.MethodGet, "/notifications/unread-count", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"unread":1}`, string(body))

	code, body, _ = b.do(http.MethodPut, "/notifications/1/read", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"unread":0}`, string(body))

	code, body, _ = b.do(http.MethodPut, "/notifications/2/unread", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"unread":1}`, string(body))

	code, _, _ = b.do(http.MethodPut, "/notifications/99/read", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body, _ = b.do(http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, code)
	snap := decode[map[string]any](t, body)
	assert.EqualValues(t, 1, snap["data"].(map[string]any)["unread"])
}

func TestOrganizer_AttendeesAndCSV(t *testing.T) {
	b := newBrowser(t)
	b.login("organizer")

	code, body, _ := b.do(http.MethodGet, "/organizer/events/1/attendees?status=attended", "")
	require.Equal(t, http.StatusOK, code)
	data := decode[map[string]any](t, body)["data"].(map[string]any)
	assert.Len(t, data["registrations"], 1)
	assert.EqualValues(t, 2, data["summary"].(map[string]any)["total"])

	code, body, hdr := b.do(http.MethodGet, "/organizer/events/1/attendees.csv", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "text/csv; charset=utf-8", hdr.Get("Content-Type"))
	assert.Contains(t, hdr.Get("Content-Disposition"), "A-attendees.csv")
	assert.Equal(t, "Name,Email,Registration Date,Status,Attended\n"+
		"zoe,zoe@x.io,2025-02-03,confirmed,Yes\n"+
		"Yan,yan@x.io,2025-02-04,pending,No\n", string(body))
}

func TestOrganizer_OtherOrganizersEventIsDenied(t *testing.T) {
	b := newBrowser(t)
	b.login("admin")
	code, body, _ := b.do(http.MethodGet, "/organizer/events/1/attendees", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "access-denied", decode[map[string]any](t, body)["view"])
}

func TestSecurityHeaders(t *testing.T) {
	b := newBrowser(t)
	_, _, hdr := b.do(http.MethodGet, "/health-check/ping", "")
	assert.Equal(t, "DENY", hdr.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", hdr.Get("X-Content-Type-Options"))
}

func TestAnonymousBrowsing_CreatesNoTabs(t *testing.T) {
	api := fakeAPI(t)
	cfg := &config.Config{AppEnv: "test", AllowedOrigins: []string{"*"}, SessionCookieName: "eventease_tab"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	registry := tab.NewRegistry(eventapi.NewClient(api.URL))
	h := NewRouter(ctx, cfg, &Deps{Registry: registry})

	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Result().Cookies())
	}
	assert.Zero(t, registry.Len())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login",
		strings.NewReader(`{"email":"attendee@example.com","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Zero(t, registry.Len())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login",
		strings.NewReader(`{"email":"attendee@example.com","password":"pw"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, registry.Len())
	require.Len(t, rr.Result().Cookies(), 1)
}
