package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/menushell/internal/menuservice"
	"github.com/starford/menushell/internal/testutil"
)

var testLayout = map[string]string{
	"deploy/deploy.txt": "Title: Deploy\nDescription: ship builds\n",
	"deploy/prod.sh":    "# Title: Production\nrelease() { :; }\n",
}

// testEnv builds a menu store from testLayout and a router over it.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) http.Handler {
	t.Helper()
	svc := menuservice.NewService(testutil.Store(t, testLayout, "alpha", "beta"), nil, nil)
	return NewRouter(svc, authEnabled, token, sseHandler)
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListMenus(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/menus")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp MenuListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// PROJECT_MENU, EXIT_MENU, tools, tools/deploy/prod.sh, tools/deploy
	if resp.Total != 5 || len(resp.Menus) != 5 {
		t.Errorf("total = %d, menus = %+v", resp.Total, resp.Menus)
	}
}

func TestListMenus_KindFilter(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/menus?kind=unit")
	var resp MenuListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Menus[0].Path != "tools/deploy/prod.sh" {
		t.Errorf("units = %+v", resp.Menus)
	}

	w = get(t, router, "/menus?kind=bogus")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bogus kind = %d, want 400", w.Code)
	}
}

func TestGetMenu(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/menus/tools/deploy")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}
	var m MenuDetail
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m.Title == nil || *m.Title != "Deploy" || m.Subtitle != nil {
		t.Errorf("menu = %+v", m)
	}
	if len(m.Options) != 2 || m.Options[0].Ref != "tools/deploy/prod.sh" {
		t.Errorf("options = %+v", m.Options)
	}
}

func TestGetMenu_EncodedSlash(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/menus/tools%2Fdeploy")
	if w.Code != http.StatusOK {
		t.Errorf("encoded path = %d, want 200", w.Code)
	}
}

func TestGetMenu_NotFound(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/menus/tools/nope")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing menu = %d, want 404", w.Code)
	}
	var body errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Status != http.StatusNotFound || body.Error == "" {
		t.Errorf("error body = %+v", body)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search?q=release")
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Path != "tools/deploy/prod.sh" {
		t.Errorf("results = %+v", resp.Results)
	}
	if resp.Query != "release" || resp.Total != len(resp.Results) {
		t.Errorf("query = %q, total = %d", resp.Query, resp.Total)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search")
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/menus", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")

	w := get(t, router, "/menus")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/menus", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/menus")
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

// blockingSSE writes stream headers and blocks until the request ends.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret", blockingSSE)

	w := get(t, router, "/events")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	router := testEnvWithSSE(t, false, "", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

func TestEvents_NotMountedWithoutHandler(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/events")
	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("events without handler = %d", w.Code)
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	router := testEnv(t, "secret123")

	if w := get(t, router, "/menus?access_token=secret123"); w.Code != http.StatusOK {
		t.Errorf("query token = %d, want 200", w.Code)
	}
	w := get(t, router, "/menus?access_token=nope")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong query token = %d, want 401", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("401 without WWW-Authenticate")
	}
}

func TestUnknownRoute_JSONError(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/nowhere")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route = %d, want 404", w.Code)
	}
	var body errResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != http.StatusNotFound {
		t.Errorf("body = %+v", body)
	}

	req := httptest.NewRequest(http.MethodPost, "/menus", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /menus = %d, want 405", w.Code)
	}
}

func TestResponses_NotCached(t *testing.T) {
	w := get(t, testEnv(t, ""), "/menus")
	if cc := w.Header().Get("Cache-Control"); cc == "" {
		t.Error("missing Cache-Control header")
	}
}
