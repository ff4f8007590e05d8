package serverhttp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"setmatch-service/internal/catalog/memory"
	"setmatch-service/internal/config"
	"setmatch-service/internal/setmatch/model"
	"setmatch-service/internal/setmatch/service"
)

func testRouter() http.Handler { return testRouterWith(func(*config.Config) {}) }

func testRouterWith(opt func(*config.Config)) http.Handler {
	b := memory.NewBuilder()
	b.AddTheme(model.Theme{ID: 1, Name: "City"})
	b.AddSet(model.Set{SetNum: "60000-1", Name: "Fire Station", Year: 2020, ThemeID: 1})
	b.AddInventory(1, 1, "60000-1")
	b.AddInventoryPart(1, "3001", 4, 2, false)
	svc := service.New(b.Build(), service.Options{}, zerolog.Nop())

	cfg := config.Config{
		AllowOrigins:      []string{"*"},
		MaxUploadMB:       1,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
	opt(&cfg)
	return NewRouter(cfg, zerolog.Nop(), svc)
}

func TestProfilerMount(t *testing.T) {
	get := func(h http.Handler) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
		return rec.Code
	}
	if code := get(testRouter()); code != http.StatusNotFound {
		t.Errorf("profiling off: status = %d, want 404", code)
	}
	on := testRouterWith(func(c *config.Config) { c.Profiling = true })
	if code := get(on); code != http.StatusOK {
		t.Errorf("profiling on: status = %d, want 200", code)
	}
}

func TestRoutes(t *testing.T) {
	h := testRouter()
	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/health", http.StatusOK, `"ok"`},
		{"/ready", http.StatusOK, `"ready"`},
		{"/themes", http.StatusOK, `"City"`},
		{"/sets/count", http.StatusOK, `{"count":1}`},
		{"/sets/60000-1/inventory.csv", http.StatusOK, "3001,4,2,0"},
		{"/metrics", http.StatusOK, "setmatch_"},
		{"/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.RemoteAddr = "10.1.1.1:5000"
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body does not contain %q:\n%s", tt.body, rec.Body)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}
