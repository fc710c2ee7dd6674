package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/llm"
	"resume-builder/internal/llm/gemini"
	"resume-builder/internal/llm/openai"
	"resume-builder/internal/shared/config"
	localstore "resume-builder/internal/shared/storage/object/local"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.LocalStoreDir = t.TempDir()
	return cfg
}

func TestBuildDevWithoutKeyServesForm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	if _, ok := app.LLM.(llm.PlaceholderClient); !ok {
		t.Fatalf("expected placeholder client, got %T", app.LLM)
	}
	if _, ok := app.Store.(*localstore.Store); !ok {
		t.Fatalf("expected local store, got %T", app.Store)
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	form := url.Values{
		"name": {"Jane Doe"}, "contact": {"jane@example.com"}, "objective": {"o"},
		"education": {"e"}, "experience": {"x"}, "skills": {"s"},
	}
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp = httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 without api key, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Error: llm client not configured") {
		t.Fatalf("expected configuration error in page")
	}
}

func TestBuildProductionRequiresDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "production"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestBuildStoreValidatesRemoteSettings(t *testing.T) {
	for _, storeType := range []string{"s3", "minio"} {
		cfg := testConfig(t)
		cfg.ObjectStoreType = storeType
		if _, err := BuildStore(context.Background(), cfg); err == nil {
			t.Fatalf("%s: expected error for missing settings", storeType)
		}
	}
}

func TestNewLLMClientSelectsProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.GoogleAPIKey = "google-key"
	client, err := NewLLMClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewLLMClient gemini: %v", err)
	}
	if _, ok := client.(*gemini.Client); !ok {
		t.Fatalf("expected gemini client, got %T", client)
	}

	cfg.LLMProvider = "openai"
	cfg.OpenAIAPIKey = "openai-key"
	client, err = NewLLMClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewLLMClient openai: %v", err)
	}
	if _, ok := client.(*openai.Client); !ok {
		t.Fatalf("expected openai client, got %T", client)
	}
}

func TestBuildRedisUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.RedisAddr = "127.0.0.1:1"
	if _, err := BuildRedis(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unreachable redis")
	}

	cfg.Env = "production"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected Build to fail when REDIS_ADDR is unreachable")
	}
}

func TestAppCloseWithoutResources(t *testing.T) {
	var nilApp *App
	if err := nilApp.Close(); err != nil {
		t.Fatalf("nil app Close: %v", err)
	}
	if err := (&App{}).Close(); err != nil {
		t.Fatalf("empty app Close: %v", err)
	}
}
