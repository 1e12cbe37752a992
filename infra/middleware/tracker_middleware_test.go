package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tracker_server/core/port/out"
	"tracker_server/pkg/apperr"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

type fakeParser struct {
	valid map[string]*out.Identity
}

func (p *fakeParser) Parse(token string) (*out.Identity, error) {
	if id, ok := p.valid[token]; ok {
		return id, nil
	}
	return nil, errors.New("invalid token")
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(Recover(), RequestID())
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return body
}

func TestErrorHandler_Shapes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKeys   map[string]any
	}{
		{
			name:       "client app error",
			err:        apperr.NotFound("User not found."),
			wantStatus: http.StatusNotFound,
			wantKeys:   map[string]any{"message": "User not found.", "error": "User not found.", "code": apperr.CodeNotFound},
		},
		{
			name:       "server app error",
			err:        apperr.UpstreamFailure("adzuna", errors.New("502")),
			wantStatus: http.StatusInternalServerError,
			wantKeys:   map[string]any{"error": "Internal Server Error", "details": "upstream service error: adzuna", "code": apperr.CodeUpstreamFailure},
		},
		{
			name:       "fiber error",
			err:        fiber.NewError(fiber.StatusBadRequest, "bad json"),
			wantStatus: http.StatusBadRequest,
			wantKeys:   map[string]any{"message": "bad json", "code": apperr.CodeBadRequest},
		},
		{
			name:       "plain error",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantKeys:   map[string]any{"error": "Internal Server Error", "details": "connection reset", "code": apperr.CodeInternalError},
		},
		{
			name:       "wrapped plain error keeps operation only",
			err:        fmt.Errorf("list user jobs: %w", errors.New(`pq: relation "users_jobs" does not exist`)),
			wantStatus: http.StatusInternalServerError,
			wantKeys:   map[string]any{"details": "list user jobs", "code": apperr.CodeInternalError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", "req-1")
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			body := decodeBody(t, resp)
			for k, want := range tt.wantKeys {
				if body[k] != want {
					t.Errorf("%s = %v, want %v", k, body[k], want)
				}
			}
			if body["request_id"] != "req-1" {
				t.Errorf("request_id = %v, want req-1", body["request_id"])
			}
		})
	}
}

func TestRecover_RendersServerError(t *testing.T) {
	app := newTestApp()
	app.Get("/", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["error"] != "Internal Server Error" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestRequestID_GeneratedWhenAbsent(t *testing.T) {
	app := newTestApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("request_id").(string))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	header := resp.Header.Get("X-Request-ID")
	if header == "" {
		t.Fatal("X-Request-ID header missing")
	}
	raw, _ := io.ReadAll(resp.Body)
	if string(raw) != header {
		t.Errorf("locals request id = %q, header = %q", raw, header)
	}
}

func TestAuth(t *testing.T) {
	parser := &fakeParser{valid: map[string]*out.Identity{
		"good": {UserID: 7, Email: "ada@example.com"},
	}}

	tests := []struct {
		name       string
		required   bool
		header     string
		wantStatus int
		wantEmail  string
	}{
		{"optional anonymous", false, "", http.StatusOK, ""},
		{"optional valid", false, "Bearer good", http.StatusOK, "ada@example.com"},
		{"optional invalid passes through", false, "Bearer bad", http.StatusOK, ""},
		{"required missing", true, "", http.StatusUnauthorized, ""},
		{"required malformed", true, "Token good", http.StatusUnauthorized, ""},
		{"required invalid", true, "Bearer bad", http.StatusUnauthorized, ""},
		{"required valid", true, "bearer good", http.StatusOK, "ada@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			app.Get("/", Auth(parser, tt.required), func(c *fiber.Ctx) error {
				return c.SendString(CallerEmail(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				raw, _ := io.ReadAll(resp.Body)
				if string(raw) != tt.wantEmail {
					t.Errorf("caller email = %q, want %q", raw, tt.wantEmail)
				}
			}
		})
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	app := newTestApp()
	app.Post("/signin", rl.Handler(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	do := func() *http.Response {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/signin", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp
	}

	for i := 0; i < 2; i++ {
		if resp := do(); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, resp.StatusCode)
		}
	}

	resp := do()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", resp.Header.Get("X-RateLimit-Remaining"))
	}
	if resp.Header.Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", resp.Header.Get("Retry-After"))
	}
	if body := decodeBody(t, resp); body["code"] != apperr.CodeRateLimited {
		t.Errorf("code = %v", body["code"])
	}

	now = now.Add(time.Minute + time.Second)
	if resp := do(); resp.StatusCode != http.StatusOK {
		t.Errorf("after window status = %d, want 200", resp.StatusCode)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	now = now.Add(2 * time.Minute)
	rl.cleanup()

	if len(rl.requests) != 0 {
		t.Errorf("requests = %d, want 0 after cleanup", len(rl.requests))
	}
}

func TestRateLimiter_DisabledWhenLimitZero(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	app := newTestApp()
	app.Get("/", rl.Handler(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
	}
}

func TestCacheHeaders(t *testing.T) {
	app := newTestApp()
	app.Use(SecurityHeaders(), NoStore())
	app.Get("/search", PublicCache(10*time.Minute), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/fail", PublicCache(10*time.Minute), func(c *fiber.Ctx) error { return apperr.BadRequest("nope") })
	app.Get("/profile", func(c *fiber.Ctx) error { return c.SendString("ok") })

	tests := []struct {
		path string
		want string
	}{
		{"/search", "public, max-age=600"},
		{"/fail", "no-store"},
		{"/profile", "no-store"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if got := resp.Header.Get("Cache-Control"); got != tt.want {
				t.Errorf("Cache-Control = %q, want %q", got, tt.want)
			}
			if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
				t.Error("security headers missing")
			}
		})
	}
}
