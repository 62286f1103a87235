package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgAuth "github.com/polkiloo/custodian/internal/pkg/auth"
	"github.com/polkiloo/custodian/internal/server/http/handlers"
	"github.com/polkiloo/custodian/internal/server/http/middleware"
	"github.com/polkiloo/custodian/internal/test"
)

func newTestEngine(verifier *pkgAuth.HMACVerifier) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	webhook := handlers.NewWebhookHandler(&test.NotifierStub{}, "0x5afe", logger)
	return Setup(webhook, verifier, logger)
}

func TestRouterHealthRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	newTestEngine(pkgAuth.NewHMACVerifier("")).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouterWebhookRequiresSignature(t *testing.T) {
	verifier := pkgAuth.NewHMACVerifier("whsec_test")
	engine := newTestEngine(verifier)
	body := `{"type":"OTHER"}`

	req := httptest.NewRequest(http.MethodPost, "/webhook/alchemy", strings.NewReader(body))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unsigned delivery: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/webhook/alchemy", strings.NewReader(body))
	req.Header.Set(middleware.SignatureHeader, verifier.Sign([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("signed delivery: expected 200, got %d", rec.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	newTestEngine(pkgAuth.NewHMACVerifier("")).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
