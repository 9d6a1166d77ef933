package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/mdbook-header-footer/internal/config"
	"github.com/dgallion1/mdbook-header-footer/internal/doctree"
	"github.com/dgallion1/mdbook-header-footer/internal/pipeline"
)

func newTestServer(cfg config.Config) *Server {
	if cfg.Workers == 0 {
		cfg.Workers = 2
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
}

func do(t *testing.T, s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

const padBody = `{
	"config": {
		"headers": [{"regex": ".*", "padding": "A"}, {"regex": "b$", "padding": "B"}]
	},
	"book": {"sections": [
		{"Chapter": {"name": "AB", "content": "X", "number": [1], "sub_items": [], "path": "ab", "source_path": "ab", "parent_names": []}},
		{"Chapter": {"name": "Draft", "content": "D", "number": null, "sub_items": [], "path": null, "source_path": null, "parent_names": []}}
	], "__non_exhaustive": null}
}`

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(config.Config{}), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPad(t *testing.T) {
	rec := do(t, newTestServer(config.Config{}), http.MethodPost, "/api/pad", padBody, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Book        doctree.Book          `json:"book"`
		Report      pipeline.Report       `json:"report"`
		Diagnostics []pipeline.Diagnostic `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "ABX", resp.Book.Sections[0].Chapter.Content)
	assert.Equal(t, "D", resp.Book.Sections[1].Chapter.Content)
	assert.Equal(t, pipeline.Report{Chapters: 2, Padded: 1, Skipped: 1}, resp.Report)
	assert.Len(t, resp.Diagnostics, 2)
}

func TestPad_InvalidPattern(t *testing.T) {
	body := strings.Replace(padBody, `"b$"`, `"b("`, 1)
	rec := do(t, newTestServer(config.Config{}), http.MethodPost, "/api/pad", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "headers[1]")
}

func TestPad_MissingBook(t *testing.T) {
	rec := do(t, newTestServer(config.Config{}), http.MethodPost, "/api/pad", `{"config": {}}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPad_BodyTooLarge(t *testing.T) {
	s := newTestServer(config.Config{MaxBodyBytes: 16})
	rec := do(t, s, http.MethodPost, "/api/pad", padBody, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPreprocess(t *testing.T) {
	body := `[
		{"root": "/", "config": {"preprocessor": {"header-footer": {"footers": [{"padding": "!"}]}}}, "renderer": "html", "mdbook_version": "0.4.40"},
		{"sections": [{"Chapter": {"name": "A", "content": "a", "number": [1], "sub_items": [], "path": "a.md", "source_path": "a.md", "parent_names": []}}], "__non_exhaustive": null}
	]`
	rec := do(t, newTestServer(config.Config{}), http.MethodPost, "/api/preprocess", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var book doctree.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	assert.Equal(t, "a!", book.Sections[0].Chapter.Content)
}

func TestPreprocess_BadRules(t *testing.T) {
	body := `[{"config": {"preprocessor": {"header-footer": {"headers": [{"regex": "x"}]}}}}, {"sections": []}]`
	rec := do(t, newTestServer(config.Config{}), http.MethodPost, "/api/preprocess", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "headers[0].padding")
}

func TestPreprocess_MalformedInput(t *testing.T) {
	rec := do(t, newTestServer(config.Config{}), http.MethodPost, "/api/preprocess", `{"not": "a pair"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth(t *testing.T) {
	s := newTestServer(config.Config{APIKey: "secret"})

	rec := do(t, s, http.MethodPost, "/api/pad", padBody, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/pad", padBody, map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/pad", padBody, map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays public.
	rec = do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics(t *testing.T) {
	s := newTestServer(config.Config{})
	do(t, s, http.MethodPost, "/api/pad", padBody, nil)

	rec := do(t, s, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "header_footer_chapters_total")
}

func TestPad_InvalidUTF8(t *testing.T) {
	body := strings.Replace(padBody, `"path": "ab"`, "\"path\": \"a\xffb\"", 1)
	rec := do(t, newTestServer(config.Config{}), http.MethodPost, "/api/pad", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not valid UTF-8")
}

func TestPreprocess_InvalidUTF8(t *testing.T) {
	body := "[{}, {\"sections\": [{\"Chapter\": {\"name\": \"A\", \"content\": \"a\", \"number\": null, \"sub_items\": [], \"path\": \"\xfe.md\", \"source_path\": null, \"parent_names\": []}}]}]"
	rec := do(t, newTestServer(config.Config{}), http.MethodPost, "/api/preprocess", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWritePassError(t *testing.T) {
	s := newTestServer(config.Config{})

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody bool
	}{
		{"timed out", fmt.Errorf("pass: %w", context.DeadlineExceeded), http.StatusOK, false},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable, true},
		{"bad rules", fmt.Errorf("x: %w", config.ErrInvalidRules), http.StatusBadRequest, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writePassError(rec, tt.err)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.Len() > 0)
		})
	}
}
