package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dgallion1/mdbook-header-footer/internal/config"
	"github.com/dgallion1/mdbook-header-footer/internal/doctree"
	"github.com/dgallion1/mdbook-header-footer/internal/padding"
	"github.com/dgallion1/mdbook-header-footer/internal/pipeline"
	"github.com/dgallion1/mdbook-header-footer/internal/preprocess"
)

type padRequest struct {
	Config json.RawMessage `json:"config"`
	Book   *doctree.Book   `json:"book"`
}

type padResponse struct {
	Book        *doctree.Book         `json:"book"`
	Report      pipeline.Report       `json:"report"`
	Diagnostics []pipeline.Diagnostic `json:"diagnostics"`
}

// handlePreprocess accepts mdBook's [context, book] input and returns the
// padded book, exactly as the preprocessor would write it to stdout.
func (s *Server) handlePreprocess(w http.ResponseWriter, r *http.Request) {
	c, book, err := preprocess.ParseInput(r.Body)
	if err != nil {
		s.writeDecodeError(w, err)
		return
	}

	orch := pipeline.NewOrchestrator(s.cfg, nil, s.log)
	report, err := preprocess.New(orch, nil).Process(r.Context(), c, book)
	if err != nil {
		s.writePassError(w, err)
		return
	}

	s.log.Info("preprocessed book",
		"renderer", c.Renderer,
		"chapters", report.Chapters,
		"padded", report.Padded,
	)
	writeJSON(w, http.StatusOK, book)
}

// handlePad accepts {config, book} and returns the padded book together with
// the pass report and per-chapter diagnostics.
func (s *Server) handlePad(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeDecodeError(w, err)
		return
	}
	if err := doctree.CheckUTF8(data); err != nil {
		s.writeDecodeError(w, err)
		return
	}
	var req padRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.writeDecodeError(w, err)
		return
	}
	if req.Book == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "book is required"})
		return
	}

	raw, err := config.ParseRulesJSON(req.Config)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	cfg, err := raw.Compile()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	collector := &pipeline.CollectingReporter{}
	reporter := pipeline.Reporters{collector, pipeline.SlogReporter{Log: s.log}}
	report, err := pipeline.NewOrchestrator(s.cfg, reporter, s.log).PadBook(r.Context(), req.Book, cfg)
	if err != nil {
		s.writePassError(w, err)
		return
	}

	diags := collector.Diagnostics()
	if diags == nil {
		diags = []pipeline.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, padResponse{Book: req.Book, Report: report, Diagnostics: diags})
}

func (s *Server) writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
			"error": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// writePassError maps rule errors to 400 and anything else (cancellation)
// to 503. A pass cut off by the request timeout gets no response here: the
// timeout middleware has already written 504.
func (s *Server) writePassError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.Warn("padding pass timed out", "error", err)
		return
	}
	var pce *padding.PatternCompileError
	if errors.As(err, &pce) || errors.Is(err, config.ErrInvalidRules) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.log.Error("padding pass failed", "error", err)
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
