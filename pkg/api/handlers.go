package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tierviz/pkg/buildinfo"
	"github.com/matzehuels/tierviz/pkg/chart"
	"github.com/matzehuels/tierviz/pkg/errors"
	"github.com/matzehuels/tierviz/pkg/pipeline"
	"github.com/matzehuels/tierviz/pkg/store"
)

// maxBodyBytes bounds request bodies; inline datasets are the largest.
const maxBodyBytes = 8 << 20

// maxListLimit caps GET /v1/layouts.
const maxListLimit = 500

// ComputeRequest is the body of POST /v1/layouts.
type ComputeRequest struct {
	Mode    string        `json:"mode"`
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	Dataset chart.Dataset `json:"dataset"`
}

// ScenarioLayoutRequest is the body of POST /v1/scenarios/{scenario}/layouts.
// All fields are optional.
type ScenarioLayoutRequest struct {
	Mode     string   `json:"mode"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Baseline string   `json:"baseline"`
	Tiers    []string `json:"tiers"`
	Refresh  bool     `json:"refresh"`
}

type errorBody struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.counters.Snapshot())
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	if s.scenarios == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "scenario listing is not configured"))
		return
	}
	list, err := s.scenarios.ListScenarios(r.Context())
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeNetwork, err, "list scenarios"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenarios": list})
}

func (s *Server) handleComputeLayout(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Dataset.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := pipeline.Options{Mode: req.Mode, Width: req.Width, Height: req.Height}
	l, err := s.runner.ComputeLayout(r.Context(), req.Dataset, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleCreateScenarioLayout(w http.ResponseWriter, r *http.Request) {
	var req ScenarioLayoutRequest
	if err := decodeBody(w, r, &req); err != nil && !stderrors.Is(err, io.EOF) {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Scenario: chi.URLParam(r, "scenario"),
		Baseline: req.Baseline,
		Tiers:    req.Tiers,
		Refresh:  req.Refresh,
		Mode:     req.Mode,
		Width:    req.Width,
		Height:   req.Height,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), res.Layout); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/layouts/"+res.Layout.ID)
	writeJSON(w, http.StatusCreated, res.Layout)
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListOptions{Scenario: q.Get("scenario"), Limit: 50}
	if m := q.Get("mode"); m != "" {
		mode, err := chart.ParseMode(m)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Mode = mode
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > maxListLimit {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be between 1 and %d", maxListLimit))
			return
		}
		opts.Limit = n
	}

	layouts, err := s.store.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if layouts == nil {
		layouts = []chart.Layout{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": layouts})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, io.EOF):
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "empty request body")
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status and a coded body. Messages of
// uncoded errors are not exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if stderrors.Is(err, store.ErrNotFound) {
		err = errors.Wrap(errors.ErrCodeLayoutNotFound, err, "layout not found")
	}
	if stderrors.Is(err, store.ErrInvalidID) {
		err = errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid layout id")
	}

	code := errors.GetCode(err)
	status := errors.HTTPStatus(code)
	msg := errors.UserMessage(err)
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	case code == errors.ErrCodeInternal:
		msg = "internal error"
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", RequestIDFrom(r.Context()))
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg, RequestID: RequestIDFrom(r.Context())})
}
