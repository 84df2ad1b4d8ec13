// Package handlers exposes the Store over HTTP. Every JSON response uses the
// envelope {"accepted": bool, "data": ..., "error": string|null}.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	applog "knife/internal/log"
	"knife/internal/store"
)

var storage *store.Store

// Configure installs the store used by the HTTP handlers.
func Configure(s *store.Store) {
	storage = s
}

type envelope struct {
	Accepted bool    `json:"accepted"`
	Data     any     `json:"data"`
	Error    *string `json:"error"`
}

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Accepted: true, Data: data})
}

func writeJSONError(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Accepted: false, Data: data, Error: &message})
}

// statusFor maps a store error kind onto an HTTP status.
func statusFor(kind store.Kind) int {
	switch kind {
	case store.NotFound:
		return http.StatusNotFound
	case store.AlreadyExists, store.InUse, store.CycleDetected:
		return http.StatusConflict
	case store.InvalidQuery, store.InvalidValue:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(store.KindOf(err))

	var data any
	var se *store.Error
	if errors.As(err, &se) {
		data = se.Data
	}

	if status == http.StatusInternalServerError {
		applog.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, status, "internal error", nil)
		return
	}
	applog.Debug(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	writeJSONError(w, status, err.Error(), data)
}

// ready reports whether a store is configured, answering 503 otherwise.
func ready(w http.ResponseWriter, r *http.Request) bool {
	if storage == nil {
		applog.Debug(r.Context(), "request without store", "path", r.URL.Path)
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable", nil)
		return false
	}
	return true
}

// queryParams reads lookup parameters from the query string.
func queryParams(r *http.Request) store.Params {
	values := r.URL.Query()
	p := make(store.Params, len(values))
	for key := range values {
		p[key] = values.Get(key)
	}
	return p
}

// bodyParams reads a JSON object or a form from the request body.
func bodyParams(w http.ResponseWriter, r *http.Request) (store.Params, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		p := store.Params{}
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
		return p, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	p := make(store.Params, len(r.PostForm))
	for key := range r.PostForm {
		p[key] = r.PostForm.Get(key)
	}
	return p, nil
}

// rename moves legacy form keys to their field names.
func rename(p store.Params, from, to string) {
	if v, ok := p[from]; ok {
		if _, taken := p[to]; !taken {
			p[to] = v
		}
		delete(p, from)
	}
}

func withBody(w http.ResponseWriter, r *http.Request) (store.Params, bool) {
	p, err := bodyParams(w, r)
	if err != nil {
		applog.Debug(r.Context(), "unreadable request body", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error(), nil)
		return nil, false
	}
	return p, true
}

func cascade(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("cascade")) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
