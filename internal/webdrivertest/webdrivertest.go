// Package webdrivertest provides a fake WebDriver remote end for tests.
//
// It serves the handful of endpoints a print run touches and records what it
// was asked to do. The same fake can run in-process behind httptest, or as a
// child process standing in for geckodriver: a test binary calls MaybeServe
// from TestMain and then spawns itself with Helper.
package webdrivertest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
)

// DefaultPayload is what the fake prints unless configured otherwise.
const DefaultPayload = "PDF-DATA"

// Config controls the fake's replies.
type Config struct {
	// PrintValue is the raw JSON placed in the print reply's value member.
	// Empty means a JSON string holding base64(DefaultPayload).
	PrintValue string

	// Error codes returned (HTTP 500) instead of success, per command.
	SessionError  string
	NavigateError string
	PrintError    string
}

// Handler is an http.Handler implementing the fake remote end.
type Handler struct {
	cfg Config
	mux *http.ServeMux

	mu           sync.Mutex
	nextID       int
	open         map[string]bool
	navigated    []string
	deleted      []string
	capabilities []json.RawMessage
	printed      int
}

// NewHandler creates a fake remote end.
func NewHandler(cfg Config) *Handler {
	if cfg.PrintValue == "" {
		cfg.PrintValue = strconv.Quote(base64.StdEncoding.EncodeToString([]byte(DefaultPayload)))
	}

	h := &Handler{
		cfg:  cfg,
		mux:  http.NewServeMux(),
		open: make(map[string]bool),
	}
	h.mux.HandleFunc("GET /status", h.status)
	h.mux.HandleFunc("POST /session", h.newSession)
	h.mux.HandleFunc("DELETE /session/{id}", h.deleteSession)
	h.mux.HandleFunc("POST /session/{id}/url", h.navigate)
	h.mux.HandleFunc("POST /session/{id}/print", h.print)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Navigated returns every URL the fake was asked to load, in order.
func (h *Handler) Navigated() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.navigated...)
}

// Deleted returns the IDs of sessions deleted by clients.
func (h *Handler) Deleted() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.deleted...)
}

// OpenSessions returns how many sessions are currently open.
func (h *Handler) OpenSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.open)
}

// Capabilities returns the alwaysMatch documents received, in order.
func (h *Handler) Capabilities() []json.RawMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]json.RawMessage(nil), h.capabilities...)
}

// PrintCount returns how many print commands were served.
func (h *Handler) PrintCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.printed
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	ready := len(h.open) == 0
	h.mu.Unlock()
	writeValue(w, http.StatusOK, fmt.Sprintf(`{"ready":%t,"message":""}`, ready))
}

func (h *Handler) newSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Capabilities struct {
			AlwaysMatch json.RawMessage `json:"alwaysMatch"`
		} `json:"capabilities"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid argument", err.Error())
		return
	}
	if h.cfg.SessionError != "" {
		writeError(w, http.StatusInternalServerError, h.cfg.SessionError, "fake refused the session")
		return
	}

	h.mu.Lock()
	h.nextID++
	id := fmt.Sprintf("fake-session-%d", h.nextID)
	h.open[id] = true
	h.capabilities = append(h.capabilities, req.Capabilities.AlwaysMatch)
	h.mu.Unlock()

	writeValue(w, http.StatusOK, fmt.Sprintf(`{"sessionId":%q,"capabilities":{"browserName":"firefox"}}`, id))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.known(id) {
		writeError(w, http.StatusNotFound, "invalid session id", id)
		return
	}

	h.mu.Lock()
	delete(h.open, id)
	h.deleted = append(h.deleted, id)
	h.mu.Unlock()

	writeValue(w, http.StatusOK, "null")
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request) {
	if !h.known(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "invalid session id", r.PathValue("id"))
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := decodeBody(r, &req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid argument", "missing url")
		return
	}

	h.mu.Lock()
	h.navigated = append(h.navigated, req.URL)
	h.mu.Unlock()

	if h.cfg.NavigateError != "" {
		writeError(w, http.StatusInternalServerError, h.cfg.NavigateError, "fake could not load "+req.URL)
		return
	}
	writeValue(w, http.StatusOK, "null")
}

func (h *Handler) print(w http.ResponseWriter, r *http.Request) {
	if !h.known(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "invalid session id", r.PathValue("id"))
		return
	}
	if h.cfg.PrintError != "" {
		writeError(w, http.StatusInternalServerError, h.cfg.PrintError, "fake could not print")
		return
	}

	h.mu.Lock()
	h.printed++
	h.mu.Unlock()

	writeValue(w, http.StatusOK, h.cfg.PrintValue)
}

func (h *Handler) known(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.open[id]
}

func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func writeValue(w http.ResponseWriter, status int, rawValue string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, `{"value":`+rawValue+`}`)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	value := fmt.Sprintf(`{"error":%q,"message":%q,"stacktrace":""}`, code, message)
	writeValue(w, status, value)
}
