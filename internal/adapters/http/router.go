package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/ports"
	"github.com/SohamB4746Y/ja-assure-rag/internal/observability/metrics"
)

const serviceName = "api"

// defaultSessionID groups requests that arrive without an explicit session.
const defaultSessionID = "default"

type Router struct {
	resolver ports.QueryResolver
	queue    ports.ReindexQueue
	metrics  *metrics.HTTPServerMetrics

	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
}

func NewRouter(
	resolver ports.QueryResolver,
	queue ports.ReindexQueue,
	m *metrics.HTTPServerMetrics,
	rateLimitRPS float64,
	rateLimitBurst int,
	maxInFlight int,
) *Router {
	return &Router{
		resolver:       resolver,
		queue:          queue,
		metrics:        m,
		rateLimitRPS:   rateLimitRPS,
		rateLimitBurst: rateLimitBurst,
		maxInFlight:    maxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/readyz", rt.readyz)
	mux.HandleFunc("/v1/query", rt.resolveQuery)
	mux.HandleFunc("/v1/admin/reindex", rt.requestReindex)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.maxInFlight, 50*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst, rt.metrics)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz reports 503 until the first corpus snapshot is installed. A pod that
// answers queries before the snapshot exists would refuse everything.
func (rt *Router) readyz(w http.ResponseWriter, _ *http.Request) {
	if !rt.resolver.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (rt *Router) resolveQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if !rt.resolver.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "corpus not loaded yet"})
		return
	}

	var req struct {
		Question  string `json:"question"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	start := time.Now()
	answer := rt.resolver.Resolve(r.Context(), req.Question, sessionID)
	if rt.metrics != nil {
		rt.metrics.RecordResolution(
			serviceName,
			string(answer.Strategy),
			string(answer.Reason),
			len(answer.Evidence),
			time.Since(start),
		)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":     answer.Text,
		"strategy":   string(answer.Strategy),
		"evidence":   answer.Evidence,
		"reason":     string(answer.Reason),
		"session_id": sessionID,
	})
}

func (rt *Router) requestReindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	requestID := uuid.NewString()
	if err := rt.queue.PublishReindexRequested(r.Context(), requestID); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"request_id": requestID})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
