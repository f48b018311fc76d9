// Package provider is the demo HTTP service whose OpenAPI contract is
// published to the broker.
package provider

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nickldimartino/bdct/internal/logging"
)

/**
 * @openapi
 * components:
 *   schemas:
 *     User:
 *       type: object
 *       required: [id, name, email, active]
 *       properties:
 *         id:     { type: integer, example: 123 }
 *         name:   { type: string,  example: "Jane Doe" }
 *         email:  { type: string,  format: email, example: "jane.doe@example.com" }
 *         active: { type: boolean, example: true }
 *     Error:
 *       type: object
 *       required: [error]
 *       properties:
 *         error: { type: string, example: "Not found" }
 */

// User is the resource served under /users/{id}.
type User struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

var users = map[int]User{
	123: {ID: 123, Name: "Jane Doe", Email: "jane.doe@example.com", Active: true},
}

// Router serves the demo provider endpoints.
type Router struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	metrics *metrics
}

// NewRouter registers handlers. Metrics go to a private registry so several
// routers can coexist in one process.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = logging.Discard()
	}
	reg := prometheus.NewRegistry()
	r := &Router{
		mux:     http.NewServeMux(),
		logger:  logger,
		metrics: newMetrics(reg),
	}
	r.mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.mux.HandleFunc("GET /health", r.instrument("/health", r.handleHealth))
	r.mux.HandleFunc("GET /users/{id}", r.instrument("/users/{id}", r.handleUser))
	return r
}

// ServeHTTP satisfies http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

/**
 * @openapi
 * /users/{id}:
 *   get:
 *     summary: Get a user by id
 *     parameters:
 *       - in: path
 *         name: id
 *         schema: { type: integer }
 *         required: true
 *         description: User id
 *     responses:
 *       '200':
 *         description: Found
 *         content:
 *           application/json:
 *             schema:
 *               $ref: '#/components/schemas/User'
 *       '404':
 *         description: Not found
 *         content:
 *           application/json:
 *             schema:
 *               $ref: '#/components/schemas/Error'
 */
func (r *Router) handleUser(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.Atoi(req.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	u, ok := users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
