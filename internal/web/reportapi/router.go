package reportapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	analyzerconfig "github.com/wildebeest-nlp/wildebeest/internal/analyzer/config"
	"github.com/wildebeest-nlp/wildebeest/internal/reportio"
	"github.com/wildebeest-nlp/wildebeest/internal/web/auth"
	"github.com/wildebeest-nlp/wildebeest/internal/web/middleware"
	"github.com/wildebeest-nlp/wildebeest/internal/web/ratelimit"
)

// Options configures a report API server instance.
type Options struct {
	Manager     *Manager
	Clients     *ClientStore
	AuthService *auth.AuthService
	TokenTTL    time.Duration

	// TokenLimiter throttles POST /auth/token. Defaults to a
	// single-instance in-memory token bucket; pass a
	// ratelimit.RedisRateLimiter to share limits across a fleet of
	// `serve` processes behind a load balancer.
	TokenLimiter ratelimit.RateLimiter
}

// websocketPath is excluded from Compression and Timeout: it upgrades
// to a long-lived connection that streams progress events for the
// lifetime of a run, which neither gzip buffering nor a fixed request
// deadline can accommodate.
const websocketPath = "/progress"

// NewRouter builds the chi router: a public, rate-limited token endpoint,
// a bearer-token-gated set of run endpoints, and a role-gated history
// endpoint, wrapped in the teacher's request-ID/logging/recovery/CORS
// middleware stack plus request timeouts on everything except the
// progress websocket and compression on GET requests other than it.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(toChiMiddleware(middleware.RequestID()))
	r.Use(toChiMiddleware(middleware.Logging()))
	r.Use(toChiMiddleware(middleware.Recovery()))
	r.Use(toChiMiddleware(middleware.CORS()))
	r.Use(toChiMiddleware(middleware.Conditional(
		middleware.Not(middleware.PathSuffix(websocketPath)),
		middleware.Timeout(30*time.Second),
	)))
	r.Use(toChiMiddleware(middleware.Conditional(
		middleware.And(middleware.Method(http.MethodGet), middleware.Not(middleware.PathSuffix(websocketPath))),
		middleware.Compression(),
	)))

	tokenLimiter := opts.TokenLimiter
	if tokenLimiter == nil {
		tokenLimiter = ratelimit.NewTokenBucketWithConfig(ratelimit.TokenBucketConfig{
			Capacity:        20,
			RefillRate:      time.Minute,
			CleanupInterval: 10 * time.Minute,
		})
	}
	r.With(toChiMiddleware(middleware.RateLimit(tokenLimiter))).Post("/auth/token", handleIssueToken(opts))

	r.Group(func(r chi.Router) {
		r.Use(toChiMiddleware(middleware.Auth(opts.AuthService)))
		r.With(toChiMiddleware(middleware.RequirePermission(auth.RunsCreate))).
			Post("/runs", handleStartRun(opts))
		r.With(toChiMiddleware(middleware.RequirePermission(auth.RunsRead))).
			Get("/runs/{id}", handleGetRun(opts))
		r.With(toChiMiddleware(middleware.RequirePermission(auth.RunsRead))).
			Get("/runs/{id}/progress", handleProgress(opts))
		r.With(toChiMiddleware(middleware.RequireAnyRole("admin", "operator"))).
			Get("/admin/runs", handleListHistory(opts))
	})

	return r
}

// toChiMiddleware adapts the teacher's middleware.Middleware (already
// exactly net/http's func(http.Handler) http.Handler) into chi's
// middleware type, which is structurally identical.
func toChiMiddleware(m middleware.Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m(next)
	}
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func handleIssueToken(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		role, ok := opts.Clients.Authenticate(req.ClientID, req.ClientSecret)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid client credentials")
			return
		}

		token, err := opts.AuthService.GenerateToken(req.ClientID, "", []string{role})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to issue token")
			return
		}

		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

type startRunResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

func handleStartRun(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := analyzerconfig.Params{
			LanguageCode:           r.URL.Query().Get("language_code"),
			ShowAllCategories:      r.URL.Query().Get("show_all") == "true",
			FirstFieldIsSentenceID: r.URL.Query().Get("sentence_id") == "true",
		}
		cfg, _ := analyzerconfig.New(params)

		run := opts.Manager.Start(cfg, r.Body)
		writeJSON(w, http.StatusAccepted, startRunResponse{RunID: run.ID, Status: string(run.Status)})
	}
}

func handleGetRun(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := opts.Manager.Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown run ID")
			return
		}

		switch run.Status {
		case StatusRunning:
			writeJSON(w, http.StatusAccepted, startRunResponse{RunID: run.ID, Status: string(run.Status)})
		case StatusError:
			writeError(w, http.StatusInternalServerError, run.Err.Error())
		case StatusDone:
			doc, err := Document(run)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_ = reportio.WriteJSON(w, doc)
		}
	}
}

func handleProgress(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := opts.Manager.Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown run ID")
			return
		}
		run.hub.Handler()(w, r)
	}
}

type historyRunResponse struct {
	RunID          string `json:"run_id"`
	LanguageCode   string `json:"language_code"`
	TotalLines     uint64 `json:"total_lines"`
	TotalTokens    uint64 `json:"total_tokens"`
	FastTrackCount uint64 `json:"fast_track_count"`
}

// handleListHistory serves persisted run snapshots for operators
// auditing past analyzer activity. It requires an admin or operator
// role rather than a permission, since HistoryRead is also granted to
// viewers (see auth.RBACPermission) and this endpoint is meant to stay
// restricted to staff who run analyses.
func handleListHistory(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		snapshots, err := opts.Manager.ListHistory(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}

		out := make([]historyRunResponse, 0, len(snapshots))
		for _, s := range snapshots {
			out = append(out, historyRunResponse{
				RunID:          s.RunID,
				LanguageCode:   s.LanguageCode,
				TotalLines:     s.TotalLines,
				TotalTokens:    s.TotalTokens,
				FastTrackCount: s.FastTrackCount,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
