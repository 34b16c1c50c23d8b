package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Arkiv-Network/editions/editions/ledger"
	"github.com/Arkiv-Network/editions/editions/sqlstore"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/holiman/uint256"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

const (
	editionsBasePath = "/v1/editions"
	paramID          = "id"
)

type Config struct {
	CORSOrigins []string
	// RateLimit is the sustained number of requests per second, zero
	// disables limiting.
	RateLimit float64
	Burst     int
}

// NewHandler builds the HTTP surface of the node: JSON-RPC on POST /, the
// REST views under /v1 and a health check. The returned rpc server must be
// stopped by the caller.
func NewHandler(api *editionsAPI, cfg Config) (http.Handler, *rpc.Server, error) {
	srv := rpc.NewServer()
	err := srv.RegisterName(Namespace, api)
	if err != nil {
		return nil, nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if cfg.RateLimit > 0 {
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))))
	}

	r.Get("/healthz", handleHealthCheck)

	h := &restHandler{api: api}
	r.Route(editionsBasePath, func(r chi.Router) {
		r.Get("/", h.handleQueryEditions)
		r.Get("/{"+paramID+"}", h.handleGetEdition)
		r.Get("/{"+paramID+"}/history", h.handleGetHistory)
	})

	r.Post("/", srv.ServeHTTP)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	return c.Handler(r), srv, nil
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type restHandler struct {
	api *editionsAPI
}

func parseID(r *http.Request) (*uint256.Int, bool) {
	id, err := uint256.FromDecimal(chi.URLParam(r, paramID))
	if err != nil || id.IsZero() {
		return nil, false
	}
	return id, true
}

func (h *restHandler) handleGetEdition(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid edition id")
		return
	}

	e, err := h.api.GetEdition(r.Context(), id)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case err != nil:
		log.Error("failed to get edition", "id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal error")
	default:
		respondWithJSON(w, http.StatusOK, e)
	}
}

func (h *restHandler) handleQueryEditions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		q = "$all"
	}

	var page [2]uint64
	for i, name := range []string{"offset", "limit"} {
		v := r.URL.Query().Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid "+name)
			return
		}
		page[i] = n
	}

	editions, err := h.api.QueryEditions(r.Context(), q, hexutil.Uint64(page[0]), hexutil.Uint64(page[1]))
	switch {
	case errors.Is(err, sqlstore.ErrInvalidQuery):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		log.Error("failed to query editions", "query", q, "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal error")
	default:
		respondWithJSON(w, http.StatusOK, editions)
	}
}

func (h *restHandler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid edition id")
		return
	}

	history, err := h.api.GetHistory(r.Context(), id)
	if err != nil {
		log.Error("failed to get edition history", "id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondWithJSON(w, http.StatusOK, history)
}

func respondWithJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Warn("failed to write response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, msg string) {
	respondWithJSON(w, status, map[string]string{"error": msg})
}
