// Package api exposes the engine and oracle surface over HTTP. Amounts
// travel as base-10 strings so big-integer values survive JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/basinlabs/baseswap/amm"
	"github.com/basinlabs/baseswap/history"
	"github.com/basinlabs/baseswap/oracle"
	"github.com/basinlabs/baseswap/utils/metrics"
)

// Server routes API requests to the engine and oracle adapter.
type Server struct {
	log    *zap.Logger
	engine *amm.Engine
	oracle *oracle.Adapter
	hist   *history.Store
	router *mux.Router
}

// ServerConfig carries the Server's collaborators. History is optional;
// when nil, journaling endpoints return 404 and events are dropped.
type ServerConfig struct {
	Engine  *amm.Engine
	Oracle  *oracle.Adapter
	History *history.Store
	Logger  *zap.Logger
}

// NewServer builds the router over the given collaborators.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if cfg.Oracle == nil {
		return nil, errors.New("oracle adapter is required")
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		log:    log,
		engine: cfg.Engine,
		oracle: cfg.Oracle,
		hist:   cfg.History,
		router: mux.NewRouter(),
	}
	s.routes()
	return s, nil
}

// Router returns the http.Handler serving the API.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes() {
	v1 := s.router.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/pairs", s.handleCreatePair).Methods(http.MethodPost)
	v1.HandleFunc("/pairs/{asset}", s.handleGetPair).Methods(http.MethodGet)
	v1.HandleFunc("/pairs/{asset}/liquidity", s.handleAddLiquidity).Methods(http.MethodPost)
	v1.HandleFunc("/pairs/{asset}/liquidity/remove", s.handleRemoveLiquidity).Methods(http.MethodPost)
	v1.HandleFunc("/pairs/{asset}/quote", s.handleQuote).Methods(http.MethodGet)
	v1.HandleFunc("/pairs/{asset}/swaps", s.handleSwap).Methods(http.MethodPost)
	v1.HandleFunc("/pairs/{asset}/history/swaps", s.handleSwapHistory).Methods(http.MethodGet)
	v1.HandleFunc("/pairs/{asset}/history/liquidity", s.handleLiquidityHistory).Methods(http.MethodGet)

	v1.HandleFunc("/prices/base", s.handleBasePrice).Methods(http.MethodGet)
	v1.HandleFunc("/prices/{asset}", s.handlePrice).Methods(http.MethodGet)
	v1.HandleFunc("/prices/{asset}/convert", s.handleConvert).Methods(http.MethodGet)
	v1.HandleFunc("/prices/{asset}/decimals", s.handleDecimals).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, amm.ErrInvalidArgument), errors.Is(err, oracle.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, amm.ErrPairNotFound), errors.Is(err, oracle.ErrPriceFeedNotFound):
		status = http.StatusNotFound
	case errors.Is(err, amm.ErrPairAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, amm.ErrSlippageExceeded):
		status = http.StatusConflict
	case errors.Is(err, amm.ErrInsufficientLiquidity):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, oracle.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, amm.ErrTransferFailed), errors.Is(err, oracle.ErrInvalidPrice):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
