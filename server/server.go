// Package server is the HTTP layer of the trainer API. It validates request
// shapes, calls into the auth and trainers packages, and maps their typed
// failures onto transport status codes. The core never sees HTTP.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/poketrainer/trainer-api/auth"
	"github.com/poketrainer/trainer-api/internal/config"
	"github.com/poketrainer/trainer-api/token"
	"github.com/poketrainer/trainer-api/trainers"
)

const contentTypeJSON = "application/json; charset=utf-8"

type Server struct {
	config   config.Config
	sessions *auth.SessionService
	repo     trainers.Repo
	issuer   *token.Issuer
	limiter  *rateLimiter
	mux      *http.ServeMux
	env      string
}

func New(cfg config.Config, sessions *auth.SessionService, repo trainers.Repo, issuer *token.Issuer) *Server {
	s := &Server{
		config:   cfg,
		sessions: sessions,
		repo:     repo,
		issuer:   issuer,
		limiter:  newRateLimiter(rateLimitMax, rateLimitWindow),
		mux:      http.NewServeMux(),
		env:      cfg.GetEnv(),
	}
	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, routeFunc http.HandlerFunc) {
	s.mux.HandleFunc(pattern, routeFunc)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.HandlerFunc) {
	s.mux.Handle(pattern, handler)
}

// statusBody is the error/status envelope the original API used for every
// non-2xx response.
type statusBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeStatus(w http.ResponseWriter, status int) {
	writeJSON(w, status, statusBody{Status: status, Message: http.StatusText(status)})
}

func decodeBody(r *http.Request, into any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(into)
}
