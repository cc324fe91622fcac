package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/poketrainer/trainer-api/auth"
	"github.com/poketrainer/trainer-api/token"
	"github.com/poketrainer/trainer-api/trainers"
)

type registerRequest struct {
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type sessionResponse struct {
	Status       int               `json:"status"`
	Message      string            `json:"message,omitempty"`
	Trainer      *trainers.Trainer `json:"trainer,omitempty"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeBody(r, &req); err != nil {
			writeStatus(w, http.StatusBadRequest)
			return
		}
		if !validName(req.FirstName) || !validEmail(req.Email) || !validPassword(req.Password) {
			writeStatus(w, http.StatusBadRequest)
			return
		}

		session, err := s.sessions.Register(r.Context(), req.FirstName, req.Email, req.Password)
		if err != nil {
			s.writeCoreError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, sessionResponse{
			Status:       http.StatusCreated,
			Message:      "Created",
			Trainer:      session.Trainer,
			AccessToken:  session.Tokens.AccessToken,
			RefreshToken: session.Tokens.RefreshToken,
		})
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, &req); err != nil {
			writeStatus(w, http.StatusBadRequest)
			return
		}
		if !validEmail(req.Email) || !validPassword(req.Password) {
			writeStatus(w, http.StatusBadRequest)
			return
		}

		session, err := s.sessions.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			s.writeCoreError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, sessionResponse{
			Status:       http.StatusOK,
			Trainer:      session.Trainer,
			AccessToken:  session.Tokens.AccessToken,
			RefreshToken: session.Tokens.RefreshToken,
		})
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := decodeBody(r, &req); err != nil {
			writeStatus(w, http.StatusBadRequest)
			return
		}
		if !jwtShaped(req.RefreshToken) {
			writeStatus(w, http.StatusBadRequest)
			return
		}

		pair, err := s.sessions.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			s.writeCoreError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, sessionResponse{
			Status:       http.StatusOK,
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trainerID, ok := trainerIDFromContext(r.Context())
		if !ok {
			writeStatus(w, http.StatusUnauthorized)
			return
		}
		if err := s.sessions.Logout(r.Context(), trainerID); err != nil {
			s.writeCoreError(w, err)
			return
		}
		writeStatus(w, http.StatusOK)
	}
}

// writeCoreError maps the core's typed failures to transport codes. The
// core never encodes HTTP semantics; this is the only place the mapping
// lives.
func (s *Server) writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, trainers.ErrDuplicateEmail):
		writeStatus(w, http.StatusConflict)
	case errors.Is(err, auth.ErrAuthFailure),
		errors.Is(err, token.ErrTokenMalformed),
		errors.Is(err, token.ErrTokenExpired):
		writeStatus(w, http.StatusUnauthorized)
	case errors.Is(err, trainers.ErrNotFound):
		writeStatus(w, http.StatusNotFound)
	case errors.Is(err, trainers.ErrTeamFull), errors.Is(err, trainers.ErrNotInTeam):
		writeStatus(w, http.StatusBadRequest)
	case errors.Is(err, trainers.ErrAlreadyInTeam):
		writeStatus(w, http.StatusConflict)
	default:
		log.Error().Err(err).Msg("internal fault")
		writeStatus(w, http.StatusInternalServerError)
	}
}
