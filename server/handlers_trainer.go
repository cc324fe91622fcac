package server

import (
	"encoding/json"
	"net/http"

	"github.com/poketrainer/trainer-api/auth"
	"github.com/poketrainer/trainer-api/trainers"
)

type updateTrainerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type addPokemonRequest struct {
	PokemonID json.Number `json:"pokemonId"`
}

func (s *Server) ListTrainersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := s.repo.List(r.Context())
		if err != nil {
			s.writeCoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"trainers": all})
	}
}

func (s *Server) GetMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trainerID, _ := trainerIDFromContext(r.Context())
		trainer, err := s.repo.GetByID(r.Context(), trainerID)
		if err != nil {
			s.writeCoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, trainer)
	}
}

func (s *Server) UpdateTrainerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trainerID, _ := trainerIDFromContext(r.Context())

		var req updateTrainerRequest
		if err := decodeBody(r, &req); err != nil {
			writeStatus(w, http.StatusBadRequest)
			return
		}
		if req.FirstName == "" && req.LastName == "" && req.Email == "" && req.Password == "" {
			writeStatus(w, http.StatusBadRequest)
			return
		}
		if req.FirstName != "" && !validName(req.FirstName) {
			writeStatus(w, http.StatusBadRequest)
			return
		}
		if req.LastName != "" && !validName(req.LastName) {
			writeStatus(w, http.StatusBadRequest)
			return
		}
		if req.Email != "" && !validEmail(req.Email) {
			writeStatus(w, http.StatusBadRequest)
			return
		}
		if req.Password != "" && !validPassword(req.Password) {
			writeStatus(w, http.StatusBadRequest)
			return
		}

		trainer, err := s.repo.GetByID(r.Context(), trainerID)
		if err != nil {
			s.writeCoreError(w, err)
			return
		}

		if req.FirstName != "" {
			trainer.FirstName = req.FirstName
		}
		if req.LastName != "" {
			trainer.LastName = req.LastName
		}
		if req.Email != "" {
			trainer.Email = auth.NormalizeEmail(req.Email)
		}
		if req.Password != "" {
			hash, err := trainers.HashPassword(req.Password)
			if err != nil {
				s.writeCoreError(w, err)
				return
			}
			trainer.PasswordHash = hash
		}

		updated, err := s.repo.Update(r.Context(), trainer)
		if err != nil {
			s.writeCoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"trainer": updated})
	}
}

func (s *Server) DeleteTrainerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trainerID, _ := trainerIDFromContext(r.Context())
		if err := s.repo.Delete(r.Context(), trainerID); err != nil {
			s.writeCoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) AddPokemonHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trainerID, _ := trainerIDFromContext(r.Context())

		var req addPokemonRequest
		if err := decodeBody(r, &req); err != nil {
			writeStatus(w, http.StatusBadRequest)
			return
		}
		pokemonID := req.PokemonID.String()
		if !numericID(pokemonID) {
			writeStatus(w, http.StatusBadRequest)
			return
		}

		trainer, err := s.repo.GetByID(r.Context(), trainerID)
		if err != nil {
			s.writeCoreError(w, err)
			return
		}
		if err := trainer.AddTeamMember(pokemonID); err != nil {
			s.writeCoreError(w, err)
			return
		}
		if _, err := s.repo.Update(r.Context(), trainer); err != nil {
			s.writeCoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"team": trainer.Team})
	}
}

func (s *Server) RemovePokemonHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trainerID, _ := trainerIDFromContext(r.Context())

		pokemonID := r.PathValue("pokemonId")
		if !numericID(pokemonID) {
			writeStatus(w, http.StatusBadRequest)
			return
		}

		trainer, err := s.repo.GetByID(r.Context(), trainerID)
		if err != nil {
			s.writeCoreError(w, err)
			return
		}
		if err := trainer.RemoveTeamMember(pokemonID); err != nil {
			s.writeCoreError(w, err)
			return
		}
		if _, err := s.repo.Update(r.Context(), trainer); err != nil {
			s.writeCoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"team": trainer.Team})
	}
}
