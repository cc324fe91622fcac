package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/poketrainer/trainer-api/auth"
	"github.com/poketrainer/trainer-api/internal/config"
	"github.com/poketrainer/trainer-api/server"
	"github.com/poketrainer/trainer-api/token"
	"github.com/poketrainer/trainer-api/trainers/repofake"
)

const (
	testEmail    = "ash@example.com"
	testPassword = "pikachu123"
)

type serverFixture struct {
	server *server.Server
	repo   *repofake.FakeTrainerRepo
	now    time.Time
}

func setupServer(t *testing.T) *serverFixture {
	t.Helper()

	f := &serverFixture{
		repo: repofake.NewFakeTrainerRepo(),
		now:  time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
	}

	issuer, err := token.NewIssuer("access-secret", "refresh-secret",
		token.WithNowFunc(func() time.Time { return f.now }))
	require.NoError(t, err)

	sessions, err := auth.NewSessionService(f.repo, issuer)
	require.NoError(t, err)

	f.server = server.New(config.New(), sessions, f.repo, issuer)
	return f
}

func (f *serverFixture) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

type tokensBody struct {
	Status       int             `json:"status"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	Trainer      json.RawMessage `json:"trainer"`
}

func (f *serverFixture) registerTrainer(t *testing.T) tokensBody {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName": "Ash",
		"email":     testEmail,
		"password":  testPassword,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var body tokensBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.AccessToken)
	require.NotEmpty(t, body.RefreshToken)
	return body
}

func TestRegisterEndpoint(t *testing.T) {
	f := setupServer(t)
	body := f.registerTrainer(t)

	// Secret fields must never appear in any outward payload.
	require.NotContains(t, string(body.Trainer), "password")
	require.NotContains(t, string(body.Trainer), "refreshToken")

	var trainer struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(body.Trainer, &trainer))
	require.NotEmpty(t, trainer.ID)
	require.Equal(t, testEmail, trainer.Email)
}

func TestRegisterValidation(t *testing.T) {
	f := setupServer(t)

	cases := []map[string]string{
		{"firstName": "", "email": testEmail, "password": testPassword},
		{"firstName": "Al", "email": testEmail, "password": testPassword},      // name too short
		{"firstName": "Ash", "email": "not-an-email", "password": testPassword},
		{"firstName": "Ash", "email": testEmail, "password": "short"},
	}
	for i, body := range cases {
		rec := f.do(t, http.MethodPost, "/api/v1/auth/register", "", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "case %d", i)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := setupServer(t)
	f.registerTrainer(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName": "Gary",
		"email":     testEmail,
		"password":  "eevee4ever",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	f := setupServer(t)
	f.registerTrainer(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    testEmail,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    testEmail,
		"password": "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshEndpointRotates(t *testing.T) {
	f := setupServer(t)
	registered := f.registerTrainer(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refreshToken": registered.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var rotated tokensBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	require.NotEqual(t, registered.RefreshToken, rotated.RefreshToken)

	// Reuse of the superseded token is an auth failure, not a server error.
	rec = f.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refreshToken": registered.RefreshToken,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Not JWT-shaped: rejected before the core is called.
	rec = f.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refreshToken": "nope",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	f := setupServer(t)
	registered := f.registerTrainer(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/logout", registered.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refreshToken": registered.RefreshToken,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logout is idempotent at the transport layer too.
	rec = f.do(t, http.MethodPost, "/api/v1/auth/logout", registered.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMeEndpoint(t *testing.T) {
	f := setupServer(t)
	registered := f.registerTrainer(t)

	rec := f.do(t, http.MethodGet, "/api/v1/trainers/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/trainers/me", registered.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), testEmail)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestUpdateTrainerEndpoint(t *testing.T) {
	f := setupServer(t)
	registered := f.registerTrainer(t)

	rec := f.do(t, http.MethodPatch, "/api/v1/trainers", registered.AccessToken, map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/v1/trainers", registered.AccessToken, map[string]string{
		"firstName": "Satoshi",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Satoshi")
}

func TestTeamEndpoints(t *testing.T) {
	f := setupServer(t)
	registered := f.registerTrainer(t)

	for i := 1; i <= 6; i++ {
		rec := f.do(t, http.MethodPost, "/api/v1/trainers/team/pokemon", registered.AccessToken,
			map[string]int{"pokemonId": i})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// Seventh member: team is full.
	rec := f.do(t, http.MethodPost, "/api/v1/trainers/team/pokemon", registered.AccessToken,
		map[string]int{"pokemonId": 7})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Remove one, then duplicates are still rejected.
	rec = f.do(t, http.MethodDelete, "/api/v1/trainers/team/pokemon/3", registered.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/trainers/team/pokemon", registered.AccessToken,
		map[string]int{"pokemonId": 1})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Removing a Pokémon that is not on the team.
	rec = f.do(t, http.MethodDelete, "/api/v1/trainers/team/pokemon/99", registered.AccessToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTrainerEndpoint(t *testing.T) {
	f := setupServer(t)
	registered := f.registerTrainer(t)

	rec := f.do(t, http.MethodDelete, "/api/v1/trainers", registered.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/trainers/me", registered.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTrainersEndpoint(t *testing.T) {
	f := setupServer(t)
	registered := f.registerTrainer(t)

	rec := f.do(t, http.MethodGet, "/api/v1/trainers", registered.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), testEmail)
	require.NotContains(t, rec.Body.String(), "passwordHash")
}
