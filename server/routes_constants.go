package server

const (
	RouteAuthRegister = "/api/v1/auth/register"
	RouteAuthLogin    = "/api/v1/auth/login"
	RouteAuthRefresh  = "/api/v1/auth/refresh-token"
	RouteAuthLogout   = "/api/v1/auth/logout"

	RouteTrainers       = "/api/v1/trainers"
	RouteTrainersMe     = "/api/v1/trainers/me"
	RouteTeamPokemon    = "/api/v1/trainers/team/pokemon"
	RouteTeamPokemonOne = "/api/v1/trainers/team/pokemon/{pokemonId}"
)
