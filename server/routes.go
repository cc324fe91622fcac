package server

import "net/http"

func (s *Server) initRoutes() {
	// Auth
	s.RegisterRouteHandler("POST "+RouteAuthRegister, s.apiChain(s.RegisterHandler()))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, s.apiChain(s.LoginHandler()))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, s.apiChain(s.RefreshHandler()))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, s.apiChain(s.LogoutHandler(), s.RequireAuth()))

	// Trainers (all bearer-authenticated)
	s.RegisterRouteHandler("GET "+RouteTrainers, s.apiChain(s.ListTrainersHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("GET "+RouteTrainersMe, s.apiChain(s.GetMeHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("PATCH "+RouteTrainers, s.apiChain(s.UpdateTrainerHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("DELETE "+RouteTrainers, s.apiChain(s.DeleteTrainerHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("POST "+RouteTeamPokemon, s.apiChain(s.AddPokemonHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("DELETE "+RouteTeamPokemonOne, s.apiChain(s.RemovePokemonHandler(), s.RequireAuth()))
}

// apiChain applies the ambient middleware shared by every API route, then
// any route-specific middleware.
func (s *Server) apiChain(h http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chained := []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoverMiddleware,
		s.LoggingMiddleware,
		s.SecurityHeadersMiddleware,
		s.CorsMiddleware,
		s.RateLimitMiddleware,
	}
	chained = append(chained, mw...)
	return ChainMiddleware(h, chained...)
}

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}
