package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches", handler.ListUpcomingMatches)
	mux.HandleFunc("POST /v1/matches", handler.ScheduleMatch)
	mux.HandleFunc("GET /v1/matches/{teamA}/{teamB}", handler.GetMatch)
	mux.HandleFunc("PUT /v1/matches/{teamA}/{teamB}", handler.RescheduleMatch)
	mux.HandleFunc("DELETE /v1/matches/{teamA}/{teamB}", handler.CancelMatch)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/purge-expired", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunPurgeExpiredJob)))
}
