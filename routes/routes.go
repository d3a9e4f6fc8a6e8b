package routes

import (
	"github.com/TeamLinkup/matchmaking-system/handlers"
	"github.com/TeamLinkup/matchmaking-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	teamHandler *handlers.TeamHandler,
	offerHandler *handlers.OfferHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/auth/me", authHandler.Me)

		r.Route("/teams/my", func(r chi.Router) {
			r.Get("/", teamHandler.GetMyTeam)
			r.Put("/", teamHandler.SaveMyTeam)
			r.Post("/logo", teamHandler.UploadLogo)
		})

		r.Route("/offers", func(r chi.Router) {
			r.Post("/", offerHandler.CreateOffer)
			r.Get("/my", offerHandler.GetMyOffers)
			r.Get("/search", offerHandler.SearchOffers)
			r.Post("/{offerID}/accept", offerHandler.AcceptOffer)
			r.Delete("/{offerID}", offerHandler.CancelOffer)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/confirmed", matchHandler.GetConfirmedMatches)
			r.Get("/cancelled", matchHandler.GetCancelledMatches)
			r.Post("/{matchID}/cancel", matchHandler.CancelMatch)
			r.Post("/reminders/sweep", matchHandler.TriggerReminderSweep)
		})
	})

	// Доска предложений (websocket) не требует токена.
	router.Get("/ws/offers/{sport}", webSocketHandler.ServeWs)
}
