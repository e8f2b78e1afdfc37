package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/zzzzzahd/draft-play-interno/handlers"
	"github.com/zzzzzahd/draft-play-interno/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	babaHandler *handlers.BabaHandler,
	confirmationHandler *handlers.ConfirmationHandler,
	drawHandler *handlers.DrawHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	// Публичные маршруты
	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	// WebSocket-комната баба; live-события подтверждений и матчей.
	router.Get("/ws/babas/{babaID}", webSocketHandler.ServeWs)

	// Всё остальное требует токена.
	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/auth/me", authHandler.Me)

		r.Route("/babas", func(r chi.Router) {
			r.Post("/", babaHandler.Create)
			r.Get("/", babaHandler.ListMine)
			r.Post("/join", babaHandler.Join)

			r.Route("/{babaID}", func(r chi.Router) {
				r.Get("/", babaHandler.Get)
				r.Put("/", babaHandler.Update)
				r.Delete("/", babaHandler.Delete)

				r.Post("/players", babaHandler.AddPlayer)
				r.Get("/players", babaHandler.ListPlayers)
				r.Get("/rankings", babaHandler.Rankings)

				r.Post("/crest", babaHandler.UploadCrest)
				r.Delete("/crest", babaHandler.RemoveCrest)

				// Подтверждения присутствия на сегодня
				r.Post("/confirmations", confirmationHandler.Confirm)
				r.Delete("/confirmations", confirmationHandler.Cancel)
				r.Get("/confirmations", confirmationHandler.ListToday)
				r.Get("/confirmations/window", confirmationHandler.Window)

				// Жеребьёвка дня
				r.Get("/draw", drawHandler.GetToday)
				r.Post("/draw/redraw", matchHandler.Redraw)

				// Живая сессия и матчи
				r.Post("/session", matchHandler.StartSession)
				r.Get("/session", matchHandler.GetSession)
				r.Post("/session/goal", matchHandler.Goal)
				r.Post("/session/pause", matchHandler.PauseSession)
				r.Post("/session/resume", matchHandler.ResumeSession)
				r.Post("/session/end-match", matchHandler.ForceEndMatch)
				r.Delete("/session", matchHandler.EndSession)
				r.Get("/matches", matchHandler.ListToday)
			})
		})
	})
}
