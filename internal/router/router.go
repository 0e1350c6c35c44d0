package router

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"studymate-backend/internal/handlers"
	"studymate-backend/internal/middleware"
	"studymate-backend/internal/websocket"
)

func New(
	sessionAuth *middleware.SessionAuth,
	authLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	studySessionHandler *handlers.StudySessionHandler,
	quizHandler *handlers.QuizHandler,
	quizGenerationHandler *handlers.QuizGenerationHandler,
	reminderHandler *handlers.ReminderHandler,
	activityHandler *handlers.ActivityHandler,
	tutorHandler *handlers.TutorHandler,
	wsHub *websocket.Hub,
	corsOrigins []string,
	logger *log.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  allowOrigin(corsOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Auth Routes ────
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter.Middleware).Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(sessionAuth.Middleware)
				r.Get("/me", authHandler.Me)
			})
		})

		// ──── Authenticated Routes ────
		r.Group(func(r chi.Router) {
			r.Use(sessionAuth.Middleware)

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", dashboardHandler.Stats)
				r.Get("/recent-score", dashboardHandler.RecentScore)
			})

			r.Route("/study-sessions", func(r chi.Router) {
				r.Get("/", studySessionHandler.List)
				r.Post("/", studySessionHandler.Create)
			})

			r.Route("/quizzes", func(r chi.Router) {
				r.Get("/", quizHandler.List)
				r.Post("/", quizHandler.Create)
				r.Post("/generate", quizGenerationHandler.Generate)
				r.Get("/{id}", quizHandler.Get)
				r.Put("/{id}/complete", quizHandler.Complete)
			})

			r.Route("/reminders", func(r chi.Router) {
				r.Get("/", reminderHandler.List)
				r.Post("/", reminderHandler.Create)
				r.Put("/{id}/complete", reminderHandler.Complete)
				r.Delete("/{id}", reminderHandler.Delete)
			})

			r.Get("/activity", activityHandler.List)

			r.Route("/ai-tutor", func(r chi.Router) {
				r.Post("/ask", tutorHandler.Ask)
				r.Post("/pdf", tutorHandler.AskWithMaterial)
			})
		})

		// ──── WebSocket ────
		// The hub authenticates itself so it can also accept a token query parameter.
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}

// allowOrigin matches the configured origins exactly; "*" reflects any
// origin, which credentialed CORS requires instead of a literal wildcard.
func allowOrigin(origins []string) func(r *http.Request, origin string) bool {
	allowed := make(map[string]struct{}, len(origins))
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
			continue
		}
		allowed[o] = struct{}{}
	}
	return func(r *http.Request, origin string) bool {
		if wildcard {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
