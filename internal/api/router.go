package api

import (
	"net/http"

	"github.com/atelierhq/atelier/internal/api/handlers"
	"github.com/atelierhq/atelier/internal/api/middleware"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/atelierhq/atelier/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handlers.NewAuthHandler(services.Auth)
	creativeHandler := handlers.NewCreativeHandler(services.Creative, services.Review)
	bookingHandler := handlers.NewBookingHandler(services.Booking, services.Review)
	conversationHandler := handlers.NewConversationHandler(services.Conversation, services.Creative)
	notificationHandler := handlers.NewNotificationHandler(services.Notification)
	adminHandler := handlers.NewAdminHandler(services.Approval)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.Post("/reset-password/complete", authHandler.CompleteReset)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Put("/profile", authHandler.UpdateProfile)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Public catalog
		r.Route("/creatives", func(r chi.Router) {
			r.Get("/", creativeHandler.List)
			r.Get("/{id}", creativeHandler.Get)
			r.Get("/{id}/reviews", creativeHandler.Reviews)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			// Creative self-service
			r.Route("/me/creative", func(r chi.Router) {
				r.Put("/availability", creativeHandler.UpdateAvailability)
				r.Post("/services", creativeHandler.CreateService)
				r.Put("/services/{id}", creativeHandler.UpdateService)
				r.Post("/portfolio", creativeHandler.AddPortfolioItem)
			})

			r.Route("/bookings", func(r chi.Router) {
				r.Post("/", bookingHandler.Create)
				r.Get("/", bookingHandler.List)
				r.Get("/{id}", bookingHandler.Get)
				r.Post("/{id}/transition", bookingHandler.Transition)
				r.Post("/{id}/review", bookingHandler.CreateReview)
			})

			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", conversationHandler.Start)
				r.Get("/", conversationHandler.List)
				r.Get("/{id}/messages", conversationHandler.Messages)
				r.Post("/{id}/messages", conversationHandler.SendMessage)
				r.Post("/{id}/read", conversationHandler.MarkRead)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/{id}/read", notificationHandler.MarkRead)
				r.Post("/read-all", notificationHandler.MarkAllRead)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/creatives/pending", adminHandler.ListPendingCreatives)
				r.Post("/creatives/{id}/approve", adminHandler.ApproveCreative)
				r.Post("/creatives/{id}/reject", adminHandler.RejectCreative)
			})
		})

		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
