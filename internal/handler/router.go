package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterConfig collects everything the HTTP API is built from.
type RouterConfig struct {
	Ledger         Ledger
	Events         EventCatalog
	Accounts       Accounts
	Tokens         TokenParser
	Log            *zap.Logger
	AllowedOrigins []string
	Tracing        bool
}

// NewRouter builds the chi router for the JSON API.
func NewRouter(cfg RouterConfig) http.Handler {
	bookings := NewBookingHandler(cfg.Ledger, cfg.Log)
	events := NewEventHandler(cfg.Events, cfg.Log)
	accounts := NewAccountHandler(cfg.Accounts, cfg.Log)
	authenticated := Authenticate(cfg.Tokens)

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Tracing {
		r.Use(Tracing)
	}
	r.Use(Logger(cfg.Log))
	r.Use(CORS(cfg.AllowedOrigins))

	r.Get("/health", HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", accounts.Register)
		r.Post("/login", accounts.Login)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", events.ListEvents)
		r.Get("/{id}", events.GetEvent)
		r.Get("/{id}/availability", bookings.Availability)
		r.With(authenticated).Post("/{id}/bookings", bookings.Book)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", bookings.MyBookings)
		r.Delete("/{ticketID}", bookings.Cancel)
	})

	r.Route("/organizer", func(r chi.Router) {
		r.Use(authenticated, RequireRole(model.RoleOrganizer))
		r.Get("/events", events.OrganizerEvents)
		r.Post("/events", events.CreateEvent)
		r.Put("/events/{id}", events.UpdateEvent)
		r.Delete("/events/{id}", events.DeleteEvent)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticated, RequireRole(model.RoleAdmin))
		r.Get("/events", events.AdminEvents)
		r.Post("/events", events.CreateEvent)
		r.Delete("/events/{id}", events.DeleteEvent)
		r.Get("/users", accounts.ListUsers)
		r.Put("/users/{id}/role", accounts.ChangeRole)
		r.Delete("/users/{id}", accounts.DeleteUser)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	return r
}
