/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the companion app

ROUTE GROUPS:
  /api/dispenser/*   Device and household endpoints
  /api/admin/*       Admin operations
  /api/scenarios/*   Demo scenarios (dev only)

SECURITY NOTE:
  No authentication middleware; session security is handled upstream of
  this service.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Device and household routes
		r.Route("/dispenser", func(r chi.Router) {
			r.Post("/verify-uid", h.VerifyUID)
			r.Post("/confirm", h.ConfirmIntake)
			r.Post("/dispense-list", h.DispenseList)
			r.Post("/dispense-result", h.DispenseResult)

			r.Get("/medications/{groupID}", h.MedicationList)
			r.Get("/schedules/group/{groupID}", h.GroupSchedule)
			r.Get("/schedules/member/{memberID}", h.MemberSchedule)
			r.Get("/schedules/today/{deviceUID}", h.TodayOverview)
			r.Get("/machine-status/{deviceUID}", h.MachineStatus)
			r.Get("/members/by-device/{deviceUID}", h.MembersByDevice)
			r.Get("/slots/status/{deviceUID}", h.SlotStatus)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/reset-taken", h.ResetTaken)
		})

		// Scenario routes (dev/demo only)
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
