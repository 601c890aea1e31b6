package handler

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the API under router. authed must reject
// unauthenticated requests and store the caller for the handlers.
func RegisterRoutes(router fiber.Router, auth *AuthHandler, events *EventHandler, authed fiber.Handler) {
	api := router.Group("/api")

	a := api.Group("/auth")
	a.Post("/register", auth.Register)
	a.Post("/login", auth.Login)
	a.Get("/me", authed, auth.Me)
	a.Put("/profile", authed, auth.UpdateProfile)
	a.Delete("/delete-account", authed, auth.DeleteAccount)
	a.Get("/admin/stats", authed, auth.AdminStats)

	e := api.Group("/events")
	e.Get("/", events.GetEvents)
	e.Post("/", authed, events.CreateEvent)

	// fixed paths before /:id
	e.Get("/my/created", authed, events.GetMyCreatedEvents)
	e.Get("/my/registered", authed, events.GetMyRegisteredEvents)
	e.Get("/my/stats", authed, events.GetMyStats)
	e.Delete("/cleanup/attendee-events", authed, events.CleanupAttendeeEvents)

	e.Get("/:id", events.GetEvent)
	e.Put("/:id", authed, events.UpdateEvent)
	e.Delete("/:id", authed, events.DeleteEvent)
	e.Post("/:id/register", authed, events.RegisterForEvent)
	e.Delete("/:id/register", authed, events.UnregisterFromEvent)
	e.Post("/:id/image", authed, events.UploadEventImage)
	e.Get("/:id/ticket", authed, events.GetTicket)
}
