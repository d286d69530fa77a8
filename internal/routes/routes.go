package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Health  *handlers.HealthHandler
	Payment *handlers.PaymentHandler
	Listing *handlers.ListingHandler
	Job     *handlers.JobHandler
	Admin   *handlers.AdminHandler
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	profiles repository.ProfileRepository,
	h Handlers,
	m *metrics.Collector,
) {
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)
	api.Get("/listings/featured", h.Listing.Featured)

	// Job endpoints use the scheduler secret instead of a JWT
	jobs := api.Group("/jobs", middleware.CronSecret(cfg))
	jobs.Get("/expiry-reconcile", h.Job.ExpiryReconcile)
	jobs.Get("/pending-sweep", h.Job.PendingSweep)

	// Payment verification is stricter: 10 req/min per IP
	payments := api.Group("/payments", middleware.JWTProtected(cfg), middleware.TenantMiddleware())
	payments.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	payments.Post("/boost", h.Payment.VerifyBoost)
	payments.Post("/subscription/verify", h.Payment.VerifySubscription)

	api.Post("/listings/activate", middleware.JWTProtected(cfg), middleware.TenantMiddleware(), h.Listing.Activate)
	api.Get("/subscription/status", middleware.JWTProtected(cfg), middleware.TenantMiddleware(), h.Listing.SubscriptionStatus)

	admin := api.Group("/admin", middleware.AdminJWT(cfg), middleware.AdminRequired(profiles, cfg))
	admin.Put("/agents/:id/verification", h.Admin.SetVerification)
	admin.Put("/listings/:id/reject", h.Admin.RejectListing)
	admin.Get("/transactions", h.Admin.ListTransactions)
}
