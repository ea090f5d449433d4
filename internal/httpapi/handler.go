// Package httpapi exposes the job lifecycle engine over HTTP. Handlers bind
// and validate input, call one engine operation, and translate typed errors
// to statuses; no business rules live here.
package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jubaworks/juba/internal/engine"
	appmw "github.com/jubaworks/juba/internal/middleware"
	"github.com/jubaworks/juba/internal/payments"
	"github.com/jubaworks/juba/internal/profilesvc"
	"github.com/jubaworks/juba/internal/store"
)

type Handler struct {
	Jobs        *engine.JobStore
	Apps        *engine.ApplicationRegistry
	Ledger      *engine.TransactionLedger
	Coordinator *engine.MatchingCoordinator
	Payments    payments.Processor
	Store       store.Store
	Validate    *validator.Validate
	Log         zerolog.Logger
}

func NewHandler(jobs *engine.JobStore, apps *engine.ApplicationRegistry, ledger *engine.TransactionLedger, coord *engine.MatchingCoordinator, proc payments.Processor, st store.Store, log zerolog.Logger) *Handler {
	return &Handler{
		Jobs:        jobs,
		Apps:        apps,
		Ledger:      ledger,
		Coordinator: coord,
		Payments:    proc,
		Store:       st,
		Validate:    validator.New(),
		Log:         log,
	}
}

// AuthHandler is the slice of internal/auth the router needs.
type AuthHandler interface {
	Signup(echo.Context) error
	Login(echo.Context) error
	Me(echo.Context) error
	BootstrapAdmin(echo.Context) error
}

// Register wires every route onto e.
func (h *Handler) Register(e *echo.Echo, authH AuthHandler, profiles *profilesvc.Handler, jwtSecret string) {
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/auth/signup", authH.Signup)
	e.POST("/auth/login", authH.Login)
	e.POST("/auth/bootstrap-admin", authH.BootstrapAdmin)

	// Public discovery
	e.GET("/jobs", h.ListJobs)
	e.GET("/jobs/:id", h.GetJob)

	g := e.Group("")
	g.Use(appmw.JWT(jwtSecret))

	g.GET("/auth/me", authH.Me)

	g.POST("/jobs", h.CreateJob, appmw.RequireRoles("client", "admin"))
	g.GET("/jobs/mine", h.MyJobs)
	g.POST("/jobs/:id/apply", h.Apply)
	g.GET("/jobs/:id/applications", h.ListApplications)
	g.GET("/applications/mine", h.MyApplications)
	g.POST("/jobs/:id/select/:freelancerId", h.SelectFreelancer)
	g.POST("/jobs/:id/payment", h.ProcessPayment)
	g.POST("/jobs/:id/complete", h.CompleteJob)
	g.POST("/jobs/:id/cancel", h.CancelJob)

	g.POST("/profile", profiles.Submit)
	g.GET("/profile", profiles.Mine)

	adminGroup := e.Group("/admin")
	adminGroup.Use(appmw.JWT(jwtSecret))
	adminGroup.Use(appmw.RequireRoles("admin"))
	adminGroup.POST("/profiles/:user_id/approve", profiles.Approve)
	adminGroup.POST("/profiles/:user_id/reject", profiles.Reject)
	adminGroup.GET("/transactions", h.AdminTransactions)
	adminGroup.POST("/jobs/:id/refund", h.AdminRefund)
	adminGroup.POST("/jobs/:id/dispute", h.AdminDispute)
	adminGroup.POST("/jobs/:id/cancel", h.AdminCancelJob)
	adminGroup.GET("/stats", h.AdminStats)
}
