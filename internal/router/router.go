package router

import (
	"net/http"
	"strings"
	"time"

	"lcfauto/config"
	"lcfauto/internal/handler"
	"lcfauto/internal/middleware"
	"lcfauto/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	GoogleOAuth  *handler.GoogleOAuthHandler
	Me           *handler.MeHandler
	Loyalty      *handler.LoyaltyHandler
	Appointment  *handler.AppointmentHandler
	Vehicle      *handler.VehicleHandler
	Billing      *handler.BillingHandler
	Notification *handler.NotificationHandler
	Admin        *handler.AdminHandler
}

// Setup wires every route group onto a fresh engine.
func Setup(cfg *config.Config, h Handlers, hub *ws.Hub) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	setupCORS(r, cfg.CORS.AllowedOrigins)

	authLimiter := middleware.NewInMemoryRateLimiter(10, time.Minute)
	apiLimiter := middleware.NewInMemoryRateLimiter(120, time.Minute)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ws_clients": hub.ClientCount()})
	})

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(apiLimiter))

	// Public surface: auth, vehicle browsing, shared quote links.
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(authLimiter))
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.GET("/google", h.GoogleOAuth.Redirect)
		auth.GET("/google/callback", h.GoogleOAuth.Callback)
		auth.POST("/google/token", h.GoogleOAuth.Token)
	}
	api.GET("/vehicles", h.Vehicle.List)
	api.GET("/vehicles/:id", h.Vehicle.Get)
	api.GET("/quotes/shared/:token", h.Billing.GetQuoteByToken)

	// Authenticated customer surface.
	me := api.Group("/me")
	me.Use(authMw)
	{
		me.GET("", h.Me.GetProfile)
		me.PATCH("", h.Me.UpdateProfile)
		me.POST("/fcm-token", h.Me.RegisterFCMToken)
		me.POST("/logout", h.Auth.Logout)
		me.POST("/change-password", h.Auth.ChangePassword)

		me.GET("/appointments", h.Appointment.ListMine)
		me.POST("/appointments", h.Appointment.Create)
		me.POST("/appointments/:id/cancel", h.Appointment.Cancel)

		me.GET("/loyalty/balance", h.Loyalty.GetBalance)
		me.GET("/loyalty/history", h.Loyalty.GetHistory)
		me.POST("/loyalty/redeem", h.Loyalty.Redeem)

		me.GET("/quotes", h.Billing.ListMyQuotes)
		me.POST("/quotes/:id/respond", h.Billing.RespondToQuote)
		me.GET("/invoices", h.Billing.ListMyInvoices)

		me.GET("/notifications", h.Notification.List)
		me.POST("/notifications/:id/read", h.Notification.MarkRead)
		me.GET("/notifications/unread", h.Notification.UnreadCount)
	}

	// Staff surface: mechanics and admins run the workshop queue.
	staff := api.Group("/staff")
	staff.Use(authMw, middleware.StaffRequired())
	{
		staff.GET("/appointments", h.Appointment.List)
		staff.GET("/appointments/:id", h.Appointment.Get)
		staff.POST("/appointments/:id/confirm", h.Appointment.Confirm)
		staff.POST("/appointments/:id/complete", h.Appointment.Complete)
	}

	// Admin surface.
	admin := api.Group("/admin")
	admin.Use(authMw, middleware.AdminRequired())
	{
		admin.GET("/dashboard", h.Admin.Dashboard)
		admin.GET("/revenue", h.Admin.Revenue)
		admin.GET("/stats/signups", h.Admin.Signups)
		admin.GET("/stats/appointments", h.Admin.AppointmentVolume)
		admin.GET("/audit-logs", h.Admin.AuditLogs)

		admin.GET("/users", h.Admin.ListUsers)
		admin.GET("/users/:id", h.Admin.GetUser)
		admin.PATCH("/users/:id/role", h.Admin.UpdateUserRole)
		admin.GET("/users/:id/loyalty", h.Loyalty.GetUserLedger)

		admin.GET("/loyalty/settings", h.Loyalty.GetSettings)
		admin.PATCH("/loyalty/settings", h.Loyalty.UpdateSettings)
		admin.POST("/loyalty/adjust", h.Loyalty.Adjust)
		admin.GET("/loyalty/drift", h.Loyalty.GetDrift)

		admin.POST("/vehicles", h.Vehicle.Create)
		admin.PATCH("/vehicles/:id", h.Vehicle.Update)
		admin.DELETE("/vehicles/:id", h.Vehicle.Delete)
		admin.POST("/vehicles/:id/images", h.Vehicle.UploadImage)
		admin.DELETE("/vehicles/:id/images/:imageId", h.Vehicle.DeleteImage)

		admin.POST("/quotes", h.Billing.CreateQuote)
		admin.GET("/quotes", h.Billing.ListQuotes)
		admin.GET("/quotes/:id", h.Billing.GetQuote)
		admin.POST("/quotes/:id/send", h.Billing.SendQuote)

		admin.POST("/invoices", h.Billing.CreateInvoice)
		admin.GET("/invoices", h.Billing.ListInvoices)
		admin.GET("/invoices/:id", h.Billing.GetInvoice)
		admin.POST("/invoices/:id/issue", h.Billing.IssueInvoice)
		admin.POST("/invoices/:id/pay", h.Billing.PayInvoice)
		admin.POST("/invoices/:id/void", h.Billing.VoidInvoice)
	}

	r.GET("/ws/notifications", ws.UpgradeNotificationWS(&cfg.JWT, hub))

	return r
}

func setupCORS(r *gin.Engine, allowedOrigins string) {
	origins := []string{"http://localhost:3000"}
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
