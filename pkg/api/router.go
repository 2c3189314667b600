package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/pkg/logger"
	"ridebook/pkg/models"
	"ridebook/service"
)

type Handler struct {
	svc service.IServiceManager
	log logger.ILogger
}

func NewHandler(svc service.IServiceManager, log logger.ILogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// NewRouter builds the HTTP surface. Ride routes are shared between role groups;
// the ride service scopes every call to the requester.
func NewRouter(svc service.IServiceManager, log logger.ILogger) *gin.Engine {
	h := NewHandler(svc, log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(h.accessLog())
	r.Use(cors())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/login", h.Login)
		api.POST("/contact-requests", h.SubmitContactRequest)

		authed := api.Group("", h.authenticate())
		authed.POST("/auth/logout", h.Logout)
		authed.GET("/auth/me", h.Me)
		authed.GET("/notifications", h.ListNotifications)
		authed.POST("/notifications/:id/read", h.MarkNotificationRead)

		admin := authed.Group("/admin", requireRole(models.RoleAdmin))
		{
			admin.GET("/contact-requests", h.ListContactRequests)
			admin.POST("/contact-requests/:id/approve", h.ApproveContactRequest)
			admin.POST("/contact-requests/:id/reject", h.RejectContactRequest)

			admin.GET("/customers", h.ListCustomers)
			admin.POST("/customers", h.CreateAccount(models.RoleCustomer))
			admin.GET("/drivers", h.ListDrivers)
			admin.POST("/drivers", h.CreateAccount(models.RoleDriver))

			admin.GET("/rides", h.ListRides)
			admin.POST("/rides", h.CreateRide)
			admin.GET("/rides/:id", h.GetRide)
			admin.PATCH("/rides/:id", h.UpdateRide)
			admin.POST("/rides/:id/cancel", h.CancelRide)
		}

		driver := authed.Group("/driver", requireRole(models.RoleDriver))
		{
			driver.GET("/rides", h.ListRides)
			driver.GET("/rides/:id", h.GetRide)
			driver.PATCH("/rides/:id", h.UpdateRide)
		}

		customer := authed.Group("/customer", requireRole(models.RoleCustomer))
		{
			customer.GET("/rides", h.ListRides)
			customer.POST("/rides", h.CreateRide)
			customer.GET("/rides/:id", h.GetRide)
			customer.PATCH("/rides/:id", h.UpdateRide)
			customer.POST("/rides/:id/cancel", h.CancelRide)
		}
	}

	return r
}
