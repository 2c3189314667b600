package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/pkg/models"
	"ridebook/service"
)

type contactRequestBody struct {
	Name          string      `json:"name" binding:"required"`
	Email         string      `json:"email" binding:"required"`
	Phone         string      `json:"phone"`
	RequestedRole models.Role `json:"requestedRole" binding:"required"`
	Message       string      `json:"message"`
}

type approveBody struct {
	AdminNotes    string      `json:"adminNotes"`
	CreateAccount bool        `json:"createAccount"`
	Role          models.Role `json:"role"`
}

type rejectBody struct {
	AdminNotes string `json:"adminNotes"`
}

type accountBody struct {
	Email         string `json:"email" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone"`
	VehicleType   string `json:"vehicleType"`
	VehicleNumber string `json:"vehicleNumber"`
	LicenseNumber string `json:"licenseNumber"`
	Address       string `json:"address"`
}

func (h *Handler) SubmitContactRequest(c *gin.Context) {
	var body contactRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	req, err := h.svc.Provisioning().SubmitRequest(c.Request.Context(), service.SubmitInput{
		Name:          body.Name,
		Email:         body.Email,
		Phone:         body.Phone,
		RequestedRole: body.RequestedRole,
		Message:       body.Message,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListContactRequests(c *gin.Context) {
	list, err := h.svc.Provisioning().ListRequests(c.Request.Context(), models.ContactStatus(c.Query("status")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if list == nil {
		list = []*models.ContactRequest{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ApproveContactRequest(c *gin.Context) {
	var body approveBody
	if err := bindOptionalJSON(c, &body); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.svc.Provisioning().Process(c.Request.Context(), service.ProcessInput{
		RequestID:     c.Param("id"),
		Decision:      service.DecisionApprove,
		AdminNotes:    body.AdminNotes,
		CreateAccount: body.CreateAccount,
		Role:          body.Role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RejectContactRequest(c *gin.Context) {
	var body rejectBody
	if err := bindOptionalJSON(c, &body); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.svc.Provisioning().Process(c.Request.Context(), service.ProcessInput{
		RequestID:  c.Param("id"),
		Decision:   service.DecisionReject,
		AdminNotes: body.AdminNotes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CreateAccount provisions an account directly, without a contact request.
func (h *Handler) CreateAccount(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body accountBody
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}

		res, err := h.svc.Provisioning().CreateAccount(c.Request.Context(), service.AccountInput{
			Email:         body.Email,
			Name:          body.Name,
			Phone:         body.Phone,
			Role:          role,
			VehicleType:   body.VehicleType,
			VehicleNumber: body.VehicleNumber,
			LicenseNumber: body.LicenseNumber,
			Address:       body.Address,
		})
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

func (h *Handler) ListDrivers(c *gin.Context) {
	list, err := h.svc.Account().ListDrivers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if list == nil {
		list = []*models.Driver{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ListCustomers(c *gin.Context) {
	list, err := h.svc.Account().ListCustomers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if list == nil {
		list = []*models.Customer{}
	}
	c.JSON(http.StatusOK, list)
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, v interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(v)
}
