package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/pkg/models"
	"ridebook/service"
)

func (h *Handler) ListRides(c *gin.Context) {
	filter := models.RideFilter{
		Status:     models.RideStatus(c.Query("status")),
		CustomerID: c.Query("customerId"),
		DriverID:   c.Query("driverId"),
	}

	rides, err := h.svc.Ride().List(c.Request.Context(), requester(c), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if rides == nil {
		rides = []*models.Ride{}
	}
	c.JSON(http.StatusOK, rides)
}

func (h *Handler) CreateRide(c *gin.Context) {
	var in service.CreateRideInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	ride, err := h.svc.Ride().Create(c.Request.Context(), requester(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ride)
}

func (h *Handler) GetRide(c *gin.Context) {
	ride, err := h.svc.Ride().Get(c.Request.Context(), requester(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

func (h *Handler) UpdateRide(c *gin.Context) {
	patch, err := decodeRidePatch(c.Request.Body)
	if err != nil {
		badRequest(c, err)
		return
	}

	ride, err := h.svc.Ride().Update(c.Request.Context(), requester(c), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

func (h *Handler) CancelRide(c *gin.Context) {
	ride, err := h.svc.Ride().Cancel(c.Request.Context(), requester(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

// decodeRidePatch rejects keys that are not ride fields, so the permission rules
// see every key the caller sent.
func decodeRidePatch(body io.Reader) (models.RidePatch, error) {
	var patch models.RidePatch
	if body == nil {
		return patch, errors.New("request body is required")
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		if errors.Is(err, io.EOF) {
			return patch, errors.New("request body is required")
		}
		return patch, fmt.Errorf("invalid ride update: %w", err)
	}
	return patch, nil
}
