package handlers

import (
	"errors"
	"net/http"

	"workhive/middleware"
	"workhive/models"
	"workhive/services/booking"
	"workhive/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// Reserve handles POST /api/bookings/reserve.
func (h *BookingHandler) Reserve(c *gin.Context) {
	var req models.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Service.Reserve(c.Request.Context(), middleware.CallerID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

// Checkout handles POST /api/bookings/checkout.
func (h *BookingHandler) Checkout(c *gin.Context) {
	var input struct {
		BookingID string `json:"booking_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "booking_id required", err.Error())
		return
	}

	result, err := h.Service.Checkout(c.Request.Context(), input.BookingID, middleware.CallerID(c), c.GetHeader("Origin"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Approve handles POST /api/bookings/approve: the host approves a pending
// booking, capturing the held payment.
func (h *BookingHandler) Approve(c *gin.Context) {
	var input struct {
		BookingID string `json:"booking_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "booking_id required", err.Error())
		return
	}

	if err := h.Service.Approve(c.Request.Context(), input.BookingID, middleware.CallerID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking_id": input.BookingID})
}

// Reject handles POST /api/bookings/reject: the host declines a pending
// booking, releasing the held funds.
func (h *BookingHandler) Reject(c *gin.Context) {
	var input struct {
		BookingID string `json:"booking_id" binding:"required"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "booking_id required", err.Error())
		return
	}

	if err := h.Service.Reject(c.Request.Context(), input.BookingID, middleware.CallerID(c), input.Reason); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking_id": input.BookingID})
}

// Cancel handles POST /api/bookings/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	var input struct {
		BookingID string `json:"booking_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "booking_id required", err.Error())
		return
	}

	result, err := h.Service.Cancel(c.Request.Context(), input.BookingID, middleware.CallerID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.Service.Get(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// respondError maps booking error codes onto HTTP statuses.
func (h *BookingHandler) respondError(c *gin.Context, err error) {
	var be *booking.Error
	if errors.As(err, &be) {
		c.JSON(statusForCode(be.Code), gin.H{"error": be.Message})
		return
	}
	h.Logger.Error("unexpected booking error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func statusForCode(code string) int {
	switch code {
	case booking.CodeUnauthorized:
		return http.StatusUnauthorized
	case booking.CodeForbidden:
		return http.StatusForbidden
	case booking.CodeNotFound:
		return http.StatusNotFound
	case booking.CodeInvalidState:
		return http.StatusBadRequest
	case booking.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
