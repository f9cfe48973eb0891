package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"villas-backend/models"
	"villas-backend/services"
	"villas-backend/utils"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"

	inProgressMessage = "This request is already being processed. Please wait a moment."

	bookingFailurePrefix = "Failed to send booking request. Error: "
	contactFailurePrefix = "Failed to send message. Error: "
)

type InquiryController struct {
	InquirySvc *services.InquiryService
}

func NewInquiryController(svc *services.InquiryService) *InquiryController {
	return &InquiryController{InquirySvc: svc}
}

// SubmitBooking (POST /api/booking)
func (ctrl *InquiryController) SubmitBooking(c *gin.Context) {
	var inq models.BookingInquiry
	if err := c.ShouldBindJSON(&inq); err != nil {
		utils.JSONMessage(c, http.StatusInternalServerError, false, bookingFailurePrefix+bindErrorMessage(err))
		return
	}

	res, err := ctrl.InquirySvc.SubmitBooking(c.Request.Context(), inq, c.GetHeader(IdempotencyKeyHeader))
	respondSubmission(c, res, err)
}

// SubmitContact (POST /api/contact)
func (ctrl *InquiryController) SubmitContact(c *gin.Context) {
	var inq models.ContactInquiry
	if err := c.ShouldBindJSON(&inq); err != nil {
		utils.JSONMessage(c, http.StatusInternalServerError, false, contactFailurePrefix+bindErrorMessage(err))
		return
	}

	res, err := ctrl.InquirySvc.SubmitContact(c.Request.Context(), inq, c.GetHeader(IdempotencyKeyHeader))
	respondSubmission(c, res, err)
}

// respondSubmission maps a result to the form contract: 200 on success, 409
// while the same idempotency key is in flight, 500 for every other failure.
func respondSubmission(c *gin.Context, res services.SubmissionResult, err error) {
	switch {
	case errors.Is(err, services.ErrSubmissionInProgress):
		utils.JSONMessage(c, http.StatusConflict, false, inProgressMessage)
	case err != nil:
		utils.JSONMessage(c, http.StatusInternalServerError, false, err.Error())
	case !res.Success:
		c.JSON(http.StatusInternalServerError, res)
	default:
		c.JSON(http.StatusOK, res)
	}
}
