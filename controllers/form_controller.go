package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"villas-backend/pricing"
	"villas-backend/services"
	"villas-backend/utils"
)

// bookingForm is the url-encoded booking form. Guests stays a string so an
// unparsable value falls back to one guest instead of failing the bind.
type bookingForm struct {
	Name        string   `form:"name" binding:"required"`
	Email       string   `form:"email" binding:"required"`
	Phone       string   `form:"phone"`
	Country     string   `form:"country"`
	ArrivalDate string   `form:"arrivalDate"`
	Guests      string   `form:"guests"`
	DoubleRoom  int      `form:"doubleRoom"`
	TwinRoom    int      `form:"twinRoom"`
	TripleRoom  int      `form:"tripleRoom"`
	Experiences []string `form:"experiences"`
	Message     string   `form:"message"`

	IdempotencyKey string `form:"idempotencyKey"`
}

// FormController accepts plain form posts and runs them through a pricing
// draft before handing them to the inquiry service.
type FormController struct {
	InquirySvc *services.InquiryService
	CatalogSvc *services.CatalogService
}

func NewFormController(inquiries *services.InquiryService, catalog *services.CatalogService) *FormController {
	return &FormController{InquirySvc: inquiries, CatalogSvc: catalog}
}

// SubmitBookingForm (POST /forms/booking)
func (ctrl *FormController) SubmitBookingForm(c *gin.Context) {
	var form bookingForm
	if err := c.ShouldBind(&form); err != nil {
		utils.JSONMessage(c, http.StatusInternalServerError, false, bookingFailurePrefix+bindErrorMessage(err))
		return
	}

	catalog, err := ctrl.CatalogSvc.PricingCatalog()
	if err != nil {
		log.Printf("❌ DB ERROR building price list: %v", err)
		utils.JSONMessage(c, http.StatusInternalServerError, false, "Failed to load prices")
		return
	}

	draft := pricing.NewDraft(catalog)
	draft.Name = form.Name
	draft.Email = form.Email
	draft.Phone = form.Phone
	draft.Country = form.Country
	draft.ArrivalDate = form.ArrivalDate
	draft.Message = form.Message
	draft.SetGuests(pricing.ParseGuests(form.Guests))
	draft.AdjustRoom(pricing.DoubleRoom, form.DoubleRoom)
	draft.AdjustRoom(pricing.TwinRoom, form.TwinRoom)
	draft.AdjustRoom(pricing.TripleRoom, form.TripleRoom)
	for _, name := range form.Experiences {
		draft.AddExperience(name)
	}

	if err := draft.Validate(); errors.Is(err, pricing.ErrNoRoomSelected) {
		utils.JSONMessage(c, http.StatusInternalServerError, false, pricing.NoRoomSelectedMessage)
		return
	}

	key := form.IdempotencyKey
	if key == "" {
		key = c.GetHeader(IdempotencyKeyHeader)
	}
	res, err := ctrl.InquirySvc.SubmitBooking(c.Request.Context(), draft.Inquiry(), key)
	respondSubmission(c, res, err)
}
