package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"villas-backend/models"
	"villas-backend/pricing"
	"villas-backend/services"
	"villas-backend/utils"
)

type CatalogController struct {
	CatalogSvc *services.CatalogService
}

func NewCatalogController(svc *services.CatalogService) *CatalogController {
	return &CatalogController{CatalogSvc: svc}
}

// GetRooms (GET /api/rooms)
func (ctrl *CatalogController) GetRooms(c *gin.Context) {
	types, err := ctrl.CatalogSvc.RoomTypes()
	if err != nil {
		log.Printf("❌ DB ERROR loading room types: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load rooms")
		return
	}
	c.JSON(http.StatusOK, types)
}

// GetExperiences (GET /api/experiences)
func (ctrl *CatalogController) GetExperiences(c *gin.Context) {
	exps, err := ctrl.CatalogSvc.Experiences()
	if err != nil {
		log.Printf("❌ DB ERROR loading experiences: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load experiences")
		return
	}
	c.JSON(http.StatusOK, exps)
}

type virtualTourResponse struct {
	Slug     string             `json:"slug"`
	Title    string             `json:"title"`
	EmbedURL string             `json:"embedUrl"`
	Scenes   []models.TourScene `json:"scenes"`
}

// GetVirtualTour (GET /api/virtual-tours/:slug) returns the scene graph and
// the ready-made embed link for the 360° viewer.
func (ctrl *CatalogController) GetVirtualTour(c *gin.Context) {
	tour, err := ctrl.CatalogSvc.VirtualTour(c.Param("slug"))
	if errors.Is(err, services.ErrTourNotFound) {
		utils.JSONError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("❌ DB ERROR loading tour: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load virtual tour")
		return
	}

	scenes, err := tour.SceneList()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
		return
	}
	embed, err := tour.EmbedURL()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, virtualTourResponse{
		Slug:     tour.Slug,
		Title:    tour.Title,
		EmbedURL: embed,
		Scenes:   scenes,
	})
}

// Quote (POST /api/quote) prices a selection without submitting anything.
func (ctrl *CatalogController) Quote(c *gin.Context) {
	var sel pricing.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid selection: "+err.Error())
		return
	}

	catalog, err := ctrl.CatalogSvc.PricingCatalog()
	if err != nil {
		log.Printf("❌ DB ERROR building price list: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load prices")
		return
	}
	c.JSON(http.StatusOK, catalog.Quote(sel))
}
