package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"villas-backend/metrics"
	"villas-backend/models"
	"villas-backend/pricing"
)

// CatalogService reads the seeded reference data behind the marketing pages.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

func (s *CatalogService) RoomTypes() ([]models.RoomType, error) {
	var types []models.RoomType
	err := s.DB.Order("sort_order asc, id asc").Find(&types).Error
	s.observePool()
	return types, err
}

func (s *CatalogService) Experiences() ([]models.Experience, error) {
	var exps []models.Experience
	err := s.DB.Order("sort_order asc, id asc").Find(&exps).Error
	s.observePool()
	return exps, err
}

// VirtualTour returns the tour stored under slug or ErrTourNotFound.
func (s *CatalogService) VirtualTour(slug string) (models.VirtualTour, error) {
	var tour models.VirtualTour
	err := s.DB.Where("slug = ?", slug).First(&tour).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.VirtualTour{}, ErrTourNotFound
	}
	if err != nil {
		return models.VirtualTour{}, fmt.Errorf("load tour %q: %w", slug, err)
	}
	return tour, nil
}

// PricingCatalog builds the price list from the stored rows. Missing room
// rates and an empty experience table fall back to the published defaults.
func (s *CatalogService) PricingCatalog() (*pricing.Catalog, error) {
	def := pricing.DefaultCatalog()

	types, err := s.RoomTypes()
	if err != nil {
		return nil, err
	}
	exps, err := s.Experiences()
	if err != nil {
		return nil, err
	}

	rates := make(map[pricing.RoomCategory]float64, len(pricing.Categories))
	for _, cat := range pricing.Categories {
		rates[cat] = def.Rate(cat)
	}
	for _, rt := range types {
		cat := pricing.RoomCategory(rt.Key)
		if rt.Bookable && cat.Valid() {
			rates[cat] = rt.NightlyRate
		}
	}

	if len(exps) == 0 {
		return pricing.NewCatalog(rates, def.Experiences()), nil
	}
	list := make([]models.SelectedExperience, 0, len(exps)+1)
	list = append(list, models.SelectedExperience{Name: pricing.NoExperience, Price: 0})
	for _, e := range exps {
		list = append(list, models.SelectedExperience{Name: e.Name, Price: e.PricePerPerson})
	}
	return pricing.NewCatalog(rates, list), nil
}

func (s *CatalogService) observePool() {
	if sqlDB, err := s.DB.DB(); err == nil {
		metrics.UpdateDBConnections(sqlDB.Stats())
	}
}
