// Package pricing keeps a booking draft consistent with its price estimate.
package pricing

import "villas-backend/models"

// RoomCategory identifies a bookable room type by the key the booking form uses.
type RoomCategory string

const (
	DoubleRoom RoomCategory = "doubleRoom"
	TwinRoom   RoomCategory = "twinRoom"
	TripleRoom RoomCategory = "tripleRoom"
)

// Categories lists the bookable categories in display order.
var Categories = []RoomCategory{DoubleRoom, TwinRoom, TripleRoom}

// NoExperience is the placeholder entry of the experience picker.
const NoExperience = "None"

// DisplayName returns the label used in summaries, e.g. "Double Room".
func (c RoomCategory) DisplayName() string {
	switch c {
	case DoubleRoom:
		return "Double Room"
	case TwinRoom:
		return "Twin Room"
	case TripleRoom:
		return "Triple Room"
	}
	return string(c)
}

// Valid reports whether c is one of the bookable categories.
func (c RoomCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Count returns the units requested for c in v.
func Count(v models.Villas, c RoomCategory) int {
	switch c {
	case DoubleRoom:
		return v.DoubleRoom
	case TwinRoom:
		return v.TwinRoom
	case TripleRoom:
		return v.TripleRoom
	}
	return 0
}

// Catalog holds the fixed nightly rates and the experience price list.
type Catalog struct {
	rates       map[RoomCategory]float64
	experiences []models.SelectedExperience
}

// NewCatalog builds a catalog. Rates for unknown categories are ignored.
func NewCatalog(rates map[RoomCategory]float64, experiences []models.SelectedExperience) *Catalog {
	c := &Catalog{rates: make(map[RoomCategory]float64, len(Categories))}
	for cat, rate := range rates {
		if cat.Valid() {
			c.rates[cat] = rate
		}
	}
	c.experiences = append(c.experiences, experiences...)
	return c
}

// DefaultCatalog returns the resort's published prices in JOD.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		map[RoomCategory]float64{
			DoubleRoom: 250,
			TwinRoom:   250,
			TripleRoom: 320,
		},
		[]models.SelectedExperience{
			{Name: NoExperience, Price: 0},
			{Name: "Camel Riding", Price: 45},
			{Name: "Full Day Jeep Tour", Price: 150},
			{Name: "Horse Riding", Price: 100},
			{Name: "Hot Air Balloon", Price: 200},
			{Name: "Sandboarding", Price: 50},
			{Name: "Half Day Jeep Tour", Price: 80},
		},
	)
}

// Rate returns the nightly rate of c, zero when unknown.
func (c *Catalog) Rate(cat RoomCategory) float64 {
	return c.rates[cat]
}

// ExperiencePrice looks up the per-person price of an experience by name.
func (c *Catalog) ExperiencePrice(name string) (float64, bool) {
	for _, exp := range c.experiences {
		if exp.Name == name {
			return exp.Price, true
		}
	}
	return 0, false
}

// Experiences returns a copy of the price list.
func (c *Catalog) Experiences() []models.SelectedExperience {
	out := make([]models.SelectedExperience, len(c.experiences))
	copy(out, c.experiences)
	return out
}
