package pricing

import (
	"errors"
	"strconv"
	"strings"

	"villas-backend/models"
)

// ErrNoRoomSelected blocks submission of a draft without any room.
var ErrNoRoomSelected = errors.New("no room selected")

// NoRoomSelectedMessage is the guidance shown to the visitor for ErrNoRoomSelected.
const NoRoomSelectedMessage = "Please select at least one room to continue"

// Draft is an in-progress booking inquiry. Guests never drops below one and
// room counts never drop below zero; the total is always derived on read.
type Draft struct {
	Name        string
	Email       string
	Phone       string
	Country     string
	ArrivalDate string
	Message     string

	catalog     *Catalog
	guests      int
	rooms       map[RoomCategory]int
	experiences []models.SelectedExperience
}

// NewDraft starts an empty draft priced against catalog.
func NewDraft(catalog *Catalog) *Draft {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Draft{
		catalog: catalog,
		guests:  1,
		rooms:   make(map[RoomCategory]int, len(Categories)),
	}
}

// ParseGuests reads the leading integer of a raw form value, so "3abc" and
// "2.5" count as 3 and 2. No digits, zero or a negative count mean one guest.
func ParseGuests(raw string) int {
	s := strings.TrimLeft(raw, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (d *Draft) Guests() int { return d.guests }

// SetGuests overwrites the guest count, clamped to at least one.
func (d *Draft) SetGuests(n int) {
	d.guests = max(1, n)
}

func (d *Draft) RoomCount(c RoomCategory) int { return d.rooms[c] }

// AdjustRoom applies a signed delta to a room count, flooring at zero.
// It reports whether the count changed.
func (d *Draft) AdjustRoom(c RoomCategory, delta int) bool {
	if !c.Valid() {
		return false
	}
	prev := d.rooms[c]
	d.rooms[c] = max(0, prev+delta)
	return d.rooms[c] != prev
}

// AddExperience selects an experience from the catalog. The placeholder,
// unknown names and names already selected leave the selection unchanged.
func (d *Draft) AddExperience(name string) bool {
	if name == NoExperience {
		return false
	}
	price, ok := d.catalog.ExperiencePrice(name)
	if !ok || d.hasExperience(name) {
		return false
	}
	d.experiences = append(d.experiences, models.SelectedExperience{Name: name, Price: price})
	return true
}

// RemoveExperience drops the named experience if it is selected.
func (d *Draft) RemoveExperience(name string) bool {
	for i, exp := range d.experiences {
		if exp.Name == name {
			d.experiences = append(d.experiences[:i], d.experiences[i+1:]...)
			return true
		}
	}
	return false
}

func (d *Draft) hasExperience(name string) bool {
	for _, exp := range d.experiences {
		if exp.Name == name {
			return true
		}
	}
	return false
}

// Experiences returns the current selection in the order it was made.
func (d *Draft) Experiences() []models.SelectedExperience {
	out := make([]models.SelectedExperience, len(d.experiences))
	copy(out, d.experiences)
	return out
}

// Villas returns the room counts in the payload shape.
func (d *Draft) Villas() models.Villas {
	return models.Villas{
		DoubleRoom: d.rooms[DoubleRoom],
		TwinRoom:   d.rooms[TwinRoom],
		TripleRoom: d.rooms[TripleRoom],
	}
}

// Total = Σ(room count × nightly rate) + Σ(experience price × guests).
func (d *Draft) Total() float64 {
	var total float64
	for _, c := range Categories {
		total += float64(d.rooms[c]) * d.catalog.Rate(c)
	}
	for _, exp := range d.experiences {
		total += exp.Price * float64(d.guests)
	}
	return total
}

// CanSubmit reports whether at least one room is selected.
func (d *Draft) CanSubmit() bool {
	for _, c := range Categories {
		if d.rooms[c] > 0 {
			return true
		}
	}
	return false
}

// Validate returns ErrNoRoomSelected when the draft may not be submitted.
func (d *Draft) Validate() error {
	if !d.CanSubmit() {
		return ErrNoRoomSelected
	}
	return nil
}

// Inquiry snapshots the draft, including its computed total.
func (d *Draft) Inquiry() models.BookingInquiry {
	return models.BookingInquiry{
		Name:        d.Name,
		Email:       d.Email,
		Phone:       d.Phone,
		Country:     d.Country,
		ArrivalDate: d.ArrivalDate,
		Guests:      d.guests,
		Villas:      d.Villas(),
		Experiences: d.Experiences(),
		Message:     d.Message,
		TotalPrice:  d.Total(),
	}
}

// Reset clears the draft for another booking.
func (d *Draft) Reset() {
	*d = *NewDraft(d.catalog)
}
