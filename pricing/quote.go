package pricing

import (
	"fmt"
	"strconv"

	"villas-backend/models"
)

// Selection is the price-relevant part of a booking form.
type Selection struct {
	Villas      models.Villas `json:"villas"`
	Experiences []string      `json:"experiences"`
	Guests      int           `json:"guests"`
}

type LineItem struct {
	Label     string  `json:"label"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Amount    float64 `json:"amount"`
}

// Quote is an itemized estimate for a Selection.
type Quote struct {
	Guests      int        `json:"guests"`
	Rooms       []LineItem `json:"rooms"`
	Experiences []LineItem `json:"experiences"`
	Total       float64    `json:"total"`
	CanSubmit   bool       `json:"canSubmit"`
}

// Quote prices sel by replaying it onto a fresh draft, so the same clamping
// and de-duplication rules apply as in the form.
func (c *Catalog) Quote(sel Selection) Quote {
	d := NewDraft(c)
	d.SetGuests(sel.Guests)
	for _, cat := range Categories {
		d.AdjustRoom(cat, Count(sel.Villas, cat))
	}
	for _, name := range sel.Experiences {
		d.AddExperience(name)
	}

	q := Quote{
		Guests:      d.Guests(),
		Rooms:       []LineItem{},
		Experiences: []LineItem{},
		Total:       d.Total(),
		CanSubmit:   d.CanSubmit(),
	}
	for _, cat := range Categories {
		n := d.RoomCount(cat)
		if n == 0 {
			continue
		}
		rate := c.Rate(cat)
		q.Rooms = append(q.Rooms, LineItem{Label: cat.DisplayName(), Quantity: n, UnitPrice: rate, Amount: float64(n) * rate})
	}
	for _, exp := range d.Experiences() {
		q.Experiences = append(q.Experiences, LineItem{Label: exp.Name, Quantity: d.Guests(), UnitPrice: exp.Price, Amount: exp.Price * float64(d.Guests())})
	}
	return q
}

// RoomSummary renders non-zero room counts as "2 Double Room(s)".
func RoomSummary(v models.Villas) []string {
	out := make([]string, 0, len(Categories))
	for _, cat := range Categories {
		if n := Count(v, cat); n > 0 {
			out = append(out, fmt.Sprintf("%d %s(s)", n, cat.DisplayName()))
		}
	}
	return out
}

// FormatAmount prints a price without a trailing fraction when it is whole.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
