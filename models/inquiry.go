package models

// Villas is the requested unit count per bookable room category.
type Villas struct {
	DoubleRoom int `json:"doubleRoom" binding:"gte=0"`
	TwinRoom   int `json:"twinRoom" binding:"gte=0"`
	TripleRoom int `json:"tripleRoom" binding:"gte=0"`
}

// SelectedExperience is an add-on chosen by the visitor. Price is per person.
type SelectedExperience struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// BookingInquiry is the payload posted by the booking form.
// It is never persisted; TotalPrice is computed by the submitting side.
type BookingInquiry struct {
	Name        string               `json:"name" binding:"required"`
	Email       string               `json:"email" binding:"required"`
	Phone       string               `json:"phone"`
	Country     string               `json:"country"`
	ArrivalDate string               `json:"arrivalDate"`
	Guests      int                  `json:"guests"`
	Villas      Villas               `json:"villas"`
	Experiences []SelectedExperience `json:"experiences"`
	Message     string               `json:"message"`
	TotalPrice  float64              `json:"totalPrice"`
}

// ContactInquiry is the payload posted by the general contact form.
type ContactInquiry struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}
