// Package domain defines the core business entities for the L'essence Studio
// booking backend. These models are independent of the persistence backend
// and represent the canonical data structures used throughout the BFA.
package domain

import "time"

// ============================================================
// Catalog
// ============================================================

// Category groups services on the booking page.
type Category string

const (
	CategoryHair  Category = "hair"
	CategoryNails Category = "nails"
	CategorySkin  Category = "skin"
	CategorySpa   Category = "spa"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryHair, CategoryNails, CategorySkin, CategorySpa:
		return true
	}
	return false
}

// Service is a bookable procedure. Price is in BRL.
type Service struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	DurationMinutes int      `json:"durationMinutes"`
	Category        Category `json:"category"`
}

// Professional is a member of staff appointments are booked with.
type Professional struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// ServiceInput is the body of POST/PUT /v1/admin/services.
type ServiceInput struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	DurationMinutes int      `json:"durationMinutes"`
	Category        Category `json:"category"`
}

// ProfessionalInput is the body of POST/PUT /v1/admin/professionals.
type ProfessionalInput struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// ============================================================
// Appointments
// ============================================================

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// PaymentStatus tracks the (simulated) deposit payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Appointment is one booked slot. Date is YYYY-MM-DD, Time is HH:mm.
type Appointment struct {
	ID             string            `json:"id"`
	ServiceID      string            `json:"serviceId"`
	ProfessionalID string            `json:"professionalId"`
	CustomerName   string            `json:"customerName"`
	CustomerPhone  string            `json:"customerPhone"`
	Date           string            `json:"date"`
	Time           string            `json:"time"`
	Status         AppointmentStatus `json:"status"`
	PaymentStatus  PaymentStatus     `json:"paymentStatus"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// Holds reports whether the appointment still occupies its slot.
func (a Appointment) Holds(professionalID, date, clock string) bool {
	return a.Status != StatusCancelled &&
		a.ProfessionalID == professionalID &&
		a.Date == date &&
		a.Time == clock
}

// AppointmentView is an appointment joined with catalog labels for the admin list.
// Deleted services and professionals fall back to ServiceRemovedLabel / ProfessionalMissingLabel.
type AppointmentView struct {
	Appointment
	ServiceName      string  `json:"serviceName"`
	ServicePrice     float64 `json:"servicePrice"`
	ProfessionalName string  `json:"professionalName"`
}

const (
	ServiceRemovedLabel      = "removed"
	ProfessionalMissingLabel = "N/A"
)

// StatusUpdateRequest is the body of PATCH /v1/admin/appointments/{id}/status.
type StatusUpdateRequest struct {
	Status AppointmentStatus `json:"status"`
}
