package domain

import "time"

// ============================================================
// Booking wizard
// ============================================================

// Wizard steps, strictly linear.
const (
	StepService      = 1
	StepProfessional = 2
	StepSchedule     = 3
	StepCustomer     = 4
	StepPayment      = 5
)

// PaymentState is the transient status of the payment step.
type PaymentState string

const (
	PaymentIdle       PaymentState = "idle"
	PaymentProcessing PaymentState = "processing"
	PaymentDone       PaymentState = "done"
)

// TimeSlot is one half-hour slot offered for a professional on a date.
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// BusinessHours configures when slots are generated. EndHour is exclusive.
type BusinessHours struct {
	StartHour int            `json:"start"`
	EndHour   int            `json:"end"`
	OpenDays  []time.Weekday `json:"days"`
}

// IsOpen reports whether the salon opens on weekday d.
func (h BusinessHours) IsOpen(d time.Weekday) bool {
	for _, open := range h.OpenDays {
		if open == d {
			return true
		}
	}
	return false
}

// CustomerInfo is collected at step 4.
type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CardDetails is collected at step 5. It is never sent to a payment network.
type CardDetails struct {
	Number string `json:"number"`
	Holder string `json:"holder"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// BookingState is the wire view of a wizard session.
type BookingState struct {
	ID            string        `json:"id"`
	Step          int           `json:"step"`
	Service       *Service      `json:"service,omitempty"`
	Professional  *Professional `json:"professional,omitempty"`
	Date          string        `json:"date,omitempty"`
	Time          string        `json:"time,omitempty"`
	Customer      CustomerInfo  `json:"customer"`
	PaymentStatus PaymentState  `json:"paymentStatus"`
	CanContinue   bool          `json:"canContinue"`
	Deposit       float64       `json:"deposit"`
	Remaining     float64       `json:"remaining"`
}

// SelectServiceRequest is the body of PUT /v1/bookings/{id}/service.
type SelectServiceRequest struct {
	ServiceID string `json:"serviceId"`
}

// SelectProfessionalRequest is the body of PUT /v1/bookings/{id}/professional.
type SelectProfessionalRequest struct {
	ProfessionalID string `json:"professionalId"`
}

// SelectScheduleRequest is the body of PUT /v1/bookings/{id}/schedule.
type SelectScheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// BookingConfirmation is returned once payment completes.
type BookingConfirmation struct {
	Appointment *Appointment `json:"appointment"`
	Deposit     float64      `json:"deposit"`
	Remaining   float64      `json:"remaining"`
	Message     string       `json:"message"`
}

// MsgBookingConfirmed is shown after a successful booking.
const MsgBookingConfirmed = "Agendamento realizado com sucesso! Enviamos a confirmação para seu WhatsApp."
