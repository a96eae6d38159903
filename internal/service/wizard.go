package service

import (
	"strings"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
)

// Wizard is the five-step booking state machine. It performs no I/O; the
// BookingService feeds it catalog entries and slot lists.
//
// Forward moves require the current step's selection. Back never discards
// data, so returning to a later step shows the previous choices until they
// are replaced.
type Wizard struct {
	step         int
	service      *domain.Service
	professional *domain.Professional
	date         string
	clock        string
	customer     domain.CustomerInfo
	payment      domain.PaymentState
}

// NewWizard starts at the service step with payment idle.
func NewWizard() *Wizard {
	return &Wizard{step: domain.StepService, payment: domain.PaymentIdle}
}

func (w *Wizard) Step() int { return w.step }

func (w *Wizard) Payment() domain.PaymentState { return w.payment }

func (w *Wizard) Professional() *domain.Professional { return w.professional }

func (w *Wizard) expect(step int, action string) error {
	if w.step != step {
		return &domain.ErrWizardStep{Step: w.step, Message: action + " não permitido nesta etapa"}
	}
	return nil
}

// SelectService records svc and advances to the professional step.
func (w *Wizard) SelectService(svc domain.Service) error {
	if err := w.expect(domain.StepService, "selecionar serviço"); err != nil {
		return err
	}
	w.service = &svc
	w.step = domain.StepProfessional
	return nil
}

// SelectProfessional records pro and advances to the schedule step.
func (w *Wizard) SelectProfessional(pro domain.Professional) error {
	if err := w.expect(domain.StepProfessional, "selecionar profissional"); err != nil {
		return err
	}
	w.professional = &pro
	w.step = domain.StepSchedule
	return nil
}

// SelectSchedule records date and clock and advances to the customer step.
// clock must be an available entry of slots, the list generated for date and
// the selected professional.
func (w *Wizard) SelectSchedule(date, clock string, slots []domain.TimeSlot) error {
	if err := w.expect(domain.StepSchedule, "selecionar horário"); err != nil {
		return err
	}
	if date == "" {
		return &domain.ErrValidation{Field: "date", Message: "Selecione uma data."}
	}
	if clock == "" {
		return &domain.ErrValidation{Field: "time", Message: "Selecione um horário."}
	}

	for _, s := range slots {
		if s.Time != clock {
			continue
		}
		if !s.Available {
			return &domain.ErrSlotTaken{ProfessionalID: w.professional.ID, Date: date, Time: clock}
		}
		w.date = date
		w.clock = clock
		w.step = domain.StepCustomer
		return nil
	}
	return &domain.ErrValidation{Field: "time", Message: "Horário fora do expediente."}
}

// SetCustomer records the contact and advances to payment. Blank fields are rejected.
func (w *Wizard) SetCustomer(name, phone string) error {
	if err := w.expect(domain.StepCustomer, "informar dados"); err != nil {
		return err
	}
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	if name == "" {
		return &domain.ErrValidation{Field: "name", Message: "Informe seu nome completo."}
	}
	if phone == "" {
		return &domain.ErrValidation{Field: "phone", Message: "Informe seu WhatsApp."}
	}
	w.customer = domain.CustomerInfo{Name: name, Phone: phone}
	w.step = domain.StepPayment
	return nil
}

// Back returns to the previous step. It is refused while a payment is processing.
func (w *Wizard) Back() error {
	if w.payment == domain.PaymentProcessing {
		return &domain.ErrWizardStep{Step: w.step, Message: "pagamento em processamento"}
	}
	if w.step > domain.StepService {
		w.step--
	}
	return nil
}

// CanContinue reports whether the current step has what it needs to move on.
func (w *Wizard) CanContinue() bool {
	switch w.step {
	case domain.StepService:
		return w.service != nil
	case domain.StepProfessional:
		return w.professional != nil
	case domain.StepSchedule:
		return w.date != "" && w.clock != ""
	case domain.StepCustomer:
		return w.customer.Name != "" && w.customer.Phone != ""
	case domain.StepPayment:
		return w.payment == domain.PaymentIdle
	}
	return false
}

// Deposit is half the selected service price.
func (w *Wizard) Deposit() float64 {
	if w.service == nil {
		return 0
	}
	return w.service.Price * 0.5
}

// Remaining is what the customer pays at the salon.
func (w *Wizard) Remaining() float64 {
	if w.service == nil {
		return 0
	}
	return w.service.Price - w.Deposit()
}

// BeginPayment moves payment from idle to processing.
func (w *Wizard) BeginPayment() error {
	if err := w.expect(domain.StepPayment, "pagar"); err != nil {
		return err
	}
	if w.payment != domain.PaymentIdle {
		return &domain.ErrWizardStep{Step: w.step, Message: "pagamento já iniciado"}
	}
	w.payment = domain.PaymentProcessing
	return nil
}

// FailPayment returns a processing payment to idle so the customer can retry
// or go back.
func (w *Wizard) FailPayment() {
	if w.payment == domain.PaymentProcessing {
		w.payment = domain.PaymentIdle
	}
}

// CompletePayment marks the payment done.
func (w *Wizard) CompletePayment() {
	w.payment = domain.PaymentDone
}

// Appointment builds the confirmed, paid appointment for the current selection.
func (w *Wizard) Appointment(id string, now time.Time) domain.Appointment {
	return domain.Appointment{
		ID:             id,
		ServiceID:      w.service.ID,
		ProfessionalID: w.professional.ID,
		CustomerName:   w.customer.Name,
		CustomerPhone:  w.customer.Phone,
		Date:           w.date,
		Time:           w.clock,
		Status:         domain.StatusConfirmed,
		PaymentStatus:  domain.PaymentPaid,
		CreatedAt:      now,
	}
}

// State renders the wire view of the wizard.
func (w *Wizard) State(id string) *domain.BookingState {
	return &domain.BookingState{
		ID:            id,
		Step:          w.step,
		Service:       w.service,
		Professional:  w.professional,
		Date:          w.date,
		Time:          w.clock,
		Customer:      w.customer,
		PaymentStatus: w.payment,
		CanContinue:   w.CanContinue(),
		Deposit:       w.Deposit(),
		Remaining:     w.Remaining(),
	}
}
