package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AccountManager registers, lists and removes scoped admin accounts.
// Only AccessControl.Manage hands one out.
type AccountManager struct {
	accounts   port.AccountStore
	catalog    port.CatalogStore
	superAdmin string
	logger     *zap.Logger
}

// Register validates req and stores a new account with a bcrypt password hash.
// CPF and phone are stored in their masked forms.
func (m *AccountManager) Register(ctx context.Context, req *domain.RegisterAccountRequest) (*domain.AccountSummary, error) {
	ctx, span := tracer.Start(ctx, "AccountManager.Register")
	defer span.End()

	name := strings.TrimSpace(req.Name)
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if name == "" || username == "" || req.Password == "" || email == "" ||
		domain.Digits(req.CPF) == "" || domain.Digits(req.Phone) == "" || req.ProfessionalID == "" {
		return nil, &domain.ErrValidation{Field: "form", Message: "Preencha todos os campos e vincule um profissional."}
	}
	if req.Password != req.ConfirmPassword {
		return nil, &domain.ErrValidation{Field: "confirmPassword", Message: domain.MsgPasswordMismatch}
	}
	if username == m.superAdmin {
		return nil, &domain.ErrConflict{Message: "Este usuário já existe."}
	}

	pro, err := m.catalog.GetProfessional(ctx, req.ProfessionalID)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acct := domain.Account{
		Username:       username,
		PasswordHash:   string(hash),
		Name:           name,
		Email:          email,
		CPF:            domain.FormatCPF(req.CPF),
		Phone:          domain.FormatPhone(req.Phone),
		ProfessionalID: pro.ID,
	}
	if err := m.accounts.CreateAccount(ctx, acct); err != nil {
		return nil, err
	}

	m.logger.Info("admin account registered",
		zap.String("username", username),
		zap.String("professional_id", pro.ID),
	)
	return summarize(acct, map[string]string{pro.ID: pro.Name}), nil
}

// List returns every registered account with its professional's name.
func (m *AccountManager) List(ctx context.Context) ([]domain.AccountSummary, error) {
	ctx, span := tracer.Start(ctx, "AccountManager.List")
	defer span.End()

	accts, err := m.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	pros, err := m.catalog.ListProfessionals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list professionals: %w", err)
	}
	names := make(map[string]string, len(pros))
	for _, p := range pros {
		names[p.ID] = p.Name
	}

	out := make([]domain.AccountSummary, 0, len(accts))
	for _, a := range accts {
		out = append(out, *summarize(a, names))
	}
	return out, nil
}

// Delete removes an account. The super-admin is not an account and cannot be removed.
func (m *AccountManager) Delete(ctx context.Context, username string) error {
	ctx, span := tracer.Start(ctx, "AccountManager.Delete")
	defer span.End()

	if username == m.superAdmin {
		return &domain.ErrForbidden{Action: "remover o super administrador"}
	}
	if err := m.accounts.DeleteAccount(ctx, username); err != nil {
		return err
	}
	m.logger.Info("admin account deleted", zap.String("username", username))
	return nil
}

func summarize(a domain.Account, proNames map[string]string) *domain.AccountSummary {
	return &domain.AccountSummary{
		Username:         a.Username,
		Name:             a.Name,
		Email:            a.Email,
		CPF:              a.CPF,
		Phone:            a.Phone,
		ProfessionalID:   a.ProfessionalID,
		ProfessionalName: proNames[a.ProfessionalID],
	}
}
