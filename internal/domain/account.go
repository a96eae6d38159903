package domain

// ============================================================
// Admin accounts
// ============================================================

// Role distinguishes the fixed super-admin from professional-scoped accounts.
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleProfessional Role = "professional"
)

// FilterAll is the professional filter value meaning "every professional".
const FilterAll = "all"

// Account is a registered admin account, persisted under the users key.
// The super-admin never appears in this list.
type Account struct {
	Username       string `json:"username"`
	PasswordHash   string `json:"passwordHash"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	CPF            string `json:"cpf"`
	Phone          string `json:"phone"`
	ProfessionalID string `json:"professionalId,omitempty"`
}

// Principal is the authenticated session snapshot. It never carries a password.
type Principal struct {
	Username       string `json:"username"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	CPF            string `json:"cpf,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Role           Role   `json:"role"`
	ProfessionalID string `json:"professionalId,omitempty"`
}

// IsSuperAdmin reports whether p has unrestricted scope.
func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.Role == RoleSuperAdmin
}

// PrincipalFor builds the session snapshot for a stored account.
func PrincipalFor(a *Account) *Principal {
	return &Principal{
		Username:       a.Username,
		Name:           a.Name,
		Email:          a.Email,
		CPF:            a.CPF,
		Phone:          a.Phone,
		Role:           RoleProfessional,
		ProfessionalID: a.ProfessionalID,
	}
}

// AccountSummary is the public listing shape of an account.
type AccountSummary struct {
	Username         string `json:"username"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	CPF              string `json:"cpf"`
	Phone            string `json:"phone"`
	ProfessionalID   string `json:"professionalId,omitempty"`
	ProfessionalName string `json:"professionalName,omitempty"`
}

// RegisterAccountRequest is the body of POST /v1/admin/accounts.
type RegisterAccountRequest struct {
	Name            string `json:"name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	CPF             string `json:"cpf"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	ProfessionalID  string `json:"professionalId"`
}
