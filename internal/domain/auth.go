package domain

// ============================================================
// Auth / sessions
// ============================================================

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token and the current user snapshot.
type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresIn   int        `json:"expires_in"`
	User        *Principal `json:"user"`
}

// RecoveryVerifyRequest is the body of POST /v1/auth/recovery/verify.
type RecoveryVerifyRequest struct {
	Username string `json:"username"`
	CPF      string `json:"cpf"`
	Phone    string `json:"phone"`
}

// RecoveryVerifyResponse returns the short-lived token that authorises a reset.
type RecoveryVerifyResponse struct {
	RecoveryToken string `json:"recovery_token"`
	ExpiresIn     int    `json:"expires_in"`
}

// RecoveryResetRequest is the body of POST /v1/auth/recovery/reset.
type RecoveryResetRequest struct {
	RecoveryToken   string `json:"recovery_token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// User-facing auth messages.
const (
	MsgInvalidCredentials = "Usuário ou senha incorretos."
	MsgRecoveryMismatch   = "Dados não conferem com nenhum administrador cadastrado."
	MsgPasswordMismatch   = "As senhas não coincidem."
)
