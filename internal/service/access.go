package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/lessence-studio-bfa/internal/domain"
	"github.com/boddenberg/lessence-studio-bfa/internal/infra/observability"
	"github.com/boddenberg/lessence-studio-bfa/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeSession  = "session"
	tokenTypeRecovery = "recovery"
	tokenIssuer       = "lessence-studio"

	superAdminName  = "Super Admin"
	superAdminEmail = "admin@lessencestudio.com"
)

// AccessConfig holds the credentials and token settings for AccessControl.
type AccessConfig struct {
	SuperAdminUsername string
	SuperAdminPassword string
	JWTSecret          string
	SessionTTL         time.Duration
	RecoveryTTL        time.Duration
}

// AccessControl authenticates admins, issues session tokens and hands out
// the super-admin capabilities.
type AccessControl struct {
	accounts  port.AccountStore
	catalog   port.CatalogStore
	revoked   port.Cache[bool]
	cfg       AccessConfig
	jwtSecret []byte
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAccessControl creates the access service. revoked holds logged-out
// session ids and used recovery token ids, each until its token expires.
func NewAccessControl(
	accounts port.AccountStore,
	catalog port.CatalogStore,
	revoked port.Cache[bool],
	cfg AccessConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AccessControl {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 8 * time.Hour
	}
	if cfg.RecoveryTTL <= 0 {
		cfg.RecoveryTTL = 10 * time.Minute
	}
	return &AccessControl{
		accounts:  accounts,
		catalog:   catalog,
		revoked:   revoked,
		cfg:       cfg,
		jwtSecret: []byte(cfg.JWTSecret),
		metrics:   metrics,
		logger:    logger,
	}
}

// EffectiveFilter is the professional filter a principal may use. The
// super-admin gets what was requested ("all" when empty); every other
// account is pinned to its linked professional.
func EffectiveFilter(p *domain.Principal, requested string) string {
	if p.IsSuperAdmin() {
		if strings.TrimSpace(requested) == "" {
			return domain.FilterAll
		}
		return requested
	}
	if p == nil || p.ProfessionalID == "" {
		return domain.FilterAll
	}
	return p.ProfessionalID
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func (a *AccessControl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := tracer.Start(ctx, "AccessControl.Login")
	defer span.End()

	username := strings.TrimSpace(req.Username)
	span.SetAttributes(attribute.String("auth.username", username))

	principal, stamp, err := a.authenticate(ctx, username, req.Password)
	if err != nil {
		a.metrics.IncrLogin("failure")
		return nil, err
	}

	token, err := a.signSession(principal, stamp)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	a.metrics.IncrLogin("success")
	a.logger.Info("admin logged in",
		zap.String("username", principal.Username),
		zap.String("role", string(principal.Role)),
	)

	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(a.cfg.SessionTTL.Seconds()),
		User:        principal,
	}, nil
}

// authenticate checks the fixed super-admin pair before the account list, so
// the super-admin login never depends on stored data. The returned stamp
// identifies the stored password hash; it is empty for the super-admin.
func (a *AccessControl) authenticate(ctx context.Context, username, password string) (*domain.Principal, string, error) {
	if a.isSuperAdmin(username, password) {
		return &domain.Principal{
			Username: a.cfg.SuperAdminUsername,
			Name:     superAdminName,
			Email:    superAdminEmail,
			CPF:      "000.000.000-00",
			Phone:    "(00) 00000-0000",
			Role:     domain.RoleSuperAdmin,
		}, "", nil
	}
	if username == "" || username == a.cfg.SuperAdminUsername {
		return nil, "", &domain.ErrUnauthorized{Message: domain.MsgInvalidCredentials}
	}

	acct, err := a.accounts.GetAccount(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("get account: %w", err)
	}
	if acct == nil {
		return nil, "", &domain.ErrUnauthorized{Message: domain.MsgInvalidCredentials}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		a.logger.Warn("login: wrong password", zap.String("username", username))
		return nil, "", &domain.ErrUnauthorized{Message: domain.MsgInvalidCredentials}
	}
	return domain.PrincipalFor(acct), credentialStamp(acct.PasswordHash), nil
}

func credentialStamp(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}

func (a *AccessControl) isSuperAdmin(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.cfg.SuperAdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.cfg.SuperAdminPassword)) == 1
	return userOK && passOK
}

// ============================================================
// Sessions
// ============================================================

// SessionClaims are the JWT claims of session and recovery tokens.
type SessionClaims struct {
	Principal  *domain.Principal `json:"principal,omitempty"`
	Type       string            `json:"type"`
	Credential string            `json:"cred,omitempty"`
	jwt.RegisteredClaims
}

// Authenticate validates a session token and returns its principal. Scoped
// sessions are checked against the stored account on every call, so deleting
// the account or resetting its password ends them.
func (a *AccessControl) Authenticate(ctx context.Context, tokenString string) (*domain.Principal, *SessionClaims, error) {
	claims, err := a.parse(tokenString, tokenTypeSession)
	if err != nil {
		return nil, nil, err
	}
	if _, revoked := a.revoked.Get(claims.ID); revoked {
		return nil, nil, &domain.ErrUnauthorized{Message: "Sessão encerrada"}
	}
	if claims.Principal == nil {
		return nil, nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	if claims.Principal.IsSuperAdmin() {
		return claims.Principal, claims, nil
	}

	acct, err := a.accounts.GetAccount(ctx, claims.Principal.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("get account: %w", err)
	}
	if acct == nil || credentialStamp(acct.PasswordHash) != claims.Credential {
		return nil, nil, &domain.ErrUnauthorized{Message: "Sessão encerrada"}
	}
	return domain.PrincipalFor(acct), claims, nil
}

// ============================================================
// Logout — POST /v1/auth/logout
// ============================================================

// Logout revokes the session token id until it would have expired anyway.
func (a *AccessControl) Logout(ctx context.Context, claims *SessionClaims) error {
	_, span := tracer.Start(ctx, "AccessControl.Logout")
	defer span.End()

	if claims == nil || claims.ID == "" {
		return &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	a.revoked.SetWithTTL(claims.ID, true, remaining(claims, a.cfg.SessionTTL))

	username := ""
	if claims.Principal != nil {
		username = claims.Principal.Username
	}
	a.logger.Info("admin logged out", zap.String("username", username))
	return nil
}

// ============================================================
// Password recovery — POST /v1/auth/recovery/{verify,reset}
// ============================================================

// VerifyRecovery matches (username, cpf, phone) against a stored account and
// issues a short-lived recovery token. Any mismatch yields the same generic
// denial.
func (a *AccessControl) VerifyRecovery(ctx context.Context, req *domain.RecoveryVerifyRequest) (*domain.RecoveryVerifyResponse, error) {
	ctx, span := tracer.Start(ctx, "AccessControl.VerifyRecovery")
	defer span.End()

	denied := &domain.ErrUnauthorized{Message: domain.MsgRecoveryMismatch}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, denied
	}
	acct, err := a.accounts.GetAccount(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if acct == nil ||
		domain.Digits(acct.CPF) != domain.Digits(req.CPF) ||
		domain.Digits(acct.Phone) != domain.Digits(req.Phone) {
		a.logger.Warn("recovery: identity mismatch", zap.String("username", username))
		return nil, denied
	}

	token, err := a.sign(SessionClaims{
		Type: tokenTypeRecovery,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: acct.Username,
		},
	}, a.cfg.RecoveryTTL)
	if err != nil {
		return nil, fmt.Errorf("sign recovery token: %w", err)
	}

	return &domain.RecoveryVerifyResponse{
		RecoveryToken: token,
		ExpiresIn:     int(a.cfg.RecoveryTTL.Seconds()),
	}, nil
}

// ResetPassword sets a new password for the account named by a recovery token.
// The token is single-use.
func (a *AccessControl) ResetPassword(ctx context.Context, req *domain.RecoveryResetRequest) error {
	ctx, span := tracer.Start(ctx, "AccessControl.ResetPassword")
	defer span.End()

	if req.Password == "" {
		return &domain.ErrValidation{Field: "password", Message: "Informe a nova senha."}
	}
	if req.Password != req.ConfirmPassword {
		return &domain.ErrValidation{Field: "confirmPassword", Message: domain.MsgPasswordMismatch}
	}

	claims, err := a.parse(req.RecoveryToken, tokenTypeRecovery)
	if err != nil {
		return err
	}
	if !a.revoked.SetIfAbsent(claims.ID, true, remaining(claims, a.cfg.RecoveryTTL)) {
		return &domain.ErrUnauthorized{Message: "Token de recuperação já utilizado"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.revoked.Delete(claims.ID)
		return fmt.Errorf("hash password: %w", err)
	}
	if err := a.accounts.UpdatePassword(ctx, claims.Subject, string(hash)); err != nil {
		a.revoked.Delete(claims.ID)
		return err
	}

	a.logger.Info("password reset", zap.String("username", claims.Subject))
	return nil
}

// ============================================================
// Super-admin capabilities
// ============================================================

// Management bundles the operations reserved to the super-admin.
type Management struct {
	Catalog  *CatalogManager
	Accounts *AccountManager
}

// Manage returns the super-admin capabilities, or ErrForbidden for any other
// principal.
func (a *AccessControl) Manage(p *domain.Principal) (*Management, error) {
	if !p.IsSuperAdmin() {
		return nil, &domain.ErrForbidden{Action: "gerenciar catálogo e administradores"}
	}
	return &Management{
		Catalog:  &CatalogManager{catalog: a.catalog, logger: a.logger},
		Accounts: &AccountManager{accounts: a.accounts, catalog: a.catalog, superAdmin: a.cfg.SuperAdminUsername, logger: a.logger},
	}, nil
}

// ============================================================
// Internal JWT helpers
// ============================================================

func (a *AccessControl) signSession(p *domain.Principal, stamp string) (string, error) {
	return a.sign(SessionClaims{
		Principal:  p,
		Type:       tokenTypeSession,
		Credential: stamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: p.Username,
		},
	}, a.cfg.SessionTTL)
}

func (a *AccessControl) sign(claims SessionClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.ID = uuid.NewString()
	claims.Issuer = tokenIssuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// remaining is how long a token id must stay recorded: until the token's own
// expiry, or fallback when the claim is missing.
func remaining(claims *SessionClaims, fallback time.Duration) time.Duration {
	if claims.ExpiresAt == nil {
		return fallback
	}
	if d := time.Until(claims.ExpiresAt.Time); d > 0 {
		return d
	}
	return time.Second
}

func (a *AccessControl) parse(tokenString, wantType string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	if claims.Type != wantType {
		return nil, &domain.ErrUnauthorized{Message: "Tipo de token inválido"}
	}
	return claims, nil
}
