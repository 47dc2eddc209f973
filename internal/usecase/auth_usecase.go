package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"sushiramen/internal/domain/model"
	"sushiramen/internal/notification"
	"sushiramen/internal/repository"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, name string, email string, password string) error
	ValidatePassword(password string) error
	ValidateProfile(name string, email string) error
}

// パスワードをハッシュ化する約束
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

type UserDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthOutput struct {
	User      UserDTO   `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthUsecase struct {
	users     repository.UserRepository
	validator AuthValidator
	hasher    PasswordHasher
	verifier  PasswordVerifier
	issuer    AccessTokenIssuer
	notifier  Notifier
	clock     Clock
	resetTTL  time.Duration
}

func NewAuthUsecase(
	users repository.UserRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	notifier Notifier,
	clock Clock,
	resetTTL time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		validator: validator,
		hasher:    hasher,
		verifier:  verifier,
		issuer:    issuer,
		notifier:  notifier,
		clock:     clock,
		resetTTL:  resetTTL,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (AuthOutput, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, name, email, in.Password); err != nil {
		return AuthOutput{}, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return AuthOutput{}, internalError(err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         model.RoleUser,
	}
	if err := u.users.Create(ctx, user); err != nil {
		// validatorの確認後に同時登録された場合
		if errors.Is(err, repository.ErrDuplicate) {
			return AuthOutput{}, NewCodedError(http.StatusBadRequest, CodeEmailExists, "El email ya está registrado")
		}
		return AuthOutput{}, internalError(err)
	}

	return u.issue(user)
}

func (u *AuthUsecase) Login(ctx context.Context, email string, password string) (AuthOutput, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthOutput{}, NewCodedError(http.StatusBadRequest, CodeValidation, "Email y contraseña son requeridos")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthOutput{}, invalidCredentials()
	}
	if err != nil {
		return AuthOutput{}, internalError(err)
	}

	//パスワード照合
	if !u.verifier.Verify(password, user.PasswordHash) {
		return AuthOutput{}, invalidCredentials()
	}

	return u.issue(user)
}

func invalidCredentials() *HTTPError {
	return NewCodedError(http.StatusUnauthorized, CodeInvalidCredentials, "Credenciales inválidas")
}

// token_versionを上げて発行済みのJWTを全部無効にする
func (u *AuthUsecase) Logout(ctx context.Context, userID int64) error {
	if err := u.users.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return userNotFound()
		}
		return internalError(err)
	}
	return nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return UserDTO{}, userNotFound()
	}
	if err != nil {
		return UserDTO{}, internalError(err)
	}
	return toUserDTO(user), nil
}

// パスワード再設定メールを送る（トークンはhashだけ保存）
func (u *AuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return NewCodedError(http.StatusBadRequest, CodeValidation, "El email es requerido")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return userNotFound()
	}
	if err != nil {
		return internalError(err)
	}

	plain, hash, err := newRandomTokenAndHash()
	if err != nil {
		return internalError(err)
	}
	expiresAt := u.clock.Now().Add(u.resetTTL)
	user.ResetTokenHash = &hash
	user.ResetTokenExpiresAt = &expiresAt
	if err := u.users.Update(ctx, user); err != nil {
		return internalError(err)
	}

	ev := notification.NewEvent(notification.KindPasswordReset, user.Email)
	ev.UserName = user.Name
	ev.ResetToken = plain
	publishBestEffort(ctx, u.notifier, ev)
	return nil
}

func (u *AuthUsecase) VerifyResetToken(ctx context.Context, token string) error {
	_, err := u.findByResetToken(ctx, token)
	return err
}

func (u *AuthUsecase) ResetPassword(ctx context.Context, token string, newPassword string) error {
	if strings.TrimSpace(token) == "" || newPassword == "" {
		return NewCodedError(http.StatusBadRequest, CodeValidation, "Token y nueva contraseña son requeridos")
	}
	if err := u.validator.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := u.findByResetToken(ctx, token)
	if err != nil {
		return err
	}

	pwHash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return internalError(err)
	}
	user.PasswordHash = pwHash
	user.ResetTokenHash = nil
	user.ResetTokenExpiresAt = nil
	// 古いセッションも無効にする
	user.TokenVersion++
	if err := u.users.Update(ctx, user); err != nil {
		return internalError(err)
	}
	return nil
}

func (u *AuthUsecase) findByResetToken(ctx context.Context, token string) (*model.User, error) {
	invalid := NewCodedError(http.StatusBadRequest, CodeInvalidResetToken, "Token inválido o expirado")
	if strings.TrimSpace(token) == "" {
		return nil, invalid
	}

	user, err := u.users.FindByResetTokenHash(ctx, hashToken(token))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, internalError(err)
	}
	if user.ResetTokenExpiresAt == nil || !u.clock.Now().Before(*user.ResetTokenExpiresAt) {
		return nil, invalid
	}
	return user, nil
}

func (u *AuthUsecase) issue(user *model.User) (AuthOutput, error) {
	token, exp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, u.clock.Now())
	if err != nil {
		return AuthOutput{}, internalError(err)
	}
	return AuthOutput{User: toUserDTO(user), Token: token, ExpiresAt: exp}, nil
}

func userNotFound() *HTTPError {
	return NewCodedError(http.StatusNotFound, CodeNotFound, "Usuario no encontrado")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// 再設定トークン生成（平文 + DB保存hash）
func newRandomTokenAndHash() (plain string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}

	plain = base64.RawURLEncoding.EncodeToString(b)
	return plain, hashToken(plain), nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
