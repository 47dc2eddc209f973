package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"sushiramen/internal/domain/model"
	repo "sushiramen/internal/repository"
)

// 自分のプロフィール・パスワード変更
type UserUsecase struct {
	users     repo.UserRepository
	validator AuthValidator
	hasher    PasswordHasher
	verifier  PasswordVerifier
}

func NewUserUsecase(users repo.UserRepository, validator AuthValidator, hasher PasswordHasher, verifier PasswordVerifier) *UserUsecase {
	return &UserUsecase{users: users, validator: validator, hasher: hasher, verifier: verifier}
}

// 本人か管理者だけ
func (u *UserUsecase) UpdateProfile(ctx context.Context, actorID int64, actorRole model.Role, targetID int64, name string, email string) (UserDTO, error) {
	if actorID != targetID && actorRole != model.RoleAdmin {
		return UserDTO{}, NewCodedError(http.StatusForbidden, CodeForbidden, "No autorizado para modificar este usuario")
	}

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := u.validator.ValidateProfile(name, email); err != nil {
		return UserDTO{}, err
	}

	user, err := u.users.FindByID(ctx, targetID)
	if errors.Is(err, repo.ErrNotFound) {
		return UserDTO{}, userNotFound()
	}
	if err != nil {
		return UserDTO{}, internalError(err)
	}

	user.Name = name
	user.Email = email
	if err := u.users.Update(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return UserDTO{}, NewCodedError(http.StatusBadRequest, CodeEmailExists, "El email ya está registrado")
		}
		return UserDTO{}, internalError(err)
	}
	return toUserDTO(user), nil
}

// 本人だけ。現在のパスワードが必要
func (u *UserUsecase) ChangePassword(ctx context.Context, actorID int64, targetID int64, current string, next string) error {
	if actorID != targetID {
		return NewCodedError(http.StatusForbidden, CodeForbidden, "No autorizado para modificar este usuario")
	}
	if current == "" || next == "" {
		return NewCodedError(http.StatusBadRequest, CodeValidation, "La contraseña actual y la nueva son requeridas")
	}
	if err := u.validator.ValidatePassword(next); err != nil {
		return err
	}

	user, err := u.users.FindByID(ctx, targetID)
	if errors.Is(err, repo.ErrNotFound) {
		return userNotFound()
	}
	if err != nil {
		return internalError(err)
	}
	if !u.verifier.Verify(current, user.PasswordHash) {
		return NewCodedError(http.StatusUnauthorized, CodeInvalidCredentials, "La contraseña actual es incorrecta")
	}

	pwHash, err := u.hasher.Hash(next)
	if err != nil {
		return internalError(err)
	}
	user.PasswordHash = pwHash
	if err := u.users.Update(ctx, user); err != nil {
		return internalError(err)
	}
	return nil
}
