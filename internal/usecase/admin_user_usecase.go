package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"sushiramen/internal/domain/model"
	repo "sushiramen/internal/repository"
)

const (
	defaultAdminUserLimit = 20
	maxAdminUserLimit     = 100
)

// 管理者によるユーザー管理（変更は監査ログと同じTx）
type AdminUserUsecase struct {
	tx        repo.TransactionManager
	users     repo.UserRepository
	auditLogs repo.AuditLogRepository
	clock     Clock
}

func NewAdminUserUsecase(tx repo.TransactionManager, users repo.UserRepository, auditLogs repo.AuditLogRepository, clock Clock) *AdminUserUsecase {
	return &AdminUserUsecase{tx: tx, users: users, auditLogs: auditLogs, clock: clock}
}

type AdminUserListOutput struct {
	Users      []UserDTO
	Pagination Pagination
}

type AdminUpdateUserInput struct {
	Name  string
	Email string
	Role  string
}

type AuditLogOutput struct {
	ID           int64     `json:"id"`
	ActorUserID  int64     `json:"actorUserId"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resourceType"`
	ResourceID   int64     `json:"resourceId"`
	Before       string    `json:"before,omitempty"`
	After        string    `json:"after,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type AuditLogListInput struct {
	Action       string
	ResourceType string
	Limit        int
	Offset       int
}

func (u *AdminUserUsecase) List(ctx context.Context, page int, limit int) (AdminUserListOutput, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultAdminUserLimit
	}
	if limit > maxAdminUserLimit {
		limit = maxAdminUserLimit
	}

	users, total, err := u.users.List(ctx, page, limit)
	if err != nil {
		return AdminUserListOutput{}, internalError(err)
	}
	out := AdminUserListOutput{
		Users:      make([]UserDTO, 0, len(users)),
		Pagination: Pagination{Page: page, Limit: limit, Total: total},
	}
	for i := range users {
		out.Users = append(out.Users, toUserDTO(&users[i]))
	}
	return out, nil
}

func (u *AdminUserUsecase) Get(ctx context.Context, id int64) (UserDTO, error) {
	user, err := u.users.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return UserDTO{}, userNotFound()
	}
	if err != nil {
		return UserDTO{}, internalError(err)
	}
	return toUserDTO(user), nil
}

func (u *AdminUserUsecase) Update(ctx context.Context, actorID int64, id int64, in AdminUpdateUserInput) (UserDTO, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	role := model.Role(strings.TrimSpace(in.Role))
	if name == "" || email == "" || role == "" {
		return UserDTO{}, NewCodedError(http.StatusBadRequest, CodeValidation, "Por favor, proporciona todos los campos requeridos (nombre, email, rol).")
	}
	if !role.IsValid() {
		return UserDTO{}, NewCodedError(http.StatusBadRequest, CodeValidation, "Rol no válido")
	}

	var updated *model.User
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return userNotFound()
		}
		if err != nil {
			return internalError(err)
		}
		before := auditUserJSON(user)

		user.Name = name
		user.Email = email
		user.Role = role
		if err := r.Users().Update(ctx, user); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return NewCodedError(http.StatusBadRequest, CodeEmailExists, "El email ya está registrado")
			}
			return internalError(err)
		}

		if err := u.audit(ctx, r, actorID, model.AuditActionUpdateUser, id, before, auditUserJSON(user)); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return UserDTO{}, toHTTPError(err)
	}
	return toUserDTO(updated), nil
}

// 自分自身は削除できない
func (u *AdminUserUsecase) Delete(ctx context.Context, actorID int64, id int64) error {
	if actorID == id {
		return NewCodedError(http.StatusBadRequest, CodeValidation, "No puedes eliminar tu propia cuenta")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return userNotFound()
		}
		if err != nil {
			return internalError(err)
		}

		if err := r.Users().Delete(ctx, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return userNotFound()
			}
			return internalError(err)
		}
		return u.audit(ctx, r, actorID, model.AuditActionDeleteUser, id, auditUserJSON(user), "")
	})
	return toHTTPError(err)
}

// 発行済みのJWTを全部無効にする
func (u *AdminUserUsecase) ForceLogout(ctx context.Context, actorID int64, id int64) error {
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Users().IncrementTokenVersion(ctx, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return userNotFound()
			}
			return internalError(err)
		}
		return u.audit(ctx, r, actorID, model.AuditActionForceLogout, id, "", "")
	})
	return toHTTPError(err)
}

func (u *AdminUserUsecase) ListAuditLogs(ctx context.Context, in AuditLogListInput) ([]AuditLogOutput, error) {
	f := repo.AuditLogFilter{Limit: in.Limit, Offset: in.Offset}
	if a := strings.TrimSpace(in.Action); a != "" {
		action := model.AuditAction(a)
		f.Action = &action
	}
	if rt := strings.TrimSpace(in.ResourceType); rt != "" {
		resourceType := model.AuditResourceType(rt)
		f.ResourceType = &resourceType
	}

	logs, err := u.auditLogs.List(ctx, f)
	if err != nil {
		return nil, internalError(err)
	}
	out := make([]AuditLogOutput, 0, len(logs))
	for _, l := range logs {
		out = append(out, AuditLogOutput{
			ID:           l.ID,
			ActorUserID:  l.ActorUserID,
			Action:       string(l.Action),
			ResourceType: string(l.ResourceType),
			ResourceID:   l.ResourceID,
			Before:       l.BeforeJSON,
			After:        l.AfterJSON,
			CreatedAt:    l.CreatedAt,
		})
	}
	return out, nil
}

func (u *AdminUserUsecase) audit(ctx context.Context, r repo.TxRepos, actorID int64, action model.AuditAction, userID int64, before string, after string) error {
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
		BeforeJSON:   before,
		AfterJSON:    after,
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return internalError(err)
	}
	return nil
}

// パスワードハッシュは監査ログに残さない
func auditUserJSON(user *model.User) string {
	b, _ := json.Marshal(map[string]string{
		"name":  user.Name,
		"email": user.Email,
		"role":  string(user.Role),
	})
	return string(b)
}
