package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sushiramen/internal/domain/model"
	"sushiramen/internal/logging"
	"sushiramen/internal/notification"
	repo "sushiramen/internal/repository"
)

const (
	defaultAdminOrderLimit = 50
	maxAdminOrderLimit     = 100
)

type AdminOrderUsecase struct {
	tx       repo.TransactionManager
	users    repo.UserRepository
	notifier Notifier
	clock    Clock
}

func NewAdminOrderUsecase(tx repo.TransactionManager, users repo.UserRepository, notifier Notifier, clock Clock) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, users: users, notifier: notifier, clock: clock}
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderSummaryOutput struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	Total         float64   `json:"total"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	CreatedAt     time.Time `json:"createdAt"`
	ItemsCount    int64     `json:"itemsCount"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type AdminOrderListOutput struct {
	Orders     []OrderSummaryOutput
	Pagination Pagination
}

type UpdateStatusOutput struct {
	ID             int64  `json:"id"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previousStatus"`
}

// 注文一覧（ページング）
func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (AdminOrderListOutput, error) {
	// page/limitの最低限チェック（0は未指定扱い）
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Limit == 0 {
		in.Limit = defaultAdminOrderLimit
	}
	if in.Page < 1 {
		return AdminOrderListOutput{}, NewCodedError(http.StatusBadRequest, CodeValidation, "Página no válida")
	}
	if in.Limit < 1 || in.Limit > maxAdminOrderLimit {
		return AdminOrderListOutput{}, NewCodedError(http.StatusBadRequest, CodeValidation, "Límite no válido")
	}
	if in.Status != "" && !model.OrderStatus(in.Status).IsValid() {
		return AdminOrderListOutput{}, NewCodedError(http.StatusBadRequest, CodeInvalidStatus, "Estado no válido")
	}

	var out AdminOrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rows, total, err := r.Orders().ListAdmin(ctx, repo.AdminOrderListFilter{
			Page:   in.Page,
			Limit:  in.Limit,
			Status: in.Status,
			UserID: in.UserID,
			From:   in.From,
			To:     in.To,
		})
		if err != nil {
			return internalError(err)
		}

		out.Orders = make([]OrderSummaryOutput, 0, len(rows))
		for _, s := range rows {
			out.Orders = append(out.Orders, OrderSummaryOutput{
				ID:            s.ID,
				UserID:        s.UserID,
				UserName:      s.UserName,
				UserEmail:     s.UserEmail,
				Total:         s.Total.InexactFloat64(),
				Status:        string(s.Status),
				PaymentMethod: s.PaymentMethod,
				CreatedAt:     s.CreatedAt,
				ItemsCount:    s.ItemsCount,
			})
		}
		out.Pagination = Pagination{Page: in.Page, Limit: in.Limit, Total: total}
		return nil
	})
	if err != nil {
		return AdminOrderListOutput{}, toHTTPError(err)
	}
	return out, nil
}

// ステータス更新
// cancelledに入るときは在庫を戻し、cancelledから出るときは在庫を取り直す。
// 同じステータスでも更新扱いにしてメールを送り直す。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, status string) (UpdateStatusOutput, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return UpdateStatusOutput{}, NewCodedError(http.StatusBadRequest, CodeValidation, "El estado del pedido es requerido.")
	}
	newStatus := model.OrderStatus(status)
	if !newStatus.IsValid() {
		return UpdateStatusOutput{}, NewCodedError(http.StatusBadRequest, CodeInvalidStatus, "Estado no válido")
	}

	var (
		order  model.Order
		before model.OrderStatus
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return orderNotFound()
		}
		if err != nil {
			return internalError(err)
		}
		before = o.Status

		entering := newStatus == model.OrderStatusCancelled && before != model.OrderStatusCancelled
		leaving := newStatus != model.OrderStatusCancelled && before == model.OrderStatusCancelled
		if entering || leaving {
			if err := u.moveStock(ctx, r, actorAdminUserID, o.ID, entering); err != nil {
				return err
			}
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return orderNotFound()
			}
			return internalError(err)
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		beforeJSON, _ := json.Marshal(map[string]string{"status": string(before)})
		afterJSON, _ := json.Marshal(map[string]string{"status": string(newStatus)})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   string(beforeJSON),
			AfterJSON:    string(afterJSON),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return internalError(err)
		}

		o.Status = newStatus
		order = o
		return nil
	})
	if err != nil {
		return UpdateStatusOutput{}, toHTTPError(err)
	}

	u.notifyStatus(ctx, order)

	return UpdateStatusOutput{
		ID:             order.ID,
		Status:         string(order.Status),
		PreviousStatus: string(before),
	}, nil
}

// restock=trueなら在庫戻し、falseなら取り直し
func (u *AdminOrderUsecase) moveStock(ctx context.Context, r repo.TxRepos, actorID int64, orderID int64, restock bool) error {
	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return internalError(err)
	}

	for _, it := range items {
		kind := model.AdjustmentRestock
		delta := it.Quantity
		if restock {
			if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return internalError(err)
			}
		} else {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return internalError(err)
			}
			if !ok {
				return NewCodedError(http.StatusConflict, CodeInsufficientStock, "Stock insuficiente para "+it.ProductName)
			}
			kind = model.AdjustmentReserve
			delta = -it.Quantity
		}

		oid := orderID
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   it.ProductID,
			ActorUserID: actorID,
			OrderID:     &oid,
			Kind:        kind,
			Delta:       delta,
			Reason:      fmt.Sprintf("order #%d status change", orderID),
		}); err != nil {
			return internalError(err)
		}
	}
	return nil
}

func (u *AdminOrderUsecase) notifyStatus(ctx context.Context, order model.Order) {
	owner, err := u.users.FindByID(ctx, order.UserID)
	if err != nil {
		logOwnerLookupFailure(ctx, order.ID, err)
		return
	}

	ev := notification.NewEvent(notification.KindOrderStatus, owner.Email)
	ev.UserName = owner.Name
	ev.OrderID = order.ID
	ev.Status = string(order.Status)
	ev.Total = order.Total
	ev.PaymentMethod = order.PaymentMethod
	ev.ShippingAddress = order.ShippingAddress
	publishBestEffort(ctx, u.notifier, ev)
}

func logOwnerLookupFailure(ctx context.Context, orderID int64, err error) {
	logging.FromContext(ctx).Warn("notification skipped: order owner lookup failed",
		"order_id", orderID, "error", err)
}
