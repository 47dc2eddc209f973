package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sushiramen/internal/domain/model"
	"sushiramen/internal/notification"
	repo "sushiramen/internal/repository"

	"github.com/shopspring/decimal"
)

const defaultProductImage = "/default-product.png"

type OrderUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	users      repo.UserRepository
	notifier   Notifier
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	users repo.UserRepository,
	notifier Notifier,
) *OrderUsecase {
	return &OrderUsecase{
		tx:         tx,
		orders:     orders,
		orderItems: orderItems,
		users:      users,
		notifier:   notifier,
	}
}

type CheckoutInput struct {
	PaymentMethod   string
	ShippingAddress string
	Notes           string
}

type CheckoutOutput struct {
	OrderID int64   `json:"orderId"`
	Total   float64 `json:"total"`
	Status  string  `json:"status"`
}

type OrderItemOutput struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"imageUrl"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	Total           float64           `json:"total"`
	Status          string            `json:"status"`
	PaymentMethod   string            `json:"paymentMethod"`
	ShippingAddress string            `json:"shippingAddress"`
	Notes           string            `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	Items           []OrderItemOutput `json:"items"`
}

// Checkout はカートを注文に変える。
// カートのロック・在庫確保・注文作成・明細作成・カート削除は1トランザクション。
// 確認メールはcommit後に投げるだけ（失敗しても注文は成功）。
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	payment := strings.TrimSpace(in.PaymentMethod)
	address := strings.TrimSpace(in.ShippingAddress)
	if payment == "" || address == "" {
		return CheckoutOutput{}, NewCodedError(http.StatusBadRequest, CodeValidation, "Método de pago y dirección son requeridos")
	}

	var (
		order model.Order
		items []model.OrderItem
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じユーザーの同時チェックアウトはここで直列になる
		lines, err := r.Carts().LockByUserID(ctx, userID)
		if err != nil {
			return internalError(err)
		}
		if len(lines) == 0 {
			return NewCodedError(http.StatusBadRequest, CodeEmptyCart, "El carrito está vacío")
		}

		ids := make([]int64, 0, len(lines))
		lineIDs := make([]int64, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.ProductID)
			lineIDs = append(lineIDs, l.ID)
		}
		// 削除済みも取って「販売停止」と区別できるようにする
		products, err := r.Products().FindByIDs(ctx, ids, true)
		if err != nil {
			return internalError(err)
		}
		byID := make(map[int64]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		total := decimal.Zero
		items = make([]model.OrderItem, 0, len(lines))
		for _, l := range lines {
			p, ok := byID[l.ProductID]
			if !ok {
				return NewCodedError(http.StatusBadRequest, CodeProductUnavailable, fmt.Sprintf("Producto no disponible: %d", l.ProductID))
			}
			if !p.IsActive || p.DeletedAt.Valid {
				return NewCodedError(http.StatusBadRequest, CodeProductUnavailable, "Producto no disponible: "+p.Name)
			}

			//在庫確保（足りなければ何も残さずrollback）
			okStock, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, l.Quantity)
			if err != nil {
				return internalError(err)
			}
			if !okStock {
				return NewCodedError(http.StatusConflict, CodeInsufficientStock, "Stock insuficiente para "+p.Name)
			}

			total = total.Add(p.Price.Mul(decimal.NewFromInt(l.Quantity)))
			items = append(items, model.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				ImageURL:    p.ImageURL,
				Quantity:    l.Quantity,
				Price:       p.Price,
			})
		}

		order = model.Order{
			UserID:          userID,
			Total:           total,
			Status:          model.OrderStatusPending,
			PaymentMethod:   payment,
			ShippingAddress: address,
			Notes:           strings.TrimSpace(in.Notes),
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return internalError(err)
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
			return internalError(err)
		}

		orderID := order.ID
		for _, it := range items {
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ProductID:   it.ProductID,
				ActorUserID: userID,
				OrderID:     &orderID,
				Kind:        model.AdjustmentReserve,
				Delta:       -it.Quantity,
				Reason:      fmt.Sprintf("order #%d", orderID),
			}); err != nil {
				return internalError(err)
			}
		}

		// 注文した行だけ消す（ロック後に追加された行は残る）
		if err := r.Carts().DeleteLines(ctx, userID, lineIDs); err != nil {
			return internalError(err)
		}
		return nil
	})
	if err != nil {
		return CheckoutOutput{}, toHTTPError(err)
	}

	u.notifyConfirmation(ctx, userID, order, items)

	return CheckoutOutput{
		OrderID: order.ID,
		Total:   order.Total.InexactFloat64(),
		Status:  string(order.Status),
	}, nil
}

func (u *OrderUsecase) notifyConfirmation(ctx context.Context, userID int64, order model.Order, items []model.OrderItem) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		// メールは付随処理なので注文結果には影響させない
		logOwnerLookupFailure(ctx, order.ID, err)
		return
	}

	ev := notification.NewEvent(notification.KindOrderConfirmation, user.Email)
	ev.UserName = user.Name
	ev.OrderID = order.ID
	ev.Status = string(order.Status)
	ev.Total = order.Total
	ev.PaymentMethod = order.PaymentMethod
	ev.ShippingAddress = order.ShippingAddress
	ev.Items = make([]notification.Item, 0, len(items))
	for _, it := range items {
		ev.Items = append(ev.Items, notification.Item{Name: it.ProductName, Quantity: it.Quantity, Price: it.Price})
	}
	publishBestEffort(ctx, u.notifier, ev)
}

// ListMyOrders は自分の注文（新しい順、明細つき）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	orders, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if len(orders) == 0 {
		return []OrderOutput{}, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	itemsByOrder, err := u.orderItems.ListByOrderIDs(ctx, ids)
	if err != nil {
		return nil, internalError(err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, itemsByOrder[o.ID]))
	}
	return outs, nil
}

// GetOrder は注文1件。本人か管理者だけ見られる。
func (u *OrderUsecase) GetOrder(ctx context.Context, userID int64, role model.Role, orderID int64) (OrderOutput, error) {
	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, orderNotFound()
	}
	if err != nil {
		return OrderOutput{}, internalError(err)
	}

	if o.UserID != userID && role != model.RoleAdmin {
		return OrderOutput{}, NewCodedError(http.StatusForbidden, CodeForbidden, "No autorizado para ver este pedido")
	}

	items, err := u.orderItems.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, internalError(err)
	}
	return toOrderOutput(o, items), nil
}

func orderNotFound() *HTTPError {
	return NewCodedError(http.StatusNotFound, CodeNotFound, "Pedido no encontrado")
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	out := OrderOutput{
		ID:              o.ID,
		Total:           o.Total.InexactFloat64(),
		Status:          string(o.Status),
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		Items:           make([]OrderItemOutput, 0, len(items)),
	}
	for _, it := range items {
		img := it.ImageURL
		if img == "" {
			img = defaultProductImage
		}
		out.Items = append(out.Items, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			ImageURL:  img,
			Quantity:  it.Quantity,
			Price:     it.Price.InexactFloat64(),
		})
	}
	return out
}
