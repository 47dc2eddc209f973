package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"sushiramen/internal/domain/model"
	"sushiramen/internal/notification"
	repo "sushiramen/internal/repository"
	"sushiramen/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// AdminTxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type AdminTxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *AdminTxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type AdminTxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	inventory  repo.InventoryRepository
	auditLogs  repo.AuditLogRepository

	// AdminOrderUsecase では使わないが TxRepos interface を満たすために保持
	carts    repo.CartRepository
	products repo.ProductRepository
	users    repo.UserRepository
}

func (r *AdminTxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *AdminTxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *AdminTxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *AdminTxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }
func (r *AdminTxReposMock) Carts() repo.CartRepository           { return r.carts }
func (r *AdminTxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *AdminTxReposMock) Users() repo.UserRepository           { return r.users }

// =====================
// Repository mocks
// =====================

type AdminOrderRepoMock struct{ mock.Mock }

func (m *AdminOrderRepoMock) Create(ctx context.Context, order *model.Order) error {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminOrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminOrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *AdminOrderRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminOrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *AdminOrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.OrderSummary, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.OrderSummary)
	return orders, args.Get(1).(int64), args.Error(2)
}

type AdminOrderItemRepoMock struct{ mock.Mock }

func (m *AdminOrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminOrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *AdminOrderItemRepoMock) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	panic("not used in AdminOrderUsecase tests")
}

type AdminInventoryRepoMock struct{ mock.Mock }

func (m *AdminInventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminInventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *AdminInventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *AdminInventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

func (m *AdminInventoryRepoMock) ListAdjustments(ctx context.Context, productID int64) ([]model.InventoryAdjustment, error) {
	panic("not used in AdminOrderUsecase tests")
}

type AdminAuditRepoMock struct{ mock.Mock }

func (m *AdminAuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AdminAuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used in AdminOrderUsecase tests")
}

type adminOrderFixture struct {
	tx       *AdminTxManagerMock
	orders   *AdminOrderRepoMock
	items    *AdminOrderItemRepoMock
	inv      *AdminInventoryRepoMock
	audit    *AdminAuditRepoMock
	notifier *recordingNotifier
	uc       *usecase.AdminOrderUsecase
}

func newAdminOrderFixture() *adminOrderFixture {
	f := &adminOrderFixture{
		tx:       new(AdminTxManagerMock),
		orders:   new(AdminOrderRepoMock),
		items:    new(AdminOrderItemRepoMock),
		inv:      new(AdminInventoryRepoMock),
		audit:    new(AdminAuditRepoMock),
		notifier: &recordingNotifier{},
	}
	f.tx.Repos = &AdminTxReposMock{
		orders:     f.orders,
		orderItems: f.items,
		inventory:  f.inv,
		auditLogs:  f.audit,
	}
	owners := &ownerRepoStub{users: map[int64]*model.User{
		5: {ID: 5, Name: "Hana", Email: "hana@example.com", Role: model.RoleUser},
	}}
	f.uc = usecase.NewAdminOrderUsecase(f.tx, owners, f.notifier, fixedClock{t: testNow})
	return f
}

// =====================
// List tests
// =====================

func TestAdminOrderUsecase_List_InvalidPage(t *testing.T) {
	f := newAdminOrderFixture()

	_, err := f.uc.List(context.Background(), usecase.AdminOrderListInput{Page: -1, Limit: 20})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminOrderUsecase_List_InvalidLimit(t *testing.T) {
	f := newAdminOrderFixture()

	_, err := f.uc.List(context.Background(), usecase.AdminOrderListInput{Page: 1, Limit: 101})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
}

func TestAdminOrderUsecase_List_InvalidStatusFilter(t *testing.T) {
	f := newAdminOrderFixture()

	_, err := f.uc.List(context.Background(), usecase.AdminOrderListInput{Status: "shipped"})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInvalidStatus)
}

func TestAdminOrderUsecase_List_DefaultsAndMapping(t *testing.T) {
	f := newAdminOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	want := repo.AdminOrderListFilter{Page: 1, Limit: 50}
	created := testNow.Add(-time.Hour)
	f.orders.On("ListAdmin", mock.Anything, want).Return([]model.OrderSummary{
		{
			ID: 10, UserID: 5, UserName: "Hana", UserEmail: "hana@example.com",
			Total: decimal.RequireFromString("25.50"), Status: model.OrderStatusPending,
			PaymentMethod: "cash", CreatedAt: created, ItemsCount: 2,
		},
	}, int64(61), nil)

	out, err := f.uc.List(context.Background(), usecase.AdminOrderListInput{})
	require.NoError(t, err)

	require.Len(t, out.Orders, 1)
	assert.Equal(t, usecase.OrderSummaryOutput{
		ID: 10, UserID: 5, UserName: "Hana", UserEmail: "hana@example.com",
		Total: 25.5, Status: "pending", PaymentMethod: "cash", CreatedAt: created, ItemsCount: 2,
	}, out.Orders[0])
	assert.Equal(t, usecase.Pagination{Page: 1, Limit: 50, Total: 61}, out.Pagination)

	f.tx.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

// =====================
// UpdateStatus tests
// =====================

func TestAdminOrderUsecase_UpdateStatus_MissingStatus(t *testing.T) {
	f := newAdminOrderFixture()

	_, err := f.uc.UpdateStatus(context.Background(), 1, 7, "  ")
	he := assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
	assert.Equal(t, "El estado del pedido es requerido.", he.Message)
	assert.Empty(t, f.notifier.Events())
}

func TestAdminOrderUsecase_UpdateStatus_InvalidStatus(t *testing.T) {
	f := newAdminOrderFixture()

	_, err := f.uc.UpdateStatus(context.Background(), 1, 7, "shipped")
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInvalidStatus)

	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
	assert.Empty(t, f.notifier.Events())
}

func TestAdminOrderUsecase_UpdateStatus_NotFound(t *testing.T) {
	f := newAdminOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByIDForUpdate", mock.Anything, int64(99)).Return(model.Order{}, repo.ErrNotFound)

	_, err := f.uc.UpdateStatus(context.Background(), 1, 99, "completed")
	he := assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)
	assert.Equal(t, "Pedido no encontrado", he.Message)

	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.Events())
}

// pending -> completed は在庫を触らない + audit + メール1通
func TestAdminOrderUsecase_UpdateStatus_Completed_AuditsAndNotifies(t *testing.T) {
	f := newAdminOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	adminID := int64(1)
	orderID := int64(7)
	f.orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(model.Order{
		ID: orderID, UserID: 5, Status: model.OrderStatusPending, Total: decimal.RequireFromString("25.50"),
	}, nil)
	f.orders.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusCompleted).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(a model.AuditLog) bool {
		return a.ActorUserID == adminID &&
			a.Action == model.AuditActionUpdateOrderStatus &&
			a.ResourceType == model.AuditResourceOrder &&
			a.ResourceID == orderID &&
			a.BeforeJSON == `{"status":"pending"}` &&
			a.AfterJSON == `{"status":"completed"}` &&
			a.CreatedAt.Equal(testNow)
	})).Return(nil)

	out, err := f.uc.UpdateStatus(context.Background(), adminID, orderID, "completed")
	require.NoError(t, err)
	assert.Equal(t, usecase.UpdateStatusOutput{ID: orderID, Status: "completed", PreviousStatus: "pending"}, out)

	f.items.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
	f.inv.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
	f.audit.AssertExpectations(t)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notification.KindOrderStatus, events[0].Kind)
	assert.Equal(t, "hana@example.com", events[0].To)
	assert.Equal(t, "completed", events[0].Status)
	assert.Equal(t, orderID, events[0].OrderID)
}

// cancelledに入るときは在庫戻し
func TestAdminOrderUsecase_UpdateStatus_Cancel_RestoresStock(t *testing.T) {
	f := newAdminOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(50)
	f.orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(model.Order{
		ID: orderID, UserID: 5, Status: model.OrderStatusProcessing,
	}, nil)
	f.items.On("ListByOrderID", mock.Anything, orderID).Return([]model.OrderItem{
		{OrderID: orderID, ProductID: 100, Quantity: 2},
		{OrderID: orderID, ProductID: 101, Quantity: 1},
	}, nil)
	f.inv.On("IncreaseStock", mock.Anything, int64(100), int64(2)).Return(nil)
	f.inv.On("IncreaseStock", mock.Anything, int64(101), int64(1)).Return(nil)
	f.inv.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(a model.InventoryAdjustment) bool {
		return a.Kind == model.AdjustmentRestock && a.Delta > 0 && a.OrderID != nil && *a.OrderID == orderID
	})).Return(nil).Twice()
	f.orders.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusCancelled).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.UpdateStatus(context.Background(), 1, orderID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, "processing", out.PreviousStatus)

	f.inv.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	require.Len(t, f.notifier.Events(), 1)
}

// cancelledから戻すときに在庫が足りなければ409で何も変えない
func TestAdminOrderUsecase_UpdateStatus_LeaveCancelled_InsufficientStock(t *testing.T) {
	f := newAdminOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(51)
	f.orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(model.Order{
		ID: orderID, UserID: 5, Status: model.OrderStatusCancelled,
	}, nil)
	f.items.On("ListByOrderID", mock.Anything, orderID).Return([]model.OrderItem{
		{OrderID: orderID, ProductID: 100, ProductName: "Ramen Tonkotsu", Quantity: 3},
	}, nil)
	f.inv.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(3)).Return(false, nil)

	_, err := f.uc.UpdateStatus(context.Background(), 1, orderID, "pending")
	he := assertHTTPError(t, err, http.StatusConflict, usecase.CodeInsufficientStock)
	assert.Equal(t, "Stock insuficiente para Ramen Tonkotsu", he.Message)

	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.Events())
}

// 同じステータスでも更新してメールを送り直す
func TestAdminOrderUsecase_UpdateStatus_SameStatus_Resends(t *testing.T) {
	f := newAdminOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	f.orders.On("FindByIDForUpdate", mock.Anything, int64(8)).Return(model.Order{
		ID: 8, UserID: 5, Status: model.OrderStatusProcessing,
	}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(8), model.OrderStatusProcessing).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	for i := 0; i < 2; i++ {
		_, err := f.uc.UpdateStatus(context.Background(), 1, 8, "processing")
		require.NoError(t, err)
	}
	assert.Len(t, f.notifier.Events(), 2)
}

// 通知の失敗はステータス更新の結果を変えない
func TestAdminOrderUsecase_UpdateStatus_NotifierFailureIgnored(t *testing.T) {
	f := newAdminOrderFixture()
	f.notifier.err = errors.New("queue full")
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	f.orders.On("FindByIDForUpdate", mock.Anything, int64(9)).Return(model.Order{
		ID: 9, UserID: 5, Status: model.OrderStatusPending,
	}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(9), model.OrderStatusProcessing).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.UpdateStatus(context.Background(), 1, 9, "processing")
	require.NoError(t, err)
	assert.Equal(t, "processing", out.Status)
}

// 注文者が消えていてもステータス更新は成功（メールだけ送らない）
func TestAdminOrderUsecase_UpdateStatus_OwnerMissing_SkipsNotification(t *testing.T) {
	f := newAdminOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	f.orders.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 404, Status: model.OrderStatusPending,
	}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusCompleted).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.UpdateStatus(context.Background(), 1, 10, "completed")
	require.NoError(t, err)
	assert.Empty(t, f.notifier.Events())
}
