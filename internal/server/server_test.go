package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"sushiramen/internal/config"
	"sushiramen/internal/domain/model"
	"sushiramen/internal/logging"
	"sushiramen/internal/notification"
	"sushiramen/internal/server"
	"sushiramen/internal/testutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (n *recordingNotifier) Publish(ctx context.Context, ev notification.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) Events() []notification.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Event(nil), n.events...)
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Count      *int            `json:"count"`
	Pagination *struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
	} `json:"pagination"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

type testServer struct {
	e        *echo.Echo
	db       *gorm.DB
	notifier *recordingNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gdb := testutil.NewDB(t)
	n := &recordingNotifier{}
	cfg := config.Config{
		JWTSecret:        "server-test-secret",
		JWTTTL:           time.Hour,
		GoEnv:            "test",
		FrontendURL:      "http://localhost:5173",
		PasswordResetTTL: time.Hour,
	}
	h := server.NewHandlers(cfg, server.Deps{DB: gdb, Notifier: n, BcryptCost: bcrypt.MinCost})
	e := server.New(cfg, logging.NewWithWriter(io.Discard, "error"), h)
	return &testServer{e: e, db: gdb, notifier: n}
}

func (s *testServer) do(t *testing.T, method string, path string, token string, body any) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": testutil.DefaultPassword,
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out.Token
}

func TestServer_AnonymousOrdersIsMissingToken(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Equal(t, "MISSING_TOKEN", env.Code)
	assert.Equal(t, "Token de autorización requerido", env.Error)
}

func TestServer_UnknownRoute(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Ruta no encontrada", env.Error)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestServer_CheckoutAndAdminStatusFlow(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "Hana", "hana@example.com", model.RoleUser)
	testutil.CreateUser(t, s.db, "Ken", "ken@example.com", model.RoleUser)
	testutil.CreateUser(t, s.db, "Admin", "admin@example.com", model.RoleAdmin)
	a := testutil.CreateProduct(t, s.db, "Nigiri", "10.00", 10)
	b := testutil.CreateProduct(t, s.db, "Gyoza", "5.50", 10)

	hana := s.login(t, "hana@example.com")
	ken := s.login(t, "ken@example.com")
	admin := s.login(t, "admin@example.com")

	status, _ := s.do(t, http.MethodPost, "/api/cart", hana, map[string]any{"productId": a.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.do(t, http.MethodPost, "/api/cart", hana, map[string]any{"productId": b.ID})
	require.Equal(t, http.StatusCreated, status)

	status, env := s.do(t, http.MethodPost, "/api/cart", hana, map[string]any{"productId": b.ID, "quantity": 1.5})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Se requiere cantidad válida", env.Error)

	// 必須項目なし
	status, env = s.do(t, http.MethodPost, "/api/orders/checkout", hana, map[string]any{"paymentMethod": "cash"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Método de pago y dirección son requeridos", env.Error)

	status, env = s.do(t, http.MethodPost, "/api/orders/checkout", hana, map[string]any{
		"paymentMethod": "cash", "shippingAddress": "123 St",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var created struct {
		OrderID int64   `json:"orderId"`
		Total   float64 `json:"total"`
		Status  string  `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 25.5, created.Total)
	assert.Equal(t, "pending", created.Status)

	status, env = s.do(t, http.MethodGet, "/api/cart/count", hana, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"count":0}`, string(env.Data))

	orderPath := "/api/orders/" + strconv.FormatInt(created.OrderID, 10)

	status, env = s.do(t, http.MethodGet, orderPath, ken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Code)

	// 一般ユーザーは管理APIに入れない
	statusPath := "/api/orders/admin/" + strconv.FormatInt(created.OrderID, 10) + "/status"
	status, env = s.do(t, http.MethodPut, statusPath, hana, map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ADMIN_REQUIRED", env.Code)

	status, env = s.do(t, http.MethodPut, statusPath, admin, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_STATUS", env.Code)

	status, env = s.do(t, http.MethodPut, "/api/admin/orders/"+strconv.FormatInt(created.OrderID, 10), admin,
		map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "Estado del pedido actualizado", env.Message)
	assert.JSONEq(t, `{"id":`+strconv.FormatInt(created.OrderID, 10)+`,"status":"completed","previousStatus":"pending"}`, string(env.Data))

	status, env = s.do(t, http.MethodGet, orderPath, hana, nil)
	require.Equal(t, http.StatusOK, status)
	var order struct {
		Status string `json:"status"`
		Items  []struct {
			ProductID int64   `json:"productId"`
			Quantity  int64   `json:"quantity"`
			Price     float64 `json:"price"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "completed", order.Status)
	require.Len(t, order.Items, 2)

	events := s.notifier.Events()
	require.Len(t, events, 2)
	assert.Equal(t, notification.KindOrderConfirmation, events[0].Kind)
	assert.Equal(t, notification.KindOrderStatus, events[1].Kind)
	assert.Equal(t, "hana@example.com", events[1].To)
	assert.Equal(t, "completed", events[1].Status)

	status, env = s.do(t, http.MethodGet, "/api/orders/admin/all?limit=10", admin, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.Total)
	assert.Equal(t, 10, env.Pagination.Limit)
}

func TestServer_LogoutInvalidatesToken(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "Hana", "hana@example.com", model.RoleUser)
	token := s.login(t, "hana@example.com")

	status, env := s.do(t, http.MethodGet, "/api/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"valid":true`)

	status, env = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Sesión cerrada exitosamente", env.Message)

	status, env = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", env.Code)
}

func TestServer_ProductsPublicAndAdminMirror(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "Admin", "admin@example.com", model.RoleAdmin)
	admin := s.login(t, "admin@example.com")

	status, env := s.do(t, http.MethodPost, "/api/admin/products", admin, map[string]any{
		"name": "Ramen Tonkotsu", "price": "12.90", "category": "ramen", "stock": 3,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env = s.do(t, http.MethodPost, "/api/products", admin, map[string]any{"name": "Sin categoría", "price": 3})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Por favor, proporciona todos los campos requeridos para el producto.", env.Error)

	status, env = s.do(t, http.MethodGet, "/api/products?category=ramen", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)
	assert.Contains(t, string(env.Data), `"price":12.9`)

	status, env = s.do(t, http.MethodGet, "/api/products/999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Producto no encontrado", env.Error)
}

func TestServer_ReviewMineIsNullWhenAbsent(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "Hana", "hana@example.com", model.RoleUser)
	p := testutil.CreateProduct(t, s.db, "Gyoza", "5.50", 10)
	token := s.login(t, "hana@example.com")

	status, env := s.do(t, http.MethodGet, "/api/reviews/user/"+strconv.FormatInt(p.ID, 10), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", string(env.Data))
	assert.Equal(t, "No se encontró reseña para este producto", env.Message)

	status, _ = s.do(t, http.MethodPost, "/api/reviews", token, map[string]any{"productId": p.ID, "rating": 5, "comment": "Rico"})
	require.Equal(t, http.StatusCreated, status)

	status, env = s.do(t, http.MethodGet, "/api/reviews/"+strconv.FormatInt(p.ID, 10), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"userName":"Hana"`)
}

func TestServer_ReviewLookupByUserAndProductQuery(t *testing.T) {
	s := newTestServer(t)
	hana := testutil.CreateUser(t, s.db, "Hana", "hana@example.com", model.RoleUser)
	testutil.CreateUser(t, s.db, "Ken", "ken@example.com", model.RoleUser)
	testutil.CreateUser(t, s.db, "Admin", "admin@example.com", model.RoleAdmin)
	p := testutil.CreateProduct(t, s.db, "Gyoza", "5.50", 10)
	hanaToken := s.login(t, "hana@example.com")

	status, _ := s.do(t, http.MethodPost, "/api/reviews", hanaToken, map[string]any{"productId": p.ID, "rating": 4, "comment": "Bueno"})
	require.Equal(t, http.StatusCreated, status)

	path := "/api/reviews/user/" + strconv.FormatInt(hana.ID, 10) + "?productId=" + strconv.FormatInt(p.ID, 10)

	status, env := s.do(t, http.MethodGet, path, hanaToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"rating":4`)

	status, env = s.do(t, http.MethodGet, path, s.login(t, "ken@example.com"), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Code)

	status, env = s.do(t, http.MethodGet, path, s.login(t, "admin@example.com"), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"rating":4`)

	status, env = s.do(t, http.MethodGet, "/api/reviews/user/"+strconv.FormatInt(hana.ID, 10)+"?productId=abc", hanaToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Se requiere un productId válido", env.Error)
}
