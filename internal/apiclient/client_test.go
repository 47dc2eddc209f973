package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"sushiramen/internal/apiclient"
	"sushiramen/internal/config"
	"sushiramen/internal/domain/model"
	"sushiramen/internal/logging"
	"sushiramen/internal/server"
	"sushiramen/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newShop(t *testing.T) (*apiclient.Client, *gorm.DB) {
	t.Helper()
	gdb := testutil.NewDB(t)
	cfg := config.Config{
		JWTSecret:        "client-test-secret",
		JWTTTL:           time.Hour,
		GoEnv:            "test",
		FrontendURL:      "http://localhost:5173",
		PasswordResetTTL: time.Hour,
	}
	e := server.New(cfg, logging.NewWithWriter(io.Discard, "error"),
		server.NewHandlers(cfg, server.Deps{DB: gdb, BcryptCost: bcrypt.MinCost}))

	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)
	return apiclient.New(ts.URL, ts.Client()), gdb
}

func TestClient_CheckoutScenario(t *testing.T) {
	ctx := context.Background()
	c, gdb := newShop(t)
	testutil.CreateUser(t, gdb, "Admin", "admin@example.com", model.RoleAdmin)
	a := testutil.CreateProduct(t, gdb, "Nigiri", "10.00", 10)
	b := testutil.CreateProduct(t, gdb, "Gyoza", "5.50", 10)

	user, err := c.Register(ctx, "Hana", "hana@example.com", "secret1")
	require.NoError(t, err)
	admin, err := c.Login(ctx, "admin@example.com", testutil.DefaultPassword)
	require.NoError(t, err)

	uctx := user.Context(ctx)
	_, err = c.AddToCart(uctx, a.ID, 2)
	require.NoError(t, err)
	cart, err := c.AddToCart(uctx, b.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 25.5, cart.Total)

	res, err := c.Checkout(uctx, apiclient.CheckoutRequest{PaymentMethod: "cash", ShippingAddress: "123 St"})
	require.NoError(t, err)
	assert.Equal(t, 25.5, res.Total)
	assert.Equal(t, "pending", res.Status)

	cart, err = c.GetCart(uctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	order, err := c.GetOrder(uctx, res.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	sort.Slice(order.Items, func(i, j int) bool { return order.Items[i].ProductID < order.Items[j].ProductID })
	assert.Equal(t, apiclient.OrderItem{ProductID: a.ID, Name: "Nigiri", ImageURL: a.ImageURL, Quantity: 2, Price: 10}, order.Items[0])
	assert.Equal(t, apiclient.OrderItem{ProductID: b.ID, Name: "Gyoza", ImageURL: b.ImageURL, Quantity: 1, Price: 5.5}, order.Items[1])

	upd, err := c.UpdateOrderStatus(admin.Context(ctx), res.OrderID, "completed")
	require.NoError(t, err)
	assert.Equal(t, "pending", upd.PreviousStatus)

	order, err = c.GetOrder(uctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "completed", order.Status)

	list, page, err := c.AdminListOrders(admin.Context(ctx), apiclient.AdminOrderQuery{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hana@example.com", list[0].UserEmail)
	assert.Equal(t, int64(2), list[0].ItemsCount)
	assert.Equal(t, apiclient.Pagination{Page: 1, Limit: 50, Total: 1}, page)
}

func TestClient_CredentialsArePerRequest(t *testing.T) {
	ctx := context.Background()
	c, gdb := newShop(t)
	testutil.CreateUser(t, gdb, "Hana", "hana@example.com", model.RoleUser)
	testutil.CreateUser(t, gdb, "Ken", "ken@example.com", model.RoleUser)

	hana, err := c.Login(ctx, "hana@example.com", testutil.DefaultPassword)
	require.NoError(t, err)
	ken, err := c.Login(ctx, "ken@example.com", testutil.DefaultPassword)
	require.NoError(t, err)

	// ログインしてもクライアント自体は匿名のまま
	_, err = c.ListOrders(ctx)
	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", apiErr.Code)

	me, err := c.Me(hana.Context(ctx))
	require.NoError(t, err)
	assert.Equal(t, "hana@example.com", me.Email)
	me, err = c.Me(ken.Context(ctx))
	require.NoError(t, err)
	assert.Equal(t, "ken@example.com", me.Email)

	// 片方のログアウトはもう片方に影響しない
	require.NoError(t, c.Logout(hana.Context(ctx)))
	_, err = c.Me(hana.Context(ctx))
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INVALID_TOKEN", apiErr.Code)

	_, err = c.Me(ken.Context(ctx))
	require.NoError(t, err)

	_, err = c.Checkout(ken.Context(ctx), apiclient.CheckoutRequest{PaymentMethod: "cash", ShippingAddress: "1 St"})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "EMPTY_CART", apiErr.Code)
}
