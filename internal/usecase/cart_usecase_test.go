package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"sushiramen/internal/domain/model"
	infrarepo "sushiramen/internal/infra/repository"
	"sushiramen/internal/testutil"
	"sushiramen/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func int64Ptr(v int64) *int64 { return &v }

func newCartUsecase(t *testing.T) (*usecase.CartUsecase, *gorm.DB) {
	t.Helper()
	gdb := testutil.NewDB(t)
	uc := usecase.NewCartUsecase(infrarepo.NewCartGormRepository(gdb), infrarepo.NewProductGormRepository(gdb))
	return uc, gdb
}

func TestCart_AddAccumulatesAndTotals(t *testing.T) {
	ctx := context.Background()
	uc, gdb := newCartUsecase(t)
	user := testutil.CreateUser(t, gdb, "Hana", "hana@example.com", model.RoleUser)
	a := testutil.CreateProduct(t, gdb, "Nigiri Salmón", "10.00", 10)
	b := testutil.CreateProduct(t, gdb, "Gyoza", "5.50", 10)

	// quantity省略は1
	_, err := uc.Add(ctx, user.ID, a.ID, nil)
	require.NoError(t, err)
	_, err = uc.Add(ctx, user.ID, a.ID, nil)
	require.NoError(t, err)
	out, err := uc.Add(ctx, user.ID, b.ID, int64Ptr(1))
	require.NoError(t, err)

	require.Len(t, out.Items, 2)
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	assert.Equal(t, 20.0, out.Items[0].Subtotal)
	assert.Equal(t, int64(10), out.Items[0].Stock)
	assert.Equal(t, 25.5, out.Total)
	assert.Equal(t, int64(3), out.Count)

	n, err := uc.Count(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCart_AddErrors(t *testing.T) {
	ctx := context.Background()
	uc, gdb := newCartUsecase(t)
	user := testutil.CreateUser(t, gdb, "Hana", "hana@example.com", model.RoleUser)
	p := testutil.CreateProduct(t, gdb, "Ramen Shoyu", "12.00", 2)

	_, err := uc.Add(ctx, user.ID, 0, nil)
	he := assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
	assert.Equal(t, "Se requiere ID de producto", he.Message)

	_, err = uc.Add(ctx, user.ID, p.ID, int64Ptr(-1))
	he = assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
	assert.Equal(t, "Se requiere cantidad válida", he.Message)

	_, err = uc.Add(ctx, user.ID, 9999, nil)
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)

	_, err = uc.Add(ctx, user.ID, p.ID, int64Ptr(3))
	assertHTTPError(t, err, http.StatusConflict, usecase.CodeInsufficientStock)
}

// 0以下への更新は行の削除
func TestCart_UpdateToZeroDeletes(t *testing.T) {
	ctx := context.Background()
	uc, gdb := newCartUsecase(t)
	user := testutil.CreateUser(t, gdb, "Hana", "hana@example.com", model.RoleUser)
	p := testutil.CreateProduct(t, gdb, "Gyoza", "5.50", 10)
	testutil.AddToCart(t, gdb, user.ID, p.ID, 2)

	out, removed, err := uc.Update(ctx, user.ID, p.ID, 5)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, int64(5), out.Items[0].Quantity)

	out, removed, err = uc.Update(ctx, user.ID, p.ID, 0)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, out.Items)

	var n int64
	require.NoError(t, gdb.Model(&model.CartLine{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCart_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	uc, gdb := newCartUsecase(t)
	user := testutil.CreateUser(t, gdb, "Hana", "hana@example.com", model.RoleUser)
	a := testutil.CreateProduct(t, gdb, "Gyoza", "5.50", 10)
	b := testutil.CreateProduct(t, gdb, "Miso", "3.00", 10)
	testutil.AddToCart(t, gdb, user.ID, a.ID, 1)
	testutil.AddToCart(t, gdb, user.ID, b.ID, 1)

	out, err := uc.Remove(ctx, user.ID, a.ID)
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)

	_, err = uc.Remove(ctx, user.ID, a.ID)
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)

	require.NoError(t, uc.Clear(ctx, user.ID))
	require.NoError(t, uc.Clear(ctx, user.ID))
	out, err = uc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Zero(t, out.Total)
}
