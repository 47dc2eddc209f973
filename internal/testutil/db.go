package testutil

import (
	"context"
	"fmt"
	"testing"

	"sushiramen/internal/domain/model"
	"sushiramen/internal/infra/db"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB はテストごとに独立したインメモリsqliteを返す（本番と同じモデルでmigrate済み）
// 接続は1本だけ。Tx中に外のDBを触るとデッドロックするので注意。
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

const DefaultPassword = "password123"

func CreateUser(t *testing.T, gdb *gorm.DB, name string, email string, role model.Role) model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	require.NoError(t, err)

	u := model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, gdb.WithContext(context.Background()).Create(&u).Error)
	return u
}

func CreateProduct(t *testing.T, gdb *gorm.DB, name string, price string, stock int64) model.Product {
	t.Helper()

	p := model.Product{
		Name:        name,
		Description: name + " de la casa",
		Price:       decimal.RequireFromString(price),
		Category:    "sushi",
		ImageURL:    "/img/" + uuid.NewString() + ".png",
		Stock:       stock,
		IsActive:    true,
	}
	require.NoError(t, gdb.WithContext(context.Background()).Create(&p).Error)
	return p
}

func AddToCart(t *testing.T, gdb *gorm.DB, userID int64, productID int64, qty int64) {
	t.Helper()
	line := model.CartLine{UserID: userID, ProductID: productID, Quantity: qty}
	require.NoError(t, gdb.WithContext(context.Background()).Create(&line).Error)
}
