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
)

func TestReview_Lifecycle(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	uc := usecase.NewReviewUsecase(
		infrarepo.NewReviewGormRepository(gdb),
		infrarepo.NewProductGormRepository(gdb),
		infrarepo.NewUserGormRepository(gdb),
	)
	hana := testutil.CreateUser(t, gdb, "Hana", "hana@example.com", model.RoleUser)
	ken := testutil.CreateUser(t, gdb, "Ken", "ken@example.com", model.RoleUser)
	admin := testutil.CreateUser(t, gdb, "Admin", "admin@example.com", model.RoleAdmin)
	p := testutil.CreateProduct(t, gdb, "Gyoza", "5.50", 5)

	_, err := uc.Create(ctx, hana.ID, usecase.ReviewInput{ProductID: p.ID})
	he := assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
	assert.Equal(t, "productId y rating son requeridos", he.Message)

	_, err = uc.Create(ctx, hana.ID, usecase.ReviewInput{ProductID: p.ID, Rating: 6})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeInvalidRating)

	rv, err := uc.Create(ctx, hana.ID, usecase.ReviewInput{ProductID: p.ID, Rating: 5, Comment: "Muy rico"})
	require.NoError(t, err)

	_, err = uc.Create(ctx, hana.ID, usecase.ReviewInput{ProductID: p.ID, Rating: 4})
	he = assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeReviewExists)
	assert.Equal(t, "Ya has creado una reseña para este producto", he.Message)

	list, err := uc.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Hana", list[0].UserName)

	mine, err := uc.FindMine(ctx, ken.ID, p.ID)
	require.NoError(t, err)
	assert.Nil(t, mine)

	// 他人のレビューは更新できない
	_, err = uc.Update(ctx, ken.ID, rv.ID, 1, "")
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)

	updated, err := uc.Update(ctx, hana.ID, rv.ID, 3, "Normal")
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Rating)

	err = uc.Delete(ctx, ken.ID, model.RoleUser, rv.ID)
	assertHTTPError(t, err, http.StatusForbidden, usecase.CodeForbidden)

	require.NoError(t, uc.Delete(ctx, admin.ID, model.RoleAdmin, rv.ID))
	err = uc.Delete(ctx, hana.ID, model.RoleUser, rv.ID)
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)
}
