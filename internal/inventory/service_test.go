package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	repo := NewRepository(setupInventoryTestDB(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestServiceCreateValidates(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateGoodInput{
		Name:     "  ",
		Category: "toys",
		Price:    decimal.Zero,
		Count:    -1,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	require.Contains(t, details, "name")
	require.Contains(t, details, "category")
	require.Contains(t, details, "price")
	require.Contains(t, details, "count")
}

func TestServiceCreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateGoodInput{
		Name:        "Laptop",
		Category:    enums.GoodCategoryElectronics,
		Price:       decimal.RequireFromString("999.90"),
		Description: "14 inch",
		Count:       3,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Laptop", got.Name)
	require.True(t, got.Price.Equal(decimal.RequireFromString("999.90")))

	_, err = svc.Get(ctx, created.ID+1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceDecrementClassifiesFailures(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	good := seedGood(t, repo, "Socks", enums.GoodCategoryClothes, "4.00", 1)

	dto, err := svc.Decrement(ctx, good.ID)
	require.NoError(t, err)
	require.Equal(t, 0, dto.Count)

	_, err = svc.Decrement(ctx, good.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeOutOfStock))
	require.Equal(t, "stock already zero", pkgerrors.As(err).Message())

	_, err = svc.Decrement(ctx, good.ID+50)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceUpdateMergesFields(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	good := seedGood(t, repo, "Belt", enums.GoodCategoryAccessories, "25.00", 6)

	price := decimal.RequireFromString("19.50")
	updated, err := svc.Update(ctx, good.ID, UpdateGoodInput{Price: &price})
	require.NoError(t, err)
	require.Equal(t, "Belt", updated.Name)
	require.Equal(t, 6, updated.Count)
	require.True(t, updated.Price.Equal(price))

	bad := decimal.NewFromInt(-1)
	_, err = svc.Update(ctx, good.ID, UpdateGoodInput{Price: &bad})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	name := "Ghost"
	_, err = svc.Update(ctx, good.ID+9, UpdateGoodInput{Name: &name})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceRestockRequiresPositiveQuantity(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	good := seedGood(t, repo, "Milk", enums.GoodCategoryFood, "1.20", 0)

	_, err := svc.Restock(ctx, good.ID, 0)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	dto, err := svc.Restock(ctx, good.ID, 12)
	require.NoError(t, err)
	require.Equal(t, 12, dto.Count)

	_, err = svc.Restock(ctx, good.ID+1, 2)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceListRejectsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)

	unknown := enums.GoodCategory("toys")
	_, err := svc.List(context.Background(), &unknown)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type failingRepository struct {
	Repository
}

func (failingRepository) Decrement(context.Context, int64) (*models.Good, bool, error) {
	return nil, false, errors.New("connection reset")
}

func TestServiceDecrementWrapsRepositoryErrors(t *testing.T) {
	svc, err := NewService(failingRepository{})
	require.NoError(t, err)

	_, err = svc.Decrement(context.Background(), 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}
