package usecase

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pratyek/grocery-app/internal/domain/model"
	repo "github.com/pratyek/grocery-app/internal/repository"
)

func newProductFixture() (*ProductUsecase, *productRepoMock, *auditRepoMock) {
	products := new(productRepoMock)
	audit := new(auditRepoMock)
	tx := &txManagerMock{repos: &txReposMock{products: products, auditLogs: audit}}
	tx.On("WithinTx", mock.Anything).Return()
	return NewProductUsecase(products, tx, zerolog.Nop()), products, audit
}

func TestProductList(t *testing.T) {
	uc, products, _ := newProductFixture()
	products.On("List", mock.Anything, repo.ProductListQuery{Q: "app"}).Return([]model.Product{apples}, nil)

	out, err := uc.List(context.Background(), "  app ")
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestProductGet(t *testing.T) {
	uc, products, _ := newProductFixture()
	products.On("FindByID", mock.Anything, int64(1)).Return(apples, nil)
	products.On("FindByID", mock.Anything, int64(2)).Return(model.Product{}, repo.ErrNotFound)

	p, err := uc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Apples", p.Name)

	_, err = uc.Get(context.Background(), 2)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestProductCreate(t *testing.T) {
	uc, products, audit := newProductFixture()

	_, err := uc.Create(context.Background(), buyer, CreateProductInput{})
	assert.Equal(t, KindAuthorization, KindOf(err))

	_, err = uc.Create(context.Background(), admin, CreateProductInput{Name: "Kale", Description: "Leafy", Price: decimal.Zero})
	assert.Equal(t, KindValidation, KindOf(err))

	products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Kale" && p.Image == model.DefaultProductImage
	})).Return(model.Product{ID: 11, Name: "Kale", Price: decimal.NewFromInt(90), Image: model.DefaultProductImage}, nil).Once()
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCreateProduct && l.ResourceID == 11
	})).Return(nil).Once()

	p, err := uc.Create(context.Background(), admin, CreateProductInput{Name: " Kale ", Description: "Leafy", Price: decimal.NewFromInt(90)})
	require.NoError(t, err)
	assert.Equal(t, int64(11), p.ID)
	audit.AssertExpectations(t)
}

func TestProductDelete(t *testing.T) {
	uc, products, audit := newProductFixture()
	products.On("FindByID", mock.Anything, int64(1)).Return(apples, nil)
	products.On("SoftDelete", mock.Anything, int64(1)).Return(nil).Once()
	products.On("FindByID", mock.Anything, int64(2)).Return(model.Product{}, repo.ErrNotFound)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, uc.Delete(context.Background(), admin, 1))
	assert.Equal(t, KindNotFound, KindOf(uc.Delete(context.Background(), admin, 2)))
	assert.Equal(t, KindAuthorization, KindOf(uc.Delete(context.Background(), buyer, 1)))
	products.AssertExpectations(t)
}
