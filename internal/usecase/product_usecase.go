package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pratyek/grocery-app/internal/auth"
	"github.com/pratyek/grocery-app/internal/domain/model"
	repo "github.com/pratyek/grocery-app/internal/repository"
	"github.com/pratyek/grocery-app/internal/validator"
)

const maxQueryLen = 100

type ProductUsecase struct {
	products repo.ProductRepository
	tx       repo.TransactionManager
	log      zerolog.Logger
}

// DI
func NewProductUsecase(products repo.ProductRepository, tx repo.TransactionManager, log zerolog.Logger) *ProductUsecase {
	return &ProductUsecase{products: products, tx: tx, log: log}
}

// List matches q against name and description, case-insensitively.
func (u *ProductUsecase) List(ctx context.Context, q string) ([]model.Product, error) {
	q = strings.TrimSpace(q)
	if len(q) > maxQueryLen {
		return nil, NewValidationError("q", "q too long")
	}

	items, err := u.products.List(ctx, repo.ProductListQuery{Q: q})
	if err != nil {
		return nil, NewInternalError(err)
	}
	return items, nil
}

func (u *ProductUsecase) Get(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewValidationError("id", "invalid product id")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewNotFoundError("Product not found")
	}
	if err != nil {
		return model.Product{}, NewInternalError(err)
	}
	return p, nil
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
}

func (u *ProductUsecase) Create(ctx context.Context, actor auth.Actor, in CreateProductInput) (model.Product, error) {
	if !actor.IsAdmin() {
		return model.Product{}, NewAuthorizationError("Admin access required")
	}

	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if field, err := validator.ValidateProduct(name, description, in.Price); err != nil {
		return model.Product{}, NewValidationError(field, err.Error())
	}
	image := strings.TrimSpace(in.Image)
	if image == "" {
		image = model.DefaultProductImage
	}

	var created model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			Name:        name,
			Description: description,
			Price:       in.Price,
			Image:       image,
		})
		if err != nil {
			return err
		}
		created = p

		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionCreateProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   p.ID,
			AfterJSON:    auditJSON(p),
			CreatedAt:    time.Now(),
		})
	})
	if err != nil {
		return model.Product{}, NewInternalError(err)
	}

	u.log.Info().Int64("product_id", created.ID).Int64("actor_id", actor.UserID).Msg("product created")
	return created, nil
}

func (u *ProductUsecase) Delete(ctx context.Context, actor auth.Actor, productID int64) error {
	if !actor.IsAdmin() {
		return NewAuthorizationError("Admin access required")
	}
	if productID <= 0 {
		return NewValidationError("id", "invalid product id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := r.Products().SoftDelete(ctx, productID); err != nil {
			return err
		}
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionDeleteProduct,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   auditJSON(before),
			CreatedAt:    time.Now(),
		})
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFoundError("Product not found")
	}
	if err != nil {
		return NewInternalError(err)
	}

	u.log.Info().Int64("product_id", productID).Int64("actor_id", actor.UserID).Msg("product deleted")
	return nil
}

func auditJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
