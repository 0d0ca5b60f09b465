// Package seed fills an empty database with the sample catalog and an
// optional bootstrap admin.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pratyek/grocery-app/internal/auth"
	"github.com/pratyek/grocery-app/internal/domain/model"
	repo "github.com/pratyek/grocery-app/internal/repository"
)

var sampleProducts = []struct {
	name, description string
	price             int64
}{
	{"Apples", "Fresh red apples from local farms", 200},
	{"Bananas", "Bunch of ripe yellow bananas", 100},
	{"Carrots", "Organic carrots, perfect for salads", 100},
	{"Potatoes", "Russet potatoes, great for baking or frying", 300},
	{"Tomatoes", "Vine-ripened tomatoes", 200},
	{"Broccoli", "Fresh green broccoli florets", 250},
	{"Spinach", "Organic baby spinach leaves", 310},
	{"Bell Peppers", "Assorted bell peppers, red, yellow, and green", 420},
	{"Onions", "Yellow onions, essential for cooking", 130},
	{"Mangoes", "Sweet and juicy mangoes", 550},
}

// Products inserts the sample catalog when no product exists yet.
// It reports how many rows were written.
func Products(ctx context.Context, products repo.ProductRepository, log zerolog.Logger) (int, error) {
	n, err := products.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	for i, sp := range sampleProducts {
		if _, err := products.Create(ctx, model.Product{
			Name:        sp.name,
			Description: sp.description,
			Price:       decimal.NewFromInt(sp.price),
			Image:       model.DefaultProductImage,
		}); err != nil {
			return i, fmt.Errorf("seed product %q: %w", sp.name, err)
		}
	}
	log.Info().Int("count", len(sampleProducts)).Msg("sample products added")
	return len(sampleProducts), nil
}

type AdminAccount struct {
	Username string
	Email    string
	Password string
}

// Admin creates the bootstrap admin unless one of its identifiers is already
// taken. An incomplete account is skipped.
func Admin(ctx context.Context, users repo.UserRepository, hasher auth.PasswordHasher, acc AdminAccount, log zerolog.Logger) (bool, error) {
	acc.Username = strings.TrimSpace(acc.Username)
	acc.Email = strings.ToLower(strings.TrimSpace(acc.Email))
	if acc.Username == "" || acc.Email == "" || acc.Password == "" {
		return false, nil
	}

	existing, err := users.FindByUsername(ctx, acc.Username)
	if err != nil {
		return false, fmt.Errorf("find admin: %w", err)
	}
	if existing == nil {
		existing, err = users.FindByEmail(ctx, acc.Email)
		if err != nil {
			return false, fmt.Errorf("find admin: %w", err)
		}
	}
	if existing != nil {
		if !existing.IsAdmin() {
			log.Warn().Str("username", existing.Username).Msg("bootstrap admin identity belongs to a buyer, skipped")
		}
		return false, nil
	}

	hash, err := hasher.Hash(acc.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	if err := users.Create(ctx, &model.User{
		Username:     acc.Username,
		Email:        acc.Email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	log.Info().Str("username", acc.Username).Msg("bootstrap admin created")
	return true, nil
}
