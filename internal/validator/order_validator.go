package validator

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	ErrAddressRequired = errors.New("delivery address is required")
	ErrPhoneRequired   = errors.New("phone number is required")
	ErrPhoneFormat     = errors.New("phone number must have 10 digits")

	ErrNoLines         = errors.New("order must contain at least one product")
	ErrLineProduct     = errors.New("product id is invalid")
	ErrLineName        = errors.New("product name is required")
	ErrLineQuantity    = errors.New("quantity must be at least 1")
	ErrLinePrice       = errors.New("price must not be negative")
	ErrProductName     = errors.New("name is required")
	ErrProductDesc     = errors.New("description is required")
	ErrProductPrice    = errors.New("price must be positive")
	ErrProductPriceExp = errors.New("price must have at most 2 decimal places")
)

const phoneDigits = 10

// PhoneDigits strips every non-digit character.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ValidateDelivery(address, phone string) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "address", ErrAddressRequired
	}
	if strings.TrimFunc(phone, unicode.IsSpace) == "" {
		return "phone", ErrPhoneRequired
	}
	if len(PhoneDigits(phone)) != phoneDigits {
		return "phone", ErrPhoneFormat
	}
	return "", nil
}

type OrderLine struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int64
}

func ValidateOrderLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return ErrNoLines
	}
	for _, l := range lines {
		switch {
		case l.ProductID <= 0:
			return ErrLineProduct
		case strings.TrimSpace(l.Name) == "":
			return ErrLineName
		case l.Quantity < 1:
			return ErrLineQuantity
		case l.Price.IsNegative():
			return ErrLinePrice
		}
	}
	return nil
}

func ValidateProduct(name, description string, price decimal.Decimal) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "name", ErrProductName
	}
	if strings.TrimSpace(description) == "" {
		return "description", ErrProductDesc
	}
	if !price.IsPositive() {
		return "price", ErrProductPrice
	}
	if !price.Equal(price.Round(2)) {
		return "price", ErrProductPriceExp
	}
	return "", nil
}
