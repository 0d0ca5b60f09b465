package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateDelivery(t *testing.T) {
	cases := []struct {
		name, address, phone string
		field                string
		err                  error
	}{
		{"dashed phone", "12 Market Rd", "555-123-4567", "", nil},
		{"spaced phone", "12 Market Rd", "(555) 123 4567", "", nil},
		{"short phone", "12 Market Rd", "12345", "phone", ErrPhoneFormat},
		{"long phone", "12 Market Rd", "+91 555 123 4567", "phone", ErrPhoneFormat},
		{"empty phone", "12 Market Rd", "  ", "phone", ErrPhoneRequired},
		{"blank address", "   ", "5551234567", "address", ErrAddressRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			field, err := ValidateDelivery(tc.address, tc.phone)
			assert.Equal(t, tc.field, field)
			assert.Equal(t, tc.err, err)
		})
	}
}

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "5551234567", PhoneDigits("555-123-4567"))
	assert.Equal(t, "", PhoneDigits("call me"))
}

func TestValidateOrderLines(t *testing.T) {
	ok := OrderLine{ProductID: 1, Name: "Apples", Price: decimal.NewFromInt(200), Quantity: 2}

	assert.NoError(t, ValidateOrderLines([]OrderLine{ok}))
	assert.Equal(t, ErrNoLines, ValidateOrderLines(nil))

	bad := ok
	bad.Quantity = 0
	assert.Equal(t, ErrLineQuantity, ValidateOrderLines([]OrderLine{ok, bad}))

	bad = ok
	bad.Price = decimal.NewFromInt(-1)
	assert.Equal(t, ErrLinePrice, ValidateOrderLines([]OrderLine{bad}))

	bad = ok
	bad.ProductID = 0
	assert.Equal(t, ErrLineProduct, ValidateOrderLines([]OrderLine{bad}))

	bad = ok
	bad.Name = " "
	assert.Equal(t, ErrLineName, ValidateOrderLines([]OrderLine{bad}))
}

func TestValidateRegister(t *testing.T) {
	field, err := ValidateRegister("veggie", "veggie@example.com", "secret1")
	assert.NoError(t, err)
	assert.Empty(t, field)

	field, err = ValidateRegister("", "veggie@example.com", "secret1")
	assert.Equal(t, "username", field)
	assert.Equal(t, ErrUsernameRequired, err)

	field, err = ValidateRegister("vg", "veggie@example.com", "secret1")
	assert.Equal(t, "username", field)
	assert.Equal(t, ErrUsernameLength, err)

	field, err = ValidateRegister("veggie", "Veggie <veggie@example.com>", "secret1")
	assert.Equal(t, "email", field)
	assert.Equal(t, ErrInvalidEmail, err)

	field, err = ValidateRegister("veggie", "veggie@example.com", "abc")
	assert.Equal(t, "password", field)
	assert.Equal(t, ErrPasswordTooShort, err)
}

func TestValidateProduct(t *testing.T) {
	_, err := ValidateProduct("Apples", "Fresh red apples", decimal.RequireFromString("199.99"))
	assert.NoError(t, err)

	field, err := ValidateProduct("Apples", "Fresh", decimal.Zero)
	assert.Equal(t, "price", field)
	assert.Equal(t, ErrProductPrice, err)

	field, err = ValidateProduct("Apples", "Fresh", decimal.RequireFromString("1.005"))
	assert.Equal(t, "price", field)
	assert.Equal(t, ErrProductPriceExp, err)

	field, err = ValidateProduct("Apples", "", decimal.NewFromInt(1))
	assert.Equal(t, "description", field)
	assert.Equal(t, ErrProductDesc, err)
}
