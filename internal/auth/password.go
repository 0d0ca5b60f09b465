package auth

import "golang.org/x/crypto/bcrypt"

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, hashed string) bool
}

type BcryptPasswordHasher struct {
	cost int
}

// cost <= 0 uses bcrypt.DefaultCost
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptPasswordHasher) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
