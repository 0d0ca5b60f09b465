package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pratyek/grocery-app/internal/auth"
	"github.com/pratyek/grocery-app/internal/domain/model"
	repo "github.com/pratyek/grocery-app/internal/repository"
	"github.com/pratyek/grocery-app/internal/validator"
)

type TokenIssuer interface {
	Issue(user model.User) (string, time.Time, error)
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func toUserDTO(u model.User) UserDTO {
	return UserDTO{ID: u.ID, Username: u.Username, Email: u.Email, Role: string(u.Role)}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type LoginInput struct {
	Username string
	Password string
}

// AuthResult is returned by register and login. The handler also puts Token
// into the cookie.
type AuthResult struct {
	User      UserDTO
	Token     string
	ExpiresAt time.Time
}

type AuthUsecase struct {
	users            repo.UserRepository
	hasher           auth.PasswordHasher
	tokens           TokenIssuer
	allowAdminSignup bool
	log              zerolog.Logger
}

func NewAuthUsecase(
	users repo.UserRepository,
	hasher auth.PasswordHasher,
	tokens TokenIssuer,
	allowAdminSignup bool,
	log zerolog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:            users,
		hasher:           hasher,
		tokens:           tokens,
		allowAdminSignup: allowAdminSignup,
		log:              log,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if field, err := validator.ValidateRegister(username, email, in.Password); err != nil {
		return AuthResult{}, NewValidationError(field, err.Error())
	}

	role := model.RoleBuyer
	if in.Role != "" && in.Role != string(model.RoleBuyer) {
		if in.Role != string(model.RoleAdmin) {
			return AuthResult{}, NewValidationError("role", "role must be buyer or admin")
		}
		// admin sign-up is opt-in; otherwise the field is ignored
		if u.allowAdminSignup {
			role = model.RoleAdmin
		}
	}

	existing, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		return AuthResult{}, NewInternalError(err)
	}
	if existing != nil {
		return AuthResult{}, NewConflictError("username", "Username already exists")
	}
	existing, err = u.users.FindByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, NewInternalError(err)
	}
	if existing != nil {
		return AuthResult{}, NewConflictError("email", "Email already exists")
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, NewInternalError(err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := u.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent sign-up
		if errors.Is(err, repo.ErrConflict) {
			return AuthResult{}, NewConflictError("username", "Username or email already exists")
		}
		return AuthResult{}, NewInternalError(err)
	}

	u.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return u.issue(*user)
}

// Login answers the same way for an unknown user and a wrong password.
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return AuthResult{}, NewValidationError("", "username and password are required")
	}

	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		return AuthResult{}, NewInternalError(err)
	}
	if user == nil || !u.hasher.Verify(in.Password, user.PasswordHash) {
		return AuthResult{}, NewAuthenticationError("Invalid username or password")
	}

	return u.issue(*user)
}

func (u *AuthUsecase) Me(ctx context.Context, actor auth.Actor) (UserDTO, error) {
	if !actor.Authenticated() {
		return UserDTO{}, NewAuthenticationError("authentication required")
	}
	user, err := u.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return UserDTO{}, NewInternalError(err)
	}
	if user == nil {
		return UserDTO{}, NewNotFoundError("User not found")
	}
	return toUserDTO(*user), nil
}

func (u *AuthUsecase) issue(user model.User) (AuthResult, error) {
	token, exp, err := u.tokens.Issue(user)
	if err != nil {
		return AuthResult{}, NewInternalError(err)
	}
	return AuthResult{User: toUserDTO(user), Token: token, ExpiresAt: exp}, nil
}
