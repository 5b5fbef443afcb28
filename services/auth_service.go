package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"pedeai/entity"
	"pedeai/pkg/apperr"
	"pedeai/repository"
	"pedeai/store"
	"pedeai/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

// AuthService handles accounts, login and the caller's profile.
type AuthService struct {
	DB        *gorm.DB
	Users     *repository.UserRepository
	Carts     store.CartStore
	Addresses *repository.AddressRepository
	Payments  *repository.PaymentRepository
	jwtSecret string
	jwtTTL    time.Duration
	log       *slog.Logger
}

func NewAuthService(
	db *gorm.DB,
	users *repository.UserRepository,
	carts store.CartStore,
	addresses *repository.AddressRepository,
	payments *repository.PaymentRepository,
	secret string,
	ttl time.Duration,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		DB: db, Users: users, Carts: carts,
		Addresses: addresses, Payments: payments,
		jwtSecret: secret, jwtTTL: ttl, log: logger,
	}
}

type RegisterIn struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birthDate"`
}

type LoginIn struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateMeIn holds the editable profile fields. Nil fields are left alone.
type UpdateMeIn struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birthDate"`
	Password  *string `json:"password"`
}

// Session is what login and register hand back to the client.
type Session struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer account and logs it in.
func (s *AuthService) Register(ctx context.Context, in *RegisterIn) (*Session, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("invalid email")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Validation("password must have at least %d characters", minPasswordLen)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	count, err := s.Users.CountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Rejected("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		Phone:     strings.TrimSpace(in.Phone),
		BirthDate: strings.TrimSpace(in.BirthDate),
		Role:      entity.RoleCustomer,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return s.session(user)
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password look the same to the caller.
func (s *AuthService) Login(ctx context.Context, in *LoginIn) (*Session, error) {
	user, err := s.Users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return s.session(user)
}

func (s *AuthService) session(user *entity.User) (*Session, error) {
	token, err := utils.GenerateToken(user.ID, user.Role, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*entity.User, error) {
	return s.Users.FindByID(ctx, userID)
}

func (s *AuthService) UpdateMe(ctx context.Context, userID uint, in *UpdateMeIn) (*entity.User, error) {
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name is required")
		}
		updates["name"] = name
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.BirthDate != nil {
		updates["birth_date"] = strings.TrimSpace(*in.BirthDate)
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLen {
			return nil, apperr.Validation("password must have at least %d characters", minPasswordLen)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password"] = string(hashed)
	}
	if len(updates) > 0 {
		if err := s.Users.Update(ctx, userID, updates); err != nil {
			return nil, err
		}
	}
	return s.Users.FindByID(ctx, userID)
}

// DeleteMe removes the account with its addresses and payment methods.
// Orders are kept as history. The cart is emptied through the cart store
// so the mock backend is cleared too.
func (s *AuthService) DeleteMe(ctx context.Context, userID uint) error {
	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.Carts.Mutate(ctx, userID, func(_ context.Context, c *entity.Cart) error {
		c.Clear()
		return nil
	}); err != nil {
		return err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.DeleteCartForUser(tx, userID); err != nil {
			return err
		}
		if err := s.Addresses.DeleteForUser(tx, userID); err != nil {
			return err
		}
		if err := s.Payments.DeleteForUser(tx, userID); err != nil {
			return err
		}
		return s.Users.Delete(tx, userID)
	})
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "user deleted", "user_id", userID)
	return nil
}
