package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"pedeai/entity"
	"pedeai/pkg/apperr"
	"pedeai/repository"

	"gorm.io/gorm"
)

type PaymentService struct {
	DB   *gorm.DB
	Repo *repository.PaymentRepository
	now  func() time.Time
}

func NewPaymentService(db *gorm.DB, repo *repository.PaymentRepository) *PaymentService {
	return &PaymentService{DB: db, Repo: repo, now: time.Now}
}

// PaymentIn carries the full card number only on the way in; just the last
// four digits are kept.
type PaymentIn struct {
	Type       entity.PaymentType `json:"type" binding:"required"`
	CardNumber string             `json:"cardNumber"`
	HolderName string             `json:"holderName"`
	Expiry     string             `json:"expiry"`
	IsDefault  bool               `json:"isDefault"`
}

type PaymentUpdateIn struct {
	HolderName *string `json:"holderName"`
	Expiry     *string `json:"expiry"`
	IsDefault  *bool   `json:"isDefault"`
}

func (s *PaymentService) List(ctx context.Context, userID uint) ([]entity.PaymentMethod, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *PaymentService) Create(ctx context.Context, userID uint, in *PaymentIn) (*entity.PaymentMethod, error) {
	if !in.Type.Valid() {
		return nil, apperr.Validation("unknown payment type %q", in.Type)
	}
	p := &entity.PaymentMethod{UserID: userID, Type: in.Type, IsDefault: in.IsDefault}

	if in.Type.RequiresCard() {
		number := digitsOnly(in.CardNumber)
		if len(number) < 13 || len(number) > 19 || !luhnValid(number) {
			return nil, apperr.Validation("invalid card number")
		}
		holder := strings.TrimSpace(in.HolderName)
		if holder == "" {
			return nil, apperr.Validation("holder name is required")
		}
		expiry, err := s.checkExpiry(in.Expiry)
		if err != nil {
			return nil, err
		}
		p.Last4 = number[len(number)-4:]
		p.HolderName = holder
		p.Expiry = expiry
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.Repo.ListByUser(repository.WithTx(ctx, tx), userID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			p.IsDefault = true
		}
		if err := s.Repo.Create(tx, p); err != nil {
			return err
		}
		if p.IsDefault {
			return s.Repo.ClearDefault(tx, userID, p.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PaymentService) Update(ctx context.Context, userID, id uint, in *PaymentUpdateIn) (*entity.PaymentMethod, error) {
	var out *entity.PaymentMethod
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.Repo.FindForUser(repository.WithTx(ctx, tx), userID, id)
		if err != nil {
			return err
		}
		if in.HolderName != nil && p.Type.RequiresCard() {
			holder := strings.TrimSpace(*in.HolderName)
			if holder == "" {
				return apperr.Validation("holder name is required")
			}
			p.HolderName = holder
		}
		if in.Expiry != nil && p.Type.RequiresCard() {
			expiry, err := s.checkExpiry(*in.Expiry)
			if err != nil {
				return err
			}
			p.Expiry = expiry
		}
		if in.IsDefault != nil {
			if p.IsDefault && !*in.IsDefault {
				return apperr.Validation("choose another default payment method instead")
			}
			p.IsDefault = *in.IsDefault
		}
		if err := s.Repo.Save(tx, p); err != nil {
			return err
		}
		if p.IsDefault {
			if err := s.Repo.ClearDefault(tx, userID, p.ID); err != nil {
				return err
			}
		}
		out = p
		return nil
	})
	return out, err
}

// Delete removes a payment method, promoting the oldest remaining one when
// the default goes away.
func (s *PaymentService) Delete(ctx context.Context, userID, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := repository.WithTx(ctx, tx)
		p, err := s.Repo.FindForUser(txCtx, userID, id)
		if err != nil {
			return err
		}
		if err := s.Repo.Delete(tx, userID, id); err != nil {
			return err
		}
		if !p.IsDefault {
			return nil
		}
		rest, err := s.Repo.ListByUser(txCtx, userID)
		if err != nil || len(rest) == 0 {
			return err
		}
		next := rest[0]
		next.IsDefault = true
		return s.Repo.Save(tx, &next)
	})
}

// checkExpiry accepts MM/YY or MMYY and rejects cards past their month.
func (s *PaymentService) checkExpiry(raw string) (string, error) {
	d := digitsOnly(raw)
	if len(d) != 4 {
		return "", apperr.Validation("expiry must be MM/YY")
	}
	month, _ := strconv.Atoi(d[:2])
	year, _ := strconv.Atoi(d[2:])
	if month < 1 || month > 12 {
		return "", apperr.Validation("expiry month must be 01-12")
	}
	now := s.now()
	year += 2000
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return "", apperr.Validation("card is expired")
	}
	return d[:2] + "/" + d[2:], nil
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		n := int(number[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}
