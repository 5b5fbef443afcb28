package services

import (
	"context"
	"strings"
	"unicode"

	"pedeai/entity"
	"pedeai/pkg/apperr"
	"pedeai/repository"

	"gorm.io/gorm"
)

type AddressService struct {
	DB           *gorm.DB
	Repo         *repository.AddressRepository
	MaxAddresses int
}

func NewAddressService(db *gorm.DB, repo *repository.AddressRepository, maxAddresses int) *AddressService {
	return &AddressService{DB: db, Repo: repo, MaxAddresses: maxAddresses}
}

type AddressIn struct {
	Street       *string `json:"street"`
	Number       *string `json:"number"`
	Complement   *string `json:"complement"`
	Neighborhood *string `json:"neighborhood"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Zip          *string `json:"zip"`
	IsDefault    *bool   `json:"isDefault"`
}

func (s *AddressService) List(ctx context.Context, userID uint) ([]entity.Address, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Create stores a new address. The first address of a user becomes the
// default; the cap is checked inside the transaction.
func (s *AddressService) Create(ctx context.Context, userID uint, in *AddressIn) (*entity.Address, error) {
	a := &entity.Address{UserID: userID}
	in.apply(a)
	if err := normalizeAddress(a); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.Repo.CountByUser(tx, userID)
		if err != nil {
			return err
		}
		if s.MaxAddresses > 0 && n >= int64(s.MaxAddresses) {
			return apperr.Rejected("address limit reached, remove one before adding another")
		}
		if n == 0 {
			a.IsDefault = true
		}
		if err := s.Repo.Create(tx, a); err != nil {
			return err
		}
		if a.IsDefault {
			return s.Repo.ClearDefault(tx, userID, a.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Update changes the fields present in in. Unsetting the only default is
// refused; set another address as default instead.
func (s *AddressService) Update(ctx context.Context, userID, id uint, in *AddressIn) (*entity.Address, error) {
	var out *entity.Address
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.Repo.FindForUser(repository.WithTx(ctx, tx), userID, id)
		if err != nil {
			return err
		}
		wasDefault := a.IsDefault
		in.apply(a)
		if err := normalizeAddress(a); err != nil {
			return err
		}
		if wasDefault && !a.IsDefault {
			return apperr.Validation("choose another default address instead")
		}
		if err := s.Repo.Save(tx, a); err != nil {
			return err
		}
		if a.IsDefault {
			if err := s.Repo.ClearDefault(tx, userID, a.ID); err != nil {
				return err
			}
		}
		out = a
		return nil
	})
	return out, err
}

// Delete removes an address. When it was the default, the oldest remaining
// address takes over.
func (s *AddressService) Delete(ctx context.Context, userID, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := repository.WithTx(ctx, tx)
		a, err := s.Repo.FindForUser(txCtx, userID, id)
		if err != nil {
			return err
		}
		if err := s.Repo.Delete(tx, userID, id); err != nil {
			return err
		}
		if !a.IsDefault {
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

func (in *AddressIn) apply(a *entity.Address) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&a.Street, in.Street)
	set(&a.Number, in.Number)
	set(&a.Complement, in.Complement)
	set(&a.Neighborhood, in.Neighborhood)
	set(&a.City, in.City)
	set(&a.State, in.State)
	set(&a.Zip, in.Zip)
	if in.IsDefault != nil {
		a.IsDefault = *in.IsDefault
	}
}

// normalizeAddress reduces the zip to its digits and upper-cases the state.
func normalizeAddress(a *entity.Address) error {
	a.Zip = digitsOnly(a.Zip)
	a.State = strings.ToUpper(a.State)

	switch {
	case a.Street == "":
		return apperr.Validation("street is required")
	case a.Number == "":
		return apperr.Validation("number is required")
	case a.City == "":
		return apperr.Validation("city is required")
	case len(a.State) != 2 || !isLetters(a.State):
		return apperr.Validation("state must be a 2-letter code")
	case len(a.Zip) != 8:
		return apperr.Validation("zip must have 8 digits")
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
