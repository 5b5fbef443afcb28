package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"pedeai/entity"
	"pedeai/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository keeps one cart row per user plus its lines. Mutations for
// a user hold that user's lock for the whole read-modify-write transaction.
type CartRepository struct {
	DB    *gorm.DB
	locks sync.Map
}

var _ store.CartStore = (*CartRepository)(nil)

func NewCartRepository(db *gorm.DB) *CartRepository { return &CartRepository{DB: db} }

// Load returns the user's cart; a user without a cart row gets an empty one.
func (r *CartRepository) Load(ctx context.Context, userID uint) (*entity.Cart, error) {
	return r.load(Conn(ctx, r.DB), userID)
}

func (r *CartRepository) Mutate(ctx context.Context, userID uint, fn store.MutateFunc) (*entity.Cart, error) {
	mu := r.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	var out *entity.Cart
	err := Conn(ctx, r.DB).Transaction(func(tx *gorm.DB) error {
		current, err := r.load(tx, userID)
		if err != nil {
			return err
		}
		work := current.Clone()
		if err := fn(WithTx(ctx, tx), work); err != nil {
			return err
		}
		if err := work.Validate(); err != nil {
			return err
		}
		if err := r.save(tx, work); err != nil {
			return err
		}
		out = work
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CartRepository) load(tx *gorm.DB, userID uint) (*entity.Cart, error) {
	var c entity.Cart
	err := tx.Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &entity.Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		c.Items = nil
	}
	return &c, nil
}

// save rewrites the cart row and replaces its lines.
func (r *CartRepository) save(tx *gorm.DB, c *entity.Cart) error {
	if c.ID == 0 {
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return err
		}
	} else if err := tx.Model(&entity.Cart{}).Where("id = ?", c.ID).
		Updates(map[string]any{"restaurant_id": c.RestaurantID, "updated_at": time.Now()}).Error; err != nil {
		return err
	}

	if err := tx.Where("cart_id = ?", c.ID).Delete(&entity.CartLine{}).Error; err != nil {
		return err
	}
	if c.IsEmpty() {
		return nil
	}
	for i := range c.Items {
		c.Items[i].ID = 0
		c.Items[i].CartID = c.ID
		c.Items[i].Position = i
	}
	return tx.Create(&c.Items).Error
}

func (r *CartRepository) lock(userID uint) *sync.Mutex {
	m, _ := r.locks.LoadOrStore(userID, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// DeleteCartForUser drops the user's cart rows. It works whichever cart
// backend is active.
func DeleteCartForUser(tx *gorm.DB, userID uint) error {
	sub := tx.Model(&entity.Cart{}).Select("id").Where("user_id = ?", userID)
	if err := tx.Where("cart_id IN (?)", sub).Delete(&entity.CartLine{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", userID).Delete(&entity.Cart{}).Error
}
