package configs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"pedeai/entity"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedAdmin creates the first admin account. Missing credentials skip it.
func SeedAdmin(ctx context.Context, db *gorm.DB, email, password string, log *slog.Logger) error {
	if email == "" || password == "" {
		log.InfoContext(ctx, "skip seeding admin: missing ADMIN_EMAIL/ADMIN_PASSWORD")
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.InfoContext(ctx, "admin already exists", "email", email)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := entity.User{
		Name:     "Admin",
		Email:    email,
		Password: string(hash),
		Role:     entity.RoleAdmin,
	}
	return db.WithContext(ctx).Create(&admin).Error
}

type catalogFile struct {
	Restaurants []struct {
		Name     string  `yaml:"name"`
		Category string  `yaml:"category"`
		Rating   float64 `yaml:"rating"`
		Products []struct {
			Name        string `yaml:"name"`
			Description string `yaml:"description"`
			Price       string `yaml:"price"`
			Image       string `yaml:"image"`
		} `yaml:"products"`
	} `yaml:"restaurants"`
}

// SeedCatalog loads restaurants and products from a YAML file. Restaurants
// are matched by name, so running it twice adds nothing. A missing file is
// skipped.
func SeedCatalog(ctx context.Context, db *gorm.DB, path string, log *slog.Logger) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.InfoContext(ctx, "skip seeding catalog: file not found", "path", path)
		return nil
	}
	if err != nil {
		return err
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	added := 0
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range file.Restaurants {
			var n int64
			if err := tx.Model(&entity.Restaurant{}).Where("name = ?", r.Name).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}

			rest := entity.Restaurant{Name: r.Name, Category: r.Category, Rating: r.Rating}
			if err := tx.Create(&rest).Error; err != nil {
				return err
			}
			for _, p := range r.Products {
				price, err := decimal.NewFromString(p.Price)
				if err != nil {
					return fmt.Errorf("%s / %s price: %w", r.Name, p.Name, err)
				}
				prod := entity.Product{
					RestaurantID: rest.ID,
					Name:         p.Name,
					Description:  p.Description,
					Price:        price.Round(2),
					Image:        p.Image,
				}
				if err := tx.Omit("Restaurant").Create(&prod).Error; err != nil {
					return err
				}
			}
			added++
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "catalog seeded", "restaurants_added", added)
	return nil
}
