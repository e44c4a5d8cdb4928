package seed

import (
	"fmt"
	"log"

	"recipebox/internal/models"
	"recipebox/internal/password"

	"gorm.io/gorm"
)

// DefaultPassword is the password every generated user shares.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumRecipes  int
	ShouldClean bool
	Seed        int64
}

// Result reports what a seeding run created.
type Result struct {
	Users   int
	Recipes int
}

// Seeder writes demo data to the database.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder returns a Seeder bound to db.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll removes every recipe and user.
func (s *Seeder) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Recipe{}).Error; err != nil {
			return fmt.Errorf("clear recipes: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("clear users: %w", err)
		}
		log.Println("Cleared users and recipes")
		return nil
	})
}

// Run generates opts.NumUsers users and spreads opts.NumRecipes recipes among them.
func (s *Seeder) Run(opts Options) (Result, error) {
	if opts.NumRecipes > 0 && opts.NumUsers <= 0 {
		return Result{}, fmt.Errorf("recipes need at least one user")
	}

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return Result{}, err
		}
	}

	digest, err := password.Hash(DefaultPassword)
	if err != nil {
		return Result{}, fmt.Errorf("hash default password: %w", err)
	}

	f := NewFactory(opts.Seed)
	var res Result
	err = s.db.Transaction(func(tx *gorm.DB) error {
		users := make([]*models.User, 0, opts.NumUsers)
		for i := 0; i < opts.NumUsers; i++ {
			u := f.BuildUser(digest)
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("create user %s: %w", u.Username, err)
			}
			users = append(users, u)
		}

		for i := 0; i < opts.NumRecipes; i++ {
			owner := users[f.faker.Number(0, len(users)-1)]
			if err := tx.Create(f.BuildRecipe(owner)).Error; err != nil {
				return fmt.Errorf("create recipe: %w", err)
			}
		}

		res = Result{Users: len(users), Recipes: opts.NumRecipes}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
