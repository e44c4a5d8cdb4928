package seed

import (
	"fmt"
	"io"
	"os"
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/password"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture is a hand-written set of users and their recipes.
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
}

type FixtureUser struct {
	Username string          `yaml:"username"`
	Password string          `yaml:"password"`
	ImageURL string          `yaml:"image_url"`
	Bio      string          `yaml:"bio"`
	Recipes  []FixtureRecipe `yaml:"recipes"`
}

type FixtureRecipe struct {
	Title             string `yaml:"title"`
	Instructions      string `yaml:"instructions"`
	MinutesToComplete *int   `yaml:"minutes_to_complete"`
}

// DecodeFixture parses a YAML fixture. Unknown keys are rejected.
func DecodeFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	for i, u := range fx.Users {
		if strings.TrimSpace(u.Username) == "" {
			return nil, fmt.Errorf("fixture user %d: username is required", i)
		}
	}
	return &fx, nil
}

// LoadFixture reads a YAML fixture from path.
func LoadFixture(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeFixture(f)
}

// ApplyFixture inserts every user and recipe in fx in one transaction. Users
// without a password get DefaultPassword.
func (s *Seeder) ApplyFixture(fx *Fixture) (Result, error) {
	var res Result
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, fu := range fx.Users {
			plain := fu.Password
			if plain == "" {
				plain = DefaultPassword
			}
			digest, err := password.Hash(plain)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", fu.Username, err)
			}

			user := &models.User{
				Username:     strings.TrimSpace(fu.Username),
				PasswordHash: digest,
				ImageURL:     fu.ImageURL,
				Bio:          fu.Bio,
			}
			if err := tx.Create(user).Error; err != nil {
				return fmt.Errorf("create user %s: %w", fu.Username, err)
			}
			res.Users++

			for _, fr := range fu.Recipes {
				recipe := &models.Recipe{
					Title:             fr.Title,
					Instructions:      fr.Instructions,
					MinutesToComplete: fr.MinutesToComplete,
					UserID:            user.ID,
				}
				if err := tx.Create(recipe).Error; err != nil {
					return fmt.Errorf("create recipe %q for %s: %w", fr.Title, fu.Username, err)
				}
				res.Recipes++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
