// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"

	"recipebox/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds domain entities populated with fake data.
type Factory struct {
	faker *gofakeit.Faker
	seq   int
}

// NewFactory returns a Factory. A zero seed picks a random one.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// BuildUser returns an unsaved user with a unique username and the given digest.
func (f *Factory) BuildUser(passwordHash string) *models.User {
	f.seq++
	return &models.User{
		Username:     fmt.Sprintf("%s_%d", strings.ToLower(f.faker.Username()), f.seq),
		PasswordHash: passwordHash,
		ImageURL:     fmt.Sprintf("https://picsum.photos/seed/%s/400/400", f.faker.UUID()),
		Bio:          f.faker.Sentence(12),
	}
}

// BuildRecipe returns an unsaved recipe owned by owner.
func (f *Factory) BuildRecipe(owner *models.User) *models.Recipe {
	recipe := &models.Recipe{
		Title:        f.dishName(),
		Instructions: f.instructions(),
		UserID:       owner.ID,
	}
	if f.faker.Bool() {
		minutes := f.faker.Number(5, 240)
		recipe.MinutesToComplete = &minutes
	}
	return recipe
}

func (f *Factory) dishName() string {
	switch f.faker.Number(0, 3) {
	case 0:
		return f.faker.Breakfast()
	case 1:
		return f.faker.Lunch()
	case 2:
		return f.faker.Dinner()
	default:
		return f.faker.Dessert()
	}
}

func (f *Factory) instructions() string {
	text := f.faker.Paragraph(1, 4, 12, " ")
	for len([]rune(text)) < models.MinInstructionsLength {
		text += " " + f.faker.Sentence(10)
	}
	return text
}
