package seed

import (
	"strings"
	"testing"
	"unicode/utf8"

	"recipebox/internal/database/dbtest"
	"recipebox/internal/models"
	"recipebox/internal/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	password.Cost = bcrypt.MinCost
}

func TestFactory_BuildsValidEntities(t *testing.T) {
	f := NewFactory(42)
	owner := f.BuildUser("digest")
	owner.ID = 1

	assert.NotEmpty(t, owner.Username)
	assert.NotEmpty(t, owner.Bio)
	assert.Equal(t, "digest", owner.PasswordHash)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		u := f.BuildUser("digest")
		assert.False(t, seen[u.Username], "duplicate username %s", u.Username)
		seen[u.Username] = true

		r := f.BuildRecipe(owner)
		require.NoError(t, r.Validate())
		assert.GreaterOrEqual(t, utf8.RuneCountInString(r.Instructions), models.MinInstructionsLength)
	}
}

func TestSeeder_Run(t *testing.T) {
	db := dbtest.Open(t)
	s := NewSeeder(db)

	res, err := s.Run(Options{NumUsers: 3, NumRecipes: 7, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 3, Recipes: 7}, res)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 3)
	assert.True(t, password.Verify(DefaultPassword, users[0].PasswordHash))

	var recipes int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipes).Error)
	assert.Equal(t, int64(7), recipes)

	res, err = s.Run(Options{NumUsers: 1, ShouldClean: true, Seed: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Users)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSeeder_RunNeedsUsersForRecipes(t *testing.T) {
	db := dbtest.Open(t)
	_, err := NewSeeder(db).Run(Options{NumRecipes: 1})
	assert.Error(t, err)
}

func TestFixture_Apply(t *testing.T) {
	fx, err := LoadFixture("testdata/kitchen.yml")
	require.NoError(t, err)
	require.Len(t, fx.Users, 2)
	assert.Equal(t, 1440, *fx.Users[0].Recipes[0].MinutesToComplete)
	assert.Nil(t, fx.Users[0].Recipes[1].MinutesToComplete)

	db := dbtest.Open(t)
	res, err := NewSeeder(db).ApplyFixture(fx)
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 2, Recipes: 2}, res)

	var bob models.User
	require.NoError(t, db.Where("username = ?", "bob").First(&bob).Error)
	assert.Equal(t, "42", bob.Bio)
	assert.True(t, password.Verify(DefaultPassword, bob.PasswordHash))

	var ana models.User
	require.NoError(t, db.Where("username = ?", "ana").First(&ana).Error)
	assert.True(t, password.Verify("pw123", ana.PasswordHash))
}

func TestFixture_InvalidRecipeRollsBack(t *testing.T) {
	fx, err := DecodeFixture(strings.NewReader(`
users:
  - username: carl
    recipes:
      - title: Toast
        instructions: Toast the bread.
`))
	require.NoError(t, err)

	db := dbtest.Open(t)
	_, err = NewSeeder(db).ApplyFixture(fx)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDecodeFixture_Rejects(t *testing.T) {
	_, err := DecodeFixture(strings.NewReader("users:\n  - username: a\n    email: a@b.c\n"))
	assert.Error(t, err)

	_, err = DecodeFixture(strings.NewReader("users:\n  - bio: nameless\n"))
	assert.Error(t, err)
}
