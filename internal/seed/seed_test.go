package seed

import (
	"context"
	"testing"
	"unicode/utf8"

	"inkwell/internal/models"
	"inkwell/internal/testutil"
	"inkwell/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestParseCategories(t *testing.T) {
	names, err := ParseCategories([]byte("categories:\n  - name: Poetry\n  - name: ' '\n  - name: Poetry\n  - name: Humor\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Poetry", "Humor"}, names)

	_, err = ParseCategories([]byte("categories: ["))
	assert.Error(t, err)
}

func TestDefaultCategories(t *testing.T) {
	names := DefaultCategories()
	assert.Contains(t, names, "Fiction")
	assert.Len(t, names, 10)
}

func TestSeederRun(t *testing.T) {
	db := testutil.NewTestDB(t)
	opts := Options{
		NumUsers:            3,
		StoriesPerUser:      2,
		MaxCommentsPerStory: 2,
		LikeChance:          100,
		ShouldClean:         true,
		SkipBcrypt:          true,
		RandSeed:            42,
	}

	res, err := NewSeeder(db, opts).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Users, 3)
	assert.Equal(t, 6, res.Stories)
	assert.Equal(t, 18, res.Likes)

	var stories []models.Story
	require.NoError(t, db.Find(&stories).Error)
	require.Len(t, stories, 6)
	for _, s := range stories {
		assert.LessOrEqual(t, utf8.RuneCountInString(s.Title), validation.MaxStoryTitleLength)
		assert.Empty(t, validation.Story(s.Title, s.Text))
		assert.NotNil(t, s.CategoryID)
	}

	var comments int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Equal(t, int64(res.Comments), comments)

	// A second run replaces the data but keeps categories unique.
	_, err = NewSeeder(db, opts).Run(context.Background())
	require.NoError(t, err)
	var categories int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	assert.Equal(t, int64(10), categories)
	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(3), users)
}

func TestFactoryHashesPassword(t *testing.T) {
	db := testutil.NewTestDB(t)
	f := NewFactory(db, Options{RandSeed: 1})

	user, err := f.CreateUser(func(u *models.User) { u.Username = "fixed" })
	require.NoError(t, err)
	assert.Equal(t, "fixed", user.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(DemoPassword)))
}
