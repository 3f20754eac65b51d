// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	seq   int
}

// NewFactory creates a new Factory bound to db. A zero opts.RandSeed picks a
// random seed.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	return &Factory{db: db, opts: opts, faker: gofakeit.New(opts.RandSeed)}
}

// CreateUser constructs and persists a user. Optional overrides modify the
// generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	f.seq++
	username := truncate(strings.ToLower(f.faker.Username()), 40) + fmt.Sprint(f.seq)
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s.%s@inkwell.test", username, uuid.NewString()[:8]),
	}

	if f.opts.SkipBcrypt {
		user.Password = DemoPassword
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// BuildStory returns an unsaved story by author, filed under one of
// categories (or none when categories is empty).
func (f *Factory) BuildStory(author *models.User, categories []models.Category) *models.Story {
	story := &models.Story{
		UserID: author.ID,
		Title:  truncate(strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 8)), "."), validation.MaxStoryTitleLength),
		Text:   f.faker.Paragraph(f.faker.Number(1, 4), f.faker.Number(3, 6), 12, "\n\n"),
	}
	if len(categories) > 0 {
		id := categories[f.faker.Number(0, len(categories)-1)].ID
		story.CategoryID = &id
	}
	return story
}

// CreateStory persists a generated story.
func (f *Factory) CreateStory(author *models.User, categories []models.Category) (*models.Story, error) {
	story := f.BuildStory(author, categories)
	if err := f.db.Omit(clause.Associations).Create(story).Error; err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}
	return story, nil
}

// CreateComment persists a generated comment by author on story.
func (f *Factory) CreateComment(story *models.Story, author *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		StoryID: story.ID,
		UserID:  author.ID,
		Text:    truncate(f.faker.Sentence(f.faker.Number(4, 20)), validation.MaxCommentTextLength),
	}
	if err := f.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// Like records user's like on story; an existing like is left as is.
func (f *Factory) Like(story *models.Story, user *models.User) error {
	like := &models.Like{StoryID: story.ID, UserID: user.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
