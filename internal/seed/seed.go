package seed

import (
	"context"
	"fmt"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers            int
	StoriesPerUser      int
	MaxCommentsPerStory int
	// LikeChance is the probability (0-100) that a user likes a given story.
	LikeChance  int
	ShouldClean bool
	SkipBcrypt  bool
	RandSeed    int64
}

// DefaultOptions is a small demo data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:            5,
		StoriesPerUser:      3,
		MaxCommentsPerStory: 4,
		LikeChance:          40,
		ShouldClean:         true,
	}
}

// Result summarizes what a run created.
type Result struct {
	Users    []*models.User
	Stories  int
	Comments int
	Likes    int
}

// Seeder populates the database with demo data.
type Seeder struct {
	db         *gorm.DB
	categories repository.CategoryRepository
	opts       Options
	factory    *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:         db,
		categories: repository.NewCategoryRepository(db),
		opts:       opts,
		factory:    NewFactory(db, opts),
	}
}

// ClearAll hard-deletes every like, comment, story and user. Categories are kept.
func (s *Seeder) ClearAll() error {
	tx := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Like{}, &models.Comment{}, &models.Story{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Categories makes sure every named category exists.
func (s *Seeder) Categories(ctx context.Context, names []string) ([]models.Category, error) {
	if err := s.categories.EnsureNames(ctx, names); err != nil {
		return nil, fmt.Errorf("ensure categories: %w", err)
	}
	return s.categories.List(ctx)
}

// Run seeds categories, users, stories, comments and likes.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	categories, err := s.Categories(ctx, DefaultCategories())
	if err != nil {
		return nil, err
	}
	middleware.Logger.Info("categories ready", "count", len(categories))

	res := &Result{}
	for i := 0; i < s.opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		res.Users = append(res.Users, user)
	}

	faker := s.factory.faker
	for _, author := range res.Users {
		for i := 0; i < s.opts.StoriesPerUser; i++ {
			story, err := s.factory.CreateStory(author, categories)
			if err != nil {
				return nil, err
			}
			res.Stories++

			if s.opts.MaxCommentsPerStory > 0 {
				for n := faker.Number(0, s.opts.MaxCommentsPerStory); n > 0; n-- {
					commenter := res.Users[faker.Number(0, len(res.Users)-1)]
					if _, err := s.factory.CreateComment(story, commenter); err != nil {
						return nil, err
					}
					res.Comments++
				}
			}

			for _, u := range res.Users {
				if faker.Number(1, 100) > s.opts.LikeChance {
					continue
				}
				if err := s.factory.Like(story, u); err != nil {
					return nil, fmt.Errorf("like story %d: %w", story.ID, err)
				}
				res.Likes++
			}
		}
	}

	middleware.Logger.Info("seeding complete",
		"users", len(res.Users), "stories", res.Stories, "comments", res.Comments, "likes", res.Likes)
	return res, nil
}
