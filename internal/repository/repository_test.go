package repository

import (
	"context"
	"sync"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_ToggleRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	story := testutil.CreateStory(t, db, alice.ID, "Hello", "World")
	repo := NewLikeRepository(db)

	liked, count, err := repo.Toggle(ctx, story.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), count)

	liked, count, err = repo.Toggle(ctx, story.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(2), count)

	liked, count, err = repo.Toggle(ctx, story.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(1), count)

	isLiked, err := repo.IsLiked(ctx, story.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, isLiked)

	likes, err := repo.ListByStory(ctx, story.ID)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, alice.ID, likes[0].UserID)
}

func TestLikeRepository_SerializedTogglesCancelOut(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "racer")
	story := testutil.CreateStory(t, db, u.ID, "Race", "Condition")
	repo := NewLikeRepository(db)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := repo.Toggle(ctx, story.ID, u.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := repo.Count(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "an even number of toggles cancels out")
}

func TestStoryRepository_DeleteRemovesCommentsAndLikes(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "writer")
	story := testutil.CreateStory(t, db, u.ID, "Hello", "World")

	comments := NewCommentRepository(db)
	likes := NewLikeRepository(db)
	require.NoError(t, comments.Create(ctx, &models.Comment{StoryID: story.ID, UserID: u.ID, Text: "Nice"}))
	_, _, err := likes.Toggle(ctx, story.ID, u.ID)
	require.NoError(t, err)

	repo := NewStoryRepository(db)
	require.NoError(t, repo.Delete(ctx, story.ID))

	_, err = repo.GetByID(ctx, story.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	remaining, err := comments.ListByStory(ctx, story.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	count, err := likes.Count(ctx, story.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	err = repo.Delete(ctx, story.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestStoryRepository_UpdateClearsCategory(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "editor")
	cat := testutil.CreateCategory(t, db, "Fiction")
	repo := NewStoryRepository(db)

	story := &models.Story{UserID: u.ID, Title: "T", Text: "X", CategoryID: &cat.ID}
	require.NoError(t, repo.Create(ctx, story))

	detail, err := repo.GetDetail(ctx, story.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Category)
	assert.Equal(t, "Fiction", detail.Category.Name)
	require.NotNil(t, detail.User)
	assert.Equal(t, "editor", detail.User.Username)

	story.Title = "T2"
	story.CategoryID = nil
	require.NoError(t, repo.Update(ctx, story))

	detail, err = repo.GetDetail(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, "T2", detail.Title)
	assert.Nil(t, detail.CategoryID)
	assert.Nil(t, detail.Category)

	err = repo.Update(ctx, &models.Story{ID: 999, Title: "x", Text: "y"})
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestStoryRepository_CreateUnknownCategoryIsInvalidReference(t *testing.T) {
	db := testutil.NewTestDB(t)
	u := testutil.CreateUser(t, db, "ghost")
	missing := uint(404)

	err := NewStoryRepository(db).Create(context.Background(),
		&models.Story{UserID: u.ID, Title: "T", Text: "X", CategoryID: &missing})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestStoryRepository_ListByUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")
	first := testutil.CreateStory(t, db, a.ID, "first", "x")
	second := testutil.CreateStory(t, db, a.ID, "second", "x")
	testutil.CreateStory(t, db, b.ID, "other", "x")

	stories, err := NewStoryRepository(db).ListByUser(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, second.ID, stories[0].ID)
	assert.Equal(t, first.ID, stories[1].ID)
}

func TestCommentRepository_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "commenter")
	story := testutil.CreateStory(t, db, u.ID, "Hello", "World")
	repo := NewCommentRepository(db)

	older := &models.Comment{StoryID: story.ID, UserID: u.ID, Text: "first"}
	newer := &models.Comment{StoryID: story.ID, UserID: u.ID, Text: "second"}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.ListByStory(ctx, story.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	require.NotNil(t, list[0].User)
	assert.Equal(t, "commenter", list[0].User.Username)

	older.Text = "edited"
	require.NoError(t, repo.Update(ctx, older))
	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Equal(t, story.ID, got.StoryID)

	require.NoError(t, repo.Delete(ctx, older.ID))
	_, err = repo.GetByID(ctx, older.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(repo.Delete(ctx, older.ID)))
}

func TestCategoryRepository_EnsureNamesIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewCategoryRepository(db)

	require.NoError(t, repo.EnsureNames(ctx, []string{"Poetry", "Fiction"}))
	require.NoError(t, repo.EnsureNames(ctx, []string{"Fiction", "Essay"}))

	cats, err := repo.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Essay", "Fiction", "Poetry"}, names)
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	u := &models.User{Username: "neo", Email: "neo@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "neo", got.Username)

	err = repo.Create(ctx, &models.User{Username: "neo", Email: "other@example.com", Password: "hash"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = repo.GetByID(ctx, 12345)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestLikeRepository_ConcurrentTogglesAcrossConnections(t *testing.T) {
	db := testutil.NewFileTestDB(t, 8)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "racer")
	story := testutil.CreateStory(t, db, u.ID, "Race", "Condition")
	repo := NewLikeRepository(db)

	const toggles = 7
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, count, err := repo.Toggle(ctx, story.ID, u.ID)
			assert.NoError(t, err)
			assert.LessOrEqual(t, count, int64(1))
		}()
	}
	close(start)
	wg.Wait()

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).
		Where("story_id = ? AND user_id = ?", story.ID, u.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows, "an odd number of toggles leaves exactly one like")
}

func TestLikeUniqueIndexRejectsDuplicate(t *testing.T) {
	db := testutil.NewTestDB(t)
	u := testutil.CreateUser(t, db, "dup")
	story := testutil.CreateStory(t, db, u.ID, "Twice", "x")

	require.NoError(t, db.Create(&models.Like{StoryID: story.ID, UserID: u.ID}).Error)
	err := db.Create(&models.Like{StoryID: story.ID, UserID: u.ID}).Error
	require.Error(t, err)
	assert.ErrorIs(t, translateWriteError(err), ErrDuplicate)
}
