package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

const (
	postID = "2f1f7f5e-6a0c-4a3e-9d43-6f8d0d2f6a11"
	userID = "8b0c1d7a-3e55-4c0e-a0a4-0a1c8f6b2e22"
)

func TestPostRepository_UnlikeSQL(t *testing.T) {
	deleteLike := regexp.QuoteMeta(`DELETE FROM "post_likes" WHERE post_id = $1 AND user_id = $2`)

	tests := []struct {
		name         string
		mockBehavior func(mock sqlmock.Sqlmock)
		wantRemoved  bool
		wantCode     string
	}{
		{
			name: "removes existing like",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(deleteLike).WithArgs(postID, userID).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantRemoved: true,
		},
		{
			name: "nothing to remove",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(deleteLike).WithArgs(postID, userID).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
		},
		{
			name: "database failure",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(deleteLike).WithArgs(postID, userID).WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			wantCode: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPostRepository(db, nil)
			tt.mockBehavior(mock)

			removed, err := repo.Unlike(context.Background(), postID, userID)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, models.ErrorCode(err))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantRemoved, removed)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_LikesSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "post_likes" WHERE post_id = $1 ORDER BY created_at DESC`)).
		WithArgs(postID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("b").AddRow("a"))

	ids, err := repo.Likes(context.Background(), postID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_MalformedIDNeverQueries(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "not-a-uuid")
	assert.True(t, models.IsNotFound(err))

	err = repo.Delete(ctx, "12345")
	assert.True(t, models.IsNotFound(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
