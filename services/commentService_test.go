package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GameNest/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commentColumns = []string{
	"id", "target_id", "user_id", "comment_content", "parent_id", "created_at", "updated_at", "user_nickname",
}

func newTestCommentService(t *testing.T) (*CommentService, sqlmock.Sqlmock) {
	db, mock := setupTestDB(t)
	return NewCommentService(db, testTimeout, 6), mock
}

func TestCommentService_List(t *testing.T) {
	svc, mock := newTestCommentService(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM "game_comments" AS "c" LEFT JOIN "users" AS "u" .* WHERE \("c"."game_id" = 5\) ORDER BY CASE WHEN \("c"."parent_id" IS NULL\) THEN "c"."id" ELSE "c"."parent_id" END DESC, "c"."created_at" DESC`).
		WillReturnRows(sqlmock.NewRows(commentColumns).
			AddRow(3, 5, 1, "newest root", nil, now, nil, "alice").
			AddRow(4, 5, 2, "reply", 1, now, nil, "anonymous").
			AddRow(1, 5, 1, "old root", nil, now.Add(-time.Hour), nil, "alice"))

	tree, err := svc.List(context.Background(), GameComments, 5)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, int64(3), tree[0].ID)
	assert.Equal(t, int64(1), tree[1].ID)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, models.AnonymousNickname, tree[1].Children[0].User_Nickname)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentService_ListEmpty(t *testing.T) {
	svc, mock := newTestCommentService(t)

	mock.ExpectQuery(`SELECT .* FROM "community_comments"`).
		WillReturnRows(sqlmock.NewRows(commentColumns))

	tree, err := svc.List(context.Background(), CommunityComments, 8)
	require.NoError(t, err)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}

func TestCommentService_Create(t *testing.T) {
	owner := models.Authenticated(1, "alice@example.com")
	parentID := int64(3)
	now := time.Now()

	tests := []struct {
		name        string
		principal   models.Principal
		input       models.CommentCreate
		setupMock   func(mock sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name:        "anonymous caller",
			principal:   models.Anonymous(),
			input:       models.CommentCreate{Content: "hello"},
			expectedErr: ErrUnauthenticated,
		},
		{
			name:        "blank content",
			principal:   owner,
			input:       models.CommentCreate{Content: "   \n\t"},
			expectedErr: ErrValidation,
		},
		{
			name:      "root comment",
			principal: owner,
			input:     models.CommentCreate{Content: "  great game  "},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO "game_comments" .*'great game'.* RETURNING "id"`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
				mock.ExpectQuery(`SELECT .* WHERE \("c"."id" = 10\)`).
					WillReturnRows(sqlmock.NewRows(commentColumns).
						AddRow(10, 5, 1, "great game", nil, now, nil, "alice"))
			},
		},
		{
			name:      "reply to a parent on the same target",
			principal: owner,
			input:     models.CommentCreate{Content: "agreed", Parent_ID: &parentID},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WITH RECURSIVE chain`).
					WithArgs(parentID, 6).
					WillReturnRows(sqlmock.NewRows([]string{"target_id", "max"}).AddRow(5, 2))
				mock.ExpectQuery(`INSERT INTO "game_comments"`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
				mock.ExpectQuery(`SELECT .* WHERE \("c"."id" = 11\)`).
					WillReturnRows(sqlmock.NewRows(commentColumns).
						AddRow(11, 5, 1, "agreed", 3, now, nil, "alice"))
			},
		},
		{
			name:      "parent belongs to another target",
			principal: owner,
			input:     models.CommentCreate{Content: "agreed", Parent_ID: &parentID},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WITH RECURSIVE chain`).
					WillReturnRows(sqlmock.NewRows([]string{"target_id", "max"}).AddRow(6, 1))
			},
			expectedErr: ErrParentNotFound,
		},
		{
			name:      "parent does not exist",
			principal: owner,
			input:     models.CommentCreate{Content: "agreed", Parent_ID: &parentID},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WITH RECURSIVE chain`).
					WillReturnRows(sqlmock.NewRows([]string{"target_id", "max"}).AddRow(nil, nil))
			},
			expectedErr: ErrParentNotFound,
		},
		{
			name:      "nesting limit reached",
			principal: owner,
			input:     models.CommentCreate{Content: "deep", Parent_ID: &parentID},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WITH RECURSIVE chain`).
					WillReturnRows(sqlmock.NewRows([]string{"target_id", "max"}).AddRow(5, 6))
			},
			expectedErr: ErrMaxDepthExceeded,
		},
		{
			name:      "target does not exist",
			principal: owner,
			input:     models.CommentCreate{Content: "hello"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO "game_comments"`).
					WillReturnError(&pq.Error{Code: "23503"})
			},
			expectedErr: ErrNotFound,
		},
		{
			name:      "storage failure",
			principal: owner,
			input:     models.CommentCreate{Content: "hello"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO "game_comments"`).
					WillReturnError(errors.New("connection refused"))
			},
			expectedErr: ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := newTestCommentService(t)
			if tt.setupMock != nil {
				tt.setupMock(mock)
			}

			created, err := svc.Create(context.Background(), GameComments, tt.principal, 5, tt.input)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(1), created.User_ID)
				assert.Equal(t, int64(5), created.Target_ID)
				assert.Equal(t, "alice", created.User_Nickname)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func expectOwner(mock sqlmock.Sqlmock, table string, commentID int64, rows *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT "user_id", "[a-z_]+" AS "target_id" FROM "` + table + `" WHERE \("id" = ` + strconv.FormatInt(commentID, 10) + `\)`).
		WillReturnRows(rows)
}

func TestCommentService_Update(t *testing.T) {
	owner := models.Authenticated(1, "alice@example.com")
	other := models.Authenticated(2, "bob@example.com")
	now := time.Now()

	tests := []struct {
		name        string
		principal   models.Principal
		content     string
		setupMock   func(mock sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name:        "anonymous caller",
			principal:   models.Anonymous(),
			content:     "edit",
			expectedErr: ErrUnauthenticated,
		},
		{
			name:        "blank content",
			principal:   owner,
			content:     " ",
			expectedErr: ErrValidation,
		},
		{
			name:      "missing comment",
			principal: owner,
			content:   "edit",
			setupMock: func(mock sqlmock.Sqlmock) {
				expectOwner(mock, "community_comments", 20, sqlmock.NewRows([]string{"user_id", "target_id"}))
			},
			expectedErr: ErrNotFound,
		},
		{
			name:      "comment under another post",
			principal: owner,
			content:   "edit",
			setupMock: func(mock sqlmock.Sqlmock) {
				expectOwner(mock, "community_comments", 20, sqlmock.NewRows([]string{"user_id", "target_id"}).AddRow(1, 99))
			},
			expectedErr: ErrNotFound,
		},
		{
			name:      "not the owner",
			principal: other,
			content:   "edit",
			setupMock: func(mock sqlmock.Sqlmock) {
				expectOwner(mock, "community_comments", 20, sqlmock.NewRows([]string{"user_id", "target_id"}).AddRow(1, 8))
			},
			expectedErr: ErrForbidden,
		},
		{
			name:      "owner edits",
			principal: owner,
			content:   "edited",
			setupMock: func(mock sqlmock.Sqlmock) {
				expectOwner(mock, "community_comments", 20, sqlmock.NewRows([]string{"user_id", "target_id"}).AddRow(1, 8))
				mock.ExpectExec(`UPDATE "community_comments" SET "content"='edited',"updated_at"=NOW\(\) WHERE \("id" = 20\)`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(`SELECT .* FROM "community_comments" AS "c" .* WHERE \("c"."id" = 20\)`).
					WillReturnRows(sqlmock.NewRows(commentColumns).AddRow(20, 8, 1, "edited", nil, now, now, "alice"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := newTestCommentService(t)
			if tt.setupMock != nil {
				tt.setupMock(mock)
			}

			updated, err := svc.Update(context.Background(), CommunityComments, tt.principal, 8, 20, tt.content)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "edited", updated.Comment_Content)
				assert.NotNil(t, updated.Updated_At)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCommentService_Delete(t *testing.T) {
	owner := models.Authenticated(1, "alice@example.com")
	other := models.Authenticated(2, "bob@example.com")

	t.Run("non owner cannot delete", func(t *testing.T) {
		svc, mock := newTestCommentService(t)
		expectOwner(mock, "game_comments", 7, sqlmock.NewRows([]string{"user_id", "target_id"}).AddRow(1, 5))

		err := svc.Delete(context.Background(), GameComments, other, 5, 7)
		assert.ErrorIs(t, err, ErrNotOwner)
		assert.ErrorIs(t, err, ErrForbidden)
		// no DELETE was issued
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owner deletes", func(t *testing.T) {
		svc, mock := newTestCommentService(t)
		expectOwner(mock, "game_comments", 7, sqlmock.NewRows([]string{"user_id", "target_id"}).AddRow(1, 5))
		mock.ExpectExec(`DELETE FROM "game_comments" WHERE \("id" = 7\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := svc.Delete(context.Background(), GameComments, owner, 5, 7)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deleted concurrently", func(t *testing.T) {
		svc, mock := newTestCommentService(t)
		expectOwner(mock, "game_comments", 7, sqlmock.NewRows([]string{"user_id", "target_id"}).AddRow(1, 5))
		mock.ExpectExec(`DELETE FROM "game_comments"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := svc.Delete(context.Background(), GameComments, owner, 5, 7)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCommentService_ListByUser(t *testing.T) {
	svc, mock := newTestCommentService(t)
	now := time.Now()
	columns := []string{"id", "post_id", "post_title", "content", "created_at", "post_type"}

	mock.ExpectQuery(`SELECT .* FROM "game_comments" AS "c" INNER JOIN "games" AS "t" .* WHERE \("c"."user_id" = 1\)`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, 5, "Hollow Knight", "old", now.Add(-2*time.Hour), "game"))
	mock.ExpectQuery(`SELECT .* FROM "community_comments" AS "c" INNER JOIN "community_posts" AS "t" .* WHERE \("c"."user_id" = 1\)`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(2, 8, "Best co-op games?", "new", now, "community"))

	comments, err := svc.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "community", comments[0].PostType)
	assert.Equal(t, "game", comments[1].PostType)
	assert.Equal(t, "Hollow Knight", comments[1].PostTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}
