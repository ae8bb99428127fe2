package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/GameNest/models"
	"github.com/doug-martin/goqu/v9"
)

// CommentScope binds the comment operations to one comment table and the
// table of the things being commented on.
type CommentScope struct {
	Name         string
	Table        string
	TargetColumn string
	TargetTable  string
	TitleColumn  string
}

var (
	GameComments = CommentScope{
		Name: "game", Table: "game_comments", TargetColumn: "game_id",
		TargetTable: "games", TitleColumn: "game_title",
	}
	CommunityComments = CommentScope{
		Name: "community", Table: "community_comments", TargetColumn: "post_id",
		TargetTable: "community_posts", TitleColumn: "title",
	}
)

var (
	ErrLoginRequired   = NewError(ErrUnauthenticated, "login required")
	ErrCommentNotFound = NewError(ErrNotFound, "comment not found")
)

func (s CommentScope) targetNotFound() *ServiceError {
	return NewError(ErrNotFound, s.Name+" not found")
}

type CommentService struct {
	db       *goqu.Database
	timeout  time.Duration
	maxDepth int
}

func NewCommentService(db *goqu.Database, timeout time.Duration, maxDepth int) *CommentService {
	return &CommentService{db: db, timeout: timeout, maxDepth: maxDepth}
}

// selectComments is the shared projection: comment columns plus the author's
// nickname, falling back to the anonymous label for missing users.
func (s *CommentService) selectComments(scope CommentScope) *goqu.SelectDataset {
	return s.db.From(goqu.T(scope.Table).As("c")).
		Select(
			goqu.I("c.id"),
			goqu.I("c."+scope.TargetColumn).As("target_id"),
			goqu.I("c.user_id"),
			goqu.I("c.content").As("comment_content"),
			goqu.I("c.parent_id"),
			goqu.I("c.created_at"),
			goqu.I("c.updated_at"),
			goqu.COALESCE(goqu.I("u.user_nickname"), models.AnonymousNickname).As("user_nickname"),
		).
		LeftJoin(
			goqu.T("users").As("u"),
			goqu.On(goqu.I("u.id").Eq(goqu.I("c.user_id"))),
		)
}

// List returns the comment tree of one target. Roots come newest first and
// replies are grouped right after their parent.
func (s *CommentService) List(ctx context.Context, scope CommentScope, targetID int64) ([]*models.CommentNode, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	threadKey := goqu.Case().
		When(goqu.I("c.parent_id").IsNull(), goqu.I("c.id")).
		Else(goqu.I("c.parent_id"))

	var comments []models.Comment
	err := s.selectComments(scope).
		Where(goqu.I("c."+scope.TargetColumn).Eq(targetID)).
		Order(threadKey.Desc(), goqu.I("c.created_at").Desc()).
		ScanStructsContext(ctx, &comments)
	if err != nil {
		return nil, storageError("list "+scope.Table, err)
	}

	return BuildCommentTree(comments), nil
}

func (s *CommentService) Create(ctx context.Context, scope CommentScope, principal models.Principal, targetID int64, input models.CommentCreate) (models.Comment, error) {
	if !principal.IsAuthenticated() {
		return models.Comment{}, ErrLoginRequired
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return models.Comment{}, ErrEmptyContent
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if input.Parent_ID != nil {
		if err := s.checkParent(ctx, scope, targetID, *input.Parent_ID); err != nil {
			return models.Comment{}, err
		}
	}

	row := goqu.Record{
		"user_id":          principal.ID,
		scope.TargetColumn: targetID,
		"content":          content,
		"parent_id":        input.Parent_ID,
	}

	var id int64
	_, err := s.db.Insert(scope.Table).
		Rows(row).
		Returning("id").
		Executor().ScanValContext(ctx, &id)
	if err != nil {
		return models.Comment{}, classifyStorageError("insert "+scope.Table, err, scope.targetNotFound(), nil)
	}

	created, err := s.get(ctx, scope, id)
	if err != nil {
		return models.Comment{}, err
	}
	log.Printf("Comment %d created on %s %d by user %d", id, scope.Name, targetID, principal.ID)
	return created, nil
}

// checkParent walks the ancestor chain of parentID. The parent must belong to
// the same target and sit above the depth limit.
func (s *CommentService) checkParent(ctx context.Context, scope CommentScope, targetID, parentID int64) error {
	query := fmt.Sprintf(`
		WITH RECURSIVE chain AS (
			SELECT id, parent_id, %[2]s AS target_id, 1 AS depth
			FROM %[1]s WHERE id = $1
			UNION ALL
			SELECT p.id, p.parent_id, chain.target_id, chain.depth + 1
			FROM %[1]s p JOIN chain ON p.id = chain.parent_id
			WHERE chain.depth <= $2
		)
		SELECT (SELECT target_id FROM chain WHERE depth = 1), MAX(depth) FROM chain`,
		scope.Table, scope.TargetColumn)

	var parentTarget, depth sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, parentID, s.maxDepth).Scan(&parentTarget, &depth)
	if err != nil {
		return storageError("walk "+scope.Table+" ancestors", err)
	}
	if !parentTarget.Valid || parentTarget.Int64 != targetID {
		return ErrParentNotFound
	}
	if depth.Int64 >= int64(s.maxDepth) {
		return ErrMaxDepthExceeded
	}
	return nil
}

func (s *CommentService) get(ctx context.Context, scope CommentScope, id int64) (models.Comment, error) {
	var c models.Comment
	found, err := s.selectComments(scope).
		Where(goqu.I("c.id").Eq(id)).
		ScanStructContext(ctx, &c)
	if err != nil {
		return c, storageError("load "+scope.Table, err)
	}
	if !found {
		return c, ErrCommentNotFound
	}
	return c, nil
}

// authorize loads the owner of a comment under targetID and checks it
// against the caller.
func (s *CommentService) authorize(ctx context.Context, scope CommentScope, principal models.Principal, targetID, commentID int64) error {
	if !principal.IsAuthenticated() {
		return ErrLoginRequired
	}

	var owner struct {
		User_ID   int64 `db:"user_id"`
		Target_ID int64 `db:"target_id"`
	}
	found, err := s.db.From(scope.Table).
		Select(goqu.C("user_id"), goqu.C(scope.TargetColumn).As("target_id")).
		Where(goqu.C("id").Eq(commentID)).
		ScanStructContext(ctx, &owner)
	if err != nil {
		return storageError("load "+scope.Table+" owner", err)
	}
	if !found || owner.Target_ID != targetID {
		return ErrCommentNotFound
	}
	if owner.User_ID != principal.ID {
		return ErrNotOwner
	}
	return nil
}

func (s *CommentService) Update(ctx context.Context, scope CommentScope, principal models.Principal, targetID, commentID int64, content string) (models.Comment, error) {
	if !principal.IsAuthenticated() {
		return models.Comment{}, ErrLoginRequired
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, ErrEmptyContent
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.authorize(ctx, scope, principal, targetID, commentID); err != nil {
		return models.Comment{}, err
	}

	res, err := s.db.Update(scope.Table).
		Set(goqu.Record{"content": content, "updated_at": goqu.L("NOW()")}).
		Where(goqu.C("id").Eq(commentID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return models.Comment{}, storageError("update "+scope.Table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Comment{}, ErrCommentNotFound
	}

	return s.get(ctx, scope, commentID)
}

// Delete removes one comment. Replies are left in place and surface as
// roots on the next read.
func (s *CommentService) Delete(ctx context.Context, scope CommentScope, principal models.Principal, targetID, commentID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.authorize(ctx, scope, principal, targetID, commentID); err != nil {
		return err
	}

	res, err := s.db.Delete(scope.Table).
		Where(goqu.C("id").Eq(commentID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return storageError("delete "+scope.Table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCommentNotFound
	}
	log.Printf("Comment %d deleted from %s %d by user %d", commentID, scope.Name, targetID, principal.ID)
	return nil
}

// ListByUser merges a user's comments across every scope, newest first.
func (s *CommentService) ListByUser(ctx context.Context, userID int64) ([]models.MyComment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	all := []models.MyComment{}
	for _, scope := range []CommentScope{GameComments, CommunityComments} {
		var rows []models.MyComment
		err := s.db.From(goqu.T(scope.Table).As("c")).
			Select(
				goqu.I("c.id"),
				goqu.I("c."+scope.TargetColumn).As("post_id"),
				goqu.I("t."+scope.TitleColumn).As("post_title"),
				goqu.I("c.content"),
				goqu.I("c.created_at"),
				goqu.V(scope.Name).As("post_type"),
			).
			Join(
				goqu.T(scope.TargetTable).As("t"),
				goqu.On(goqu.I("t.id").Eq(goqu.I("c."+scope.TargetColumn))),
			).
			Where(goqu.I("c.user_id").Eq(userID)).
			Order(goqu.I("c.created_at").Desc()).
			ScanStructsContext(ctx, &rows)
		if err != nil {
			return nil, storageError("list "+scope.Table+" by user", err)
		}
		all = append(all, rows...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}
