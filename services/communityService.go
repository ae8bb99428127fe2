package services

import (
	"context"
	"strings"
	"time"

	"github.com/GameNest/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrPostNotFound    = NewError(ErrNotFound, "post not found")
	ErrInvalidPostKind = NewError(ErrValidation, "invalid category")
	ErrUnknownAction   = NewError(ErrValidation, "action type must be like or scrap")
)

var postCategories = map[string]bool{
	models.CategoryFree:     true,
	models.CategoryQuestion: true,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type CommunityService struct {
	db        *goqu.Database
	relations *RelationService
	timeout   time.Duration
	sanitizer *bluemonday.Policy
}

func NewCommunityService(db *goqu.Database, relations *RelationService, timeout time.Duration) *CommunityService {
	return &CommunityService{
		db:        db,
		relations: relations,
		timeout:   timeout,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// selectPosts projects posts with the author's nickname in place of the
// author id.
func (s *CommunityService) selectPosts() *goqu.SelectDataset {
	return s.db.From(goqu.T("community_posts").As("c")).
		Select(
			goqu.I("c.id"),
			goqu.I("u.user_nickname").As("user_id"),
			goqu.I("c.title"),
			goqu.I("c.content"),
			goqu.I("c.category"),
			goqu.I("c.views"),
			goqu.I("c.created_at"),
			goqu.I("c.updated_at"),
		).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("c.user_id").Eq(goqu.I("u.id"))))
}

// List filters by category and title. The all and popular pseudo categories
// span every stored category; popular keeps posts with enough views.
func (s *CommunityService) List(ctx context.Context, category, search string) ([]models.CommunityPost, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ds := s.selectPosts()
	switch category {
	case "", models.CategoryAll:
	case models.CategoryPopular:
		ds = ds.Where(goqu.I("c.views").Gte(models.PopularViewThreshold))
	default:
		ds = ds.Where(goqu.I("c.category").Eq(category))
	}
	if search = strings.TrimSpace(search); search != "" {
		ds = ds.Where(goqu.I("c.title").ILike("%" + likeEscaper.Replace(search) + "%"))
	}

	posts := []models.CommunityPost{}
	if err := ds.Order(goqu.I("c.created_at").Desc()).ScanStructsContext(ctx, &posts); err != nil {
		return nil, storageError("list posts", err)
	}
	return posts, nil
}

func (s *CommunityService) MyPosts(ctx context.Context, userID int64) ([]models.CommunityPost, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	posts := []models.CommunityPost{}
	err := s.selectPosts().
		Where(goqu.I("c.user_id").Eq(userID)).
		Order(goqu.I("c.created_at").Desc()).
		ScanStructsContext(ctx, &posts)
	if err != nil {
		return nil, storageError("list my posts", err)
	}
	return posts, nil
}

// Create stores a post with markup stripped from its content.
func (s *CommunityService) Create(ctx context.Context, principal models.Principal, input models.CommunityPostCreate) (int64, error) {
	if !principal.IsAuthenticated() {
		return 0, ErrLoginRequired
	}
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.Content) == "" || input.Category == "" {
		return 0, ErrRequiredFields
	}
	if !postCategories[input.Category] {
		return 0, ErrInvalidPostKind
	}
	content := strings.TrimSpace(s.sanitizer.Sanitize(input.Content))
	if content == "" {
		return 0, ErrEmptyContent
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var id int64
	_, err := s.db.Insert("community_posts").
		Rows(goqu.Record{
			"user_id":  principal.ID,
			"title":    title,
			"content":  content,
			"category": input.Category,
		}).
		Returning("id").
		Executor().ScanValContext(ctx, &id)
	if err != nil {
		return 0, classifyStorageError("insert post", err, ErrUserNotFound, nil)
	}
	return id, nil
}

func (s *CommunityService) Exists(ctx context.Context, postID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.db.From("community_posts").Where(goqu.C("id").Eq(postID)).CountContext(ctx)
	if err != nil {
		return storageError("check post", err)
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

// View counts a read and returns the post detail.
func (s *CommunityService) View(ctx context.Context, principal models.Principal, postID int64) (models.CommunityPostDetail, error) {
	viewCtx, cancel := context.WithTimeout(ctx, s.timeout)
	_, err := s.db.Update("community_posts").
		Set(goqu.Record{"views": goqu.L("views + 1")}).
		Where(goqu.C("id").Eq(postID)).
		Executor().ExecContext(viewCtx)
	cancel()
	if err != nil {
		return models.CommunityPostDetail{}, storageError("count view", err)
	}
	return s.Detail(ctx, principal, postID)
}

// Detail returns the post with its like count and the caller's flags.
func (s *CommunityService) Detail(ctx context.Context, principal models.Principal, postID int64) (models.CommunityPostDetail, error) {
	var detail models.CommunityPostDetail

	loadCtx, cancel := context.WithTimeout(ctx, s.timeout)
	found, err := s.selectPosts().
		Where(goqu.I("c.id").Eq(postID)).
		ScanStructContext(loadCtx, &detail.CommunityPost)
	cancel()
	if err != nil {
		return detail, storageError("load post", err)
	}
	if !found {
		return detail, ErrPostNotFound
	}

	if detail.LikeCount, err = s.relations.Count(ctx, CommunityLike, postID); err != nil {
		return detail, err
	}
	if principal.IsAuthenticated() {
		if detail.Liked, err = s.relations.IsActive(ctx, CommunityLike, principal.ID, postID); err != nil {
			return detail, err
		}
		if detail.Scrapped, err = s.relations.IsActive(ctx, CommunityScrap, principal.ID, postID); err != nil {
			return detail, err
		}
	}
	return detail, nil
}

// Act toggles a like or scrap and returns the refreshed detail.
func (s *CommunityService) Act(ctx context.Context, principal models.Principal, postID int64, action string) (models.CommunityPostDetail, error) {
	if !principal.IsAuthenticated() {
		return models.CommunityPostDetail{}, ErrLoginRequired
	}

	var kind RelationKind
	switch action {
	case models.ActionLike:
		kind = CommunityLike
	case models.ActionScrap:
		kind = CommunityScrap
	default:
		return models.CommunityPostDetail{}, ErrUnknownAction
	}

	if err := s.Exists(ctx, postID); err != nil {
		return models.CommunityPostDetail{}, err
	}
	if _, err := s.relations.Toggle(ctx, kind, principal.ID, postID); err != nil {
		return models.CommunityPostDetail{}, err
	}
	return s.Detail(ctx, principal, postID)
}

// Scraps lists the posts a user scrapped, newest post first.
func (s *CommunityService) Scraps(ctx context.Context, userID int64) ([]models.ScrappedPost, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	likeCount := s.db.From("community_likes").
		Select(goqu.COUNT("*")).
		Where(goqu.I("community_likes.post_id").Eq(goqu.I("c.id")))

	posts := []models.ScrappedPost{}
	err := s.db.From(goqu.T("community_posts").As("c")).
		Select(
			goqu.I("c.id"),
			goqu.I("c.title"),
			goqu.I("c.category"),
			goqu.I("c.views"),
			goqu.I("c.created_at"),
			goqu.L("?", likeCount).As("like_count"),
		).
		Join(goqu.T("community_scraps").As("s"), goqu.On(goqu.I("s.post_id").Eq(goqu.I("c.id")))).
		Where(goqu.I("s.user_id").Eq(userID)).
		Order(goqu.I("c.created_at").Desc()).
		ScanStructsContext(ctx, &posts)
	if err != nil {
		return nil, storageError("list scraps", err)
	}
	return posts, nil
}
