package services

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/GameNest/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

var (
	ErrGameNotFound    = NewError(ErrNotFound, "game not found")
	ErrInvalidRating   = NewError(ErrValidation, "rating must be between 0 and 5 in steps of 0.1")
	ErrInvalidCategory = NewError(ErrValidation, "unknown category type")
)

// categoryColumns maps the public category type to its JSONB column.
var categoryColumns = map[string]string{
	"platform": "game_platforms",
	"mode":     "game_modes",
	"tag":      "game_tags",
}

type GameService struct {
	db        *goqu.Database
	relations *RelationService
	timeout   time.Duration
}

func NewGameService(db *goqu.Database, relations *RelationService, timeout time.Duration) *GameService {
	return &GameService{db: db, relations: relations, timeout: timeout}
}

func (s *GameService) listOrder(sort string) exp.OrderedExpression {
	switch sort {
	case "date":
		return goqu.C("game_created_at").Desc()
	case "likes":
		likes := s.db.From("likes").
			Select(goqu.COUNT("*")).
			Where(goqu.I("likes.game_id").Eq(goqu.I("games.id")))
		return goqu.L("?", likes).Desc()
	case "rating":
		avg := s.db.From("ratings").
			Select(goqu.COALESCE(goqu.AVG("rating"), 0)).
			Where(goqu.I("ratings.game_id").Eq(goqu.I("games.id")))
		return goqu.L("?", avg).Desc()
	case "title":
		return goqu.C("game_title").Asc()
	default:
		return goqu.C("id").Asc()
	}
}

// List returns game summaries in the order named by sort; unknown values
// order by id.
func (s *GameService) List(ctx context.Context, sort string) ([]models.GameSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	games := []models.GameSummary{}
	err := s.db.From("games").
		Select("id", "game_title", "game_thumbnail").
		Order(s.listOrder(sort), goqu.C("id").Asc()).
		ScanStructsContext(ctx, &games)
	if err != nil {
		return nil, storageError("list games", err)
	}
	return games, nil
}

func (s *GameService) Get(ctx context.Context, gameID int64) (models.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var game models.Game
	found, err := s.db.From("games").
		Where(goqu.C("id").Eq(gameID)).
		ScanStructContext(ctx, &game)
	if err != nil {
		return game, storageError("load game", err)
	}
	if !found {
		return game, ErrGameNotFound
	}
	return game, nil
}

// Exists reports whether gameID names a game.
func (s *GameService) Exists(ctx context.Context, gameID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.db.From("games").Where(goqu.C("id").Eq(gameID)).CountContext(ctx)
	if err != nil {
		return storageError("check game", err)
	}
	if n == 0 {
		return ErrGameNotFound
	}
	return nil
}

// Detail assembles a game with its counters. Personal fields stay at their
// zero values for anonymous callers.
func (s *GameService) Detail(ctx context.Context, principal models.Principal, gameID int64) (models.GameDetail, error) {
	game, err := s.Get(ctx, gameID)
	if err != nil {
		return models.GameDetail{}, err
	}
	detail := models.GameDetail{Game: game}

	if detail.LikeCount, err = s.relations.Count(ctx, GameLike, gameID); err != nil {
		return models.GameDetail{}, err
	}
	rating, err := s.Rating(ctx, principal, gameID)
	if err != nil {
		return models.GameDetail{}, err
	}
	detail.AverageRating = rating.Avg_Rating
	detail.MyRating = rating.User_Rating

	if principal.IsAuthenticated() {
		if detail.Liked, err = s.relations.IsActive(ctx, GameLike, principal.ID, gameID); err != nil {
			return models.GameDetail{}, err
		}
	}
	return detail, nil
}

func (s *GameService) ToggleLike(ctx context.Context, principal models.Principal, gameID int64) (models.ToggleResult, error) {
	if !principal.IsAuthenticated() {
		return models.ToggleResult{}, ErrLoginRequired
	}
	if err := s.Exists(ctx, gameID); err != nil {
		return models.ToggleResult{}, err
	}
	return s.relations.Toggle(ctx, GameLike, principal.ID, gameID)
}

// Rate stores the caller's rating, replacing an earlier one.
func (s *GameService) Rate(ctx context.Context, principal models.Principal, gameID int64, rating *float64) error {
	if !principal.IsAuthenticated() {
		return ErrLoginRequired
	}
	if rating == nil || *rating < 0 || *rating > 5 {
		return ErrInvalidRating
	}
	// ratings.rating is NUMERIC(2,1) and would round anything finer.
	if tenths := *rating * 10; math.Abs(tenths-math.Round(tenths)) > 1e-9 {
		return ErrInvalidRating
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.Insert("ratings").
		Rows(goqu.Record{"user_id": principal.ID, "game_id": gameID, "rating": *rating}).
		OnConflict(goqu.DoUpdate("user_id, game_id", goqu.Record{
			"rating":     goqu.L("EXCLUDED.rating"),
			"updated_at": goqu.L("NOW()"),
		})).
		Executor().ExecContext(ctx)
	if err != nil {
		return classifyStorageError("save rating", err, ErrGameNotFound, nil)
	}
	return nil
}

// Rating returns the rounded average and, for an authenticated caller, their
// own rating.
func (s *GameService) Rating(ctx context.Context, principal models.Principal, gameID int64) (models.GameRatingSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var summary models.GameRatingSummary
	_, err := s.db.From("ratings").
		Select(goqu.COALESCE(goqu.Func("ROUND", goqu.AVG("rating"), 1), 0)).
		Where(goqu.C("game_id").Eq(gameID)).
		ScanValContext(ctx, &summary.Avg_Rating)
	if err != nil {
		return summary, storageError("average rating", err)
	}

	if principal.IsAuthenticated() {
		var mine float64
		found, err := s.db.From("ratings").
			Select("rating").
			Where(goqu.Ex{"user_id": principal.ID, "game_id": gameID}).
			ScanValContext(ctx, &mine)
		if err != nil {
			return summary, storageError("user rating", err)
		}
		if found {
			summary.User_Rating = &mine
		}
	}
	return summary, nil
}

// Liked lists the games the user liked, most recent like first.
func (s *GameService) Liked(ctx context.Context, userID int64) ([]models.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	games := []models.Game{}
	err := s.db.From(goqu.T("likes").As("l")).
		Select(goqu.T("g").All()).
		Join(goqu.T("games").As("g"), goqu.On(goqu.I("l.game_id").Eq(goqu.I("g.id")))).
		Where(goqu.I("l.user_id").Eq(userID)).
		Order(goqu.I("l.created_at").Desc()).
		ScanStructsContext(ctx, &games)
	if err != nil {
		return nil, storageError("list liked games", err)
	}
	return games, nil
}

// ByCategory lists games whose platform, mode or tag array contains value.
func (s *GameService) ByCategory(ctx context.Context, categoryType, value string) ([]models.GameSummary, error) {
	column, ok := categoryColumns[categoryType]
	if !ok {
		return nil, ErrInvalidCategory
	}
	needle, err := json.Marshal([]string{value})
	if err != nil {
		return nil, NewError(ErrValidation, "invalid category value")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	games := []models.GameSummary{}
	err = s.db.From("games").
		Select("id", "game_title", "game_thumbnail").
		Where(goqu.L("? @> ?::jsonb", goqu.C(column), string(needle))).
		Order(goqu.C("id").Asc()).
		ScanStructsContext(ctx, &games)
	if err != nil {
		return nil, storageError("list games by "+categoryType, err)
	}
	return games, nil
}
