package services

import (
	"context"
	"fmt"
	"time"

	"github.com/GameNest/models"
	"github.com/doug-martin/goqu/v9"
)

// RelationKind names the table backing one user-to-target toggle relation.
type RelationKind struct {
	Name         string
	Table        string
	TargetColumn string
}

var (
	GameLike       = RelationKind{Name: "game_like", Table: "likes", TargetColumn: "game_id"}
	CommunityLike  = RelationKind{Name: "community_like", Table: "community_likes", TargetColumn: "post_id"}
	CommunityScrap = RelationKind{Name: "community_scrap", Table: "community_scraps", TargetColumn: "post_id"}
)

func (k RelationKind) pair(userID, targetID int64) goqu.Ex {
	return goqu.Ex{"user_id": userID, k.TargetColumn: targetID}
}

// RelationService maintains the at-most-one-row (user, target) relations.
// Target existence is the caller's concern.
type RelationService struct {
	db      *goqu.Database
	timeout time.Duration
	metrics *Metrics
}

func NewRelationService(db *goqu.Database, timeout time.Duration, metrics *Metrics) *RelationService {
	return &RelationService{db: db, timeout: timeout, metrics: metrics}
}

// Toggle flips the relation and returns its new state with the target's
// count, all in one transaction. The insert is conflict-safe, so two racing
// toggles that both see no row still leave exactly one.
func (s *RelationService) Toggle(ctx context.Context, kind RelationKind, userID, targetID int64) (models.ToggleResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var result models.ToggleResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, storageError("begin toggle", err)
	}

	err = tx.Wrap(func() error {
		res, err := tx.Delete(kind.Table).
			Where(kind.pair(userID, targetID)).
			Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("delete %s: %w", kind.Table, err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete %s: %w", kind.Table, err)
		}

		if removed == 0 {
			_, err = tx.Insert(kind.Table).
				Cols("user_id", kind.TargetColumn).
				Vals(goqu.Vals{userID, targetID}).
				OnConflict(goqu.DoNothing()).
				Executor().ExecContext(ctx)
			if err != nil {
				return fmt.Errorf("insert %s: %w", kind.Table, err)
			}
			result.Active = true
		}

		count, err := tx.From(kind.Table).
			Where(goqu.C(kind.TargetColumn).Eq(targetID)).
			CountContext(ctx)
		if err != nil {
			return fmt.Errorf("count %s: %w", kind.Table, err)
		}
		result.Count = count
		return nil
	})
	if err != nil {
		return models.ToggleResult{}, classifyStorageError("toggle "+kind.Name, err, NewError(ErrNotFound, "target not found"), nil)
	}

	s.metrics.observeToggle(kind, result.Active)
	return result, nil
}

func (s *RelationService) IsActive(ctx context.Context, kind RelationKind, userID, targetID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.db.From(kind.Table).Where(kind.pair(userID, targetID)).CountContext(ctx)
	if err != nil {
		return false, storageError("lookup "+kind.Name, err)
	}
	return n > 0, nil
}

func (s *RelationService) Count(ctx context.Context, kind RelationKind, targetID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.db.From(kind.Table).Where(goqu.C(kind.TargetColumn).Eq(targetID)).CountContext(ctx)
	if err != nil {
		return 0, storageError("count "+kind.Name, err)
	}
	return n, nil
}
