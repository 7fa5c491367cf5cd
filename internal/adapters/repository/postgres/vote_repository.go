package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) HasVoted(ctx context.Context, pollID int64, voterID string) (bool, error) {
	return hasVoted(ctx, r.db, pollID, voterID)
}

func (r *voteRepository) WithinTx(ctx context.Context, fn func(tx ports.VoteTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&voteTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type voteTx struct {
	tx *sql.Tx
}

func (t *voteTx) HasVoted(ctx context.Context, pollID int64, voterID string) (bool, error) {
	return hasVoted(ctx, t.tx, pollID, voterID)
}

func (t *voteTx) CompetitorInPoll(ctx context.Context, competitorID, pollID int64) (bool, error) {
	query := `SELECT 1 FROM competitors WHERE id = $1 AND poll_id = $2`
	var exists int
	err := t.tx.QueryRowContext(ctx, query, competitorID, pollID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check competitor: %w", err)
	}
	return true, nil
}

func (t *voteTx) PollExpiry(ctx context.Context, pollID int64) (*time.Time, error) {
	query := `SELECT voting_expires_at FROM polls WHERE id = $1`
	var expiresAt sql.NullTime
	err := t.tx.QueryRowContext(ctx, query, pollID).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll expiry: %w", err)
	}
	if !expiresAt.Valid {
		return nil, nil
	}
	return &expiresAt.Time, nil
}

// InsertVote relies on the (poll_id, voter_id) unique constraint. A concurrent
// transaction holding the same key makes this insert wait for it; if that one
// commits, the conflict clause yields no row and the vote is a duplicate.
func (t *voteTx) InsertVote(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (poll_id, competitor_id, voter_id)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT votes_poll_voter_unique DO NOTHING
		RETURNING id, created_at
	`
	err := t.tx.QueryRowContext(ctx, query, vote.PollID, vote.CompetitorID, vote.VoterID).Scan(&vote.ID, &vote.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return domain.ErrAlreadyVoted
		}
		return fmt.Errorf("failed to save vote: %w", err)
	}
	return nil
}

func (t *voteTx) IncrementTotalVotes(ctx context.Context, pollID int64) error {
	query := `UPDATE polls SET total_votes = total_votes + 1 WHERE id = $1`
	res, err := t.tx.ExecContext(ctx, query, pollID)
	if err != nil {
		return fmt.Errorf("failed to update total votes: %w", err)
	}
	return expectAffected(res, domain.ErrPollNotFound)
}

func hasVoted(ctx context.Context, q querier, pollID int64, voterID string) (bool, error) {
	query := `SELECT 1 FROM votes WHERE poll_id = $1 AND voter_id = $2 LIMIT 1`
	var exists int
	err := q.QueryRowContext(ctx, query, pollID, voterID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return true, nil
}
