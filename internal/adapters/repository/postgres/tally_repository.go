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

type tallyRepository struct {
	db *sql.DB
}

func NewTallyRepository(db *sql.DB) ports.TallyRepository {
	return &tallyRepository{
		db: db,
	}
}

func (r *tallyRepository) CountByCompetitor(ctx context.Context, pollID int64) ([]domain.CompetitorCount, error) {
	query := `
		SELECT c.id, c.name, c.party, COUNT(v.id) AS vote_count
		FROM competitors c
		LEFT JOIN votes v ON v.competitor_id = c.id
		WHERE c.poll_id = $1
		GROUP BY c.id, c.name, c.party
		ORDER BY vote_count DESC, c.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes for poll %d: %w", pollID, err)
	}
	defer rows.Close()

	var counts []domain.CompetitorCount
	for rows.Next() {
		var c domain.CompetitorCount
		if err := rows.Scan(&c.ID, &c.Name, &c.Party, &c.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote counts: %w", err)
	}
	return counts, nil
}

// LiveLeaderboard ranks competitors inside each poll still open at now and
// keeps the first size of them. Polls without competitors are still listed.
func (r *tallyRepository) LiveLeaderboard(ctx context.Context, now time.Time, size int) ([]domain.LeaderboardEntry, error) {
	query := `
		WITH ranked AS (
			SELECT c.poll_id, c.id, c.name, COUNT(v.id) AS vote_count,
			       ROW_NUMBER() OVER (PARTITION BY c.poll_id ORDER BY COUNT(v.id) DESC, c.id ASC) AS rank
			FROM competitors c
			JOIN polls p ON p.id = c.poll_id
			LEFT JOIN votes v ON v.competitor_id = c.id
			WHERE p.voting_expires_at > $1
			GROUP BY c.poll_id, c.id, c.name
		)
		SELECT p.id, p.title, p.category, p.county, p.voting_expires_at, p.total_votes,
		       r.id, r.name, r.vote_count
		FROM polls p
		LEFT JOIN ranked r ON r.poll_id = p.id AND r.rank <= $2
		WHERE p.voting_expires_at > $1
		ORDER BY p.voting_expires_at ASC, p.id ASC, r.rank ASC
	`
	rows, err := r.db.QueryContext(ctx, query, now, size)
	if err != nil {
		return nil, fmt.Errorf("failed to query live polls: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var (
			e           domain.LeaderboardEntry
			candID      sql.NullInt64
			candName    sql.NullString
			candVoteCnt sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.County, &e.VotingExpiresAt, &e.TotalVotes,
			&candID, &candName, &candVoteCnt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}

		if n := len(entries); n == 0 || entries[n-1].ID != e.ID {
			e.TopCandidates = []domain.Candidate{}
			entries = append(entries, e)
		}
		if candID.Valid {
			last := &entries[len(entries)-1]
			last.TopCandidates = append(last.TopCandidates, domain.Candidate{
				ID:        candID.Int64,
				Name:      candName.String,
				VoteCount: candVoteCnt.Int64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}
	return entries, nil
}

// ReconcileTotalVotes locks the poll row before counting, so vote
// transactions that already bumped the counter are committed and counted, and
// later ones wait until the corrected value is written.
func (r *tallyRepository) ReconcileTotalVotes(ctx context.Context, pollID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT total_votes FROM polls WHERE id = $1 FOR UPDATE`, pollID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to lock poll %d: %w", pollID, err)
	}

	var counted int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE poll_id = $1`, pollID).Scan(&counted); err != nil {
		return false, fmt.Errorf("failed to count votes for poll %d: %w", pollID, err)
	}
	if counted == current {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `UPDATE polls SET total_votes = $1 WHERE id = $2`, counted, pollID); err != nil {
		return false, fmt.Errorf("failed to reconcile votes for poll %d: %w", pollID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}
