package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

const pollColumns = `id, title, category, presidential, region, county, constituency, ward,
	voting_expires_at, total_votes, spoiled_votes, published, created_at`

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPoll := `
		INSERT INTO polls (title, category, presidential, region, county, constituency, ward, voting_expires_at, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, queryPoll,
		poll.Title, poll.Category, poll.Presidential, poll.Region, poll.County,
		poll.Constituency, poll.Ward, poll.VotingExpiresAt, poll.Published,
	).Scan(&poll.ID, &poll.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	if err := insertCompetitors(ctx, tx, poll.ID, poll.Competitors); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update rewrites poll metadata and reconciles its competitor list: listed
// competitors with an id are renamed, those without are added, and any
// existing competitor left out is deleted together with its votes.
func (r *pollRepository) Update(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPoll := `
		UPDATE polls
		SET title = $2, category = $3, presidential = $4, region = $5, county = $6,
		    constituency = $7, ward = $8, voting_expires_at = $9, published = $10
		WHERE id = $1
		RETURNING total_votes, spoiled_votes, created_at
	`
	err = tx.QueryRowContext(ctx, queryPoll,
		poll.ID, poll.Title, poll.Category, poll.Presidential, poll.Region, poll.County,
		poll.Constituency, poll.Ward, poll.VotingExpiresAt, poll.Published,
	).Scan(&poll.TotalVotes, &poll.SpoiledVotes, &poll.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPollNotFound
		}
		return fmt.Errorf("failed to update poll: %w", err)
	}

	existing, err := fetchCompetitors(ctx, tx, poll.ID)
	if err != nil {
		return err
	}
	known := make(map[int64]bool, len(existing))
	for _, c := range existing {
		known[c.ID] = true
	}

	keep := make([]int64, 0, len(poll.Competitors))
	var added []domain.Competitor
	for _, c := range poll.Competitors {
		if c.ID == 0 {
			added = append(added, c)
			continue
		}
		if !known[c.ID] {
			return domain.NewValidationError("competitors", fmt.Sprintf("competitor %d does not belong to the poll", c.ID))
		}
		keep = append(keep, c.ID)

		_, err := tx.ExecContext(ctx, `UPDATE competitors SET name = $1, party = $2 WHERE id = $3 AND poll_id = $4`,
			c.Name, c.Party, c.ID, poll.ID)
		if err != nil {
			return fmt.Errorf("failed to update competitor: %w", err)
		}
	}

	// Votes of dropped competitors go with them, so the counter drops by as many.
	queryCounter := `
		UPDATE polls
		SET total_votes = total_votes - (
			SELECT COUNT(*) FROM votes WHERE poll_id = $1 AND NOT (competitor_id = ANY($2))
		)
		WHERE id = $1
		RETURNING total_votes
	`
	if err := tx.QueryRowContext(ctx, queryCounter, poll.ID, pq.Array(keep)).Scan(&poll.TotalVotes); err != nil {
		return fmt.Errorf("failed to adjust total votes: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM competitors WHERE poll_id = $1 AND NOT (id = ANY($2))`, poll.ID, pq.Array(keep))
	if err != nil {
		return fmt.Errorf("failed to delete competitors: %w", err)
	}

	if err := insertCompetitors(ctx, tx, poll.ID, added); err != nil {
		return err
	}

	competitors, err := fetchCompetitors(ctx, tx, poll.ID)
	if err != nil {
		return err
	}
	poll.Competitors = competitors

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *pollRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	return expectAffected(res, domain.ErrPollNotFound)
}

func (r *pollRepository) GetByID(ctx context.Context, id int64) (*domain.Poll, error) {
	queryPoll := `SELECT ` + pollColumns + ` FROM polls WHERE id = $1`

	poll, err := scanPoll(r.db.QueryRowContext(ctx, queryPoll, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	competitors, err := fetchCompetitors(ctx, r.db, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Competitors = competitors

	return poll, nil
}

func (r *pollRepository) List(ctx context.Context, category string) ([]domain.PollSummary, error) {
	query := `
		SELECT id, title, category, created_at
		FROM polls
		WHERE $1::text = '' OR category = $1::text
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var polls []domain.PollSummary
	for rows.Next() {
		var p domain.PollSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.Category, &p.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}

func (r *pollRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM polls ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all polls: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan poll id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return ids, nil
}

func (r *pollRepository) FindIDByRegion(ctx context.Context, region string) (int64, error) {
	query := `SELECT id FROM polls WHERE region ILIKE $1 ORDER BY id LIMIT 1`
	var id int64
	err := r.db.QueryRowContext(ctx, query, escapeLike(region)).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrPollNotFound
		}
		return 0, fmt.Errorf("failed to find poll by region: %w", err)
	}
	return id, nil
}

func insertCompetitors(ctx context.Context, tx *sql.Tx, pollID int64, competitors []domain.Competitor) error {
	if len(competitors) == 0 {
		return nil
	}

	queryCompetitor := `
		INSERT INTO competitors (poll_id, name, party)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	stmt, err := tx.PrepareContext(ctx, queryCompetitor)
	if err != nil {
		return fmt.Errorf("failed to prepare competitor statement: %w", err)
	}
	defer stmt.Close()

	for i := range competitors {
		c := &competitors[i]
		if err := stmt.QueryRowContext(ctx, pollID, c.Name, c.Party).Scan(&c.ID, &c.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert competitor: %w", err)
		}
		c.PollID = pollID
	}
	return nil
}

func fetchCompetitors(ctx context.Context, q querier, pollID int64) ([]domain.Competitor, error) {
	queryCompetitors := `
		SELECT id, poll_id, name, party, created_at
		FROM competitors
		WHERE poll_id = $1
		ORDER BY id
	`
	rows, err := q.QueryContext(ctx, queryCompetitors, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get competitors: %w", err)
	}
	defer rows.Close()

	competitors := []domain.Competitor{}
	for rows.Next() {
		var c domain.Competitor
		if err := rows.Scan(&c.ID, &c.PollID, &c.Name, &c.Party, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		competitors = append(competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competitors: %w", err)
	}
	return competitors, nil
}

func scanPoll(row *sql.Row) (*domain.Poll, error) {
	var (
		poll      domain.Poll
		expiresAt sql.NullTime
	)
	err := row.Scan(
		&poll.ID, &poll.Title, &poll.Category, &poll.Presidential, &poll.Region, &poll.County,
		&poll.Constituency, &poll.Ward, &expiresAt, &poll.TotalVotes, &poll.SpoiledVotes,
		&poll.Published, &poll.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		poll.VotingExpiresAt = &expiresAt.Time
	}
	return &poll, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
