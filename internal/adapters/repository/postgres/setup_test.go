package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	repo "github.com/vncsmyrnk/opinionpoll/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
)

// setupDB starts a throwaway Postgres, applies the embedded migrations and
// returns a pool that is closed together with the container on cleanup.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := repo.Open(ctx, connStr, repo.PoolConfig{MaxOpenConns: 20})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repo.Migrate(ctx, db))
	return db
}

func createPoll(t *testing.T, db *sql.DB, expiresAt *time.Time, names ...string) *domain.Poll {
	t.Helper()
	poll := &domain.Poll{
		Title:           "Governor race",
		Category:        "Governor",
		Region:          "Nairobi",
		County:          "Nairobi",
		VotingExpiresAt: expiresAt,
	}
	for _, name := range names {
		poll.Competitors = append(poll.Competitors, domain.Competitor{Name: name})
	}
	require.NoError(t, repo.NewPollRepository(db).Create(context.Background(), poll))
	return poll
}

func insertVotes(t *testing.T, db *sql.DB, pollID, competitorID int64, n int, prefix string) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := db.Exec(`INSERT INTO votes (poll_id, competitor_id, voter_id) VALUES ($1, $2, $3::text || $4::text)`,
			pollID, competitorID, prefix, i)
		require.NoError(t, err)
	}
	_, err := db.Exec(`UPDATE polls SET total_votes = total_votes + $1 WHERE id = $2`, n, pollID)
	require.NoError(t, err)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
