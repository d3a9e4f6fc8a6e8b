package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/TeamLinkup/matchmaking-system/models"
	"github.com/TeamLinkup/matchmaking-system/repositories"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var matchRows = []string{
	"id", "offer_id",
	"proposing_inscriber_id", "proposing_inscriber_email", "proposing_team_name",
	"accepting_inscriber_id", "accepting_inscriber_email", "accepting_team_name",
	"sport", "num_players", "skill_level", "match_datetime",
	"venue_name", "venue_address", "venue_phone", "venue_details",
	"status", "created_at",
}

func addMatchRow(rows *sqlmock.Rows, id string, status models.MatchStatus, start time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id, "offer-"+id,
		"creator-1", "creator-1@example.com", "Thunder FC",
		"accepter-1", "accepter-1@example.com", "Lightning FC",
		"Football", 5, "Intermediate", start,
		"Central Park", "1 Park Ave", nil, nil,
		string(status), time.Now(),
	)
}

func TestPostgresMatchRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repositories.NewPostgresMatchRepository(db)
	match := &models.ConfirmedMatch{
		ID:                      "match-1",
		OfferID:                 "offer-1",
		ProposingInscriberID:    "creator-1",
		ProposingInscriberEmail: "creator-1@example.com",
		ProposingTeamName:       "Thunder FC",
		AcceptingInscriberID:    "accepter-1",
		AcceptingInscriberEmail: "accepter-1@example.com",
		AcceptingTeamName:       "Lightning FC",
		Sport:                   models.SportFootball,
		NumPlayers:              5,
		SkillLevel:              models.SkillIntermediate,
		MatchDateTime:           time.Now().Add(72 * time.Hour),
		VenueName:               "Central Park",
		VenueAddress:            "1 Park Ave",
		Status:                  models.MatchStatusConfirmed,
	}

	t.Run("success fills created_at", func(t *testing.T) {
		createdAt := time.Now()
		mock.ExpectQuery(`INSERT INTO confirmed_matches`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

		require.NoError(t, repo.Create(context.Background(), db, match))
		require.Equal(t, createdAt, match.CreatedAt)
	})

	t.Run("duplicate offer_id maps to taken", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO confirmed_matches`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "confirmed_matches_offer_id_key"})

		err := repo.Create(context.Background(), db, match)
		require.ErrorIs(t, err, repositories.ErrMatchOfferTaken)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMatchRepository_ListForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repositories.NewPostgresMatchRepository(db)

	rows := sqlmock.NewRows(matchRows)
	addMatchRow(rows, "match-1", models.MatchStatusConfirmed, time.Now().Add(24*time.Hour))
	addMatchRow(rows, "match-2", models.MatchStatusConfirmed, time.Now().Add(48*time.Hour))

	mock.ExpectQuery(`FROM confirmed_matches WHERE \(proposing_inscriber_id = \$1 OR accepting_inscriber_id = \$1\) AND status = \$2 ORDER BY match_datetime ASC`).
		WithArgs("creator-1", models.MatchStatusConfirmed).
		WillReturnRows(rows)

	matches, err := repo.ListForUser(context.Background(), "creator-1", models.MatchStatusConfirmed)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "match-1", matches[0].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMatchRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repositories.NewPostgresMatchRepository(db)

	t.Run("swap succeeds", func(t *testing.T) {
		mock.ExpectExec(`UPDATE confirmed_matches SET status = \$1 WHERE id = \$2 AND status = \$3`).
			WithArgs(models.MatchStatusCancelled, "match-1", models.MatchStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(context.Background(), db, "match-1", models.MatchStatusConfirmed, models.MatchStatusCancelled)
		require.NoError(t, err)
	})

	t.Run("already cancelled is a conflict", func(t *testing.T) {
		mock.ExpectExec(`UPDATE confirmed_matches SET status = \$1 WHERE id = \$2 AND status = \$3`).
			WithArgs(models.MatchStatusCancelled, "match-1", models.MatchStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("match-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.UpdateStatus(context.Background(), db, "match-1", models.MatchStatusConfirmed, models.MatchStatusCancelled)
		require.ErrorIs(t, err, repositories.ErrMatchStatusConflict)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
