package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/TeamLinkup/matchmaking-system/live"
	"github.com/TeamLinkup/matchmaking-system/models"
	"github.com/TeamLinkup/matchmaking-system/repositories"
	"github.com/TeamLinkup/matchmaking-system/services"
	"github.com/stretchr/testify/require"
)

type offerServiceFixture struct {
	service services.OfferService
	offers  *fakeOfferRepo
	teams   *fakeTeamRepo
	users   *fakeUserRepo
}

func newOfferServiceFixture(t *testing.T, offers *fakeOfferRepo, teams *fakeTeamRepo, users *fakeUserRepo) *offerServiceFixture {
	t.Helper()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &offerServiceFixture{
		service: services.NewOfferService(db, offers, teams, users, live.NewHub()),
		offers:  offers,
		teams:   teams,
		users:   users,
	}
}

func validOfferInput(creatorID string) services.CreateOfferInput {
	start := time.Now().Add(240 * time.Hour)
	return services.CreateOfferInput{
		CreatorID:        creatorID,
		Sport:            models.SportFootball,
		NumPlayers:       5,
		SkillLevel:       models.SkillIntermediate,
		AvailabilityDate: start.Format("2006-01-02"),
		AvailabilityTime: start.Format("15:04"),
		VenueName:        "Central Park",
		VenueAddress:     "1 Park Ave",
	}
}

func TestOfferService_CreateOffer(t *testing.T) {
	creator := &models.User{ID: "creator-1", Email: "creator-1@example.com"}
	team := &models.Team{
		ID:          "team-1",
		InscriberID: creator.ID,
		Name:        "Thunder FC",
		Players:     []models.Player{{ID: "p1", Name: "Alice", Age: 24}},
	}

	t.Run("success snapshots creator email and team name", func(t *testing.T) {
		fx := newOfferServiceFixture(t, newFakeOfferRepo(), newFakeTeamRepo(team), newFakeUserRepo(creator))

		offer, err := fx.service.CreateOffer(context.Background(), validOfferInput(creator.ID))
		require.NoError(t, err)
		require.NotEmpty(t, offer.ID)
		require.Equal(t, models.OfferStatusOpen, offer.Status)
		require.Equal(t, "creator-1@example.com", offer.CreatorEmail)
		require.Equal(t, "Thunder FC", offer.TeamName)

		stored, err := fx.offers.GetByID(context.Background(), offer.ID)
		require.NoError(t, err)
		require.Equal(t, offer.CreatorEmail, stored.CreatorEmail)
	})

	t.Run("offer keeps the snapshot after team rename", func(t *testing.T) {
		fx := newOfferServiceFixture(t, newFakeOfferRepo(), newFakeTeamRepo(team), newFakeUserRepo(creator))

		offer, err := fx.service.CreateOffer(context.Background(), validOfferInput(creator.ID))
		require.NoError(t, err)

		renamed := *team
		renamed.Name = "Lightning FC"
		require.NoError(t, fx.teams.Upsert(context.Background(), &renamed))

		stored, err := fx.offers.GetByID(context.Background(), offer.ID)
		require.NoError(t, err)
		require.Equal(t, "Thunder FC", stored.TeamName)
	})

	t.Run("past datetime is not published", func(t *testing.T) {
		fx := newOfferServiceFixture(t, newFakeOfferRepo(), newFakeTeamRepo(team), newFakeUserRepo(creator))

		past := time.Now().Add(-time.Hour)
		input := validOfferInput(creator.ID)
		input.AvailabilityDate = past.Format("2006-01-02")
		input.AvailabilityTime = past.Format("15:04")

		_, err := fx.service.CreateOffer(context.Background(), input)
		require.ErrorIs(t, err, services.ErrAvailabilityInPast)
		require.Empty(t, fx.offers.offers) // ничего не сохранилось
	})

	t.Run("team is required", func(t *testing.T) {
		fx := newOfferServiceFixture(t, newFakeOfferRepo(), newFakeTeamRepo(), newFakeUserRepo(creator))

		_, err := fx.service.CreateOffer(context.Background(), validOfferInput(creator.ID))
		require.ErrorIs(t, err, services.ErrTeamRequired)
	})

	t.Run("empty team is rejected", func(t *testing.T) {
		empty := &models.Team{ID: "team-2", InscriberID: creator.ID, Name: "Ghosts"}
		fx := newOfferServiceFixture(t, newFakeOfferRepo(), newFakeTeamRepo(empty), newFakeUserRepo(creator))

		_, err := fx.service.CreateOffer(context.Background(), validOfferInput(creator.ID))
		require.ErrorIs(t, err, services.ErrTeamEmpty)
	})

	t.Run("input validation", func(t *testing.T) {
		fx := newOfferServiceFixture(t, newFakeOfferRepo(), newFakeTeamRepo(team), newFakeUserRepo(creator))

		tests := []struct {
			name    string
			mutate  func(*services.CreateOfferInput)
			wantErr error
		}{
			{"unknown sport", func(in *services.CreateOfferInput) { in.Sport = "Cricket" }, services.ErrSportInvalid},
			{"unknown skill level", func(in *services.CreateOfferInput) { in.SkillLevel = "Pro" }, services.ErrSkillLevelInvalid},
			{"zero players", func(in *services.CreateOfferInput) { in.NumPlayers = 0 }, services.ErrNumPlayersInvalid},
			{"missing venue", func(in *services.CreateOfferInput) { in.VenueName = "  " }, services.ErrVenueRequired},
			{"bad date", func(in *services.CreateOfferInput) { in.AvailabilityDate = "15/10/2026" }, services.ErrAvailabilityInvalid},
			{"bad time", func(in *services.CreateOfferInput) { in.AvailabilityTime = "6pm" }, services.ErrAvailabilityInvalid},
			{"past datetime", func(in *services.CreateOfferInput) { in.AvailabilityDate = "2001-01-01" }, services.ErrAvailabilityInPast},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				input := validOfferInput(creator.ID)
				tt.mutate(&input)
				_, err := fx.service.CreateOffer(context.Background(), input)
				require.ErrorIs(t, err, tt.wantErr)
			})
		}
	})
}

func TestOfferService_SearchOffers(t *testing.T) {
	mine := openOffer("offer-mine", "me", time.Now().Add(48*time.Hour))
	foreign := openOffer("offer-foreign", "other", time.Now().Add(48*time.Hour))
	accepted := openOffer("offer-accepted", "other", time.Now().Add(48*time.Hour))
	accepted.Status = models.OfferStatusAccepted

	fx := newOfferServiceFixture(t, newFakeOfferRepo(mine, foreign, accepted), newFakeTeamRepo(), newFakeUserRepo())

	t.Run("excludes own and non-open offers", func(t *testing.T) {
		offers, err := fx.service.SearchOffers(context.Background(), repositories.OfferSearchFilter{}, "me")
		require.NoError(t, err)
		require.Len(t, offers, 1)
		require.Equal(t, "offer-foreign", offers[0].ID)
	})

	t.Run("rejects unknown sport filter", func(t *testing.T) {
		badSport := models.Sport("Cricket")
		_, err := fx.service.SearchOffers(context.Background(), repositories.OfferSearchFilter{Sport: &badSport}, "me")
		require.ErrorIs(t, err, services.ErrSportInvalid)
	})
}

func TestOfferService_CancelOffer(t *testing.T) {
	t.Run("creator cancels an open offer", func(t *testing.T) {
		offer := openOffer("offer-1", "creator-1", time.Now().Add(48*time.Hour))
		fx := newOfferServiceFixture(t, newFakeOfferRepo(offer), newFakeTeamRepo(), newFakeUserRepo())

		require.NoError(t, fx.service.CancelOffer(context.Background(), "offer-1", "creator-1"))

		stored, err := fx.offers.GetByID(context.Background(), "offer-1")
		require.NoError(t, err)
		require.Equal(t, models.OfferStatusCancelledByCreator, stored.Status)
	})

	t.Run("foreign offer reads as not found", func(t *testing.T) {
		offer := openOffer("offer-1", "creator-1", time.Now().Add(48*time.Hour))
		fx := newOfferServiceFixture(t, newFakeOfferRepo(offer), newFakeTeamRepo(), newFakeUserRepo())

		err := fx.service.CancelOffer(context.Background(), "offer-1", "stranger-1")
		require.ErrorIs(t, err, services.ErrOfferNotFound)
	})

	t.Run("accepted offer cannot be cancelled", func(t *testing.T) {
		offer := openOffer("offer-1", "creator-1", time.Now().Add(48*time.Hour))
		offer.Status = models.OfferStatusAccepted
		fx := newOfferServiceFixture(t, newFakeOfferRepo(offer), newFakeTeamRepo(), newFakeUserRepo())

		err := fx.service.CancelOffer(context.Background(), "offer-1", "creator-1")
		require.ErrorIs(t, err, services.ErrOfferNotOpen)
	})
}

func TestOfferService_GetMyOffers(t *testing.T) {
	older := openOffer("offer-older", "creator-1", time.Now().Add(24*time.Hour))
	newer := openOffer("offer-newer", "creator-1", time.Now().Add(96*time.Hour))
	fx := newOfferServiceFixture(t, newFakeOfferRepo(older, newer), newFakeTeamRepo(), newFakeUserRepo())

	offers, err := fx.service.GetMyOffers(context.Background(), "creator-1")
	require.NoError(t, err)
	require.Len(t, offers, 2)
	// Новые даты сверху.
	require.Equal(t, "offer-newer", offers[0].ID)
	require.Equal(t, "offer-older", offers[1].ID)
}
