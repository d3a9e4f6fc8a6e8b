package services_test

import (
	"context"
	"sort"
	"sync"

	"github.com/TeamLinkup/matchmaking-system/models"
	"github.com/TeamLinkup/matchmaking-system/repositories"
)

// In-memory фейки репозиториев для тестов сервисного слоя.

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

type fakeTeamRepo struct {
	teams map[string]*models.Team // ключ — inscriberID
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	r := &fakeTeamRepo{teams: make(map[string]*models.Team)}
	for _, t := range teams {
		r.teams[t.InscriberID] = t
	}
	return r
}

func (r *fakeTeamRepo) GetByInscriber(_ context.Context, inscriberID string) (*models.Team, error) {
	team, ok := r.teams[inscriberID]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (r *fakeTeamRepo) Upsert(_ context.Context, team *models.Team) error {
	if existing, ok := r.teams[team.InscriberID]; ok {
		team.ID = existing.ID // upsert сохраняет id существующей команды
		team.CreatedAt = existing.CreatedAt
	}
	copied := *team
	r.teams[team.InscriberID] = &copied
	return nil
}

func (r *fakeTeamRepo) UpdateLogoKey(_ context.Context, teamID string, logoKey *string) error {
	for _, team := range r.teams {
		if team.ID == teamID {
			team.LogoKey = logoKey
			return nil
		}
	}
	return repositories.ErrTeamNotFound
}

type fakeOfferRepo struct {
	mu     sync.Mutex
	offers map[string]*models.MatchOffer
}

func newFakeOfferRepo(offers ...*models.MatchOffer) *fakeOfferRepo {
	r := &fakeOfferRepo{offers: make(map[string]*models.MatchOffer)}
	for _, o := range offers {
		r.offers[o.ID] = o
	}
	return r
}

func (r *fakeOfferRepo) Create(_ context.Context, offer *models.MatchOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *offer
	r.offers[offer.ID] = &copied
	return nil
}

func (r *fakeOfferRepo) GetByID(_ context.Context, id string) (*models.MatchOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer, ok := r.offers[id]
	if !ok {
		return nil, repositories.ErrOfferNotFound
	}
	copied := *offer
	return &copied, nil
}

func (r *fakeOfferRepo) ListByCreator(_ context.Context, creatorID string) ([]*models.MatchOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.MatchOffer, 0)
	for _, offer := range r.offers {
		if offer.CreatorID == creatorID {
			copied := *offer
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AvailabilityDate != result[j].AvailabilityDate {
			return result[i].AvailabilityDate > result[j].AvailabilityDate
		}
		return result[i].AvailabilityTime > result[j].AvailabilityTime
	})
	return result, nil
}

func (r *fakeOfferRepo) Search(_ context.Context, filter repositories.OfferSearchFilter, excludeCreatorID string) ([]*models.MatchOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.MatchOffer, 0)
	for _, offer := range r.offers {
		if offer.Status != models.OfferStatusOpen || offer.CreatorID == excludeCreatorID {
			continue
		}
		if filter.Sport != nil && offer.Sport != *filter.Sport {
			continue
		}
		if filter.SkillLevel != nil && offer.SkillLevel != *filter.SkillLevel {
			continue
		}
		if filter.Date != nil && offer.AvailabilityDate != *filter.Date {
			continue
		}
		if filter.NumPlayers != nil && offer.NumPlayers != *filter.NumPlayers {
			continue
		}
		copied := *offer
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AvailabilityDate != result[j].AvailabilityDate {
			return result[i].AvailabilityDate < result[j].AvailabilityDate
		}
		return result[i].AvailabilityTime < result[j].AvailabilityTime
	})
	return result, nil
}

func (r *fakeOfferRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, from, to models.OfferStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer, ok := r.offers[id]
	if !ok {
		return repositories.ErrOfferNotFound
	}
	if offer.Status != from {
		return repositories.ErrOfferStatusConflict
	}
	offer.Status = to
	return nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*models.ConfirmedMatch
}

func newFakeMatchRepo(matches ...*models.ConfirmedMatch) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: make(map[string]*models.ConfirmedMatch)}
	for _, m := range matches {
		r.matches[m.ID] = m
	}
	return r
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.ConfirmedMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.matches {
		if existing.OfferID == match.OfferID {
			return repositories.ErrMatchOfferTaken
		}
	}
	copied := *match
	r.matches[match.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id string) (*models.ConfirmedMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (r *fakeMatchRepo) ListForUser(_ context.Context, userID string, status models.MatchStatus) ([]*models.ConfirmedMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.ConfirmedMatch, 0)
	for _, match := range r.matches {
		if match.Status != status || !match.IsParty(userID) {
			continue
		}
		copied := *match
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MatchDateTime.Before(result[j].MatchDateTime)
	})
	return result, nil
}

func (r *fakeMatchRepo) ListByStatus(_ context.Context, status models.MatchStatus) ([]*models.ConfirmedMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.ConfirmedMatch, 0)
	for _, match := range r.matches {
		if match.Status == status {
			copied := *match
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, from, to models.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if match.Status != from {
		return repositories.ErrMatchStatusConflict
	}
	match.Status = to
	return nil
}

type fakeReminderRepo struct {
	mu     sync.Mutex
	sent   map[string]bool
	errFor map[string]error // принудительные ошибки флага по id матча
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{
		sent:   make(map[string]bool),
		errFor: make(map[string]error),
	}
}

func (r *fakeReminderRepo) TryMarkSent(_ context.Context, matchID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.errFor[matchID]; ok {
		return false, err
	}
	if r.sent[matchID] {
		return false, nil
	}
	r.sent[matchID] = true
	return true, nil
}

// sentEmail — одно зафиксированное фейковым нотифаером письмо.
type sentEmail struct {
	kind      string
	recipient string
}

type fakeNotifier struct {
	mu     sync.Mutex
	emails []sentEmail
	err    error // если задана, возвращается каждым методом
}

func (n *fakeNotifier) record(kind, recipient string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.emails = append(n.emails, sentEmail{kind: kind, recipient: recipient})
	return nil
}

func (n *fakeNotifier) SendMatchConfirmationEmail(_ context.Context, recipient string, _ *models.ConfirmedMatch, _ bool) error {
	return n.record("confirmation", recipient)
}

func (n *fakeNotifier) SendMatchReminderEmail(_ context.Context, recipient string, _ *models.ConfirmedMatch) error {
	return n.record("reminder", recipient)
}

func (n *fakeNotifier) SendMatchCancellationEmail(_ context.Context, recipient string, _ *models.ConfirmedMatch) error {
	return n.record("cancellation", recipient)
}

func (n *fakeNotifier) sentTo(kind string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	recipients := make([]string, 0)
	for _, email := range n.emails {
		if email.kind == kind {
			recipients = append(recipients, email.recipient)
		}
	}
	sort.Strings(recipients)
	return recipients
}
