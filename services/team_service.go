package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/TeamLinkup/matchmaking-system/models"
	"github.com/TeamLinkup/matchmaking-system/repositories"
	"github.com/TeamLinkup/matchmaking-system/storage"
	"github.com/google/uuid"
)

type TeamService interface {
	// GetTeamByInscriber возвращает команду инскрайбера.
	GetTeamByInscriber(ctx context.Context, inscriberID string) (*models.Team, error)

	// CreateOrUpdateTeam — upsert по inscriberID: имя и состав заменяются
	// целиком, id существующей команды сохраняется. Повторные одинаковые
	// вызовы сходятся к одному и тому же состоянию.
	CreateOrUpdateTeam(ctx context.Context, input SaveTeamInput) (*models.Team, error)

	// UploadLogo загружает логотип команды и сохраняет его ключ.
	UploadLogo(ctx context.Context, inscriberID string, filename string, contentType string, file io.Reader) (*models.Team, error)
}

type SaveTeamInput struct {
	InscriberID string          `json:"-"`
	Name        string          `json:"name"`
	Players     []models.Player `json:"players"`
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		uploader: uploader,
	}
}

func (s *teamService) GetTeamByInscriber(ctx context.Context, inscriberID string) (*models.Team, error) {
	team, err := s.teamRepo.GetByInscriber(ctx, inscriberID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team for inscriber %s: %w", inscriberID, err)
	}
	s.resolveLogoURL(team)
	return team, nil
}

func (s *teamService) CreateOrUpdateTeam(ctx context.Context, input SaveTeamInput) (*models.Team, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTeamNameRequired
	}

	players := make([]models.Player, 0, len(input.Players))
	seen := make(map[string]bool, len(input.Players))
	for _, p := range input.Players {
		if strings.TrimSpace(p.Name) == "" {
			return nil, ErrPlayerNameRequired
		}
		if p.Age <= 0 {
			return nil, fmt.Errorf("%w: player %q", ErrPlayerAgeInvalid, p.Name)
		}
		// ID игрока уникален в пределах команды; пустой или повторный
		// получает новый.
		if p.ID == "" || seen[p.ID] {
			p.ID = uuid.NewString()
		}
		seen[p.ID] = true
		players = append(players, p)
	}

	team := &models.Team{
		ID:          uuid.NewString(), // используется только при создании, upsert сохраняет существующий id
		InscriberID: input.InscriberID,
		Name:        strings.TrimSpace(input.Name),
		Players:     players,
	}

	if err := s.teamRepo.Upsert(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamInscriberInvalid) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to save team: %w", err)
	}
	s.resolveLogoURL(team)
	return team, nil
}

func (s *teamService) UploadLogo(ctx context.Context, inscriberID string, filename string, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.GetTeamByInscriber(ctx, inscriberID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("team-logos/%s%s", team.ID, path.Ext(filename))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	if err := s.teamRepo.UpdateLogoKey(ctx, team.ID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to persist team logo key: %w", err)
	}

	team.LogoKey = &result.Key
	s.resolveLogoURL(team)
	return team, nil
}

func (s *teamService) resolveLogoURL(team *models.Team) {
	if team.LogoKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*team.LogoKey)
	team.LogoURL = &url
}
