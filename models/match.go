package models

import "time"

type MatchStatus string

const (
	MatchStatusConfirmed MatchStatus = "CONFIRMED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
)

type ConfirmedMatch struct {
	ID      string `json:"id"`
	OfferID string `json:"offer_id"`

	ProposingInscriberID    string `json:"proposing_inscriber_id"`
	ProposingInscriberEmail string `json:"proposing_inscriber_email"`
	ProposingTeamName       string `json:"proposing_team_name"`
	AcceptingInscriberID    string `json:"accepting_inscriber_id"`
	AcceptingInscriberEmail string `json:"accepting_inscriber_email"`
	AcceptingTeamName       string `json:"accepting_team_name"`

	Sport         Sport       `json:"sport"`
	NumPlayers    int         `json:"num_players"`
	SkillLevel    SkillLevel  `json:"skill_level"`
	MatchDateTime time.Time   `json:"match_datetime"`
	VenueName     string      `json:"venue_name"`
	VenueAddress  string      `json:"venue_address"`
	VenuePhone    *string     `json:"venue_phone,omitempty"`
	VenueDetails  *string     `json:"venue_details,omitempty"`
	Status        MatchStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}

// IsParty сообщает, является ли пользователь одной из сторон матча.
func (m *ConfirmedMatch) IsParty(userID string) bool {
	return m.ProposingInscriberID == userID || m.AcceptingInscriberID == userID
}

// OpponentEmail возвращает email противоположной стороны.
func (m *ConfirmedMatch) OpponentEmail(userID string) string {
	if m.ProposingInscriberID == userID {
		return m.AcceptingInscriberEmail
	}
	return m.ProposingInscriberEmail
}

// OpponentTeamName возвращает название команды противоположной стороны
// относительно получателя письма.
func (m *ConfirmedMatch) OpponentTeamName(recipientEmail string) string {
	if m.ProposingInscriberEmail == recipientEmail {
		return m.AcceptingTeamName
	}
	return m.ProposingTeamName
}
