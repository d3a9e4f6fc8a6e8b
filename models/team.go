package models

import "time"

// Player хранится внутри команды (jsonb), отдельной таблицы нет.
// ID уникален в пределах команды и генерируется на стороне сервиса.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

type Team struct {
	ID          string    `json:"id"`
	InscriberID string    `json:"inscriber_id"`
	Name        string    `json:"name"`
	Players     []Player  `json:"players"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	LogoKey *string `json:"-"`
	LogoURL *string `json:"logo_url,omitempty"`
}
