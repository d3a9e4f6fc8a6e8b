package services

import (
	"context"

	"github.com/TeamLinkup/matchmaking-system/models"
)

// Notifier — внешний коллаборатор уведомлений. Вызовы fire-and-forget:
// доставка не гарантируется, сервисы логируют ошибку и продолжают работу.
type Notifier interface {
	// SendMatchConfirmationEmail уведомляет сторону о подтвержденном матче.
	// isProposer == true для создателя предложения.
	SendMatchConfirmationEmail(ctx context.Context, recipient string, match *models.ConfirmedMatch, isProposer bool) error

	// SendMatchReminderEmail — напоминание примерно за сутки до матча.
	SendMatchReminderEmail(ctx context.Context, recipient string, match *models.ConfirmedMatch) error

	// SendMatchCancellationEmail уведомляет сторону, НЕ инициировавшую отмену.
	SendMatchCancellationEmail(ctx context.Context, recipient string, match *models.ConfirmedMatch) error
}
