package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"sharilka/internal/events"
	"sharilka/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the slice of the telegram API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UserLookup resolves recipients to their telegram chats.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// TelegramNotifier pushes booking lifecycle events to telegram chats. Owners
// hear about new requests, bookers hear about verdicts. Users without a linked
// chat are skipped silently.
type TelegramNotifier struct {
	sender Sender
	repo   UserLookup
	logger *zerolog.Logger
}

func NewTelegramNotifier(token string, debug bool, repo UserLookup, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	bot.Debug = debug
	logger.Info().Str("account", bot.Self.UserName).Msg("telegram notifier authorized")
	return &TelegramNotifier{sender: bot, repo: repo, logger: logger}, nil
}

// NewTelegramNotifierWithSender wires a custom sender, used in tests.
func NewTelegramNotifierWithSender(sender Sender, repo UserLookup, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, repo: repo, logger: logger}
}

// Register subscribes the notifier to booking events on the bus.
func (n *TelegramNotifier) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.handleCreated)
	bus.Subscribe(events.EventBookingApproved, n.handleDecision)
	bus.Subscribe(events.EventBookingRejected, n.handleDecision)
}

// handleCreated notifies the item's owner about a new booking request.
func (n *TelegramNotifier) handleCreated(event *events.Event) error {
	payload, err := n.decode(event)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("Новая заявка на бронь: %s с %s по %s от %s",
		payload.ItemName,
		payload.Start.Format("02.01.2006 15:04"),
		payload.End.Format("02.01.2006 15:04"),
		payload.BookerName,
	)
	return n.sendTo(payload.OwnerID, text)
}

// handleDecision notifies the booker about the owner's verdict.
func (n *TelegramNotifier) handleDecision(event *events.Event) error {
	payload, err := n.decode(event)
	if err != nil {
		return err
	}

	verdict := "подтверждена"
	if event.Type == events.EventBookingRejected {
		verdict = "отклонена"
	}
	text := fmt.Sprintf("Ваша бронь %s: %s с %s по %s",
		verdict,
		payload.ItemName,
		payload.Start.Format("02.01.2006 15:04"),
		payload.End.Format("02.01.2006 15:04"),
	)
	return n.sendTo(payload.BookerID, text)
}

func (n *TelegramNotifier) decode(event *events.Event) (events.BookingEventPayload, error) {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event_type", event.Type).Msg("decode event payload")
		return payload, err
	}
	return payload, nil
}

func (n *TelegramNotifier) sendTo(userID int64, text string) error {
	user, err := n.repo.GetUser(context.Background(), userID)
	if err != nil {
		n.logger.Error().Err(err).Int64("user_id", userID).Msg("notify: load user error")
		return err
	}
	if user.TelegramChatID == 0 {
		return nil
	}

	msg := tgbotapi.NewMessage(user.TelegramChatID, text)
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", user.TelegramChatID).Msg("notify: send error")
		return err
	}
	return nil
}
