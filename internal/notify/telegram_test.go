package notify

import (
	"context"
	"os"
	"testing"
	"time"

	"sharilka/internal/events"
	"sharilka/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

type fakeUsers struct {
	users map[int64]*models.User
}

func (f *fakeUsers) GetUser(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, assert.AnError
}

func setupNotifier() (*fakeSender, *events.EventBus) {
	logger := zerolog.New(os.Stdout)
	sender := &fakeSender{}
	users := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, Name: "Owner", TelegramChatID: 100},
		2: {ID: 2, Name: "Booker", TelegramChatID: 200},
		3: {ID: 3, Name: "Unlinked", TelegramChatID: 0},
	}}

	notifier := NewTelegramNotifierWithSender(sender, users, &logger)
	bus := events.NewEventBus()
	notifier.Register(bus)
	return sender, bus
}

func samplePayload(ownerID, bookerID int64) events.BookingEventPayload {
	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	return events.BookingEventPayload{
		BookingID:  7,
		ItemID:     5,
		ItemName:   "Дрель",
		OwnerID:    ownerID,
		BookerID:   bookerID,
		BookerName: "Booker",
		Status:     models.StatusWaiting,
		Start:      start,
		End:        start.Add(2 * time.Hour),
	}
}

func TestNotifyOwnerOnCreated(t *testing.T) {
	sender, bus := setupNotifier()

	require.NoError(t, bus.PublishJSON(events.EventBookingCreated, samplePayload(1, 2)))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(100), sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "Новая заявка")
	assert.Contains(t, sender.sent[0].Text, "Дрель")
	assert.Contains(t, sender.sent[0].Text, "Booker")
}

func TestNotifyBookerOnDecision(t *testing.T) {
	sender, bus := setupNotifier()

	require.NoError(t, bus.PublishJSON(events.EventBookingApproved, samplePayload(1, 2)))
	require.NoError(t, bus.PublishJSON(events.EventBookingRejected, samplePayload(1, 2)))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, int64(200), sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "подтверждена")
	assert.Equal(t, int64(200), sender.sent[1].ChatID)
	assert.Contains(t, sender.sent[1].Text, "отклонена")
}

func TestSkipUserWithoutChat(t *testing.T) {
	sender, bus := setupNotifier()

	require.NoError(t, bus.PublishJSON(events.EventBookingCreated, samplePayload(3, 2)))
	assert.Empty(t, sender.sent)
}
