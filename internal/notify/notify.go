package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize/english"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ReminderText renders the reminder message for a due count
func ReminderText(dueCount int) string {
	return fmt.Sprintf("You have %s ready for review. Run `lingualisten study` to practice.",
		english.Plural(dueCount, "phrase", ""))
}

// LogNotifier writes reminders to the log. It is used when no bot is configured.
type LogNotifier struct {
	Logger *log.Logger
}

// SendReminder implements scheduler.Notifier
func (n *LogNotifier) SendReminder(_ context.Context, userID string, dueCount int) error {
	n.Logger.Info("review reminder", "user", userID, "due", dueCount)
	return nil
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends reminders through a Telegram bot
type TelegramNotifier struct {
	api           sender
	defaultChatID int64
	log           *log.Logger
}

// NewTelegramNotifier connects to the bot API. Users whose id is not a
// numeric chat id are notified in defaultChatID.
func NewTelegramNotifier(token string, defaultChatID int64, logger *log.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	logger.Info("authorized telegram bot", "account", api.Self.UserName)
	return &TelegramNotifier{api: api, defaultChatID: defaultChatID, log: logger}, nil
}

func (n *TelegramNotifier) chatID(userID string) (int64, error) {
	if id, err := strconv.ParseInt(userID, 10, 64); err == nil {
		return id, nil
	}
	if n.defaultChatID != 0 {
		return n.defaultChatID, nil
	}
	return 0, fmt.Errorf("no telegram chat for user %q", userID)
}

// SendReminder implements scheduler.Notifier
func (n *TelegramNotifier) SendReminder(ctx context.Context, userID string, dueCount int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := n.chatID(userID)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, ReminderText(dueCount))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder to user %s: %w", userID, err)
	}

	n.log.Info("sent reminder", "user", userID, "due", dueCount)
	return nil
}
