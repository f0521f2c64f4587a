package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ratatoskr/internal/config"
	"ratatoskr/internal/domain"
)

const chunkSize = 2048

// Handler turns one inbound (text, username) pair into a response.
type Handler interface {
	Handle(ctx context.Context, text, username string) domain.ResponseMessage
}

type Bot struct {
	api     *tgbotapi.BotAPI
	handler Handler
	logger  *zap.Logger
}

func NewBot(cfg config.Config, handler Handler, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:     api,
		handler: handler,
		logger:  logger,
	}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("telegram bot started", zap.String("bot", b.api.Self.UserName))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			msg := update.Message
			if msg.From == nil {
				continue
			}
			go b.handleMessage(ctx, msg)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	b.logger.Info("message received",
		zap.String("username", msg.From.UserName),
		zap.Int64("chat_id", msg.Chat.ID),
	)
	b.sendChatAction(msg.Chat.ID)

	resp := b.handler.Handle(ctx, msg.Text, msg.From.UserName)

	for _, c := range render(msg.Chat.ID, resp) {
		if _, err := b.api.Send(c); err != nil {
			b.logger.Error("failed to send reply",
				zap.Int64("chat_id", msg.Chat.ID),
				zap.Error(err),
			)
			return
		}
	}
}

func (b *Bot) sendChatAction(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Warn("failed to send chat action", zap.Error(err))
	}
}

// render maps a response onto Telegram messages: a document for file
// responses, a reply keyboard for options, otherwise chunked text.
func render(chatID int64, resp domain.ResponseMessage) []tgbotapi.Chattable {
	switch {
	case resp.IsFile():
		return []tgbotapi.Chattable{tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  resp.Text,
			Bytes: resp.Bytes,
		})}
	case resp.HasOptions():
		buttons := make([]tgbotapi.KeyboardButton, 0, len(resp.Options))
		for _, o := range resp.Options {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(o))
		}
		keyboard := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(buttons...))
		keyboard.ResizeKeyboard = true

		msg := tgbotapi.NewMessage(chatID, resp.Text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = keyboard
		return []tgbotapi.Chattable{msg}
	}

	chunks := splitText(resp.Text, chunkSize)
	out := make([]tgbotapi.Chattable, 0, len(chunks))
	for _, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdown
		out = append(out, msg)
	}
	return out
}

func splitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/chunkSize+1)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
