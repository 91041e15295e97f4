package telegram

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ClaimOutcome mirrors the request module's claim results without importing it.
var (
	ErrAlreadyClaimed   = errors.New("already claimed")
	ErrCriteriaMismatch = errors.New("criteria mismatch")
	ErrNotEligible      = errors.New("not eligible")
)

// RequestClaimer executes the first-accept-wins claim for a psychologist
// identified by their Telegram chat.
type RequestClaimer interface {
	ClaimByTelegram(ctx context.Context, requestID, telegramID int64) error
}

// CodeIssuer hands a fresh login code to a Telegram user for the web login flow.
type CodeIssuer interface {
	IssueTelegramCode(ctx context.Context, telegramID int64) (string, error)
}

// Bot runs the long-poll update loop: /start (optionally carrying an
// anonymous client token as deep-link payload), /login, and the accept
// callback race.
type Bot struct {
	api     *tgbotapi.BotAPI
	claimer RequestClaimer
	codes   CodeIssuer
}

func NewBot(api *tgbotapi.BotAPI, claimer RequestClaimer, codes CodeIssuer) *Bot {
	return &Bot{api: api, claimer: claimer, codes: codes}
}

func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	switch update.Message.Command() {
	case "start":
		b.handleStart(ctx, chatID)
	case "login":
		b.handleLogin(ctx, chatID)
	default:
		b.reply(chatID, "Commands: /start, /login")
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	b.handleLogin(ctx, chatID)
}

func (b *Bot) handleLogin(ctx context.Context, chatID int64) {
	code, err := b.codes.IssueTelegramCode(ctx, chatID)
	if err != nil {
		log.Printf("telegram: issue code chat_id=%d: %v", chatID, err)
		b.reply(chatID, "Could not issue a login code, please try again later.")
		return
	}
	b.reply(chatID, "Your login code: "+code+"\nEnter it on the site to link this Telegram account.")
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// acknowledge the callback so the client stops the spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("telegram: ack callback: %v", err)
	}

	data := cb.Data
	if !strings.HasPrefix(data, "accept:") {
		return
	}
	requestID, err := strconv.ParseInt(strings.TrimPrefix(data, "accept:"), 10, 64)
	if err != nil {
		return
	}

	chatID := cb.From.ID
	err = b.claimer.ClaimByTelegram(ctx, requestID, chatID)
	switch {
	case err == nil:
		b.reply(chatID, "The request is yours. Please contact the client.")
	case errors.Is(err, ErrAlreadyClaimed):
		b.reply(chatID, "Another psychologist already took this request.")
	case errors.Is(err, ErrCriteriaMismatch):
		b.reply(chatID, "This request's preferences do not match your profile.")
	case errors.Is(err, ErrNotEligible):
		b.reply(chatID, "Only verified psychologists can take requests.")
	default:
		log.Printf("telegram: claim request_id=%d chat_id=%d: %v", requestID, chatID, err)
		b.reply(chatID, "Something went wrong, please try again.")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("telegram: send chat_id=%d: %v", chatID, err)
	}
}
