package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/usecase"
)

const (
	busyText    = "⏳ Still thinking about your last question, one moment please!"
	failureText = "Sorry, something went wrong. Please try again."
	clearedText = "✅ Conversation cleared! Send /start to begin a new one."
	helpText    = "I'm Dermora AI, your skincare assistant 💕\n\n" +
		"Just ask me anything about skincare.\n\n" +
		"/start - start a new conversation\n" +
		"/clear - forget this conversation\n" +
		"/help - show this message"
)

// sender the part of the bot API the handler writes through
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// BotHandler Telegram front end of the assistant. Each chat owns one session.
type BotHandler struct {
	api    *tgbotapi.BotAPI
	bot    sender
	chat   usecase.ChatUseCase
	logger *zap.Logger

	// sleep waits out a reply's reveal delay
	sleep func(ctx context.Context, d time.Duration)

	mu       sync.RWMutex
	sessions map[int64]string
}

// NewBotHandler connects to the bot API with token
func NewBotHandler(token string, chat usecase.ChatUseCase, logger *zap.Logger) (*BotHandler, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	h := newBotHandler(api, chat, logger)
	h.api = api
	return h, nil
}

func newBotHandler(bot sender, chat usecase.ChatUseCase, logger *zap.Logger) *BotHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BotHandler{
		bot:      bot,
		chat:     chat,
		logger:   logger.Named("telegram"),
		sleep:    sleepCtx,
		sessions: make(map[int64]string),
	}
}

// Start polls for updates until ctx is done
func (h *BotHandler) Start(ctx context.Context) error {
	h.logger.Info("bot started", zap.String("username", h.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.api.GetUpdatesChan(u)
	defer h.api.StopReceivingUpdates()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("bot stopping")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}

			wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer wg.Done()
				h.handleMessage(ctx, msg)
			}(update.Message)
		}
	}
}

// handleMessage commands first, everything else goes to the assistant
func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	if strings.TrimSpace(message.Text) != "" {
		h.handleTextMessage(ctx, message.Chat.ID, message.Text)
	}
}

func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		h.handleStartCommand(ctx, chatID)
	case "clear":
		h.handleClearCommand(ctx, chatID)
	case "help":
		h.sendMessage(chatID, helpText)
	default:
		h.sendMessage(chatID, "Unknown command. Send /help for help.")
	}
}

// handleStartCommand replaces any existing session with a fresh one
func (h *BotHandler) handleStartCommand(ctx context.Context, chatID int64) {
	h.endSession(ctx, chatID)

	if _, err := h.newSession(ctx, chatID); err != nil {
		h.logger.Error("failed to start session", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(chatID, failureText)
		return
	}

	msg := tgbotapi.NewMessage(chatID, entity.GreetingText)
	msg.ReplyMarkup = quickReplyKeyboard(h.chat.QuickReplies())
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Warn("failed to send greeting", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *BotHandler) handleClearCommand(ctx context.Context, chatID int64) {
	h.endSession(ctx, chatID)

	msg := tgbotapi.NewMessage(chatID, clearedText)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *BotHandler) handleTextMessage(ctx context.Context, chatID int64, text string) {
	// chat actions answer with a bare bool, which only Request decodes
	if _, err := h.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		h.logger.Debug("failed to send typing action", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	reply, err := h.process(ctx, chatID, text)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrSessionEnded):
		// cleared or restarted while answering
		return
	case errors.Is(err, usecase.ErrSessionBusy):
		h.sendMessage(chatID, busyText)
		return
	case errors.Is(err, usecase.ErrEmptyMessage):
		return
	default:
		h.logger.Error("failed to process message", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendMessage(chatID, failureText)
		return
	}

	h.sleep(ctx, reply.Resolution.RevealDelay)
	h.sendMessage(chatID, reply.AssistantMessage.Text)
}

// process sends text on the chat's session. A session that expired in the
// meantime is replaced once.
func (h *BotHandler) process(ctx context.Context, chatID int64, text string) (usecase.Reply, error) {
	sessionID, err := h.sessionFor(ctx, chatID)
	if err != nil {
		return usecase.Reply{}, err
	}

	reply, err := h.chat.ProcessMessage(ctx, sessionID, text)
	if !errors.Is(err, usecase.ErrSessionNotFound) || errors.Is(err, usecase.ErrSessionEnded) {
		return reply, err
	}

	h.forget(chatID, sessionID)
	if sessionID, err = h.newSession(ctx, chatID); err != nil {
		return usecase.Reply{}, err
	}
	return h.chat.ProcessMessage(ctx, sessionID, text)
}

func (h *BotHandler) sessionFor(ctx context.Context, chatID int64) (string, error) {
	h.mu.RLock()
	id, ok := h.sessions[chatID]
	h.mu.RUnlock()
	if ok {
		return id, nil
	}
	return h.newSession(ctx, chatID)
}

func (h *BotHandler) newSession(ctx context.Context, chatID int64) (string, error) {
	session, err := h.chat.StartSession(ctx)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// a concurrent message may have won the race
	if existing, ok := h.sessions[chatID]; ok {
		if err := h.chat.EndSession(ctx, session.ID); err != nil {
			h.logger.Debug("failed to drop duplicate session", zap.Error(err))
		}
		return existing, nil
	}
	h.sessions[chatID] = session.ID
	return session.ID, nil
}

func (h *BotHandler) endSession(ctx context.Context, chatID int64) {
	h.mu.Lock()
	id, ok := h.sessions[chatID]
	delete(h.sessions, chatID)
	h.mu.Unlock()

	if !ok {
		return
	}
	if err := h.chat.EndSession(ctx, id); err != nil && !errors.Is(err, usecase.ErrSessionNotFound) {
		h.logger.Warn("failed to end session", zap.String("session", id), zap.Error(err))
	}
}

// forget drops the mapping only if it still points at sessionID
func (h *BotHandler) forget(chatID int64, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[chatID] == sessionID {
		delete(h.sessions, chatID)
	}
}

// sendMessage plain text message
func (h *BotHandler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// quickReplyKeyboard one suggestion per row
func quickReplyKeyboard(replies []string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(replies))
	for _, r := range replies {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(r)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
