// internal/bot/bot.go
// Package bot is the Telegram shell around the retrieval pipeline: command
// parsing and message relay only, no retrieval logic of its own.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/askdocs/askdocs/internal/appconfig"
	"github.com/askdocs/askdocs/internal/logging"
	"github.com/askdocs/askdocs/internal/rag"
)

// summarizeCount is how many recent questions /summarize shows.
const summarizeCount = 3

const helpText = "/ask <query> - query the knowledge base\n" +
	"/summarize - show your last 3 queries\n" +
	"/help - show commands"

// Run starts the long-polling loop and blocks until ctx is canceled or the
// Telegram API fails permanently.
func Run(ctx context.Context, token string, cfg *appconfig.Config, pipeline *rag.Pipeline) error {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = cfg.Debug
	logging.LogEvent("[bot] authorized as @%s", api.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	hist := newHistory()

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			reply := handleCommand(ctx, update.Message, pipeline, hist)
			if reply == "" {
				continue
			}
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
			if _, err := api.Send(msg); err != nil {
				logging.LogEvent("[bot] send failed: %v", err)
			}
		}
	}
}

// handleCommand dispatches a single bot command and returns the reply text.
func handleCommand(ctx context.Context, msg *tgbotapi.Message, pipeline *rag.Pipeline, hist *history) string {
	switch msg.Command() {
	case "start":
		return "askdocs bot ready. Use /ask <query>."
	case "help":
		return helpText
	case "ask":
		return handleAsk(ctx, msg, pipeline, hist)
	case "summarize":
		return handleSummarize(msg, hist)
	default:
		return "Unknown command. " + helpText
	}
}

func handleAsk(ctx context.Context, msg *tgbotapi.Message, pipeline *rag.Pipeline, hist *history) string {
	question := strings.TrimSpace(msg.CommandArguments())
	if question == "" {
		return "Usage: /ask <your question>"
	}

	userID := msg.From.ID
	hist.append(userID, "user", question)

	answer, err := pipeline.Ask(ctx, question)
	if err != nil {
		logging.LogEvent("[bot] ask failed for user %d: %v", userID, err)
		reply := rag.UserMessage(err)
		hist.append(userID, "bot", reply)
		return reply
	}

	reply := answer.Text
	hist.append(userID, "bot", reply)
	return reply
}

func handleSummarize(msg *tgbotapi.Message, hist *history) string {
	questions := hist.lastQuestions(msg.From.ID, summarizeCount)
	if len(questions) == 0 {
		return "No recent queries found."
	}
	return "Your last queries:\n- " + strings.Join(questions, "\n- ")
}
