package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/httpclient"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/resilience"
	"github.com/kbukum/voicescribe/version"
)

// Client talks to the Telegram Bot API: long-poll updates, replies, edits
// and file downloads.
type Client struct {
	cfg    Config
	api    *tgbotapi.BotAPI
	http   *httpclient.Client
	sendRL *resilience.RateLimiter
	log    *logger.Logger
}

// NewClient connects to the Bot API and verifies the token with getMe.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.ConfigInvalid("telegram", err.Error())
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("telegram")

	hc, err := httpclient.New(httpclient.Config{
		// The long poll holds a request open for PollTimeout.
		Timeout:     cfg.PollTimeout + cfg.RequestTimeout,
		UserAgent:   version.UserAgent("voicescribe"),
		MaxBodySize: cfg.MaxFileSize,
		Retry:       downloadRetry(),
	})
	if err != nil {
		return nil, err
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, cfg.APIEndpoint, hc.Unwrap())
	if err != nil {
		return nil, apperrors.ServiceUnavailable("telegram").WithCause(fmt.Errorf("connect bot api: %w", err))
	}
	api.Debug = cfg.Debug

	log.Info("Connected to Telegram", map[string]interface{}{
		"bot":   api.Self.UserName,
		"token": logger.MaskSecret(cfg.Token),
	})

	return &Client{
		cfg:    cfg,
		api:    api,
		http:   hc,
		sendRL: resilience.NewRateLimiter(resilience.RateLimiterConfig{Name: "telegram-send", Rate: cfg.SendRate}),
		log:    log,
	}, nil
}

func downloadRetry() *resilience.RetryConfig {
	rc := httpclient.DefaultRetryConfig()
	rc.InitialBackoff = 250 * time.Millisecond
	return rc
}

// Name returns the provider name.
func (c *Client) Name() string { return "telegram" }

// IsAvailable reports whether the Bot API answers getMe.
func (c *Client) IsAvailable(_ context.Context) bool {
	_, err := c.api.GetMe()
	return err == nil
}

// BotUsername returns the bot's @username without the @.
func (c *Client) BotUsername() string { return c.api.Self.UserName }

// MaxFileSize returns the download cap in bytes.
func (c *Client) MaxFileSize() int64 { return c.cfg.MaxFileSize }

// Updates starts long polling and returns the update channel. The channel
// is closed after StopUpdates.
func (c *Client) Updates(ctx context.Context) tgbotapi.UpdatesChannel {
	if c.cfg.DropPendingUpdates {
		if err := c.DeleteWebhook(ctx, true); err != nil {
			c.log.Warn("Failed to drop pending updates", logger.ErrorFields("delete_webhook", err))
		}
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(c.cfg.PollTimeout / time.Second)
	u.AllowedUpdates = []string{"message"}
	return c.api.GetUpdatesChan(u)
}

// StopUpdates stops long polling.
func (c *Client) StopUpdates() { c.api.StopReceivingUpdates() }

// DeleteWebhook removes any webhook so long polling works, optionally
// discarding queued updates.
func (c *Client) DeleteWebhook(_ context.Context, dropPending bool) error {
	_, err := c.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending})
	return err
}

// Reply sends text to chatID as a reply to replyTo (zero for none) and
// returns the new message ID.
func (c *Client) Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	if err := c.sendRL.Wait(ctx); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	msg.AllowSendingWithoutReply = true
	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sent.MessageID, nil
}

// Edit replaces the text of a message the bot sent earlier.
func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := c.sendRL.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.api.Request(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// Download fetches a file by ID. Files above MaxFileSize fail with
// INVALID_INPUT; every other failure is DOWNLOAD_FAILED.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	file, err := c.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, apperrors.DownloadFailed(fileID, fmt.Errorf("get file: %w", err))
	}
	if int64(file.FileSize) > c.cfg.MaxFileSize {
		return nil, tooLarge(int64(file.FileSize), c.cfg.MaxFileSize)
	}
	if file.FilePath == "" {
		return nil, apperrors.DownloadFailed(fileID, fmt.Errorf("bot api returned no file path"))
	}

	resp, err := c.http.Do(ctx, httpclient.Request{
		Path: fmt.Sprintf(c.cfg.FileEndpoint, c.cfg.Token, file.FilePath),
	})
	if err != nil {
		if httpclient.IsTooLarge(err) {
			return nil, tooLarge(0, c.cfg.MaxFileSize).WithCause(err)
		}
		return nil, apperrors.DownloadFailed(fileID, err)
	}
	return resp.Body, nil
}

func tooLarge(size, limit int64) *apperrors.AppError {
	reason := fmt.Sprintf("file exceeds %d bytes", limit)
	if size > 0 {
		reason = fmt.Sprintf("file of %d bytes exceeds %d bytes", size, limit)
	}
	return apperrors.InvalidInput("file_size", reason)
}
