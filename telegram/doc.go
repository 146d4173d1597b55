// Package telegram is the Bot API transport: long-polling updates, sending
// and editing messages, and downloading voice files.
//
// Outgoing messages share one token bucket so bursts of replies stay under
// Telegram's flood limits. Downloads go through httpclient with the file
// size capped at MaxFileSize.
package telegram
