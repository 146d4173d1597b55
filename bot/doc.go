// Package bot handles inbound Telegram messages.
//
// A Handler runs one voice message through download, conversion and
// transcription and answers it with exactly one message: the transcript,
// the no-speech notice, or a failure notice. A Dispatcher feeds it from the
// update channel, one goroutine per update.
//
//	h := bot.NewHandler(bot.Deps{
//	    Messenger:   tg,
//	    Converter:   conv,
//	    Transcriber: speech,
//	    Usage:       store,
//	}, cfg.Bot, log)
//	registry.Register(bot.NewDispatcher(tg, h, log))
package bot
