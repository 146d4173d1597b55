// Package logger provides structured logging on top of zerolog.
//
// Console output in development, JSON in production, component-scoped
// loggers and a request ID carried through context.Context.
//
//	log := logger.Get("bot")
//	log.WithContext(ctx).Info("voice handled", logger.Fields(logger.FieldChatID, chatID))
package logger
