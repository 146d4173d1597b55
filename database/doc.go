// Package database provides the SQLite store behind usage tracking: a GORM
// connection with retrying open, a zerolog-backed GORM logger, transactions,
// and a lifecycle component for the bootstrap registry.
//
//	db := database.NewComponent(cfg.Database, log).WithAutoMigrate(&usage.AudioRecord{})
//	app.Components.Register(db)
//
// When Enabled is false Start is a no-op, DB returns nil and Health reports
// healthy with the message "disabled".
package database
