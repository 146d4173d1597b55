// Package validation checks configuration and input structs.
//
// Struct tag validation uses go-playground/validator and reports fields by
// their config key:
//
//	type Config struct {
//	    Token string `mapstructure:"token" validate:"required"`
//	}
//	err := validation.Validate(cfg) // "token: is required"
//
// Programmatic checks collect errors the same way:
//
//	v := validation.New()
//	v.Required("telegram.token", cfg.Telegram.Token)
//	v.FileExists("google.application_credentials", cfg.Google.ApplicationCredentials)
//	if err := v.Validate(); err != nil { ... }
package validation
