// Package config loads service configuration with Viper.
//
// Values come from a YAML file (cmd/<service>/config.yml and a few other
// standard locations), a .env file loaded with godotenv, and the process
// environment. Environment variables are bound under every plausible nested
// key, so TELEGRAM_TOKEN populates telegram.token.
//
//	var cfg app.Config
//	err := config.LoadConfig("voicescribe", &cfg)
package config
