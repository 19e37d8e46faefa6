package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	TelegramToken         string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramWebhookSecret string `mapstructure:"TELEGRAM_WEBHOOK_SECRET"`
	VapiSecret            string `mapstructure:"VAPI_SECRET"`

	GenBaseURL    string `mapstructure:"GEN_BASE_URL"`
	GenModel      string `mapstructure:"GEN_MODEL"`
	GenAPIKey     string `mapstructure:"GEN_API_KEY"`
	GenMaxTokens  int    `mapstructure:"GEN_MAX_TOKENS"`
	MaxMessageLen int    `mapstructure:"MAX_MESSAGE_LEN"`
	HistoryWindow int    `mapstructure:"HISTORY_WINDOW"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("GEN_MODEL", "gpt-4o-mini")
	v.SetDefault("GEN_MAX_TOKENS", 512)
	v.SetDefault("MAX_MESSAGE_LEN", 4096)
	v.SetDefault("HISTORY_WINDOW", 20)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.HistoryWindow > 20 {
		cfg.HistoryWindow = 20
	}
	return cfg, nil
}
