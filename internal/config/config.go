package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"proforma/internal/logger"
)

type Config struct {
	SettingsPath        string
	DefaultSettingsPath string
	DBPath              string
	OutputDir           string
	DefaultGuidePath    string

	CatalogAPIBaseURL   string
	CatalogAPIToken     string
	CatalogRateLimitRPS int
	CatalogTimeoutMs    int

	HTTPAddr string

	LogLevel  string
	LogFormat string
	LogOutput string

	InboxProvider    string
	InboxDir         string
	InboxLabel       string
	InboxIntervalSec int
	InboxFetchMax    int
	InboxDraftReply  bool

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	MailFrom string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		SettingsPath:        getEnv("PROFORMA_SETTINGS_PATH", filepath.Join(cwd, "data", "settings.json")),
		DefaultSettingsPath: getEnv("PROFORMA_DEFAULT_SETTINGS_PATH", filepath.Join(cwd, "config", "default.json")),
		DBPath:              getEnv("DB_PATH", filepath.Join(cwd, "data", "proforma.db")),
		OutputDir:           getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		DefaultGuidePath:    getEnv("SKU_GUIDE_PATH", filepath.Join(cwd, "config", "skuGuide.json")),

		CatalogAPIBaseURL:   getEnv("CATALOG_API_BASE_URL", ""),
		CatalogAPIToken:     getEnv("CATALOG_API_TOKEN", ""),
		CatalogRateLimitRPS: getEnvInt("CATALOG_RATE_LIMIT_RPS", 5),
		CatalogTimeoutMs:    getEnvInt("CATALOG_TIMEOUT_MS", 30000),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
		LogOutput: getEnv("LOG_OUTPUT", "stderr"),

		InboxProvider:    getEnv("INBOX_PROVIDER", "imap"),
		InboxDir:         getEnv("INBOX_DIR", filepath.Join(cwd, "data", "inbox")),
		InboxLabel:       getEnv("INBOX_LABEL", "INBOX"),
		InboxIntervalSec: getEnvInt("INBOX_INTERVAL_SEC", 60),
		InboxFetchMax:    getEnvInt("INBOX_FETCH_MAX", 20),
		InboxDraftReply:  getEnvBool("INBOX_DRAFT_REPLY", true),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", true),

		MailFrom: getEnv("MAIL_FROM", ""),
	}

	return cfg, nil
}

func (c Config) LoggerConfig() logger.LogConfig {
	return logger.LogConfig{Level: c.LogLevel, Format: c.LogFormat, Output: c.LogOutput}
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
