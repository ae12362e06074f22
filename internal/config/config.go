package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/siteage/siteage-platform/internal/log"
)

// CIConfigPath variable contain the CI configuration path
const CIConfigPath = "/home/runner/work/siteage-platform/siteage-platform/"

// Configuration holds the project configuration
type Configuration struct {
	ServerUrl    string
	ServerPort   int
	SiteUrl      string       `mapstructure:"SiteUrl" tip:"Public web site base URL, used to build management links"`
	BadgeUrl     string       `mapstructure:"BadgeUrl" tip:"Badge renderer base URL, used for badge embed detection"`
	Database     Database     `mapstructure:"Database"`
	Cache        Cache        `mapstructure:"Cache"`
	Log          Log          `mapstructure:"Log"`
	Archive      Archive      `mapstructure:"Archive"`
	DNS          DNS          `mapstructure:"DNS"`
	Probe        Probe        `mapstructure:"Probe"`
	Verification Verification `mapstructure:"Verification"`
	Scheduler    Scheduler    `mapstructure:"Scheduler"`
	Email        Email        `mapstructure:"Email"`
	Admin        Admin        `mapstructure:"Admin"`
}

// Database has the database configuration
// URL: The database connection string
type Database struct {
	URL string `mapstructure:"Url" tip:"The Datasource name locator"`
}

// Cache configurations
type Cache struct {
	RedisUrl string `mapstructure:"RedisUrl" tip:"The redis url to use as a cache"`
}

// Archive holds the web archive CDX endpoint configuration
type Archive struct {
	URL       string        `mapstructure:"Url" tip:"CDX API base URL"`
	Timeout   time.Duration `mapstructure:"Timeout" tip:"CDX request timeout"`
	UserAgent string        `mapstructure:"UserAgent" tip:"User agent sent on CDX requests"`
	RateRPS   float64       `mapstructure:"RateRPS" tip:"Max CDX requests per second"`
}

// DNS holds the DNS-over-HTTPS provider set and the lookup timeouts
type DNS struct {
	Providers    []string      `mapstructure:"Providers" tip:"DNS-over-HTTPS JSON endpoints"`
	Timeout      time.Duration `mapstructure:"Timeout" tip:"Per provider lookup timeout"`
	ProbeTimeout time.Duration `mapstructure:"ProbeTimeout" tip:"A-record resolvability check timeout"`
}

// Probe holds the health prober configuration
type Probe struct {
	Timeout   time.Duration `mapstructure:"Timeout" tip:"HEAD/GET probe timeout"`
	UserAgent string        `mapstructure:"UserAgent" tip:"User agent sent on probes"`
}

// Verification configuration for the ownership challenge flow
type Verification struct {
	TokenTTL time.Duration `mapstructure:"TokenTTL" tip:"Challenge token time to live"`
}

// Scheduler holds the daily health cycle knobs
type Scheduler struct {
	DailyPercent  float64 `mapstructure:"DailyPercent" tip:"Fraction of all domains checked per day"`
	DailyMin      int     `mapstructure:"DailyMin" tip:"Daily quota lower bound"`
	DailyMax      int     `mapstructure:"DailyMax" tip:"Daily quota upper bound"`
	PriorityRatio float64 `mapstructure:"PriorityRatio" tip:"Share of the quota given to the priority pool"`
	BatchSize     int     `mapstructure:"BatchSize" tip:"Concurrent probes per batch"`
}

// Email holds the credential delivery configuration
type Email struct {
	ResendAPIKey string `mapstructure:"ResendApiKey" tip:"Resend API key"`
	From         string `mapstructure:"From" tip:"From address for magic link mails"`
}

// Admin configuration. The administrative endpoints are protected with an
// api key header.
type Admin struct {
	APIKey string `mapstructure:"ApiKey" tip:"X-Admin-Key value for admin endpoints"`
}

// Log holds runtime configurations
//
// Level: The minimum log level to show on logs. Values can be
//
//	 -4: Debug
//		0: Info
//		4: Warning
//		8: Error
//	 The default log level is debug
//
// Mode: Log mode is the format of the log. It can be text or json
// 1: JSON
// 2: Text
// The default log formal is JSON
type Log struct {
	Level int `mapstructure:"Level" tip:"Minimum level to log: (-4:Debug, 0:Info, 4:Warning, 8:Error)"`
	Mode  int `mapstructure:"Mode" tip:"Log format (1: JSON, 2:Structured text)"`
}

// Sanitize perform some basic checks and sanitizations in the configuration.
// Returns true if config is acceptable, error otherwise.
func (c *Configuration) Sanitize() error {
	sUrl, err := c.validateServerUrl()
	if err != nil {
		return fmt.Errorf("serverUrl is not a valid URL <%s>: %w", c.ServerUrl, err)
	}
	c.ServerUrl = sUrl

	return nil
}

func (c *Configuration) validateServerUrl() (string, error) {
	sUrl, err := url.ParseRequestURI(c.ServerUrl)
	if err != nil {
		return c.ServerUrl, err
	}
	if sUrl.Scheme == "" {
		return c.ServerUrl, fmt.Errorf("server URL must be an absolute URL")
	}
	sUrl.RawQuery = ""
	return strings.Trim(strings.Trim(sUrl.String(), "/"), "?"), nil
}

// Load loads the configuration from a file
func Load(fileName string) (*Configuration, error) {
	bindEnv()
	pathFlag := viper.GetString("config")
	if _, err := os.Stat(pathFlag); err == nil {
		ext := filepath.Ext(pathFlag)
		if len(ext) > 1 {
			ext = ext[1:]
		}
		name := strings.Split(filepath.Base(pathFlag), ".")[0]
		viper.AddConfigPath(".")
		viper.SetConfigName(name)
		viper.SetConfigType(ext)
	} else {
		// Read default config file.
		viper.AddConfigPath(getWorkingDirectory())
		viper.AddConfigPath(CIConfigPath)
		viper.SetConfigType("toml")
		if fileName == "" {
			viper.SetConfigName("config")
		} else {
			viper.SetConfigName(fileName)
		}
	}

	config := defaults()
	ctx := context.Background()
	if err := viper.ReadInConfig(); err != nil {
		log.Info(ctx, "config file not loaded, relying on env and defaults", "err", err)
	}

	if err := viper.Unmarshal(config); err != nil {
		log.Error(ctx, "error unmarshalling config file", "err", err)
	}
	checkEnvVars(ctx, config)
	return config, nil
}

func defaults() *Configuration {
	return &Configuration{
		SiteUrl:  "https://siteage.org",
		BadgeUrl: "https://badge.siteage.org",
		Log: Log{
			Level: log.LevelDebug,
			Mode:  log.OutputText,
		},
		Archive: Archive{
			URL:       "https://web.archive.org/cdx/search/cdx",
			Timeout:   30 * time.Second,
			UserAgent: "SiteAge.org/1.0 (https://siteage.org)",
			RateRPS:   1,
		},
		DNS: DNS{
			Providers: []string{
				"https://cloudflare-dns.com/dns-query",
				"https://dns.google/resolve",
				"https://dns.quad9.net:5053/dns-query",
			},
			Timeout:      10 * time.Second,
			ProbeTimeout: 5 * time.Second,
		},
		Probe: Probe{
			Timeout:   10 * time.Second,
			UserAgent: "SiteAge.org HealthCheck/1.0",
		},
		Verification: Verification{
			TokenTTL: 24 * time.Hour,
		},
		Scheduler: Scheduler{
			DailyPercent:  0.01,
			DailyMin:      50,
			DailyMax:      500,
			PriorityRatio: 0.7,
			BatchSize:     10,
		},
		Email: Email{
			From: "SiteAge.org <noreply@siteage.org>",
		},
	}
}

func bindEnv() {
	viper.SetEnvPrefix("SITEAGE")
	_ = viper.BindEnv("ServerUrl", "SITEAGE_SERVER_URL")
	_ = viper.BindEnv("ServerPort", "SITEAGE_SERVER_PORT")
	_ = viper.BindEnv("SiteUrl", "SITEAGE_SITE_URL")
	_ = viper.BindEnv("BadgeUrl", "SITEAGE_BADGE_URL")

	_ = viper.BindEnv("Database.Url", "SITEAGE_DATABASE_URL")
	_ = viper.BindEnv("Cache.RedisUrl", "SITEAGE_REDIS_URL")

	_ = viper.BindEnv("Log.Level", "SITEAGE_LOG_LEVEL")
	_ = viper.BindEnv("Log.Mode", "SITEAGE_LOG_MODE")

	_ = viper.BindEnv("Archive.Url", "SITEAGE_ARCHIVE_URL")
	_ = viper.BindEnv("Archive.Timeout", "SITEAGE_ARCHIVE_TIMEOUT")
	_ = viper.BindEnv("Archive.UserAgent", "SITEAGE_ARCHIVE_USER_AGENT")
	_ = viper.BindEnv("Archive.RateRPS", "SITEAGE_ARCHIVE_RATE_RPS")

	_ = viper.BindEnv("DNS.Providers", "SITEAGE_DNS_PROVIDERS")
	_ = viper.BindEnv("DNS.Timeout", "SITEAGE_DNS_TIMEOUT")
	_ = viper.BindEnv("DNS.ProbeTimeout", "SITEAGE_DNS_PROBE_TIMEOUT")

	_ = viper.BindEnv("Probe.Timeout", "SITEAGE_PROBE_TIMEOUT")
	_ = viper.BindEnv("Probe.UserAgent", "SITEAGE_PROBE_USER_AGENT")

	_ = viper.BindEnv("Verification.TokenTTL", "SITEAGE_VERIFICATION_TOKEN_TTL")

	_ = viper.BindEnv("Scheduler.DailyPercent", "SITEAGE_SCHEDULER_DAILY_PERCENT")
	_ = viper.BindEnv("Scheduler.DailyMin", "SITEAGE_SCHEDULER_DAILY_MIN")
	_ = viper.BindEnv("Scheduler.DailyMax", "SITEAGE_SCHEDULER_DAILY_MAX")
	_ = viper.BindEnv("Scheduler.PriorityRatio", "SITEAGE_SCHEDULER_PRIORITY_RATIO")
	_ = viper.BindEnv("Scheduler.BatchSize", "SITEAGE_SCHEDULER_BATCH_SIZE")

	_ = viper.BindEnv("Email.ResendApiKey", "SITEAGE_RESEND_API_KEY")
	_ = viper.BindEnv("Email.From", "SITEAGE_EMAIL_FROM")

	_ = viper.BindEnv("Admin.ApiKey", "SITEAGE_ADMIN_API_KEY")

	viper.AutomaticEnv()
}

func checkEnvVars(ctx context.Context, cfg *Configuration) {
	if cfg.ServerUrl == "" {
		log.Info(ctx, "SITEAGE_SERVER_URL value is missing")
	}

	if cfg.ServerPort == 0 {
		log.Info(ctx, "SITEAGE_SERVER_PORT value is missing")
	}

	if cfg.Database.URL == "" {
		log.Info(ctx, "SITEAGE_DATABASE_URL value is missing")
	}

	if cfg.Cache.RedisUrl == "" {
		log.Info(ctx, "SITEAGE_REDIS_URL value is missing")
	}

	if cfg.Email.ResendAPIKey == "" {
		log.Info(ctx, "SITEAGE_RESEND_API_KEY value is missing")
	}

	if cfg.Admin.APIKey == "" {
		log.Info(ctx, "SITEAGE_ADMIN_API_KEY value is missing")
	}
}

func getWorkingDirectory() string {
	_, b, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(b), "../..") + "/"
}
