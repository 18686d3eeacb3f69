package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/jmpark/outageboard/internal/core"
)

type Config struct {
	Server      ServerConfig
	Scrape      ScrapeConfig
	Database    DatabaseConfig
	RemoteWrite RemoteWriteConfig
	Nats        NatsConfig
	News        NewsConfig
	Registry    RegistryConfig
}

type ServerConfig struct {
	Port      string
	Mode      string
	JWTSecret string
}

type ScrapeConfig struct {
	PollInterval time.Duration
	PacingDelay  time.Duration
	WaitTimeout  time.Duration
	NavTimeout   time.Duration
	DNSServer    string
	Regions      []string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdleConns   int
	MigrationsPath string
}

type RemoteWriteConfig struct {
	URL           string
	BatchSize     int
	FlushInterval time.Duration
	AuthToken     string
}

type NatsConfig struct {
	URL           string
	SubjectPrefix string
}

type NewsConfig struct {
	TranslateEndpoint string
	CredentialFile    string
	TargetLanguage    string
	CachePath         string
	GeoCachePath      string
	GeoUserAgent      string
	GeoEndpoint       string
}

type RegistryConfig struct {
	Path string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("OUTAGEBOARD")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("scrape.pollinterval", "1m")
	viper.SetDefault("scrape.pacingdelay", "1s")
	viper.SetDefault("scrape.waittimeout", "10s")
	viper.SetDefault("scrape.navtimeout", "30s")
	viper.SetDefault("scrape.dnsserver", "8.8.8.8:53")
	viper.SetDefault("scrape.regions", []string{"US", "JP"})
	viper.SetDefault("database.maxconnections", 25)
	viper.SetDefault("database.maxidleconns", 5)
	viper.SetDefault("database.migrationspath", "file://migrations")
	viper.SetDefault("remotewrite.batchsize", 1000)
	viper.SetDefault("remotewrite.flushinterval", "10s")
	viper.SetDefault("nats.subjectprefix", "outage.alarms")
	viper.SetDefault("news.targetlanguage", "ko")
	viper.SetDefault("news.translateendpoint", "https://translation.googleapis.com/language/translate/v2")
	viper.SetDefault("news.credentialfile", "translate_key.json")
	viper.SetDefault("news.cachepath", "trans_cache.json")
	viper.SetDefault("news.geocachepath", "geoloc_cache.json")
	viper.SetDefault("news.geouseragent", "outageboard")
	viper.SetDefault("news.geoendpoint", "https://nominatim.openstreetmap.org/search")
	viper.SetDefault("registry.path", "companies_list.json")

	var cfg Config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Override with environment variables
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if url := os.Getenv("NATS_URL"); url != "" {
		cfg.Nats.URL = url
	}
	if url := os.Getenv("REMOTE_WRITE_URL"); url != "" {
		cfg.RemoteWrite.URL = url
	}
	if token := os.Getenv("REMOTE_WRITE_AUTH_TOKEN"); token != "" {
		cfg.RemoteWrite.AuthToken = token
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Server.JWTSecret = secret
	}

	return &cfg, nil
}

// Regions resolves the configured region codes against the closed
// region set, dropping anything unrecognized.
func (c *Config) Regions() []core.Region {
	var out []core.Region
	for _, s := range c.Scrape.Regions {
		if r, ok := core.ParseRegion(s); ok {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		out = core.Regions()
	}
	return out
}
