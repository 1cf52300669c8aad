package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/text/language"

	"github.com/dharmasatrya/flybulgarien/internal/parser"
	"github.com/dharmasatrya/flybulgarien/internal/providers"
	"github.com/dharmasatrya/flybulgarien/internal/ratelimit"
	"github.com/dharmasatrya/flybulgarien/internal/sink"
)

const DefaultPath = "config.yaml"

type Config struct {
	Carrier   Carrier   `yaml:"carrier"`
	HTTP      HTTP      `yaml:"http"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Redis     Redis     `yaml:"redis"`
	Log       Log       `yaml:"log"`
}

type Carrier struct {
	SearchURL          string        `yaml:"search_url" env:"CARRIER_SEARCH_URL" env-default:"https://apps.penguin.bg/fly/quote3.aspx"`
	DirectoryURL       string        `yaml:"directory_url" env:"CARRIER_DIRECTORY_URL" env-default:"https://www.flybulgarien.dk/en/"`
	DirectorySelector  string        `yaml:"directory_selector" env:"CARRIER_DIRECTORY_SELECTOR" env-default:"select#departure-city"`
	Lang               string        `yaml:"lang" env:"CARRIER_LANG" env-default:"en"`
	TableSelector      string        `yaml:"table_selector" env:"CARRIER_TABLE_SELECTOR" env-default:"table#flywiz_tblQuotes"`
	RowClasses         []string      `yaml:"row_classes" env:"CARRIER_ROW_CLASSES" env-default:"selectedrow,bgrow"`
	InboundMarkerClass string        `yaml:"inbound_marker_class" env:"CARRIER_INBOUND_MARKER_CLASS" env-default:"returnrow"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout" env:"CARRIER_CONNECT_TIMEOUT" env-default:"3s"`
	ReadTimeout        time.Duration `yaml:"read_timeout" env:"CARRIER_READ_TIMEOUT" env-default:"25s"`
	UserAgent          string        `yaml:"user_agent" env:"CARRIER_USER_AGENT" env-default:"Mozilla/5.0 (X11; Linux x86_64) flybulgarien/1.0"`
	StrictIATA         bool          `yaml:"strict_iata" env:"CARRIER_STRICT_IATA" env-default:"true"`
}

type HTTP struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// RateLimit holds one bucket per carrier host; RPS and Burst apply to any
// other host the fetcher is pointed at.
type RateLimit struct {
	RPS            float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"1"`
	Burst          int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"2"`
	SearchRPS      float64 `yaml:"search_rps" env:"RATE_LIMIT_SEARCH_RPS" env-default:"1"`
	SearchBurst    int     `yaml:"search_burst" env:"RATE_LIMIT_SEARCH_BURST" env-default:"1"`
	DirectoryRPS   float64 `yaml:"directory_rps" env:"RATE_LIMIT_DIRECTORY_RPS" env-default:"0.2"`
	DirectoryBurst int     `yaml:"directory_burst" env:"RATE_LIMIT_DIRECTORY_BURST" env-default:"1"`
}

type Redis struct {
	Enabled  bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Key      string        `yaml:"key" env:"REDIS_KEY" env-default:"flybulgarien:results"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"24h"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// New reads path when it exists and lets environment variables override it.
// An empty path means DefaultPath; a missing default file is not an error.
func New(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config error: %w", err)
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if _, err := language.Parse(cfg.Carrier.Lang); err != nil {
		return nil, fmt.Errorf("config error: carrier lang %q: %w", cfg.Carrier.Lang, err)
	}
	return cfg, nil
}

func (c *Config) ProviderConfig() providers.FlyBulgarienConfig {
	return providers.FlyBulgarienConfig{
		SearchURL:         c.Carrier.SearchURL,
		DirectoryURL:      c.Carrier.DirectoryURL,
		DirectorySelector: c.Carrier.DirectorySelector,
		Lang:              language.Make(c.Carrier.Lang),
	}
}

func (c *Config) TableConfig() parser.TableConfig {
	return parser.TableConfig{
		TableSelector:      c.Carrier.TableSelector,
		RowClasses:         c.Carrier.RowClasses,
		InboundMarkerClass: c.Carrier.InboundMarkerClass,
	}
}

// RateLimiter builds the fetcher's limiter with the search and directory
// hosts on their own limits. The search limit wins when both share a host.
func (c *Config) RateLimiter() (*ratelimit.HostLimiter, error) {
	l := ratelimit.NewHostLimiter(ratelimit.Limit{PerSecond: c.RateLimit.RPS, Burst: c.RateLimit.Burst})
	if err := l.SetLimit(c.Carrier.DirectoryURL, ratelimit.Limit{PerSecond: c.RateLimit.DirectoryRPS, Burst: c.RateLimit.DirectoryBurst}); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := l.SetLimit(c.Carrier.SearchURL, ratelimit.Limit{PerSecond: c.RateLimit.SearchRPS, Burst: c.RateLimit.SearchBurst}); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return l, nil
}

func (c *Config) SinkConfig() sink.RedisConfig {
	return sink.RedisConfig{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		Key:      c.Redis.Key,
		TTL:      c.Redis.TTL,
	}
}
