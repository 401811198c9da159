package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/configor"
	"github.com/joho/godotenv"
)

const EnvPrefix = "BOT"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	AppConfig     AppConfig
	DiscordConfig DiscordConfig
	IRCConfig     IRCConfig
	DBConfig      DBConfig
}

type AppConfig struct {
	APPName       string `default:"guildbot"`
	Version       string `default:"dev" env:"BOT_VERSION"`
	Environment   string `default:"dev" env:"BOT_ENVIRONMENT" validate:"oneof=dev prod"`
	LogLevel      string `required:"true" env:"BOT_LOG_LEVEL" validate:"oneof=NOTSET DEBUG INFO WARNING ERROR FATAL"`
	OwnerID       string `required:"true" env:"BOT_OWNER_ID"`
	CommandPrefix string `default:"/" env:"BOT_COMMAND_PREFIX" validate:"required"`
	TimeZone      string `default:"Asia/Tokyo" env:"BOT_TIME_ZONE"`
	Gateway       string `default:"discord" env:"BOT_GATEWAY" validate:"oneof=discord irc"`
	Reconnect     bool   `default:"true" env:"BOT_RECONNECT"`
	HealthPort    int    `default:"8080" env:"BOT_HEALTH_PORT" validate:"min=0,max=65535"`
}

type DiscordConfig struct {
	Token          string `env:"BOT_DISCORD_TOKEN"`
	MessageContent bool   `env:"BOT_DISCORD_MESSAGE_CONTENT"`
}

type IRCConfig struct {
	Host             string `env:"BOT_IRC_HOST"`
	Port             int    `default:"6697" env:"BOT_IRC_PORT"`
	SSL              bool   `env:"BOT_IRC_SSL"`
	Nick             string `env:"BOT_IRC_NICK"`
	ChannelsString   string `env:"BOT_IRC_CHANNELS"`
	Channels         []string
	NickservCommand  string `env:"BOT_IRC_NICKSERV_COMMAND" default:"PRIVMSG NickServ IDENTIFY %s"`
	NickservPassword string `env:"BOT_IRC_NICKSERV_PASSWORD" default:""`
}

type DBConfig struct {
	Scheme      string `default:"sqlite" env:"BOT_DB_SCHEME"`
	Host        string `env:"BOT_DB_HOST"`
	Port        uint   `env:"BOT_DB_PORT"`
	User        string `env:"BOT_DB_USER"`
	Password    string `env:"BOT_DB_PASS"`
	Base        string `default:"discord_bot.db" env:"BOT_DB_BASE"`
	Echo        bool   `default:"true" env:"BOT_DB_ECHO"`
	AutoMigrate bool   `default:"true" env:"BOT_DB_AUTO_MIGRATE"`
}

// Load reads .env (when present) and then the BOT_ environment into a Config.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	loader := configor.New(&configor.Config{ENVPrefix: EnvPrefix, Silent: true})
	if err := loader.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cfg.IRCConfig.Channels = splitChannels(cfg.IRCConfig.ChannelsString)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enum fields and the rules that depend on the selected gateway.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c.AppConfig); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.AppConfig.Location(); err != nil {
		return fmt.Errorf("%w: time zone %q: %v", ErrInvalid, c.AppConfig.TimeZone, err)
	}
	if _, err := c.DBConfig.Driver(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.DBConfig.Port > 0 && c.DBConfig.Host == "" {
		return fmt.Errorf("%w: BOT_DB_PORT is set without BOT_DB_HOST", ErrInvalid)
	}

	switch c.AppConfig.Gateway {
	case "discord":
		if c.DiscordConfig.Token == "" {
			return fmt.Errorf("%w: BOT_DISCORD_TOKEN is required for the discord gateway", ErrInvalid)
		}
	case "irc":
		if c.IRCConfig.Host == "" || c.IRCConfig.Nick == "" {
			return fmt.Errorf("%w: BOT_IRC_HOST and BOT_IRC_NICK are required for the irc gateway", ErrInvalid)
		}
		if len(c.IRCConfig.Channels) == 0 {
			return fmt.Errorf("%w: BOT_IRC_CHANNELS is required for the irc gateway", ErrInvalid)
		}
	}
	return nil
}

func (a AppConfig) IsProduction() bool {
	return a.Environment != "dev"
}

func (a AppConfig) Location() (*time.Location, error) {
	return time.LoadLocation(a.TimeZone)
}

// URL assembles the database URL from its components. Credentials are only
// included when set, the port only together with a host.
func (d DBConfig) URL() *url.URL {
	u := &url.URL{
		Scheme: d.Scheme,
		Host:   d.Host,
		Path:   "/" + d.Base,
	}
	if d.Host != "" && d.Port > 0 {
		u.Host = net.JoinHostPort(d.Host, strconv.FormatUint(uint64(d.Port), 10))
	}
	switch {
	case d.Password != "":
		u.User = url.UserPassword(d.User, d.Password)
	case d.User != "":
		u.User = url.User(d.User)
	}
	return u
}

// Driver returns the dialect name with any "+driver" suffix removed.
func (d DBConfig) Driver() (string, error) {
	scheme := strings.ToLower(d.Scheme)
	if i := strings.IndexByte(scheme, '+'); i >= 0 {
		scheme = scheme[:i]
	}
	switch scheme {
	case "sqlite", "sqlite3":
		return "sqlite", nil
	case "postgres", "postgresql":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database scheme %q", d.Scheme)
	}
}

// DSN is what the gorm dialector is opened with.
func (d DBConfig) DSN() (string, error) {
	driver, err := d.Driver()
	if err != nil {
		return "", err
	}
	if driver == "sqlite" {
		return d.Base, nil
	}
	u := d.URL()
	u.Scheme = "postgres"
	return u.String(), nil
}

// MigrateURL is the database URL understood by golang-migrate.
func (d DBConfig) MigrateURL() (string, error) {
	driver, err := d.Driver()
	if err != nil {
		return "", err
	}
	if driver == "sqlite" {
		return "sqlite3://" + d.Base, nil
	}
	return d.DSN()
}

func splitChannels(s string) []string {
	var channels []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			channels = append(channels, c)
		}
	}
	return channels
}
