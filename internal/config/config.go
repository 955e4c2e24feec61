package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string `validate:"required"`
	Port            string `validate:"required"`
	User            string `validate:"required"`
	Password        string
	Name            string `validate:"required"`
	SSLMode         string
	MaxOpenConns    int `validate:"gte=1"`
	MaxIdleConns    int `validate:"gte=0"`
	ConnMaxLifetime time.Duration
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Config struct {
	BotToken        string  `validate:"required"`
	BotUsername     string  `validate:"required"`
	AdminIDs        []int64 `validate:"required,min=1"`
	ChannelID       int64   `validate:"required"`
	ChannelUsername string
	// SourceBot is the game bot whose forwarded pages the wizard accepts.
	SourceBot string `validate:"required"`

	HTTPAddr  string
	JWTSecret string
	JWTTTL    time.Duration `validate:"gt=0"`

	Marketplace DBConfig
	Identity    DBConfig
	Redis       RedisConfig
	NATSURL     string

	SessionTTL        time.Duration `validate:"gt=0"`
	RejectedRetention time.Duration `validate:"gt=0"`
	RequestRetention  time.Duration `validate:"gt=0"`
}

func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Load reads flags, then AUCTIONBOT_* environment variables, then an
// optional config file named by --config.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("auctionbot", pflag.ContinueOnError)
	flags.String("config", "", "path to a config file")

	flags.String("bot-token", "", "telegram bot token")
	flags.String("bot-username", "", "telegram bot username, without @")
	flags.String("admin-ids", "", "comma separated admin user ids")
	flags.Int64("channel-id", 0, "chat id of the auction channel")
	flags.String("channel-username", "", "public username of the auction channel")
	flags.String("source-bot", "hexamonbot", "game bot accepted as forward source")

	flags.String("http-addr", ":8080", "listen address for the HTTP API")
	flags.String("jwt-secret", "", "HMAC secret for admin API tokens")
	flags.Duration("jwt-ttl", 24*time.Hour, "lifetime of admin API tokens")

	registerDBFlags(flags, "marketplace", "auctions")
	registerDBFlags(flags, "identity", "auction_users")

	flags.String("redis-addr", "localhost:6379", "")
	flags.String("redis-password", "", "")
	flags.Int("redis-db", 0, "")
	flags.String("nats-url", "", "NATS server url; events are dropped when empty")

	flags.Duration("session-ttl", 30*time.Minute, "lifetime of wizard drafts and bid prompts")
	flags.Duration("rejected-retention", 30*24*time.Hour, "age after which rejected submissions are purged")
	flags.Duration("request-retention", 30*24*time.Hour, "age after which processed verification requests are purged")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	v.SetEnvPrefix("AUCTIONBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	adminIDs, err := parseIDs(v.GetString("admin-ids"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BotToken:        v.GetString("bot-token"),
		BotUsername:     strings.TrimPrefix(v.GetString("bot-username"), "@"),
		AdminIDs:        adminIDs,
		ChannelID:       v.GetInt64("channel-id"),
		ChannelUsername: strings.TrimPrefix(v.GetString("channel-username"), "@"),
		SourceBot:       strings.ToLower(strings.TrimPrefix(v.GetString("source-bot"), "@")),

		HTTPAddr:  v.GetString("http-addr"),
		JWTSecret: v.GetString("jwt-secret"),
		JWTTTL:    v.GetDuration("jwt-ttl"),

		Marketplace: readDBConfig(v, "marketplace"),
		Identity:    readDBConfig(v, "identity"),
		Redis: RedisConfig{
			Addr:     v.GetString("redis-addr"),
			Password: v.GetString("redis-password"),
			DB:       v.GetInt("redis-db"),
		},
		NATSURL: v.GetString("nats-url"),

		SessionTTL:        v.GetDuration("session-ttl"),
		RejectedRetention: v.GetDuration("rejected-retention"),
		RequestRetention:  v.GetDuration("request-retention"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func registerDBFlags(flags *pflag.FlagSet, prefix, defaultName string) {
	flags.String(prefix+"-db-host", "localhost", "")
	flags.String(prefix+"-db-port", "5432", "")
	flags.String(prefix+"-db-user", "postgres", "")
	flags.String(prefix+"-db-password", "", "")
	flags.String(prefix+"-db-name", defaultName, "")
	flags.String(prefix+"-db-ssl-mode", "disable", "")
	flags.Int(prefix+"-db-max-open-conns", 25, "")
	flags.Int(prefix+"-db-max-idle-conns", 5, "")
	flags.Duration(prefix+"-db-conn-max-lifetime", 5*time.Minute, "")
}

func readDBConfig(v *viper.Viper, prefix string) DBConfig {
	return DBConfig{
		Host:            v.GetString(prefix + "-db-host"),
		Port:            v.GetString(prefix + "-db-port"),
		User:            v.GetString(prefix + "-db-user"),
		Password:        v.GetString(prefix + "-db-password"),
		Name:            v.GetString(prefix + "-db-name"),
		SSLMode:         v.GetString(prefix + "-db-ssl-mode"),
		MaxOpenConns:    v.GetInt(prefix + "-db-max-open-conns"),
		MaxIdleConns:    v.GetInt(prefix + "-db-max-idle-conns"),
		ConnMaxLifetime: v.GetDuration(prefix + "-db-conn-max-lifetime"),
	}
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
