package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "SHOP_CONFIG_FILE"
	envPrefix         = "SHOP"
)

type sqlDB struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type auth struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	Issuer       string        `mapstructure:"issuer"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	CookieDays   int           `mapstructure:"cookie_days"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
	AdminEmails  []string      `mapstructure:"admin_emails"`
}

const (
	BlobDriverGCS   = "gcs"
	BlobDriverLocal = "local"
)

type blob struct {
	Driver          string `mapstructure:"driver"`
	Bucket          string `mapstructure:"bucket"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Endpoint        string `mapstructure:"endpoint"`
	LocalDir        string `mapstructure:"local_dir"`
}

type catalog struct {
	NameMatch string `mapstructure:"name_match"`
}

type outbox struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t tlsFiles) Enabled() bool {
	return t.CA != "" || t.Cert != "" || t.Key != ""
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	CatalogEventsTopic string   `mapstructure:"catalog_events_topic"`
	Partitions         int32    `mapstructure:"partitions"`
	ReplicationFactor  int16    `mapstructure:"replication_factor"`
	TLS                tlsFiles `mapstructure:"tls"`
}

type Config struct {
	LogLevel           slog.Level    `mapstructure:"log_level"`
	HTTPServerAddr     string        `mapstructure:"http_server_addr"`
	HTTPRequestTimeout time.Duration `mapstructure:"http_request_timeout"`
	SQLDB              sqlDB         `mapstructure:"sql_db"`
	Auth               auth          `mapstructure:"auth"`
	Blob               blob          `mapstructure:"blob"`
	Catalog            catalog       `mapstructure:"catalog"`
	Outbox             outbox        `mapstructure:"outbox"`
	Broker             broker        `mapstructure:"broker"`
}

var defaults = map[string]any{
	"log_level":                   "info",
	"http_server_addr":            ":8080",
	"http_request_timeout":        "15s",
	"sql_db.dsn":                  "",
	"sql_db.max_open_conns":       10,
	"sql_db.conn_max_lifetime":    "30m",
	"sql_db.auto_migrate":         false,
	"auth.jwt_secret":             "",
	"auth.issuer":                 "spellshop",
	"auth.token_ttl":              "72h",
	"auth.cookie_days":            3,
	"auth.secure_cookie":          false,
	"auth.admin_emails":           []string{},
	"blob.driver":                 BlobDriverLocal,
	"blob.bucket":                 "",
	"blob.public_base_url":        "http://localhost:8080/uploads",
	"blob.credentials_file":       "",
	"blob.endpoint":               "",
	"blob.local_dir":              "uploads",
	"catalog.name_match":          "prefix",
	"outbox.poll_interval":        "1s",
	"outbox.batch_size":           50,
	"outbox.max_attempts":         10,
	"broker.seed_brokers":         []string{},
	"broker.schema_registry_urls": []string{},
	"broker.catalog_events_topic": "catalog-events",
	"broker.partitions":           3,
	"broker.replication_factor":   3,
	"broker.tls.ca":               "",
	"broker.tls.cert":             "",
	"broker.tls.key":              "",
}

// Load reads .env, the config file and SHOP_* environment overrides.
// It exits the process when the configuration is unusable.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		die(err)
	}

	cfg, err := load(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

func load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.SQLDB.DSN == "" {
		errs = append(errs, errors.New("sql_db.dsn is required"))
	}
	if len(c.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 16 bytes"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	switch c.Blob.Driver {
	case BlobDriverGCS:
		if c.Blob.Bucket == "" {
			errs = append(errs, errors.New("blob.bucket is required for gcs"))
		}
	case BlobDriverLocal:
		if c.Blob.LocalDir == "" {
			errs = append(errs, errors.New("blob.local_dir is required for local"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown blob.driver %q", c.Blob.Driver))
	}
	switch strings.ToLower(c.Catalog.NameMatch) {
	case "", "prefix", "exact":
	default:
		errs = append(errs, fmt.Errorf(
			"unknown catalog.name_match %q", c.Catalog.NameMatch,
		))
	}
	if c.Outbox.PollInterval <= 0 || c.Outbox.BatchSize <= 0 || c.Outbox.MaxAttempts <= 0 {
		errs = append(errs, errors.New("outbox settings must be positive"))
	}
	if len(c.Broker.SeedBrokers) != 0 && len(c.Broker.SchemaRegistryURLs) == 0 {
		errs = append(errs, errors.New(
			"broker.schema_registry_urls is required with seed brokers",
		))
	}
	return errors.Join(errs...)
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config: %v\n", err)
	os.Exit(2)
}

// Print writes the loaded configuration without secrets.
func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HTTPRequestTimeout=%s

	SQLDB:
	MaxOpenConns=%d
	ConnMaxLifetime=%s
	AutoMigrate=%t

	Auth:
	Issuer=%q
	TokenTTL=%s
	CookieDays=%d
	AdminEmails=%q

	Blob:
	Driver=%q
	Bucket=%q
	PublicBaseURL=%q
	LocalDir=%q

	Catalog:
	NameMatch=%q

	Outbox:
	PollInterval=%s
	BatchSize=%d
	MaxAttempts=%d

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	CatalogEventsTopic=%q
	TLS=%t

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HTTPRequestTimeout,
		c.SQLDB.MaxOpenConns,
		c.SQLDB.ConnMaxLifetime,
		c.SQLDB.AutoMigrate,
		c.Auth.Issuer,
		c.Auth.TokenTTL,
		c.Auth.CookieDays,
		c.Auth.AdminEmails,
		c.Blob.Driver,
		c.Blob.Bucket,
		c.Blob.PublicBaseURL,
		c.Blob.LocalDir,
		c.Catalog.NameMatch,
		c.Outbox.PollInterval,
		c.Outbox.BatchSize,
		c.Outbox.MaxAttempts,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.CatalogEventsTopic,
		c.Broker.TLS.Enabled(),
	)
}
