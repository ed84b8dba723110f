package core

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// devSecretKey is only ever used as a default in DEV and TEST.
const devSecretKey = "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy"

type (
	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		SecretKey        string
		RollbarToken     string
		DefaultFromEmail string
		SendgridAPIKey   string
		Storage          string

		Server   ServerConfig
		Database DatabaseConfig
		Security SecurityConfig
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	SecurityConfig struct {
		BcryptCost int
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
}

// NewConfig loads the configuration of the current ENV.
// Values are read from the environment (prefixed with ENV, eg. PROD_SECRET_KEY)
// and from `$CONFIG_DIR/.env.<env>` when that file exists.
func NewConfig() (*Config, error) {
	env := strings.ToUpper(strings.TrimSpace(os.Getenv("ENV")))
	if env == "" {
		env = "DEV"
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v, env)

	// load .env if it exists (ignore if it does not)
	confDir := os.Getenv("CONFIG_DIR")
	if confDir == "" {
		confDir = "config"
	}
	dotEnvPath := filepath.Join(confDir, ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		AppName:          v.GetString("app_name"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("test_mode"),
		SecretKey:        v.GetString("secret_key"),
		RollbarToken:     v.GetString("rollbar_token"),
		DefaultFromEmail: v.GetString("default_from_email"),
		SendgridAPIKey:   v.GetString("sendgrid_api_key"),
		Storage:          strings.ToLower(v.GetString("storage")),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			DebugHost:          v.GetString("server.debug_host"),
			ShutdownTimeout:    v.GetDuration("server.shutdown_timeout"),
			JWTExpirationDelta: v.GetDuration("server.jwt_expiration_delta"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disable_tls"),
		},
		Security: SecurityConfig{
			BcryptCost: v.GetInt("security.bcrypt_cost"),
		},
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func setDefaults(v *viper.Viper, env string) {
	isLocal := env == "DEV" || env == "TEST"

	v.SetDefault("app_name", "Darasa")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("test_mode", env == "TEST")
	if isLocal {
		v.SetDefault("secret_key", devSecretKey)
		v.SetDefault("storage", StorageMemory)
	} else {
		v.SetDefault("secret_key", "")
		v.SetDefault("storage", StoragePostgres)
	}
	v.SetDefault("rollbar_token", "")
	v.SetDefault("default_from_email", "noreply@localhost")
	v.SetDefault("sendgrid_api_key", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":4000")
	v.SetDefault("server.debug_host", ":4001")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.jwt_expiration_delta", 7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "darasa")
	v.SetDefault("database.user", "darasa")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disable_tls", isLocal)

	v.SetDefault("security.bcrypt_cost", bcrypt.DefaultCost)
}

// Validate rejects configurations the server must not run with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("config: secret key is required")
	}
	if c.Env == "PROD" && c.SecretKey == devSecretKey {
		return errors.New("config: the development secret key cannot be used in PROD")
	}
	if c.Server.JWTExpirationDelta <= 0 {
		return errors.New("config: jwt expiration delta must be positive")
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return errors.Errorf("config: bcrypt cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	}
	switch c.Storage {
	case StorageMemory, StoragePostgres:
	default:
		return errors.Errorf("config: unknown storage %q", c.Storage)
	}
	return nil
}
