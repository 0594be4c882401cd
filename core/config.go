package core

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	APIConfig struct {
		BaseURL   string
		Timeout   time.Duration
		Token     string
		TokenFile string
	}

	TableConfig struct {
		PageSize int
		Currency string
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugAddress       string
		SecretKey          string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
		DisableReqLogs     bool
		Seed               bool
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

	AdminConfig struct {
		Username string
		Password string
	}

	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		RollbarToken string

		API      APIConfig
		Table    TableConfig
		Server   ServerConfig
		Database DatabaseConfig
		Admin    AdminConfig
	}
)

// Address returns the "host:port" the database listens on.
func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
}

// NewConfig reads the configuration from the environment.
// Variables are prefixed with the current ENV (DEV by default), eg. DEV_API_BASEURL.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Preskool")
	conf.SetDefault("build", "develop")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("api.baseURL", "http://localhost:8000")
	conf.SetDefault("api.timeout", 15*time.Second)
	conf.SetDefault("api.token", "")
	conf.SetDefault("api.tokenFile", filepath.Join(os.TempDir(), "preskool.token"))

	conf.SetDefault("table.pageSize", 10)
	conf.SetDefault("table.currency", "₹")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugAddress", "localhost:4000")
	conf.SetDefault("server.secretKey", "d7f^2k$l@x8!vq#w0z&m4p(r1s)t9u*y")
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.disableReqLogs", false)
	conf.SetDefault("server.seed", true)

	conf.SetDefault("database.engine", "inmem")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", 5432)
	conf.SetDefault("database.name", "preskool")
	conf.SetDefault("database.user", "postgres")
	conf.SetDefault("database.password", "postgres")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("admin.username", "admin")
	conf.SetDefault("admin.password", "Adm1n!pass")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		Build:        conf.GetString("build"),
		RollbarToken: conf.GetString("rollbarToken"),
		API: APIConfig{
			BaseURL:   strings.TrimRight(conf.GetString("api.baseURL"), "/"),
			Timeout:   conf.GetDuration("api.timeout"),
			Token:     conf.GetString("api.token"),
			TokenFile: conf.GetString("api.tokenFile"),
		},
		Table: TableConfig{
			PageSize: conf.GetInt("table.pageSize"),
			Currency: conf.GetString("table.currency"),
		},
		Server: ServerConfig{
			Host:               conf.GetString("server.host"),
			Address:            conf.GetString("server.address"),
			DebugAddress:       conf.GetString("server.debugAddress"),
			SecretKey:          conf.GetString("server.secretKey"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:     conf.GetBool("server.disableReqLogs"),
			Seed:               conf.GetBool("server.seed"),
		},
		Database: DatabaseConfig{
			Engine:     conf.GetString("database.engine"),
			Host:       conf.GetString("database.host"),
			Port:       conf.GetInt("database.port"),
			Name:       conf.GetString("database.name"),
			User:       conf.GetString("database.user"),
			Password:   conf.GetString("database.password"),
			DisableTLS: conf.GetBool("database.disableTLS"),
		},
		Admin: AdminConfig{
			Username: conf.GetString("admin.username"),
			Password: conf.GetString("admin.password"),
		},
	}
}

// NewTestConfig returns a Config suited for tests; it never touches the environment.
func NewTestConfig() *Config {
	return &Config{
		Env:      "TEST",
		Debug:    true,
		TestMode: true,
		AppName:  "Preskool",
		Build:    "test",
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 5 * time.Second,
		},
		Table: TableConfig{PageSize: 10, Currency: "₹"},
		Server: ServerConfig{
			Host:               "localhost",
			SecretKey:          "secret",
			JWTExpirationDelta: 10 * time.Minute,
			ShutdownTimeout:    time.Second,
			DisableReqLogs:     true,
		},
		Database: DatabaseConfig{Engine: "inmem"},
		Admin:    AdminConfig{Username: "admin", Password: "Adm1n!pass"},
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("%s(env=%s, build=%s, api=%s)", c.AppName, c.Env, c.Build, c.API.BaseURL)
}
