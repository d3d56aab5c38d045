package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          int
		DisableTLS    bool
	}

	MailConfig struct {
		FromName       string
		FromEmail      string
		SMTPHost       string
		SMTPPort       int
		SMTPUsername   string
		SMTPPassword   string
		SkipTLSVerify  bool
		SendgridApiKey string
	}

	// ExportSettings tunes the report export pipeline.
	ExportSettings struct {
		DisableScheduler  bool
		ManualHourlyLimit int           // max manual exports per course per hour
		DedupWindow       time.Duration // trailing window for the cross-instance log check
		LockTTL           time.Duration // in-process lock eviction delay
		MaxStartupJitter  time.Duration // random delay before the scheduler's first tick
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		AppName  string
		Build    string

		SecretKey                 string
		RollbarToken              string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Mail     MailConfig
		Export   ExportSettings
	}
)

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c MailConfig) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.FromName, Address: c.FromEmail}
}

// NewConfig loads the app configuration from the environment;
// an optional `config/.env.<env>` file is loaded first.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Mafunzo")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "+wn2z&k0f#vu0m$b7d%ct&-fdz3q0m2bz(w8t@u1d=p_u^tu)o")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("serverHost", "0.0.0.0:8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)

	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "mafunzo")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", 5432)
	v.SetDefault("databaseDisableTLS", true)

	v.SetDefault("mailFromName", "Mafunzo")
	v.SetDefault("mailFromEmail", "no-reply@localhost")
	v.SetDefault("mailSmtpHost", "localhost")
	v.SetDefault("mailSmtpPort", 25)
	v.SetDefault("mailSkipTlsVerify", true)

	v.SetDefault("exportDisableScheduler", false)
	v.SetDefault("exportManualHourlyLimit", 10)
	v.SetDefault("exportDedupWindow", 5*time.Minute)
	v.SetDefault("exportLockTTL", 2*time.Minute)
	v.SetDefault("exportMaxStartupJitter", 10*time.Second)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		Env:                       env,
		AppName:                   v.GetString("appName"),
		Build:                     v.GetString("build"),
		SecretKey:                 v.GetString("secretKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
		JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		Server: ServerConfig{
			Host:            v.GetString("serverHost"),
			DebugHost:       v.GetString("serverDebugHost"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("databaseEngine"),
			Name:          v.GetString("databaseName"),
			User:          v.GetString("databaseUser"),
			Password:      v.GetString("databasePassword"),
			AdminUser:     v.GetString("databaseAdminUser"),
			AdminPassword: v.GetString("databaseAdminPassword"),
			Host:          v.GetString("databaseHost"),
			Port:          v.GetInt("databasePort"),
			DisableTLS:    v.GetBool("databaseDisableTLS"),
		},
		Mail: MailConfig{
			FromName:       v.GetString("mailFromName"),
			FromEmail:      v.GetString("mailFromEmail"),
			SMTPHost:       v.GetString("mailSmtpHost"),
			SMTPPort:       v.GetInt("mailSmtpPort"),
			SMTPUsername:   v.GetString("mailSmtpUsername"),
			SMTPPassword:   v.GetString("mailSmtpPassword"),
			SkipTLSVerify:  v.GetBool("mailSkipTlsVerify"),
			SendgridApiKey: v.GetString("mailSendgridApiKey"),
		},
		Export: ExportSettings{
			DisableScheduler:  v.GetBool("exportDisableScheduler"),
			ManualHourlyLimit: v.GetInt("exportManualHourlyLimit"),
			DedupWindow:       v.GetDuration("exportDedupWindow"),
			LockTTL:           v.GetDuration("exportLockTTL"),
			MaxStartupJitter:  v.GetDuration("exportMaxStartupJitter"),
		},
	}

	if !conf.Debug {
		if err := conf.check(); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	return conf
}

// check validates settings that have no sane production default.
func (c *Config) check() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(c.SecretKey, "secretKey"),
		vala.StringNotEmpty(c.Database.Name, "databaseName"),
		vala.StringNotEmpty(c.Database.User, "databaseUser"),
		vala.StringNotEmpty(c.Mail.SMTPHost, "mailSmtpHost"),
		vala.StringNotEmpty(c.Mail.FromEmail, "mailFromEmail"),
		vala.GreaterThan(c.Export.ManualHourlyLimit, 0, "exportManualHourlyLimit"),
	).Check()
}
