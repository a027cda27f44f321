package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the loaded application configuration. LoadConfig must be called
// once at startup before anything reads it.
var Conf *Config

type (
	Config struct {
		Debug           bool
		TestMode        bool
		Env             string
		AppName         string
		SecretKey       []byte
		FrontendBaseURL string
		WorkDir         string
		Build           string

		DefaultFromName  string
		DefaultFromAddr  string
		SendgridApiKey   string
		RollbarToken     string
		CampusMailDomain string

		Server     serverConfig
		Database   databaseConfig
		LegacyDB   legacyDBConfig
		Attendance attendanceConfig
	}

	serverConfig struct {
		Host                      string
		Port                      string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	databaseConfig struct {
		URI  string
		Name string
	}

	// legacyDBConfig points at the EPUSH biometric machine database (MySQL)
	// that attendance punches are synced from. Empty DSN disables the sync.
	legacyDBConfig struct {
		DSN string
	}

	attendanceConfig struct {
		OutOfBoundsThreshold time.Duration
		RedNoticeLimit       int
		OTPValidity          time.Duration
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LoadConfig reads configuration from the environment (and an optional
// config/.env.<env> file) into Conf.
func LoadConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Uwepo")
	v.SetDefault("secretKey", "w3=f$dz&u0xh2(h!x)#*c2(#yg4h^$cegm2emy-qo5-eRb+57")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("build", "dev")
	v.SetDefault("defaultFromName", "Uwepo")
	v.SetDefault("defaultFromAddr", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("campusMailDomain", "dseu.ac.in")
	v.SetDefault("serverHost", "0.0.0.0")
	v.SetDefault("serverPort", "8000")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("databaseURI", "mongodb://localhost:27017")
	v.SetDefault("databaseName", "uwepo")
	v.SetDefault("legacyDBDSN", "")
	v.SetDefault("outOfBoundsThreshold", 30*time.Minute)
	v.SetDefault("redNoticeLimit", 5)
	v.SetDefault("otpValidity", 15*time.Minute)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Env:              env,
		AppName:          v.GetString("appName"),
		SecretKey:        []byte(v.GetString("secretKey")),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		WorkDir:          wd,
		Build:            v.GetString("build"),
		DefaultFromName:  v.GetString("defaultFromName"),
		DefaultFromAddr:  v.GetString("defaultFromAddr"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		CampusMailDomain: v.GetString("campusMailDomain"),
		Server: serverConfig{
			Host:                      v.GetString("serverHost"),
			Port:                      v.GetString("serverPort"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: databaseConfig{
			URI:  v.GetString("databaseURI"),
			Name: v.GetString("databaseName"),
		},
		LegacyDB: legacyDBConfig{
			DSN: v.GetString("legacyDBDSN"),
		},
		Attendance: attendanceConfig{
			OutOfBoundsThreshold: v.GetDuration("outOfBoundsThreshold"),
			RedNoticeLimit:       v.GetInt("redNoticeLimit"),
			OTPValidity:          v.GetDuration("otpValidity"),
		},
	}
	return Conf
}
