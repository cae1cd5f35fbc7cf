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

type Config struct {
	Debug     bool
	TestMode  bool
	Env       string // DEV (local; default), TEST, QA, PROD
	Build     string
	AppName   string
	WorkDir   string
	SecretKey string

	DefaultFromEmail mail.Address
	SendgridAPIKey   string
	RollbarToken     string

	Backend struct {
		BaseURL        string
		RequestTimeout time.Duration
	}

	Session struct {
		DBPath string
	}

	// Planning holds the fixed course-stub template settings used by the
	// schedule-generation pipeline when the caller supplies no custom input.
	Planning struct {
		SchoolName     string
		Department     string
		DeptCode       string
		PreferenceTags []string
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Ratiba")
	v.SetDefault("build", "dev")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("secretKey", "q2m7-dev(only$+49=rk&secret8(p!z)#*f5") // overridden outside DEV
	v.SetDefault("backendBaseUrl", "http://localhost:8000")
	v.SetDefault("backendRequestTimeout", 10*time.Second)
	v.SetDefault("sessionDbPath", filepath.Join(Getwd(), "ratiba-session.db"))
	v.SetDefault("planningSchoolName", "University of Michigan - Dearborn")
	v.SetDefault("planningDepartment", "Computer Science")
	v.SetDefault("planningDeptCode", "CIS")
	v.SetDefault("planningPreferenceTags", []string{"engaging", "clear", "helpful"})

	env := os.Getenv("ENV")
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
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		WorkDir:          Getwd(),
		SecretKey:        v.GetString("secretKey"),
		DefaultFromEmail: mail.Address{Address: v.GetString("defaultFromEmail")},
		SendgridAPIKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
	}
	conf.Backend.BaseURL = strings.TrimRight(v.GetString("backendBaseUrl"), "/")
	conf.Backend.RequestTimeout = v.GetDuration("backendRequestTimeout")
	conf.Session.DBPath = v.GetString("sessionDbPath")
	conf.Planning.SchoolName = v.GetString("planningSchoolName")
	conf.Planning.Department = v.GetString("planningDepartment")
	conf.Planning.DeptCode = v.GetString("planningDeptCode")
	conf.Planning.PreferenceTags = v.GetStringSlice("planningPreferenceTags")
	return conf
}
