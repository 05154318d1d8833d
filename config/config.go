package config

import (
	"fmt"
	"os"
)

// New reads application config from the environment, panicking on
// missing required values: a misconfigured deployment should not boot
func New() Config {
	return Config{
		AppName:     "allocd",
		Environment: requiredS("ENVIRONMENT"),
		DBHost:      requiredS("DB_HOST"),
		DBPort:      defaultS("DB_PORT", "5432"),
		DBUser:      requiredS("DB_USER"),
		DBName:      requiredS("DB_NAME"),
		DBPass:      requiredS("DB_PASS"),
		RedisAddr:   defaultS("REDIS_ADDR", "localhost:6379"),
		SMTPHost:    defaultS("SMTP_HOST", "localhost"),
		SMTPPort:    defaultS("SMTP_PORT", "25"),
		MailFrom:    defaultS("MAIL_FROM", "allocations@example.com"),
		MailTo:      defaultS("MAIL_TO", "stock@example.com"),
	}
}

// Config is application config
type Config struct {
	AppName     string
	Environment string

	DBHost string
	DBPort string
	DBUser string
	DBName string
	DBPass string

	RedisAddr string

	SMTPHost string
	SMTPPort string
	MailFrom string
	MailTo   string
}

func (c Config) DBDsn() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		c.DBUser, c.DBPass, c.DBName, c.DBHost, c.DBPort,
	)
}

func defaultS(key string, dflt string) string {
	value := os.Getenv(key)
	if value == "" {
		return dflt
	}
	return value
}

func requiredS(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("Config value %s is required", key))
	}
	return value
}
