package config

import (
	"os"
	"strconv"

	"github.com/yukikurage/project-management-api/internal/constants"
)

type Config struct {
	DBDriver           string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	JWTSecret          string
	AccessTokenMinutes int
	RefreshTokenDays   int
	MinPasswordLength  int
	GinMode            string
	Port               string
}

func Load() *Config {
	return &Config{
		DBDriver:           getEnv("DB_DRIVER", "mysql"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBUser:             getEnv("DB_USER", "pmuser"),
		DBPassword:         getEnv("DB_PASSWORD", "pmpassword"),
		DBName:             getEnv("DB_NAME", "project_management"),
		JWTSecret:          getEnv("JWT_SECRET", "default-secret-key-change-me"),
		AccessTokenMinutes: getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 15),
		RefreshTokenDays:   getEnvInt("REFRESH_TOKEN_TTL_DAYS", 7),
		MinPasswordLength:  getEnvInt("MIN_PASSWORD_LENGTH", constants.DefaultMinPasswordLength),
		GinMode:            getEnv("GIN_MODE", "debug"),
		Port:               getEnv("PORT", "8080"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
