package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from the environment. A .env file in the
// working directory is loaded first if present; real environment variables
// win over .env values (godotenv.Load never overwrites).
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("ADDRESS", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setInt("DB_MAX_OPEN_CONNS", &config.DBMaxOpenConns)
	setInt("DB_MAX_IDLE_CONNS", &config.DBMaxIdleConns)
	setDuration("DB_CONN_MAX_IDLE_TIME", &config.DBConnMaxIdleTime)
	setDuration("DB_CONN_MAX_LIFETIME", &config.DBConnMaxLifetime)
	setString("JWT_SECRET", &config.SecretKey)
	setDuration("TOKEN_VALIDITY_DURATION", &config.TokenValidityDuration)
	setDuration("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)
	setString("S3_ROOT_USER", &config.S3RootUser)
	setString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("S3_BUCKET", &config.S3Bucket)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	setString("WHATSAPP_ACCOUNT_ID", &config.WhatsAppAccountID)
	setString("WHATSAPP_AUTH_TOKEN", &config.WhatsAppAuthToken)
	setString("WHATSAPP_SENDER", &config.WhatsAppSender)
	setString("WHATSAPP_BASE_URL", &config.WhatsAppBaseURL)
}
