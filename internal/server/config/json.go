package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/svalekar/voterreg/internal/flagx"
	"github.com/svalekar/voterreg/internal/timex"
)

// JsonConfig is an intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30s" and integer nanoseconds. After unmarshalling,
// its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr          string         `json:"endpoint_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	DBMaxOpenConns        int            `json:"db_max_open_conns"`
	DBMaxIdleConns        int            `json:"db_max_idle_conns"`
	DBConnMaxIdleTime     timex.Duration `json:"db_conn_max_idle_time"`
	DBConnMaxLifetime     timex.Duration `json:"db_conn_max_lifetime"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	ShutdownTimeout       timex.Duration `json:"shutdown_timeout"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	WhatsAppAccountID     string         `json:"whatsapp_account_id"`
	WhatsAppAuthToken     string         `json:"whatsapp_auth_token"`
	WhatsAppSender        string         `json:"whatsapp_sender"`
	WhatsAppBaseURL       string         `json:"whatsapp_base_url"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config flags; when
// neither is set, no JSON file is loaded. Zero-valued JSON fields leave the
// existing Config values in place.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString := func(src string, dst *string) {
		if src != "" {
			*dst = src
		}
	}
	setInt := func(src int, dst *int) {
		if src != 0 {
			*dst = src
		}
	}
	setDuration := func(src timex.Duration, dst *time.Duration) {
		if src.Duration != 0 {
			*dst = src.Duration
		}
	}

	setString(c.EndpointAddr, &config.EndpointAddr)
	setString(c.DatabaseDSN, &config.DatabaseDSN)
	setInt(c.DBMaxOpenConns, &config.DBMaxOpenConns)
	setInt(c.DBMaxIdleConns, &config.DBMaxIdleConns)
	setDuration(c.DBConnMaxIdleTime, &config.DBConnMaxIdleTime)
	setDuration(c.DBConnMaxLifetime, &config.DBConnMaxLifetime)
	setString(c.SecretKey, &config.SecretKey)
	setDuration(c.TokenValidityDuration, &config.TokenValidityDuration)
	setDuration(c.ShutdownTimeout, &config.ShutdownTimeout)
	setString(c.S3RootUser, &config.S3RootUser)
	setString(c.S3RootPassword, &config.S3RootPassword)
	setString(c.S3Bucket, &config.S3Bucket)
	setString(c.S3Region, &config.S3Region)
	setString(c.S3BaseEndpoint, &config.S3BaseEndpoint)
	setString(c.WhatsAppAccountID, &config.WhatsAppAccountID)
	setString(c.WhatsAppAuthToken, &config.WhatsAppAuthToken)
	setString(c.WhatsAppSender, &config.WhatsAppSender)
	setString(c.WhatsAppBaseURL, &config.WhatsAppBaseURL)
}
