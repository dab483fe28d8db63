// Package config loads service configuration with viper.
//
// LoadConfig looks for cmd/<service>/config.yml (and a few fallbacks), loads
// an optional .env file with godotenv, then lets environment variables
// override any key: server.port is read from SERVER_PORT, or from
// ASR_SERVER_PORT when the loader runs with WithEnvPrefix("ASR").
package config
