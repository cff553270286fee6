// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables,
// and an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the dev server's listening address (ip:port).
	Port string

	// APIBaseURL is the base URL of the Apartey backend API.
	APIBaseURL string

	// StoragePath is the path of the client's persistent key-value file.
	StoragePath string

	// JWTSecret signs dev-server session tokens.
	JWTSecret string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.APIBaseURL, "u", "http://localhost:8080", "backend API base URL")
	flag.StringVar(&options.StoragePath, "s", "apartey-client.json", "path to client storage file")
	flag.StringVar(&options.JWTSecret, "j", "dev-secret", "dev server JWT signing secret")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. A .env file in the working directory is loaded
// first if present. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Load .env before reading environment overrides; absence is fine.
	_ = godotenv.Load()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if baseURL := os.Getenv("API_BASE_URL"); baseURL != "" {
		options.APIBaseURL = baseURL
	}
	if storagePath := os.Getenv("STORAGE_PATH"); storagePath != "" {
		options.StoragePath = storagePath
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		options.JWTSecret = secret
	}

	return options
}
