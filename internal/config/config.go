package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMenuURL      = "https://raw.githubusercontent.com/Meta-Mobile-Developer-PC/Working-With-Data-API/main/capstone.json"
	defaultImageBaseURL = "https://github.com/Meta-Mobile-Developer-PC/Working-With-Data-API/blob/main/images"
)

type Options struct {
	runAddr        string
	logLevel       string
	dataBaseDSN    string
	menuURL        string
	imageBaseURL   string
	fetchTimeout   time.Duration
	migrationsPath string
}

func NewOptions() *Options {
	return new(Options)
}

// ParseFlags handles command line arguments
// and stores their values in the corresponding variables.
func (o *Options) ParseFlags(fs *flag.FlagSet, args []string) error {
	loadEnvFile()

	fs.StringVar(&o.runAddr, "a", getEnvOrDefault("RUN_ADDRESS", ":8080"), "address and port to run server")
	fs.StringVar(&o.logLevel, "l", getEnvOrDefault("LOG_LEVEL", "info"), "log level")
	fs.StringVar(&o.dataBaseDSN, "d", getEnvOrDefault("DATABASE_URI", ""), "database connection string, empty for remote-only mode")
	fs.StringVar(&o.menuURL, "m", getEnvOrDefault("MENU_URL", defaultMenuURL), "remote menu endpoint")
	fs.StringVar(&o.imageBaseURL, "i", getEnvOrDefault("IMAGE_BASE_URL", defaultImageBaseURL), "base URL for menu images")
	fs.StringVar(&o.migrationsPath, "p", getEnvOrDefault("MIGRATIONS_PATH", "migrations"), "directory with schema migrations")

	timeout, err := time.ParseDuration(getEnvOrDefault("FETCH_TIMEOUT", "10s"))
	if err != nil {
		log.Printf("Invalid FETCH_TIMEOUT, using 10s: %v", err)
		timeout = 10 * time.Second
	}
	fs.DurationVar(&o.fetchTimeout, "t", timeout, "remote menu fetch timeout, 0 disables it")

	return fs.Parse(args)
}

func (o *Options) RunAddr() string {
	return o.runAddr
}

func (o *Options) LogLevel() string {
	return o.logLevel
}

func (o *Options) DataBaseDSN() string {
	return o.dataBaseDSN
}

func (o *Options) MenuURL() string {
	return o.menuURL
}

func (o *Options) ImageBaseURL() string {
	return o.imageBaseURL
}

func (o *Options) FetchTimeout() time.Duration {
	return o.fetchTimeout
}

func (o *Options) MigrationsPath() string {
	return o.migrationsPath
}

// getEnvOrDefault reads an environment variable or returns a default value if the variable is not set or is empty.
func getEnvOrDefault(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file in the working directory.
// Variables already present in the environment are not overridden.
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Printf("Cannot resolve working directory, skipping .env: %v", err)
		return
	}
	envPath := filepath.Join(cwd, ".env")

	if err := godotenv.Load(envPath); err != nil {
		log.Printf("No .env file found at %s, proceeding without it", envPath)
	} else {
		log.Printf(".env file loaded from %s", envPath)
	}
}
