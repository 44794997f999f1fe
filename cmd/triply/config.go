package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/triply/internal/api"
	"github.com/nkiryanov/triply/internal/logger"
	"github.com/nkiryanov/triply/internal/weather"
)

const (
	defaultLoggingLevel = logger.LevelWarn
	defaultEnvironment  = logger.EnvDevelopment
	defaultProfile      = "default"

	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Environment: 'dev' logs text, 'prod' logs json
	Environment string

	// Triply backend base URL
	APIURL string

	// Limit for a single request to backend
	Timeout time.Duration

	// Where tokens and checklists are kept between runs
	// One of: file, memory, postgres
	Store string

	// Directory of file store
	DataDir string

	// Database to keep tokens in when postgres store is used
	DatabaseDSN string

	// Independent sessions may be kept under different profiles
	Profile string

	// Ask backend to revoke refresh token on logout
	RevokeOnLogout bool

	WeatherAPIKey string
	WeatherAPIURL string
	MapsAPIKey    string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:      defaultLoggingLevel,
		Environment:   defaultEnvironment,
		APIURL:        api.DefaultBaseURL,
		Timeout:       api.DefaultTimeout,
		Store:         StoreFile,
		DataDir:       defaultDataDir(),
		Profile:       defaultProfile,
		WeatherAPIURL: weather.DefaultBaseURL,
	}
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".triply"
	}
	return filepath.Join(dir, "triply")
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	var errs []error

	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setDuration := func(o *time.Duration) func(value string) {
		return func(value string) {
			if value == "" {
				return
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				errs = append(errs, err)
				return
			}
			*o = d
		}
	}
	setBool := func(o *bool) func(value string) {
		return func(value string) {
			if value == "" {
				return
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				errs = append(errs, err)
				return
			}
			*o = b
		}
	}

	envMap := map[string]func(string){
		"LOG_LEVEL":               setString(&c.LogLevel),
		"ENVIRONMENT":             setString(&c.Environment),
		"TRIPLY_API_URL":          setString(&c.APIURL),
		"TRIPLY_TIMEOUT":          setDuration(&c.Timeout),
		"TRIPLY_STORE":            setString(&c.Store),
		"TRIPLY_DATA_DIR":         setString(&c.DataDir),
		"DATABASE_URI":            setString(&c.DatabaseDSN),
		"TRIPLY_PROFILE":          setString(&c.Profile),
		"TRIPLY_REVOKE_ON_LOGOUT": setBool(&c.RevokeOnLogout),
		"WEATHER_API_KEY":         setString(&c.WeatherAPIKey),
		"WEATHER_API_URL":         setString(&c.WeatherAPIURL),
		"MAPS_API_KEY":            setString(&c.MapsAPIKey),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}

	return errors.Join(errs...)
}

// ParseFlags parses global flags and returns the rest: command and its arguments
func (c *Config) ParseFlags(args []string) ([]string, error) {
	fs := pflag.NewFlagSet("triply", pflag.ContinueOnError)
	// Flags after command name belong to the command
	fs.SetInterspersed(false)

	fs.StringVarP(&c.APIURL, "api", "a", c.APIURL, "Triply backend URL")
	fs.DurationVarP(&c.Timeout, "timeout", "t", c.Timeout, "Request timeout")
	fs.StringVarP(&c.Store, "store", "s", c.Store, "Session store (file, memory, postgres)")
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "Directory of file store")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string for postgres store")
	fs.StringVarP(&c.Profile, "profile", "p", c.Profile, "Session profile")
	fs.BoolVar(&c.RevokeOnLogout, "revoke-on-logout", c.RevokeOnLogout, "Revoke refresh token at backend on logout")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.WeatherAPIKey, "weather-key", c.WeatherAPIKey, "Weather API key")
	fs.StringVar(&c.WeatherAPIURL, "weather-url", c.WeatherAPIURL, "Weather API URL")
	fs.StringVar(&c.MapsAPIKey, "maps-key", c.MapsAPIKey, "Static maps API key")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreMemory:
	case StorePostgres:
		if c.DatabaseDSN == "" {
			return errors.New("database connection string is required for postgres store")
		}
	default:
		return errors.New("unknown store: " + c.Store)
	}
	if c.Profile == "" {
		return errors.New("profile must not be empty")
	}
	// Profile names the file inside data directory
	if c.Profile == "." || c.Profile == ".." || strings.ContainsAny(c.Profile, `/\`) {
		return errors.New("profile must be a plain name without path separators: " + c.Profile)
	}
	return nil
}
