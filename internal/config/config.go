package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/utils"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	BackendMemory   = "memory"
	BackendPostgres = "postgres"

	DefaultAppName = "rentalai"

	devSecretKey      = "dev-secret-key-change-me"
	defaultAppPort    = "5000"
	defaultPIDFile    = "run/rentalai.pid"
	defaultLogFile    = "logs/rentalai.log"
	defaultEnvFile    = ".env"
	defaultSessionTTL = 12 * time.Hour
)

type Config struct {
	AppName            string
	Env                string
	AppPort            string
	AppUrl             string
	DataBackend        string
	DBUrl              string
	SecretKey          string
	OpenAIAPIKey       string
	OpenAIModel        string
	RedisURL           string
	InsightsCacheTTL   time.Duration
	PDFDefaultPassword string
	SessionTTL         time.Duration
	PIDFile            string
	LogFile            string
	SkipSeed           bool
	NewsEnabled        bool

	LDFlag_AIInsightsEnabled  bool
	LDFlag_SeedDbWithDemoData bool
	LDFlag_CORSHighSecurity   bool
}

// LoadConfig reads the optional env file, the process environment, the
// optional Bitwarden secrets project and the optional LaunchDarkly flags,
// in that order of increasing precedence for secrets and flags.
func LoadConfig() (*Config, error) {
	envFile := getEnv("ENV_FILE", defaultEnvFile)
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		AppName:            getEnv("APP_NAME", DefaultAppName),
		Env:                strings.ToLower(getEnv("ENV", EnvDevelopment)),
		AppPort:            getEnv("APP_PORT", defaultAppPort),
		DBUrl:              os.Getenv("DATABASE_URL"),
		SecretKey:          os.Getenv("SECRET_KEY"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        getEnv("OPENAI_MODEL", constants.DefaultOpenAIModel),
		RedisURL:           os.Getenv("REDIS_URL"),
		PDFDefaultPassword: os.Getenv("PDF_DEFAULT_PASSWORD"),
		PIDFile:            getEnv("PID_FILE", defaultPIDFile),
		LogFile:            getEnv("LOG_FILE", defaultLogFile),
	}
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.Env)
	}
	if _, err := strconv.Atoi(cfg.AppPort); err != nil {
		return nil, fmt.Errorf("APP_PORT must be numeric: %w", err)
	}
	cfg.AppUrl = getEnv("APP_URL", "http://localhost:"+cfg.AppPort)

	var err error
	if cfg.InsightsCacheTTL, err = getDuration("INSIGHTS_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", defaultSessionTTL); err != nil {
		return nil, err
	}
	if cfg.SkipSeed, err = getBool("SKIP_SEED", false); err != nil {
		return nil, err
	}
	if cfg.NewsEnabled, err = getBool("NEWS_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.NewsEnabled {
		utils.Logger.Warn("NEWS_ENABLED is set but the news integration has been removed; ignoring")
	}

	if strings.TrimSpace(os.Getenv("BWS_ACCESS_TOKEN")) != "" {
		if err := cfg.applySecrets(); err != nil {
			return nil, err
		}
	}

	defaultBackend := BackendMemory
	if cfg.Env == EnvProduction || cfg.DBUrl != "" {
		defaultBackend = BackendPostgres
	}
	cfg.DataBackend = strings.ToLower(getEnv("DATA_BACKEND", defaultBackend))

	if err := cfg.loadFlags(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	utils.Logger.Infof("Loaded config for %s (env=%s, backend=%s, port=%s)", cfg.AppName, cfg.Env, cfg.DataBackend, cfg.AppPort)
	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// Close is kept for lifecycle symmetry with the App.
func (c *Config) Close() {}

func (c *Config) validate() error {
	switch c.DataBackend {
	case BackendMemory:
		if c.IsProduction() {
			return errors.New("DATA_BACKEND=memory is not allowed in production")
		}
	case BackendPostgres:
		if c.DBUrl == "" {
			return errors.New("DATABASE_URL is required when DATA_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("DATA_BACKEND must be %q or %q, got %q", BackendMemory, BackendPostgres, c.DataBackend)
	}

	if c.SecretKey == "" {
		if c.IsProduction() {
			return errors.New("SECRET_KEY is required in production")
		}
		utils.Logger.Warn("SECRET_KEY not set; using the development default")
		c.SecretKey = devSecretKey
	}
	if c.IsProduction() && c.SecretKey == devSecretKey {
		return errors.New("SECRET_KEY must not be the development default in production")
	}
	return nil
}

// SecretsProvider opens the Bitwarden client. Tests replace it.
var SecretsProvider = func() (utils.SecretsSource, error) {
	return utils.NewBWSSecretsClient()
}

// applySecrets overlays values from the "<app>-<env>" secrets project.
func (c *Config) applySecrets() error {
	client, err := SecretsProvider()
	if err != nil {
		return fmt.Errorf("initialize secrets client: %w", err)
	}
	defer client.Close()

	project := fmt.Sprintf("%s-%s", c.AppName, c.Env)
	secrets, err := client.GetSecrets(project)
	if err != nil {
		return fmt.Errorf("fetch secrets %s: %w", project, err)
	}

	overlay := map[string]*string{
		"DATABASE_URL":   &c.DBUrl,
		"SECRET_KEY":     &c.SecretKey,
		"OPENAI_API_KEY": &c.OpenAIAPIKey,
		"REDIS_URL":      &c.RedisURL,
	}
	for key, dst := range overlay {
		if v, ok := secrets[key]; ok && v != "" {
			*dst = v
		}
	}
	utils.Logger.Infof("Applied %d secrets from project %s", len(secrets), project)
	return nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file %s: %w", path, err)
	}
	// godotenv.Load never overrides variables already present.
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	utils.Logger.Debugf("Loaded environment overrides from %s", path)
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
