package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/linesmerrill/jurychain-api/logging"
	"github.com/linesmerrill/jurychain-api/models"
)

const (
	defaultPort             = "8080"
	defaultDatabaseName     = "jurychain"
	defaultTreasuryAddress  = "0x46f90440678a21461d232555ed376f1D14aEe284"
	defaultChainID          = "0x14a34"
	defaultSubmitRateLimit  = 5
	defaultProofRateLimit   = 5
	defaultRateLimitWindow  = time.Minute
	defaultRequestTimeout   = 30 * time.Second
	defaultRedisDB          = 0
	defaultLimiterMaxKeys   = 10000
	defaultTrustedProxies   = 1
	defaultStatsLogSchedule = "0 0 * * *"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SubmitRateLimit int
	ProofRateLimit  int
	RateLimitWindow time.Duration
	LimiterMaxKeys  int
	RequestTimeout  time.Duration

	// TrustedProxies is the number of proxies in front of the app that append the
	// caller to X-Forwarded-For. Zero means the peer address is used as is.
	TrustedProxies int

	TreasuryAddress  string
	ChainID          string
	ChainRPCURL      string
	ChainExplorerURL string

	OpsUser         string
	OpsPasswordHash string

	StatsLogSchedule string
}

// New sets up all config related services
func New() *Config {
	// a missing .env is fine, real deployments use the environment
	_ = godotenv.Load()

	env := os.Getenv("ENV")

	//setup zap logger and replace default logger
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:              os.Getenv("DB_URI"),
		DatabaseName:     getEnv("DB_NAME", defaultDatabaseName),
		BaseURL:          os.Getenv("BASE_URL"),
		Port:             getEnv("PORT", defaultPort),
		Env:              env,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvInt("REDIS_DB", defaultRedisDB),
		SubmitRateLimit:  getEnvInt("SUBMIT_RATE_LIMIT", defaultSubmitRateLimit),
		ProofRateLimit:   getEnvInt("PROOF_RATE_LIMIT", defaultProofRateLimit),
		RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", defaultRateLimitWindow),
		LimiterMaxKeys:   getEnvInt("RATE_LIMIT_MAX_KEYS", defaultLimiterMaxKeys),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		TrustedProxies:   getEnvInt("TRUSTED_PROXIES", defaultTrustedProxies),
		TreasuryAddress:  getEnv("TREASURY_ADDRESS", defaultTreasuryAddress),
		ChainID:          getEnv("CHAIN_ID", defaultChainID),
		ChainRPCURL:      os.Getenv("CHAIN_RPC_URL"),
		ChainExplorerURL: os.Getenv("CHAIN_EXPLORER_URL"),
		OpsUser:          os.Getenv("OPS_USER"),
		OpsPasswordHash:  os.Getenv("OPS_PASSWORD_HASH"),
		StatsLogSchedule: getEnv("STATS_LOG_SCHEDULE", defaultStatsLogSchedule),
	}
}

func setLogger(env string) (*zap.Logger, error) {
	return logging.New(env)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		zap.S().Warnw("invalid integer in environment, using default",
			"key", key,
			"value", v,
			"default", fallback)
		return fallback
	}
	return i
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		zap.S().Warnw("invalid duration in environment, using default",
			"key", key,
			"value", v,
			"default", fallback)
		return fallback
	}
	return d
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	zap.S().Errorw(message,
		"status", httpStatusCode,
		"error", errText)

	b, _ := json.Marshal(models.ErrorMessageResponse{
		Response: models.MessageError{
			Message: message,
			Error:   errText,
		},
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_, _ = w.Write(b)
}
