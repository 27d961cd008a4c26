// Package appconf holds the process configuration and loads it from flags,
// environment variables and an optional .env file.
package appconf

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"irea.valuation/internal/reconcile"
	"irea.valuation/internal/utils"
)

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps an -env flag value to an Environment. Unknown
// values mean Development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// Artifact store kinds.
const (
	StoreLocal = "local"
	StoreS3    = "s3"
)

// Config holds all the configuration settings for the Application.
type Config struct {
	Port      int
	Env       Environment
	LogLevel  slog.Level
	RateLimit int // requests per second per client

	// CORSOrigins are the browser origins allowed to call the API.
	CORSOrigins []string
	// APIKeys, when set, are required on every API request.
	APIKeys []string
	// TrustedProxies are the peers allowed to set X-Forwarded-For and
	// X-Real-IP. Empty means the TCP peer is always the client.
	TrustedProxies utils.TrustedProxies

	ModelManifest       string
	BaselineModel       string
	ResidualModel       string
	ParcelSource        string
	CompositionStrategy string
	DefaultSaleYear     int

	ArtifactStore string
	ArtifactDir   string
	S3Bucket      string
	S3Prefix      string
	AWSRegion     string

	// Static S3 credentials; empty means the default AWS credential chain.
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:                4000,
		Env:                 Development,
		LogLevel:            slog.LevelInfo,
		RateLimit:           100,
		CORSOrigins:         []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		BaselineModel:       "models/baseline_lgb.txt",
		ResidualModel:       "models/residual_lgb.txt",
		ParcelSource:        "models/final_table_12.csv",
		CompositionStrategy: "log-raw",
		DefaultSaleYear:     reconcile.DefaultSaleYear,
		ArtifactStore:       StoreLocal,
		ArtifactDir:         "models",
	}
}

// Load builds a Config. A .env file (or the one named by -env-file) is read
// first; environment variables then provide flag defaults and flags win.
func Load(fset *flag.FlagSet, args []string) (Config, error) {
	envFile := ".env"
	for i, a := range args {
		switch {
		case strings.HasPrefix(a, "-env-file="), strings.HasPrefix(a, "--env-file="):
			envFile = a[strings.Index(a, "=")+1:]
		case (a == "-env-file" || a == "--env-file") && i+1 < len(args):
			envFile = args[i+1]
		}
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	d := Defaults()
	cfg := d
	var env, level, origins, apiKeys, proxies string

	fset.String("env-file", envFile, "Path to a .env file")
	fset.IntVar(&cfg.Port, "port", envInt("PORT", d.Port), "API server port")
	fset.StringVar(&env, "env", envString("ENV", d.Env.String()), "Environment (development|test|production)")
	fset.StringVar(&level, "log-level", envString("LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	fset.IntVar(&cfg.RateLimit, "rate-limit", envInt("RATE_LIMIT", d.RateLimit), "Requests per second per client")
	fset.StringVar(&origins, "cors-origins", envString("CORS_ORIGINS", strings.Join(d.CORSOrigins, ",")), "Comma separated allowed CORS origins")
	fset.StringVar(&apiKeys, "api-keys", envString("API_KEYS", ""), "Comma separated API keys (empty disables key checks)")
	fset.StringVar(&proxies, "trusted-proxies", envString("TRUSTED_PROXIES", ""), "Comma separated proxy IPs or CIDRs whose forwarding headers are trusted")
	fset.StringVar(&cfg.ModelManifest, "model-manifest", envString("MODEL_MANIFEST", d.ModelManifest), "Optional YAML model manifest")
	fset.StringVar(&cfg.BaselineModel, "baseline-model", envString("BASELINE_MODEL", d.BaselineModel), "Baseline LightGBM model file")
	fset.StringVar(&cfg.ResidualModel, "residual-model", envString("RESIDUAL_MODEL", d.ResidualModel), "Residual LightGBM model file")
	fset.StringVar(&cfg.ParcelSource, "parcel-source", envString("PARCEL_SOURCE", d.ParcelSource), "Parcel table (.csv, .shp, .db, postgres:// or oracle:// URL)")
	fset.StringVar(&cfg.CompositionStrategy, "strategy", envString("COMPOSITION_STRATEGY", d.CompositionStrategy), "Price composition strategy (log-raw|log1p)")
	fset.IntVar(&cfg.DefaultSaleYear, "default-sale-year", envInt("DEFAULT_SALE_YEAR", d.DefaultSaleYear), "Sale year used when a request has none")
	fset.StringVar(&cfg.ArtifactStore, "artifact-store", envString("ARTIFACT_STORE", d.ArtifactStore), "Where model files come from (local|s3)")
	fset.StringVar(&cfg.ArtifactDir, "artifact-dir", envString("ARTIFACT_DIR", d.ArtifactDir), "Local directory for model artifacts")
	fset.StringVar(&cfg.S3Bucket, "s3-bucket", envString("S3_BUCKET", ""), "S3 bucket holding model artifacts")
	fset.StringVar(&cfg.S3Prefix, "s3-prefix", envString("S3_PREFIX", ""), "Key prefix inside the S3 bucket")
	fset.StringVar(&cfg.AWSRegion, "aws-region", envString("AWS_REGION", ""), "AWS region for S3")

	cfg.AWSAccessKeyID = envString("AWS_ACCESS_KEY_ID", "")
	cfg.AWSSecretAccessKey = envString("AWS_SECRET_ACCESS_KEY", "")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Env = EnvFlagToEnvironment(env)
	cfg.CORSOrigins = splitList(origins)
	cfg.APIKeys = splitList(apiKeys)
	trusted, err := utils.ParseTrustedProxies(splitList(proxies))
	if err != nil {
		return Config{}, err
	}
	cfg.TrustedProxies = trusted
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks settings that flags alone cannot constrain.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative"))
	}
	switch c.ArtifactStore {
	case StoreLocal:
	case StoreS3:
		if c.S3Bucket == "" {
			errs = append(errs, fmt.Errorf("S3_BUCKET is required for the s3 artifact store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown artifact store %q", c.ArtifactStore))
	}
	if strings.TrimSpace(c.ParcelSource) == "" {
		errs = append(errs, fmt.Errorf("parcel source is required"))
	}
	return errors.Join(errs...)
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
