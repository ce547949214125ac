package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
	"github.com/Nathan-Yinka/autochek-API/internal/infrastructure/valuation"
	"github.com/Nathan-Yinka/autochek-API/pkg/auth"
	pkgkafka "github.com/Nathan-Yinka/autochek-API/pkg/kafka"
	"github.com/Nathan-Yinka/autochek-API/pkg/observability"
	pgutil "github.com/Nathan-Yinka/autochek-API/pkg/postgres"
	redisutil "github.com/Nathan-Yinka/autochek-API/pkg/redis"
)

type KafkaConfig struct {
	pkgkafka.Config
	Topic string
}

type RedisConfig struct {
	redisutil.Config
	InboxSize int
}

type ValuationConfig struct {
	Lookup   valuation.VINLookupConfig
	CacheTTL time.Duration
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

func (c TLSConfig) Enabled() bool { return c.CertFile != "" && c.KeyFile != "" }

type Config struct {
	ServiceName string
	GRPCPort    int
	HTTPPort    int
	DB          pgutil.Config
	Kafka       KafkaConfig
	Redis       RedisConfig
	Valuation   ValuationConfig
	JWT         auth.JWTConfig
	TLS         TLSConfig
	Tracing     observability.TracingConfig
	Log         observability.LogConfig

	policy valueobject.PolicyConfig
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	defaults := valueobject.DefaultPolicyConfig()

	v.SetDefault("SERVICE_NAME", "financed")
	v.SetDefault("GRPC_PORT", 9090)
	v.SetDefault("HTTP_PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "financed")
	v.SetDefault("DB_NAME", "financing")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)

	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "financing.events")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_INBOX_SIZE", 100)

	v.SetDefault("RAPIDAPI_HOST", "vin-lookup2.p.rapidapi.com")
	v.SetDefault("RAPIDAPI_ENABLED", true)
	v.SetDefault("RAPIDAPI_TIMEOUT", "10s")
	v.SetDefault("USD_TO_NGN_RATE", "1500")
	v.SetDefault("VALUATION_CACHE_TTL", "24h")

	v.SetDefault("JWT_ISSUER", "autochek")
	v.SetDefault("JWT_EXPIRATION", "1h")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LOAN_LTV_CAP", defaults.LTVCap.String())
	v.SetDefault("LOAN_MIN_TERM_MONTHS", defaults.MinTermMonths)
	v.SetDefault("LOAN_MAX_TERM_MONTHS", defaults.MaxTermMonths)
	v.SetDefault("VALUATION_TTL_DAYS", defaults.ValuationTTLDays)
	v.SetDefault("DEFAULT_APR", defaults.DefaultAPR.String())
	v.SetDefault("EXPECTED_MILES_PER_YEAR", defaults.ExpectedMilesPerYear)
	v.SetDefault("LOAN_ADJ_PER_1K", defaults.LoanAdjPer1k.String())
	v.SetDefault("RETAIL_ADJ_PER_1K", defaults.RetailAdjPer1k.String())
	v.SetDefault("MILEAGE_ADJ_CAP_PCT", defaults.MileageAdjCapPct.String())
}

func fromViper(v *viper.Viper) (Config, error) {
	var errs []error
	dec := func(key string) decimal.Decimal {
		d, err := decimal.NewFromString(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}
	pemFile := func(inline, fileKey string) string {
		path := v.GetString(fileKey)
		if path == "" {
			return v.GetString(inline)
		}
		data, err := auth.LoadKeyFromFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", fileKey, err))
		}
		return string(data)
	}
	dur := func(key string) time.Duration {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}

	cfg := Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		GRPCPort:    v.GetInt("GRPC_PORT"),
		HTTPPort:    v.GetInt("HTTP_PORT"),
		DB: pgutil.Config{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
			MinConns: v.GetInt32("DB_MIN_CONNS"),
		},
		Kafka: KafkaConfig{
			Config: pkgkafka.Config{
				Brokers:       splitList(v.GetString("KAFKA_BROKERS")),
				SASLEnabled:   v.GetBool("KAFKA_SASL_ENABLED"),
				SASLMechanism: v.GetString("KAFKA_SASL_MECHANISM"),
				SASLUsername:  v.GetString("KAFKA_SASL_USERNAME"),
				SASLPassword:  v.GetString("KAFKA_SASL_PASSWORD"),
				TLS:           v.GetBool("KAFKA_TLS"),
			},
			Topic: v.GetString("KAFKA_TOPIC"),
		},
		Redis: RedisConfig{
			Config: redisutil.Config{
				Addr:     v.GetString("REDIS_ADDR"),
				Password: v.GetString("REDIS_PASSWORD"),
				DB:       v.GetInt("REDIS_DB"),
			},
			InboxSize: v.GetInt("REDIS_INBOX_SIZE"),
		},
		Valuation: ValuationConfig{
			Lookup: valuation.VINLookupConfig{
				Enabled:      v.GetBool("RAPIDAPI_ENABLED"),
				APIKey:       v.GetString("RAPIDAPI_KEY"),
				Host:         v.GetString("RAPIDAPI_HOST"),
				BaseURL:      v.GetString("RAPIDAPI_BASE_URL"),
				USDToNGNRate: dec("USD_TO_NGN_RATE"),
				Timeout:      dur("RAPIDAPI_TIMEOUT"),
			},
			CacheTTL: dur("VALUATION_CACHE_TTL"),
		},
		JWT: auth.JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			PublicKeyPEM:  pemFile("JWT_PUBLIC_KEY", "JWT_PUBLIC_KEY_FILE"),
			PrivateKeyPEM: pemFile("JWT_PRIVATE_KEY", "JWT_PRIVATE_KEY_FILE"),
			Issuer:        v.GetString("JWT_ISSUER"),
			Expiration:    dur("JWT_EXPIRATION"),
		},
		TLS: TLSConfig{
			CertFile: v.GetString("TLS_CERT_FILE"),
			KeyFile:  v.GetString("TLS_KEY_FILE"),
		},
		Tracing: observability.TracingConfig{
			Endpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure: v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
		},
		Log: observability.LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		policy: valueobject.PolicyConfig{
			LTVCap:               dec("LOAN_LTV_CAP"),
			MinTermMonths:        v.GetInt("LOAN_MIN_TERM_MONTHS"),
			MaxTermMonths:        v.GetInt("LOAN_MAX_TERM_MONTHS"),
			ValuationTTLDays:     v.GetInt("VALUATION_TTL_DAYS"),
			DefaultAPR:           dec("DEFAULT_APR"),
			ExpectedMilesPerYear: v.GetInt("EXPECTED_MILES_PER_YEAR"),
			LoanAdjPer1k:         dec("LOAN_ADJ_PER_1K"),
			RetailAdjPer1k:       dec("RETAIL_ADJ_PER_1K"),
			MileageAdjCapPct:     dec("MILEAGE_ADJ_CAP_PCT"),
		},
	}
	cfg.Tracing.ServiceName = cfg.ServiceName
	cfg.Log.Service = cfg.ServiceName

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// Policy returns the lending policy injected into the domain.
func (c Config) Policy() valueobject.PolicyConfig { return c.policy }

// Validate reports settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	if c.JWT.Secret == "" && c.JWT.PublicKeyPEM == "" && c.JWT.PrivateKeyPEM == "" {
		errs = append(errs, errors.New("JWT_SECRET or JWT_PUBLIC_KEY is required"))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if !c.Valuation.Lookup.USDToNGNRate.IsPositive() {
		errs = append(errs, errors.New("USD_TO_NGN_RATE must be positive"))
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if err := c.policy.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
