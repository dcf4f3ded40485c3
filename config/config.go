package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"

	defaultOTPTTL             = 10 * time.Minute
	defaultRateLimitAttempts  = 5
	defaultRateLimitWindow    = time.Minute
	defaultCountryCode        = "966"
	defaultNotificationQueue  = "whatsapp"
	defaultQueueWorkers       = 2
	defaultDispatchDelay      = 5 * time.Second
	defaultJobMaxAttempts     = 3
	defaultTwoFactorIssuer    = "storehub"
	defaultArtifactBucketURL  = "file:///var/lib/storehub/artifacts"
	defaultSessionTTL         = 2 * time.Hour
	defaultRememberSessionTTL = 30 * 24 * time.Hour
	defaultChallengeTTL       = 10 * time.Minute
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		AutoMigrate bool   `json:"autoMigrate" yaml:"autoMigrate"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Session   string `json:"session" yaml:"session"`
		Challenge string `json:"challenge" yaml:"challenge"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	// Mail is the SMTP transport used by the email two-factor channel
	Mail *MailConfig `json:"mail" yaml:"mail"`

	// SMS is the HTTP transport used by the sms two-factor channel
	SMS *SMSConfig `json:"sms" yaml:"sms"`

	// WhatsApp is the messaging transport used for order documents
	WhatsApp *WhatsAppConfig `json:"whatsapp" yaml:"whatsapp"`

	// PubSub configuration for order event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// Queue configuration for the notification workers
	Queue *QueueConfig `json:"queue" yaml:"queue"`

	// Storage configuration for rendered order documents
	Storage *StorageConfig `json:"storage" yaml:"storage"`

	// Redis is optional; when set it backs rate limiting and the job queue
	Redis *RedisConfig `json:"redis" yaml:"redis"`

	// QRCode configuration for authenticator enrollment codes
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost         int             `json:"bcryptCost" yaml:"bcryptCost"`
	SessionTTL         time.Duration   `json:"sessionTtl" yaml:"sessionTtl"`
	RememberSessionTTL time.Duration   `json:"rememberSessionTtl" yaml:"rememberSessionTtl"`
	TwoFactor          TwoFactorConfig `json:"twoFactor" yaml:"twoFactor"`
	RateLimit          RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`
}

// TwoFactorConfig controls the OTP lifecycle and challenge tokens
type TwoFactorConfig struct {
	OTPTTL       time.Duration `json:"otpTtl" yaml:"otpTtl"`
	ChallengeTTL time.Duration `json:"challengeTtl" yaml:"challengeTtl"`
	Issuer       string        `json:"issuer" yaml:"issuer"`

	// LegacyNullChannel accepts email codes stored before codes carried a channel
	LegacyNullChannel bool `json:"legacyNullChannel" yaml:"legacyNullChannel"`
}

// RateLimitConfig bounds login and two-factor attempts
type RateLimitConfig struct {
	MaxAttempts int           `json:"maxAttempts" yaml:"maxAttempts"`
	Window      time.Duration `json:"window" yaml:"window"`
	// Backend is "memory" or "redis"
	Backend string `json:"backend" yaml:"backend"`
}

// MailConfig defines the SMTP transport
type MailConfig struct {
	Host        string `json:"host" yaml:"host"`
	Port        int    `json:"port" yaml:"port"`
	Username    string `json:"username" yaml:"username"`
	Password    string `json:"password" yaml:"password"`
	FromAddress string `json:"fromAddress" yaml:"fromAddress"`
	TLS         bool   `json:"tls" yaml:"tls"`
}

// SMSConfig defines the SMS gateway
type SMSConfig struct {
	Enabled            bool          `json:"enabled" yaml:"enabled"`
	APIURL             string        `json:"apiUrl" yaml:"apiUrl"`
	APIKey             string        `json:"apiKey" yaml:"apiKey"`
	SenderID           string        `json:"senderId" yaml:"senderId"`
	DefaultCountryCode string        `json:"defaultCountryCode" yaml:"defaultCountryCode"`
	Timeout            time.Duration `json:"timeout" yaml:"timeout"`
}

// WhatsAppConfig defines the messaging transport for order documents
type WhatsAppConfig struct {
	APIURL       string        `json:"apiUrl" yaml:"apiUrl"`
	APIKey       string        `json:"apiKey" yaml:"apiKey"`
	DefaultPhone string        `json:"defaultPhone" yaml:"defaultPhone"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "inline" to enqueue in-process, "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// QueueConfig defines the notification queue
type QueueConfig struct {
	// Backend is "memory" or "redis"
	Backend       string          `json:"backend" yaml:"backend"`
	Name          string          `json:"name" yaml:"name"`
	Workers       int             `json:"workers" yaml:"workers"`
	DispatchDelay time.Duration   `json:"dispatchDelay" yaml:"dispatchDelay"`
	MaxAttempts   int             `json:"maxAttempts" yaml:"maxAttempts"`
	Backoff       []time.Duration `json:"backoff" yaml:"backoff"`
	PollInterval  time.Duration   `json:"pollInterval" yaml:"pollInterval"`
}

// StorageConfig defines where rendered documents are persisted
type StorageConfig struct {
	// BucketURL is a gocloud.dev blob URL, e.g. file:///tmp/artifacts or gs://bucket
	BucketURL string `json:"bucketUrl" yaml:"bucketUrl"`
	Prefix    string `json:"prefix" yaml:"prefix"`
}

// RedisConfig defines the optional Redis connection
type RedisConfig struct {
	URL string `json:"url" yaml:"url"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Environment variables override YAML values.
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// SMS_APIKEY -> sms.apiKey (not sms.apikey)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Postgres != nil {
		// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	cfg.ApplyDefaults()

	return cfg, nil
}

// ApplyDefaults fills every optional section so that consumers never have to nil-check.
func (cfg *Config) ApplyDefaults() {
	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.SessionTTL <= 0 {
		cfg.Auth.SessionTTL = defaultSessionTTL
	}
	if cfg.Auth.RememberSessionTTL <= 0 {
		cfg.Auth.RememberSessionTTL = defaultRememberSessionTTL
	}
	if cfg.Auth.TwoFactor.OTPTTL <= 0 {
		cfg.Auth.TwoFactor.OTPTTL = defaultOTPTTL
	}
	if cfg.Auth.TwoFactor.ChallengeTTL <= 0 {
		cfg.Auth.TwoFactor.ChallengeTTL = defaultChallengeTTL
	}
	if cfg.Auth.TwoFactor.Issuer == "" {
		cfg.Auth.TwoFactor.Issuer = defaultTwoFactorIssuer
	}
	if cfg.Auth.RateLimit.MaxAttempts <= 0 {
		cfg.Auth.RateLimit.MaxAttempts = defaultRateLimitAttempts
	}
	if cfg.Auth.RateLimit.Window <= 0 {
		cfg.Auth.RateLimit.Window = defaultRateLimitWindow
	}

	if cfg.SMS == nil {
		cfg.SMS = &SMSConfig{}
	}
	if cfg.SMS.DefaultCountryCode == "" {
		cfg.SMS.DefaultCountryCode = defaultCountryCode
	}

	if cfg.WhatsApp == nil {
		cfg.WhatsApp = &WhatsAppConfig{}
	}

	if cfg.Queue == nil {
		cfg.Queue = &QueueConfig{}
	}
	if cfg.Queue.Name == "" {
		cfg.Queue.Name = defaultNotificationQueue
	}
	if cfg.Queue.Workers <= 0 {
		cfg.Queue.Workers = defaultQueueWorkers
	}
	if cfg.Queue.DispatchDelay <= 0 {
		cfg.Queue.DispatchDelay = defaultDispatchDelay
	}
	if cfg.Queue.MaxAttempts <= 0 {
		cfg.Queue.MaxAttempts = defaultJobMaxAttempts
	}
	if len(cfg.Queue.Backoff) == 0 {
		cfg.Queue.Backoff = []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second}
	}
	if cfg.Queue.PollInterval <= 0 {
		cfg.Queue.PollInterval = time.Second
	}

	if cfg.Storage == nil {
		cfg.Storage = &StorageConfig{}
	}
	if cfg.Storage.BucketURL == "" {
		cfg.Storage.BucketURL = defaultArtifactBucketURL
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
