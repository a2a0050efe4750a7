package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":5000"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline applied by middleware

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store string // "mongo" | "memory"

	// Mongo
	MongoURI            string        // full connection string
	MongoDB             string        // database name
	MongoConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	MongoRetryInterval  time.Duration // initial wait between retries (grows exponentially)
	MongoMaxWait        time.Duration // max wait between retries
	MongoPingTimeout    time.Duration // timeout for each ping attempt
	MongoPoolSize       uint64        // max connections in the pool

	// Redis listing cache (optional, empty addr = disabled)
	RedisAddr         string
	RedisUser         string
	RedisPassword     string
	RedisDB           int
	CacheTTL          time.Duration // TTL of cached listings
	CacheWarmInterval time.Duration // cache warmer period

	// AMQP domain events (optional, empty url = disabled)
	AMQPURL      string
	AMQPExchange string

	SeedFile string // optional YAML seed for AllWebsites

	CORSOrigins  []string // allowed origins, "*" = any
	AllowedHosts []string // optional, Host headers accepted on ops routes (supports *.example.com)
	AdminCIDRS   []string // optional, restrict ops routes to these IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	RateBurst  int // public write endpoints: bucket size per IP
	RatePerMin int // public write endpoints: refill per minute per IP
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool { return c.RedisAddr != "" }

// EventsEnabled reports whether an AMQP broker was configured.
func (c *Config) EventsEnabled() bool { return c.AMQPURL != "" }

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      listenPort(),
		ShutdownTimeout: mustDuration("SITELIST_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SITELIST_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("SITELIST_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SITELIST_PRETTY_LOG", true),

		Store: strings.ToLower(getenv("SITELIST_STORE", StoreMongo)),

		// Mongo settings
		MongoDB:             getenv("SITELIST_MONGO_DB", "SiteListMyWebsite"),
		MongoConnectTimeout: mustDuration("SITELIST_MONGO_CONNECT_TIMEOUT", 30*time.Second),
		MongoRetryInterval:  mustDuration("SITELIST_MONGO_RETRY_INTERVAL", 2*time.Second),
		MongoMaxWait:        mustDuration("SITELIST_MONGO_MAX_WAIT", 10*time.Second),
		MongoPingTimeout:    mustDuration("SITELIST_MONGO_PING_TIMEOUT", 5*time.Second),
		MongoPoolSize:       uint64(getenvInt("SITELIST_MONGO_POOL_SIZE", 50)),

		// Redis settings
		RedisAddr:         getenv("SITELIST_REDIS_ADDR", ""),
		RedisUser:         getenv("SITELIST_REDIS_USERNAME", ""),
		RedisPassword:     getenv("SITELIST_REDIS_PASSWORD", ""),
		RedisDB:           getenvInt("SITELIST_REDIS_DB", 0),
		CacheTTL:          mustDuration("SITELIST_CACHE_TTL", 5*time.Minute),
		CacheWarmInterval: mustDuration("SITELIST_CACHE_WARM_INTERVAL", time.Minute),

		// Events
		AMQPURL:      getenv("SITELIST_AMQP_URL", ""),
		AMQPExchange: getenv("SITELIST_AMQP_EXCHANGE", "sitelist.events"),

		SeedFile: getenv("SITELIST_SEED_FILE", ""),

		// Access
		CORSOrigins:  splitAndTrim(getenv("SITELIST_CORS_ORIGINS", "*")),
		AllowedHosts: splitAndTrim(getenv("SITELIST_ALLOWED_HOSTS", "")),
		AdminCIDRS:   splitAndTrim(getenv("SITELIST_ADMIN_CIDRS", "")),
		TrustProxy:   mustBool("SITELIST_TRUST_PROXY", false),

		RateBurst:  getenvInt("SITELIST_RATE_BURST", 20),
		RatePerMin: getenvInt("SITELIST_RATE_PER_MIN", 60),
	}

	switch cfg.Store {
	case StoreMongo:
		cfg.MongoURI = mongoURI()
	case StoreMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: SITELIST_STORE must be %q or %q, got %q", StoreMongo, StoreMemory, cfg.Store))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.MongoURI = redactURL(cfg.MongoURI)
		cfgCopy.AMQPURL = redactURL(cfg.AMQPURL)
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// listenPort honours the PaaS-style PORT variable before SITELIST_LISTEN_PORT.
func listenPort() string {
	if p := os.Getenv("PORT"); p != "" {
		return ":" + strings.TrimPrefix(p, ":")
	}
	return getenv("SITELIST_LISTEN_PORT", ":5000")
}

// mongoURI returns SITELIST_MONGO_URI, or builds an Atlas SRV URI from
// DB_USER, DB_PASS and SITELIST_MONGO_HOST.
func mongoURI() string {
	if uri := os.Getenv("SITELIST_MONGO_URI"); uri != "" {
		return uri
	}
	user, pass, host := os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("SITELIST_MONGO_HOST")
	if user == "" || pass == "" || host == "" {
		panic("❌ FATAL: set SITELIST_MONGO_URI, or DB_USER + DB_PASS + SITELIST_MONGO_HOST")
	}
	return buildSRVURI(user, pass, host)
}

func buildSRVURI(user, pass, host string) string {
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, pass),
		Host:     host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority&appName=sitelist",
	}
	return u.String()
}

// redactURL hides credentials embedded in a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "***REDACTED***"
	}
	return u.Redacted()
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
