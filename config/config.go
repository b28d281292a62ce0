package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	IncludeBasic = "basic"
	IncludeFull  = "full"

	CartStoreCookie = "cookie"
	CartStoreMemory = "memory"
)

type Config struct {
	Port           string        `yaml:"port"`
	Env            string        `yaml:"env"`
	APIBaseURL     string        `yaml:"api_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	PagesDir         string `yaml:"pages_dir"`
	PartialsURL      string `yaml:"partials_url"`
	IncludeMode      string `yaml:"include_mode"`
	SanitizePartials bool   `yaml:"sanitize_partials"`
	LoginPath        string `yaml:"login_path"`

	Cart struct {
		Store        string        `yaml:"store"`
		KeyPrefix    string        `yaml:"key_prefix"`
		CookieMaxAge time.Duration `yaml:"cookie_max_age"`
	} `yaml:"cart"`

	Session struct {
		TokenCookie string `yaml:"token_cookie"`
		JWTSecret   string `yaml:"jwt_secret"`
	} `yaml:"session"`

	Redis struct {
		URL         string        `yaml:"url"`
		CategoryTTL time.Duration `yaml:"category_ttl"`
	} `yaml:"redis"`

	ItemsPerPage int      `yaml:"items_per_page"`
	CORSOrigins  []string `yaml:"cors_origins"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// Production reports whether the service runs with production settings.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Load builds the configuration from defaults, an optional YAML file named by
// STOREFRONT_CONFIG, and finally the environment (.env included).
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := Defaults()
	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.mergeEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Defaults() Config {
	var cfg Config
	cfg.Port = "8036"
	cfg.Env = "development"
	cfg.APIBaseURL = "http://localhost:8000"
	cfg.RequestTimeout = 10 * time.Second
	cfg.PagesDir = "web"
	cfg.IncludeMode = IncludeFull
	cfg.LoginPath = "/login.html"
	cfg.Cart.Store = CartStoreCookie
	cfg.Cart.KeyPrefix = "cart"
	cfg.Cart.CookieMaxAge = 365 * 24 * time.Hour
	cfg.Session.TokenCookie = "token"
	cfg.Redis.CategoryTTL = 5 * time.Minute
	cfg.ItemsPerPage = 6
	cfg.CORSOrigins = []string{"http://localhost:3000"}
	cfg.RateLimit.RPS = 20
	cfg.RateLimit.Burst = 40
	return cfg
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("APP_ENV", c.Env)
	c.APIBaseURL = getEnv("API_BASE_URL", c.APIBaseURL)
	c.RequestTimeout = getDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.PagesDir = getEnv("PAGES_DIR", c.PagesDir)
	c.PartialsURL = getEnv("PARTIALS_URL", c.PartialsURL)
	c.IncludeMode = strings.ToLower(getEnv("INCLUDE_MODE", c.IncludeMode))
	c.SanitizePartials = getBool("SANITIZE_PARTIALS", c.SanitizePartials)
	c.LoginPath = getEnv("LOGIN_PATH", c.LoginPath)
	c.Cart.Store = strings.ToLower(getEnv("CART_STORE", c.Cart.Store))
	c.Cart.KeyPrefix = getEnv("CART_KEY_PREFIX", c.Cart.KeyPrefix)
	c.Cart.CookieMaxAge = getDuration("CART_COOKIE_MAX_AGE", c.Cart.CookieMaxAge)
	c.Session.TokenCookie = getEnv("TOKEN_COOKIE", c.Session.TokenCookie)
	c.Session.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", c.Session.JWTSecret))
	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Redis.CategoryTTL = getDuration("CATEGORY_CACHE_TTL", c.Redis.CategoryTTL)
	c.ItemsPerPage = getInt("ITEMS_PER_PAGE", c.ItemsPerPage)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit.RPS = f
		}
	}
	c.RateLimit.Burst = getInt("RATE_LIMIT_BURST", c.RateLimit.Burst)
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	switch c.IncludeMode {
	case IncludeBasic, IncludeFull:
	default:
		return fmt.Errorf("invalid include mode %q (want %q or %q)", c.IncludeMode, IncludeBasic, IncludeFull)
	}
	switch c.Cart.Store {
	case CartStoreCookie, CartStoreMemory:
	default:
		return fmt.Errorf("invalid cart store %q", c.Cart.Store)
	}
	if c.ItemsPerPage < 1 {
		return fmt.Errorf("items per page must be positive, got %d", c.ItemsPerPage)
	}
	if strings.TrimSpace(c.Cart.KeyPrefix) == "" {
		return fmt.Errorf("cart key prefix must not be empty")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
		log.Printf("config: ignoring invalid %s=%q", key, val)
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
		log.Printf("config: ignoring invalid %s=%q", key, val)
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		log.Printf("config: ignoring invalid %s=%q", key, val)
	}
	return defaultVal
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
