package config

import (
	"os"      // For environment variables
	"strconv" // For string to number conversion
	"strings" // For list parsing

	"github.com/joho/godotenv" // For loading .env files
)

// Database drivers supported by db.Open
const (
	DriverMySQL  = "mysql"  // Production driver
	DriverSQLite = "sqlite" // Local development and tests
)

// Config holds the application configuration
type Config struct {
	AppPort         string   // Application port
	DBDriver        string   // mysql or sqlite
	DBUser          string   // Database user
	DBPassword      string   // Database password
	DBHost          string   // Database host
	DBPort          string   // Database port
	DBName          string   // Database name
	SQLitePath      string   // SQLite file path when DBDriver is sqlite
	JWTSecret       string   // JWT secret key
	RedisAddr       string   // Redis server address, empty means in-process cache and chat hub
	RedisPass       string   // Redis password
	RedisDB         int      // Redis database number
	IsProd          bool     // Is production environment
	PaymentAPIURL   string   // Base URL of the hosted payment API, empty disables card charges
	PaymentAPIKey   string   // Secret key for the hosted payment API
	PlatformFeeRate float64  // Share of each order kept by the platform
	UploadDir       string   // Directory for uploaded product images
	MaxUploadMB     int      // Upload size cap in megabytes
	LogLevel        string   // logrus level name
	LogFile         string   // Optional rotating log file
	CORSOrigins     []string // Allowed CORS origins
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:         getEnv("APP_PORT", "8080"),              // Application port
		DBDriver:        getEnv("DB_DRIVER", DriverMySQL),        // Database driver
		DBUser:          os.Getenv("DB_USER"),                    // Database user
		DBPassword:      os.Getenv("DB_PASSWORD"),                // Database password
		DBHost:          getEnv("DB_HOST", "127.0.0.1"),          // Database host
		DBPort:          getEnv("DB_PORT", "3306"),               // Database port
		DBName:          os.Getenv("DB_NAME"),                    // Database name
		SQLitePath:      getEnv("SQLITE_PATH", "marketplace.db"), // SQLite file
		JWTSecret:       os.Getenv("JWT_SECRET"),                 // JWT secret key
		RedisAddr:       os.Getenv("REDIS_ADDR"),                 // Redis server address
		RedisPass:       os.Getenv("REDIS_PASS"),                 // Redis password
		RedisDB:         getInt("REDIS_DB", 0),                   // Redis database number
		IsProd:          os.Getenv("IS_PROD") == "true",          // Is production environment
		PaymentAPIURL:   strings.TrimRight(os.Getenv("PAYMENT_API_URL"), "/"),
		PaymentAPIKey:   os.Getenv("PAYMENT_API_KEY"),
		PlatformFeeRate: getFeeRate("PLATFORM_FEE_RATE", 0.05),  // Platform fee share
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),      // Upload directory
		MaxUploadMB:     getInt("MAX_UPLOAD_MB", 5),             // Upload cap
		LogLevel:        getEnv("LOG_LEVEL", "info"),            // Log level
		LogFile:         os.Getenv("LOG_FILE"),                  // Log file
		CORSOrigins:     getList("CORS_ORIGINS", []string{"*"}), // CORS origins
	}
}

// DSN builds the MySQL Data Source Name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// MaxUploadBytes returns the upload cap in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// getFeeRate accepts only rates in [0, 1)
func getFeeRate(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v < 0 || v >= 1 {
		return fallback
	}
	return v
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
