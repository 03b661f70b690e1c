package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultTokenTTLMinutes = 30
	defaultLoginRateLimit  = 5
)

// Config holds the application's configuration values.
type Config struct {
	AppName        string        `json:"appname"`
	AppEnv         string        `json:"appenv"`
	AppPort        uint16        `json:"appport"`
	GinMode        string        `json:"ginmode"`
	DBDriver       string        `json:"dbdriver"`
	DBHost         string        `json:"dbhost"`
	DBPort         uint16        `json:"dbport"`
	DBName         string        `json:"dbname"`
	DBUser         string        `json:"dbuser"`
	DBPass         string        `json:"-"`
	DBSSLMode      string        `json:"dbsslmode"`
	SQLitePath     string        `json:"sqlitepath"`
	JWTSecret      string        `json:"-"`
	TokenTTL       time.Duration `json:"token_ttl"`
	CORSOrigins    []string      `json:"cors_origins"`
	LogLevel       string        `json:"log_level"`
	LogFormat      string        `json:"log_format"`
	GeoIPPath      string        `json:"geoip_path"`
	LoginRateLimit int           `json:"login_rate_limit"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		// A missing .env is normal in containers; the process environment still applies.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Error loading .env file: %v", err)
		}

		appPort, _ := strconv.ParseUint(getEnv("APPPORT", "8080"), 10, 16)
		dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)
		ttlMinutes, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"))
		if err != nil || ttlMinutes <= 0 {
			ttlMinutes = defaultTokenTTLMinutes
		}
		loginLimit, err := strconv.Atoi(os.Getenv("LOGIN_RATE_LIMIT"))
		if err != nil || loginLimit <= 0 {
			loginLimit = defaultLoginRateLimit
		}

		config = &Config{
			AppName:        getEnv("APPNAME", "medibook"),
			AppEnv:         getEnv("APPENV", "development"),
			AppPort:        uint16(appPort),
			GinMode:        getEnv("GINMODE", "debug"),
			DBDriver:       strings.ToLower(getEnv("DBDRIVER", DriverMySQL)),
			DBHost:         os.Getenv("DBHOST"),
			DBPort:         uint16(dbPort),
			DBName:         os.Getenv("DBNAME"),
			DBUser:         os.Getenv("DBUSER"),
			DBPass:         os.Getenv("DBPASS"),
			DBSSLMode:      getEnv("DBSSLMODE", "disable"),
			SQLitePath:     getEnv("SQLITEPATH", "medibook.db"),
			JWTSecret:      os.Getenv("JWTSECRET"),
			TokenTTL:       time.Duration(ttlMinutes) * time.Minute,
			CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			GeoIPPath:      os.Getenv("GEOIP_DB_PATH"),
			LoginRateLimit: loginLimit,
		}
	})
	return config
}

// IsTest reports whether the process runs with APPENV=test.
func (c *Config) IsTest() bool {
	return c.AppEnv == "test"
}

// ResetConfigForTest drops the cached singleton so the next LoadConfig re-reads the environment.
// Only tests should call this.
func ResetConfigForTest() {
	config = nil
	once = sync.Once{}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Dialector builds the gorm dialector for the configured driver.
func (c *Config) Dialector() (gorm.Dialector, error) {
	if c.IsTest() {
		// Each process gets its own named in-memory database shared by all connections.
		dsn := fmt.Sprintf("file:medibook_test_%d?mode=memory&cache=shared&_busy_timeout=5000", time.Now().UnixNano())
		return sqlite.Open(dsn), nil
	}

	switch c.DBDriver {
	case DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
		return mysql.Open(dsn), nil
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName, c.DBSSLMode)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(c.SQLitePath + "?_busy_timeout=5000&_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported DBDRIVER %q", c.DBDriver)
	}
}

// ConnectDatabase establishes a connection to the configured database.
// In the test environment an in-memory SQLite database is used instead.
func ConnectDatabase() (*gorm.DB, error) {
	cfg := LoadConfig()

	dialector, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
	if cfg.IsTest() {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	if db.Dialector.Name() == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite allows a single writer; one connection keeps booking transactions serialized.
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}
