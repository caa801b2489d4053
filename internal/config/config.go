package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/database"
	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Office     OfficeConfig
	Attendance AttendanceConfig
	Payroll    PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

// OfficeConfig is the trusted perimeter used for Office starts.
type OfficeConfig struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

type AttendanceConfig struct {
	DiscrepancyTolerance time.Duration
	DefaultTargetHours   float64
	// ReconcileHour is the local hour after which the previous day is reconciled
	ReconcileHour int
}

// PayrollConfig holds the policy hooks of the salary engine. Thresholds are
// attendance rates in [0,1]; percents are applied to the monthly base.
type PayrollConfig struct {
	TaxPercent                   float64
	OvertimeMultiplier           float64
	PerfectAttendanceThreshold   float64
	PerfectAttendanceBonusPct    float64
	PoorAttendanceThreshold      float64
	PoorAttendancePenaltyPercent float64
	Workers                      int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-worksession"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Office perimeter
	officeLat, err := getEnvFloat("OFFICE_LATITUDE", 0)
	if err != nil {
		return nil, err
	}
	officeLng, err := getEnvFloat("OFFICE_LONGITUDE", 0)
	if err != nil {
		return nil, err
	}
	officeRadius, err := getEnvFloat("OFFICE_RADIUS_METERS", 500)
	if err != nil {
		return nil, err
	}
	config.Office = OfficeConfig{
		Latitude:     officeLat,
		Longitude:    officeLng,
		RadiusMeters: officeRadius,
	}

	// Attendance
	tolerance, err := time.ParseDuration(getEnv("ATTENDANCE_DISCREPANCY_TOLERANCE", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_DISCREPANCY_TOLERANCE: %w", err)
	}
	targetHours, err := getEnvFloat("WORKSESSION_DEFAULT_TARGET_HOURS", 8)
	if err != nil {
		return nil, err
	}
	reconcileHour, err := strconv.Atoi(getEnv("ATTENDANCE_RECONCILE_HOUR", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_RECONCILE_HOUR: %w", err)
	}
	config.Attendance = AttendanceConfig{
		DiscrepancyTolerance: tolerance,
		DefaultTargetHours:   targetHours,
		ReconcileHour:        reconcileHour,
	}

	// Payroll policy
	if config.Payroll, err = loadPayroll(); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadPayroll() (PayrollConfig, error) {
	var p PayrollConfig
	var err error

	if p.TaxPercent, err = getEnvFloat("PAYROLL_TAX_PERCENT", 0); err != nil {
		return p, err
	}
	if p.OvertimeMultiplier, err = getEnvFloat("PAYROLL_OVERTIME_MULTIPLIER", 0); err != nil {
		return p, err
	}
	if p.PerfectAttendanceThreshold, err = getEnvFloat("PAYROLL_PERFECT_ATTENDANCE_THRESHOLD", 0); err != nil {
		return p, err
	}
	if p.PerfectAttendanceBonusPct, err = getEnvFloat("PAYROLL_PERFECT_ATTENDANCE_BONUS_PERCENT", 0); err != nil {
		return p, err
	}
	if p.PoorAttendanceThreshold, err = getEnvFloat("PAYROLL_POOR_ATTENDANCE_THRESHOLD", 0); err != nil {
		return p, err
	}
	if p.PoorAttendancePenaltyPercent, err = getEnvFloat("PAYROLL_POOR_ATTENDANCE_PENALTY_PERCENT", 0); err != nil {
		return p, err
	}
	workers, err := strconv.Atoi(getEnv("PAYROLL_WORKERS", "8"))
	if err != nil {
		return p, fmt.Errorf("invalid PAYROLL_WORKERS: %w", err)
	}
	p.Workers = workers

	return p, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.Office.RadiusMeters <= 0 {
		return fmt.Errorf("OFFICE_RADIUS_METERS must be positive")
	}
	if c.Attendance.DiscrepancyTolerance < 0 {
		return fmt.Errorf("ATTENDANCE_DISCREPANCY_TOLERANCE must not be negative")
	}
	if c.Attendance.DefaultTargetHours < 1 || c.Attendance.DefaultTargetHours > 12 {
		return fmt.Errorf("WORKSESSION_DEFAULT_TARGET_HOURS must be between 1 and 12")
	}
	if c.Attendance.ReconcileHour < 0 || c.Attendance.ReconcileHour > 23 {
		return fmt.Errorf("ATTENDANCE_RECONCILE_HOUR must be between 0 and 23")
	}
	if c.Payroll.Workers < 1 {
		return fmt.Errorf("PAYROLL_WORKERS must be at least 1")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// PoolOptions returns the connection pool sizing for database.NewPostgreSQLDB.
func (c *Config) PoolOptions() database.PoolOptions {
	return database.PoolOptions{
		MaxConns:        c.Database.MaxConns,
		MinConns:        c.Database.MinConns,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// Location returns the time base sessions are normalized in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string = strings.Split(value, ",")
	return result
}
