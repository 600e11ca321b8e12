package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

var (
	MAIN_ROUTES string
	APP_PORT    string
	LineName    string

	SupervisorPIN string
	JWTSecret     string
	JWTExpiration int

	UseGPIO  bool
	LineLock bool

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ReportEmail  string

	allowedOrigins map[string]bool
)

// LoadConfig reads the .env file and initializes configuration variables
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Server Configuration
	MAIN_ROUTES = getEnv("MAIN_ROUTES", "/api")
	APP_PORT = getEnv("APP_PORT", "5000")
	LineName = getEnv("LINE_NAME", "Master Shipper Verify")

	// Supervisor / Auth Configuration
	SupervisorPIN = getEnv("SUPERVISOR_PIN", "1234")
	JWTSecret = getEnv("JWT_SECRET", "verify_station_key_secret")
	JWTExpiration = getEnvAsInt("JWT_EXPIRATION", 900)

	// Line Hardware Configuration
	UseGPIO = getEnvAsBool("USE_GPIO", false)
	LineLock = getEnvAsBool("LINE_LOCK", true)

	// Database Configuration
	DBDriver = getEnv("DB_DRIVER", "sqlite")
	DBHost = getEnv("DB_HOST", "localhost")
	DBPort = getEnv("DB_PORT", "5432")
	DBUser = getEnv("DB_USER", "verify")
	DBPassword = getEnv("DB_PASSWORD", "verify")
	DBName = getEnv("DB_NAME", "verify_station")
	DBPath = getEnv("DB_PATH", "verify_station.db")

	// Shift Report Mail Configuration (disabled while SMTP_HOST is empty)
	SMTPHost = getEnv("SMTP_HOST", "")
	SMTPPort = getEnvAsInt("SMTP_PORT", 465)
	SMTPUser = getEnv("SMTP_USER", "")
	SMTPPassword = getEnv("SMTP_PASSWORD", "")
	ReportEmail = getEnv("REPORT_EMAIL", "")

	loadAllowedOrigins()
}

// getEnv reads an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as an integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool reads an environment variable as a boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// loadAllowedOrigins loads the list of allowed origins from the environment
func loadAllowedOrigins() {
	allowedOrigins = make(map[string]bool)
	originsStr := getEnv("ALLOWED_ORIGINS", "")

	if originsStr == "" {
		// Operator kiosk and monitor displays on the bench network
		allowedOrigins = map[string]bool{
			"http://127.0.0.1:3000": true,
			"http://localhost:3000": true,
		}
		return
	}

	origins := strings.Split(originsStr, ",")
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
}

func SetupCORS(app *fiber.App) {
	app.Use(func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if allowedOrigins[origin] {
			c.Set("Access-Control-Allow-Origin", origin)
			c.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			c.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			c.Set("Access-Control-Allow-Credentials", "true")
		}

		// Handle preflight request
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	})
}
