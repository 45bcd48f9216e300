package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/beka-birhanu/vinom-snake-server/game"
	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP           string // Host IP the servers bind to
	GrpcPort         int    // Port for the GRPC server
	StreamPort       int    // Port for the websocket stream
	StreamPublicAddr string // Stream address handed out to players

	SessionDuration int // Session time limit (in milliseconds, 0 for none)

	GridWidth       int // Grid width (in cells)
	GridHeight      int // Grid height (in cells)
	FoodLifetime    int // Food lifetime (in milliseconds)
	FoodInterval    int // Period between food spawns (in milliseconds)
	RefreshInterval int // Period between food expiry sweeps (in milliseconds)
	TickInterval    int // Period between snake moves (in milliseconds)
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("%s[APP]%s [INFO] .env file not found or could not be loaded: %v", ColorGreen, ColorReset, err)
	}

	defaults := game.DefaultConfig()
	c := Config{
		HostIP:     getEnv("HOST_IP", "0.0.0.0"),
		GrpcPort:   getEnvAsInt("GRPC_PORT", 50051),
		StreamPort: getEnvAsInt("STREAM_PORT", 8080),

		SessionDuration: getEnvAsInt("SESSION_DURATION_MS", 0),

		GridWidth:       getEnvAsInt("GRID_WIDTH", defaults.Width),
		GridHeight:      getEnvAsInt("GRID_HEIGHT", defaults.Height),
		FoodLifetime:    getEnvAsInt("FOOD_LIFETIME_MS", int(defaults.FoodLifetime.Milliseconds())),
		FoodInterval:    getEnvAsInt("FOOD_INTERVAL_MS", int(defaults.FoodInterval.Milliseconds())),
		RefreshInterval: getEnvAsInt("REFRESH_INTERVAL_MS", int(defaults.RefreshInterval.Milliseconds())),
		TickInterval:    getEnvAsInt("TICK_INTERVAL_MS", int(defaults.TickInterval.Milliseconds())),
	}
	c.StreamPublicAddr = getEnv("STREAM_PUBLIC_ADDR", fmt.Sprintf("ws://%s:%d/play", c.HostIP, c.StreamPort))
	return c
}

// Game converts the game settings into an engine configuration.
func (c Config) Game() game.Config {
	return game.Config{
		Width:           c.GridWidth,
		Height:          c.GridHeight,
		FoodLifetime:    time.Duration(c.FoodLifetime) * time.Millisecond,
		FoodInterval:    time.Duration(c.FoodInterval) * time.Millisecond,
		RefreshInterval: time.Duration(c.RefreshInterval) * time.Millisecond,
		TickInterval:    time.Duration(c.TickInterval) * time.Millisecond,
	}
}

// SessionLimit returns the session time limit, zero meaning unlimited.
func (c Config) SessionLimit() time.Duration {
	return time.Duration(c.SessionDuration) * time.Millisecond
}

// getEnv retrieves the value of an environment variable or the fallback if not set.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves the value of an environment variable as an integer.
// It logs a fatal error if the variable is set but cannot be parsed.
func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := parseInt(key, valueStr)
	if err != nil {
		log.Fatalf("%s[APP]%s %s[FATAL]%s %v", ColorGreen, ColorReset, ColorRed, ColorReset, err)
	}
	return value
}

func parseInt(key, valueStr string) (int, error) {
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer: %w", key, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("environment variable %s must not be negative: %d", key, value)
	}
	return value, nil
}
