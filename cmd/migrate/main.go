package main

import (
	"marketplace/internal/config"  // Custom import path (Config)
	"marketplace/internal/db"      // Custom import path (Database)
	"marketplace/internal/logging" // Custom import path (Logging)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	logging.Setup(cfg)         // Setup logger
	db.Migrate(cfg)            // Migrate the schema of the configured database
}
