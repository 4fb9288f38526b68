package main

import (
	"fmt"
	"os"

	"pharma-supply/config"
	"pharma-supply/database"
	"pharma-supply/models/log"
	"pharma-supply/models/session"
	"pharma-supply/models/transaction"
	"pharma-supply/models/user"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run tools/migrate.go migrate   - Create or update tables and indexes")
		fmt.Println("  go run tools/migrate.go status    - Show which tables exist")
		return
	}

	cfg, err := config.Decode()
	if err != nil {
		fmt.Printf("❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Println("❌ DATABASE_URL is not set")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "migrate":
		fmt.Println("🚀 Running database migrations...")
		db, err := database.InitDB(cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("❌ Migration failed: %v\n", err)
			os.Exit(1)
		}
		database.Close(db)
		fmt.Println("✅ Migration completed successfully!")

	case "status":
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("❌ Failed to connect: %v\n", err)
			os.Exit(1)
		}
		defer database.Close(db)

		for _, model := range []interface{}{&user.User{}, &session.TempSession{}, &transaction.Transaction{}, &log.Log{}} {
			mark := "❌"
			if db.Migrator().HasTable(model) {
				mark = "✅"
			}
			fmt.Printf("%s %T\n", mark, model)
		}

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Available commands: migrate, status")
	}
}
