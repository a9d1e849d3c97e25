package main

import (
	"context"
	"log"
	"os"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/api"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/shadow"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/internal/store"
)

func main() {
	log.Println("Starting Beneficiary Dedupe Engine...")

	// ─── Optional Environment Variables ──────────────────────────────
	// Unlike credentials for an external chain node, nothing here is
	// strictly required: the engine runs fine with no database
	// configured, just without cache-file persistence or shadow
	// comparison history.
	// ───────────────────────────────────────────────────────────────

	var cacheStore *store.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		conn, err := store.Connect(context.Background(), dbURL)
		if err != nil {
			log.Printf("Warning: Failed to connect to PostgreSQL, continuing without cache persistence. Error: %v", err)
		} else {
			defer conn.Close()
			if err := conn.InitSchema(context.Background()); err != nil {
				log.Printf("Warning: schema init failed: %v", err)
			}
			cacheStore = conn
		}
	} else {
		log.Println("DATABASE_URL not set — running without cache-file persistence")
	}

	var shadowRunner *shadow.Runner
	if cacheStore != nil {
		shadowRunner = shadow.NewRunner(cacheStore)
	} else {
		shadowRunner = shadow.NewRunner(nil)
	}

	// Setup WebSocket hub for progress broadcast on /dedupe/async.
	wsHub := api.NewHub()
	go wsHub.Run()

	r := api.SetupRouter(cacheStore, wsHub, shadowRunner)

	port := getEnvOrDefault("PORT", "5339")

	log.Printf("Engine running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
