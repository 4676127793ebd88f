package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/adreach/adsdk/internal/core/config"
	"github.com/adreach/adsdk/internal/core/domain"
	"github.com/adreach/adsdk/internal/sdk"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	AD_SERVER_URL := os.Getenv("AD_SERVER_URL")
	API_KEY := os.Getenv("AD_API_KEY")
	TELEMETRY_URL := os.Getenv("TELEMETRY_URL")
	if AD_SERVER_URL == "" {
		log.Fatalf("AD_SERVER_URL is not set")
	}
	if API_KEY == "" {
		log.Fatalf("AD_API_KEY is not set")
	}

	ctx := context.Background()

	// 1. Build the SDK configuration
	cfg := config.SDKConfig{
		APIKey:      API_KEY,
		AdServerURL: AD_SERVER_URL,
		Retry: config.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   config.Duration(500 * time.Millisecond),
			MaxDelay:    config.Duration(5 * time.Second),
		},
		Telemetry: config.TelemetryConfig{
			EnableRemote:   TELEMETRY_URL != "",
			RemoteEndpoint: TELEMETRY_URL,
			BatchSize:      10,
			FlushInterval:  config.Duration(10 * time.Second),
		},
		Logger: config.LoggerConfig{
			Level:         "debug",
			EnableConsole: true,
			EnableRemote:  TELEMETRY_URL != "",
		},
	}

	// 2. Create and initialize the SDK
	client := sdk.New(cfg)
	defer client.Destroy()

	if err := client.Initialize(ctx); err != nil {
		log.Fatalf("Initialization failed: %v", err)
	}
	fmt.Printf("SDK initialized, session=%s permissions=%v\n\n", client.SessionID(), client.Permissions())

	// 3. Request ads for a few placements to exercise the fallback path
	placements := []domain.Placement{"home_banner", "sidebar", "article_footer"}
	for i, placement := range placements {
		ad, err := client.RequestAd(ctx, placement, domain.TargetingContext{
			"topic": "technology",
			"lang":  "en",
		})
		if err != nil {
			log.Printf("Request %d failed: %v", i+1, err)
			continue
		}

		kind := "upstream"
		if ad.IsFallback() {
			kind = "fallback"
		}
		fmt.Printf("Request %d (%s): %s ad %q - %s\n", i+1, placement, kind, ad.ID, ad.Content.Title)

		client.TrackEvent(domain.Event{
			EventType: domain.EventTypeImpression,
			Placement: placement,
			AdID:      ad.ID,
		})

		time.Sleep(100 * time.Millisecond)
	}

	fmt.Println("\nDone, destroying SDK (flushes telemetry)")
}
