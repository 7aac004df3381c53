package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/alokumarjaiswal/gmaps-scraper/scraper"
	"github.com/alokumarjaiswal/gmaps-scraper/storage"
	"github.com/alokumarjaiswal/gmaps-scraper/utils"
)

func main() {
	_ = godotenv.Load()

	listingURL := flag.String("url", utils.EnvOrDefault("LISTING_URL", ""), "Google Maps business listing URL")
	outputDir := flag.String("output-dir", utils.EnvOrDefault("OUTPUT_DIR", "scraped_data"), "Directory for profile JSON and screenshots")
	headless := flag.Bool("headless", utils.EnvBoolOrDefault("HEADLESS", true), "Run browser in headless mode")
	timeoutMin := flag.Int("timeout-min", 10, "Overall run timeout (minutes)")
	maxScrollSteps := flag.Int("max-scroll-steps", 15, "Scroll step budget for lazy-loaded lists")
	maxExpandPasses := flag.Int("max-expand-passes", 3, "Expansion pass budget per review")
	actionsPerSecond := flag.Float64("rate", 4.0, "Load-triggering browser actions per second")
	maxMedia := flag.Int("max-media", 50, "Maximum media items per gallery category")
	screenshots := flag.Bool("screenshots", utils.EnvBoolOrDefault("CAPTURE_SCREENSHOTS", true), "Capture a screenshot per gallery category")
	mediaURLs := flag.Bool("media-urls", true, "Extract photo and video URLs from the gallery")
	debug := flag.Bool("debug", utils.EnvBoolOrDefault("DEBUG", false), "Enable debug logging")
	dbHost := flag.String("db-host", utils.EnvOrDefault("DB_HOST", ""), "PostgreSQL host (empty disables DB persistence)")
	dbPort := flag.Int("db-port", utils.EnvIntOrDefault("DB_PORT", 5432), "PostgreSQL port")
	dbUser := flag.String("db-user", utils.EnvOrDefault("DB_USER", "postgres"), "PostgreSQL user")
	dbPassword := flag.String("db-password", utils.EnvOrDefault("DB_PASSWORD", "postgres"), "PostgreSQL password")
	dbName := flag.String("db-name", utils.EnvOrDefault("DB_NAME", "gmaps_scraper"), "PostgreSQL database name")
	dbSSLMode := flag.String("db-sslmode", utils.EnvOrDefault("DB_SSLMODE", "disable"), "PostgreSQL sslmode")
	flag.Parse()

	if *listingURL == "" {
		fmt.Fprintln(os.Stderr, "a listing URL is required (-url or LISTING_URL)")
		flag.Usage()
		os.Exit(2)
	}

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	cfg := scraper.DefaultConfig()
	cfg.PageLoadTimeout = utils.EnvDurationOrDefault("PAGE_LOAD_TIMEOUT", cfg.PageLoadTimeout)
	cfg.ElementTimeout = utils.EnvDurationOrDefault("ELEMENT_TIMEOUT", cfg.ElementTimeout)
	cfg.SettleDelay = utils.EnvDurationOrDefault("SETTLE_DELAY", cfg.SettleDelay)
	cfg.ListingURL = *listingURL
	cfg.OutputDir = *outputDir
	cfg.Headless = *headless
	cfg.MaxScrollSteps = *maxScrollSteps
	cfg.MaxExpandPasses = *maxExpandPasses
	cfg.ActionsPerSecond = *actionsPerSecond
	cfg.MaxMediaPerCategory = *maxMedia
	cfg.CaptureScreenshots = *screenshots
	cfg.ExtractMediaURLs = *mediaURLs

	store := storage.NewStore(storage.Config{
		OutputDir:  *outputDir,
		DBHost:     *dbHost,
		DBPort:     *dbPort,
		DBUser:     *dbUser,
		DBPassword: *dbPassword,
		DBName:     *dbName,
		DBSSLMode:  *dbSSLMode,
	}, log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeoutMin)*time.Minute)
	defer cancel()

	s := scraper.NewScraper(cfg, log, store.SaveScreenshot)
	profile, err := s.Run(ctx, *listingURL)
	if err != nil {
		log.Error().Err(err).Msg("scrape failed")
		os.Exit(1)
	}

	path, err := store.SaveProfile(profile)
	if err != nil {
		log.Error().Err(err).Msg("persistence failed")
		os.Exit(1)
	}
	fmt.Printf("Scrape complete. Profile: %s\n", path)
}
