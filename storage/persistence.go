package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/alokumarjaiswal/gmaps-scraper/models"
	"github.com/alokumarjaiswal/gmaps-scraper/utils"
)

type Config struct {
	OutputDir  string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

// Store persists assembled profiles as JSON files, writes per-category
// screenshots, and optionally mirrors profiles into Postgres when a DB host
// is configured.
type Store struct {
	cfg Config
	log zerolog.Logger
}

func NewStore(cfg Config, log zerolog.Logger) *Store {
	return &Store{cfg: cfg, log: log.With().Str("component", "storage").Logger()}
}

// SaveProfile writes the profile JSON named after the business and returns
// the file path. Profiles without a readable name fall back to a generic
// filename so a run never fails on naming.
func (s *Store) SaveProfile(profile *models.BusinessProfile) (string, error) {
	if profile == nil {
		return "", errors.New("nil profile")
	}
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := "unknown_business"
	if profile.Overview.BasicInfo.BusinessName != nil {
		if clean := utils.CleanFilename(*profile.Overview.BasicInfo.BusinessName); clean != "" {
			name = clean
		}
	}
	path := filepath.Join(s.cfg.OutputDir, name+".json")

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write profile: %w", err)
	}

	if strings.TrimSpace(s.cfg.DBHost) != "" {
		if err := s.saveProfileToDB(profile); err != nil {
			return "", err
		}
	}

	s.log.Info().Str("file", path).Msg("profile saved")
	return path, nil
}

// SaveScreenshot writes one PNG capture into the output directory. It
// satisfies the media pipeline's screenshot sink.
func (s *Store) SaveScreenshot(filename string, png []byte) error {
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(s.cfg.OutputDir, filepath.Base(filename))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	s.log.Debug().Str("file", path).Msg("screenshot saved")
	return nil
}

func (s *Store) saveProfileToDB(profile *models.BusinessProfile) error {
	if err := s.ensureDatabaseExists(); err != nil {
		return err
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		s.cfg.DBHost,
		s.cfg.DBPort,
		s.cfg.DBUser,
		s.cfg.DBPassword,
		s.cfg.DBName,
		s.cfg.DBSSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	if err := s.pingPostgresWithRetry(db, 10, time.Second); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS business_profiles (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL,
	listing_url TEXT NOT NULL UNIQUE,
	business_name TEXT,
	rating TEXT,
	review_count INT NOT NULL DEFAULT 0,
	media_count INT NOT NULL DEFAULT 0,
	profile JSONB NOT NULL DEFAULT '{}'::jsonb,
	scraped_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create business_profiles table: %w", err)
	}
	if _, err := db.Exec(`ALTER TABLE business_profiles ADD COLUMN IF NOT EXISTS media_count INT NOT NULL DEFAULT 0`); err != nil {
		return fmt.Errorf("ensure media_count column: %w", err)
	}
	if _, err := db.Exec(`ALTER TABLE business_profiles ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()`); err != nil {
		return fmt.Errorf("ensure updated_at column: %w", err)
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile for db: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var businessName, rating sql.NullString
	if profile.Overview.BasicInfo.BusinessName != nil {
		businessName = sql.NullString{String: *profile.Overview.BasicInfo.BusinessName, Valid: true}
	}
	if profile.Overview.BasicInfo.Rating != nil {
		rating = sql.NullString{String: *profile.Overview.BasicInfo.Rating, Valid: true}
	}

	if _, err := tx.Exec(`
INSERT INTO business_profiles (run_id, listing_url, business_name, rating, review_count, media_count, profile, scraped_at)
VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
ON CONFLICT (listing_url) DO UPDATE
SET run_id = EXCLUDED.run_id,
	business_name = EXCLUDED.business_name,
	rating = EXCLUDED.rating,
	review_count = EXCLUDED.review_count,
	media_count = EXCLUDED.media_count,
	profile = EXCLUDED.profile,
	scraped_at = EXCLUDED.scraped_at,
	updated_at = NOW();
`,
		profile.RunID,
		profile.ListingURL,
		businessName,
		rating,
		profile.Reviews.Data.TotalReviews,
		profile.PhotosVideos.TotalMediaCount,
		string(profileJSON),
		profile.ScrapedAt,
	); err != nil {
		return fmt.Errorf("upsert profile %s: %w", profile.ListingURL, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.log.Info().
		Str("host", s.cfg.DBHost).
		Str("db", s.cfg.DBName).
		Str("listing_url", profile.ListingURL).
		Msg("profile saved to postgres")
	return nil
}

func (s *Store) pingPostgresWithRetry(db *sql.DB, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = db.Ping()
		if lastErr == nil {
			return nil
		}
		time.Sleep(delay)
	}
	return lastErr
}

func (s *Store) ensureDatabaseExists() error {
	adminDSN := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=postgres sslmode=%s",
		s.cfg.DBHost,
		s.cfg.DBPort,
		s.cfg.DBUser,
		s.cfg.DBPassword,
		s.cfg.DBSSLMode,
	)

	adminDB, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return fmt.Errorf("open postgres admin db: %w", err)
	}
	defer adminDB.Close()

	if err := adminDB.Ping(); err != nil {
		return fmt.Errorf("ping postgres admin db: %w", err)
	}

	dbName := strings.TrimSpace(s.cfg.DBName)
	if dbName == "" {
		return errors.New("database name is empty")
	}

	var exists int
	if err := adminDB.QueryRow(`SELECT 1 FROM pg_database WHERE datname = $1`, dbName).Scan(&exists); err == nil && exists == 1 {
		return nil
	}

	escaped := strings.ReplaceAll(dbName, `"`, `""`)
	if _, err := adminDB.Exec(fmt.Sprintf(`CREATE DATABASE "%s"`, escaped)); err != nil {
		return fmt.Errorf("create database %q: %w", dbName, err)
	}
	s.log.Info().Str("db", dbName).Msg("created postgres database")
	return nil
}
