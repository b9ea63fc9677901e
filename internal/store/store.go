package store

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nebari-dev/mlperm/internal/audit"
)

// Store manages the local mlperm SQLite database via GORM.
type Store struct {
	db         *gorm.DB
	useKeyring bool
}

// New creates a Store using the default platform data directory.
func New() (*Store, error) {
	dataDir, err := DefaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("determining data directory: %w", err)
	}
	return Open(dataDir)
}

// Open creates a Store with a specific data directory.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "mlperm.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode
	db.Exec("PRAGMA journal_mode=WAL")

	if err := db.AutoMigrate(&Session{}, &Preference{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	if err := audit.Migrate(db); err != nil {
		return nil, err
	}

	// Seed singleton row
	db.Exec("INSERT OR IGNORE INTO store_session (id) VALUES (1)")

	return &Store{
		db:         db,
		useKeyring: os.Getenv("MLPERM_NO_KEYRING") == "",
	}, nil
}

// DB returns the underlying GORM DB for advanced queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DefaultDataDir returns ~/.local/share/mlperm/ on Linux, platform equivalent elsewhere.
func DefaultDataDir() (string, error) {
	if dir := os.Getenv("MLPERM_DATA_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "mlperm"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "mlperm"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "mlperm"), nil
	default:
		return filepath.Join(home, ".local", "share", "mlperm"), nil
	}
}

// Session is a singleton table holding the server the console talks to and
// who is logged in. Token is only populated when no OS keyring is available.
type Session struct {
	ID             int    `gorm:"primarykey"`
	ServerURL      string `gorm:"not null;default:''"`
	Username       string `gorm:"not null;default:''"`
	Token          string `gorm:"not null;default:''"`
	TokenInKeyring bool   `gorm:"not null;default:false"`
}

func (Session) TableName() string { return "store_session" }

// Preference is a key/value UI setting.
type Preference struct {
	Key   string `gorm:"primarykey"`
	Value string `gorm:"not null;default:''"`
}

func (Preference) TableName() string { return "store_preferences" }
