package store

import (
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Theme preference keys. The shadow key mirrors the primary flag as a
// "dark"/"light" string for tools that read it instead.
const (
	DarkModeKey       = "dark_mode"
	DarkModeShadowKey = "dark_mode_shadow"
)

// Preference returns the value stored under key and whether it exists.
func (s *Store) Preference(key string) (string, bool, error) {
	var p Preference
	err := s.db.First(&p, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return p.Value, true, nil
}

// SetPreference stores value under key.
func (s *Store) SetPreference(key, value string) error {
	return setPreference(s.db, key, value)
}

func setPreference(db *gorm.DB, key, value string) error {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Preference{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("saving preference %s: %w", key, err)
	}
	return nil
}

// DarkMode returns the theme preference. The primary flag wins; the shadow
// key is consulted when the flag is missing or unreadable.
func (s *Store) DarkMode() (bool, error) {
	v, ok, err := s.Preference(DarkModeKey)
	if err != nil {
		return false, err
	}
	if ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		}
	}
	shadow, ok, err := s.Preference(DarkModeShadowKey)
	if err != nil || !ok {
		return false, err
	}
	return shadow == "dark", nil
}

// SetDarkMode writes both theme keys atomically.
func (s *Store) SetDarkMode(dark bool) error {
	shadow := "light"
	if dark {
		shadow = "dark"
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := setPreference(tx, DarkModeKey, strconv.FormatBool(dark)); err != nil {
			return err
		}
		return setPreference(tx, DarkModeShadowKey, shadow)
	})
}
