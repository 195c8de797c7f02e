package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tilemaster/internal/config"
	"tilemaster/internal/schema"
	"tilemaster/internal/state"
)

// session records who is logged in on this machine. It is advisory
// only: the store enforces nothing, this just scopes what the CLI
// shows and allows.
type session struct {
	StaffID  string    `json:"staff_id"`
	Username string    `json:"username"`
	LoggedAt time.Time `json:"logged_at"`
}

func sessionPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func saveSession(s *session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func loadSession() (*session, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &s, nil
}

func clearSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// currentStaff resolves the logged-in staff record, or nil without a
// session. A stale session pointing at a deleted record is treated as
// logged out.
func currentStaff(app *state.App) (*schema.StaffRecord, error) {
	s, err := loadSession()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	rec, err := app.FindStaff(s.StaffID)
	if err != nil {
		return nil, nil
	}
	return &rec, nil
}

// requirePrivileged errors unless the logged-in user is a manager or
// admin. Used by roster management and the full customer book.
func requirePrivileged(app *state.App) (*schema.StaffRecord, error) {
	rec, err := currentStaff(app)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("not logged in (try: tm staff login)")
	}
	if !rec.IsPrivileged() {
		return nil, fmt.Errorf("requires manager or admin privileges")
	}
	return rec, nil
}
