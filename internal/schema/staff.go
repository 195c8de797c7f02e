package schema

import (
	"fmt"
	"strings"
	"time"
)

// StaffStatus is the lifecycle state of a staff member.
type StaffStatus string

const (
	StatusActive     StaffStatus = "Active"
	StatusOnLeave    StaffStatus = "On Leave"
	StatusTerminated StaffStatus = "Terminated"
)

// Valid reports whether s is a known lifecycle status.
func (s StaffStatus) Valid() bool {
	switch s {
	case StatusActive, StatusOnLeave, StatusTerminated:
		return true
	}
	return false
}

// Privilege is an explicit access level, computed once when a staff
// record is created instead of being re-derived from the free-text
// role on every check.
type Privilege string

const (
	PrivilegeStaff   Privilege = "staff"
	PrivilegeManager Privilege = "manager"
	PrivilegeAdmin   Privilege = "admin"
)

// DerivePrivilege maps a free-text role to a privilege level. The
// matching is case-insensitive substring search, preserving the
// behavior of roles like "Store Manager" or "Sys Admin".
func DerivePrivilege(role string) Privilege {
	r := strings.ToLower(role)
	switch {
	case strings.Contains(r, "admin"):
		return PrivilegeAdmin
	case strings.Contains(r, "manager"):
		return PrivilegeManager
	default:
		return PrivilegeStaff
	}
}

// Notification is one entry in a staff member's inbox. Sender is a
// display label, not a validated reference.
type Notification struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	IsRead  bool      `json:"isRead"`
	Sender  string    `json:"sender,omitempty"`
}

// StaffRecord is one employee roster entry.
//
// Username and Password exist for the login screen only; passwords are
// stored in the clear, exactly as the customer-facing app did. Do not
// mistake this for an authentication system.
type StaffRecord struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Role          string         `json:"role"`
	Privilege     Privilege      `json:"privilege,omitempty"`
	Email         string         `json:"email,omitempty"`
	Status        StaffStatus    `json:"status"`
	JoinDate      string         `json:"joinDate,omitempty"` // display string, not sortable
	Username      string         `json:"username,omitempty"`
	Password      string         `json:"password,omitempty"`
	AvatarURL     string         `json:"avatarUrl,omitempty"`
	Notifications []Notification `json:"notifications,omitempty"`
}

// Validate checks that the StaffRecord has valid field values.
func (e *StaffRecord) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !e.Status.Valid() {
		return fmt.Errorf("unknown status %q", e.Status)
	}
	return nil
}

// SetDefaults fills optional fields. Payloads written before the
// privilege field existed carry only the role text, so the privilege
// is derived from it on load.
func (e *StaffRecord) SetDefaults() {
	if e.Status == "" {
		e.Status = StatusActive
	}
	if e.Privilege == "" {
		e.Privilege = DerivePrivilege(e.Role)
	}
}

// IsPrivileged reports whether the staff member may manage the roster
// and see the full customer book.
func (e *StaffRecord) IsPrivileged() bool {
	return e.Privilege == PrivilegeManager || e.Privilege == PrivilegeAdmin
}

// Clone returns a copy whose Notifications slice shares no backing
// array with the receiver. Snapshot boundaries must use it; a plain
// struct copy still aliases the inbox.
func (e StaffRecord) Clone() StaffRecord {
	out := e
	if e.Notifications != nil {
		out.Notifications = make([]Notification, len(e.Notifications))
		copy(out.Notifications, e.Notifications)
	}
	return out
}

// Unread returns the number of unread inbox notifications.
func (e *StaffRecord) Unread() int {
	n := 0
	for _, note := range e.Notifications {
		if !note.IsRead {
			n++
		}
	}
	return n
}
