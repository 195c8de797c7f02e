package schema

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStockItemValidate(t *testing.T) {
	valid := StockItem{
		ID:            NewID(),
		Name:          "Carrara White",
		Type:          MaterialMarble,
		Size:          "60x60cm",
		Price:         48.50,
		StockQuantity: 120,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid item failed validation: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*StockItem)
	}{
		{"missing id", func(s *StockItem) { s.ID = "" }},
		{"missing name", func(s *StockItem) { s.Name = "" }},
		{"unknown material", func(s *StockItem) { s.Type = "Linoleum" }},
		{"negative price", func(s *StockItem) { s.Price = -1 }},
		{"negative quantity", func(s *StockItem) { s.StockQuantity = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid
			tt.mutate(&item)
			if err := item.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestMaterialValid(t *testing.T) {
	for _, m := range Materials() {
		if !m.Valid() {
			t.Errorf("Materials() returned invalid material %q", m)
		}
	}
	if Material("Carpet").Valid() {
		t.Error("unknown material reported valid")
	}
	// The two-word category must survive as-is, it is part of the wire
	// format.
	if !Material("Wood Look").Valid() {
		t.Error("Wood Look not accepted")
	}
}

func TestDerivePrivilege(t *testing.T) {
	tests := []struct {
		role string
		want Privilege
	}{
		{"Administrator", PrivilegeAdmin},
		{"Sys Admin", PrivilegeAdmin},
		{"Store Manager", PrivilegeManager},
		{"manager", PrivilegeManager},
		{"Sales Associate", PrivilegeStaff},
		{"", PrivilegeStaff},
		// admin wins over manager when both words appear
		{"Admin Manager", PrivilegeAdmin},
	}
	for _, tt := range tests {
		if got := DerivePrivilege(tt.role); got != tt.want {
			t.Errorf("DerivePrivilege(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestStaffSetDefaults(t *testing.T) {
	// A legacy payload has no privilege field; it must be derived from
	// the role on load.
	rec := StaffRecord{ID: NewID(), Name: "Jo", Role: "Store Manager"}
	rec.SetDefaults()
	if rec.Privilege != PrivilegeManager {
		t.Errorf("privilege = %q, want manager", rec.Privilege)
	}
	if rec.Status != StatusActive {
		t.Errorf("status = %q, want Active", rec.Status)
	}

	// An explicit privilege survives a role change: it was fixed at
	// creation time.
	rec2 := StaffRecord{ID: NewID(), Name: "Sam", Role: "Store Manager", Privilege: PrivilegeStaff}
	rec2.SetDefaults()
	if rec2.Privilege != PrivilegeStaff {
		t.Errorf("privilege overwritten to %q", rec2.Privilege)
	}
}

func TestStaffUnread(t *testing.T) {
	rec := StaffRecord{
		Notifications: []Notification{
			{ID: "1", IsRead: true},
			{ID: "2"},
			{ID: "3"},
		},
	}
	if got := rec.Unread(); got != 2 {
		t.Errorf("Unread() = %d, want 2", got)
	}
}

func TestHasUpcomingMeeting(t *testing.T) {
	today := "2026-08-30"
	tests := []struct {
		date string
		want bool
	}{
		{"", false},
		{"2026-08-29", false},
		{"2026-08-30", true}, // today counts as upcoming
		{"2026-09-01", true},
		{"2027-01-01", true},
	}
	for _, tt := range tests {
		c := CustomerRecord{MeetingDate: tt.date}
		if got := c.HasUpcomingMeeting(today); got != tt.want {
			t.Errorf("HasUpcomingMeeting(%q) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestCustomerValidateMeetingDate(t *testing.T) {
	c := CustomerRecord{ID: NewID(), Name: "Acme", MeetingDate: "30/08/2026"}
	if err := c.Validate(); err == nil {
		t.Error("non-ISO meeting date passed validation")
	}
	c.MeetingDate = "2026-08-30"
	if err := c.Validate(); err != nil {
		t.Errorf("ISO meeting date rejected: %v", err)
	}
}

func TestDefaultSeed(t *testing.T) {
	seed := DefaultSeed()
	if len(seed.Stock) == 0 {
		t.Fatal("default seed has no stock")
	}
	for i, item := range seed.Stock {
		if err := item.Validate(); err != nil {
			t.Errorf("seed stock %d invalid: %v", i, err)
		}
	}
	if len(seed.Staff) == 0 {
		t.Fatal("default seed has no staff")
	}
	admin := seed.Staff[0]
	if admin.Username == "" || admin.Password == "" {
		t.Error("seed admin has no credentials, fresh installs cannot log in")
	}
	if admin.Privilege != PrivilegeAdmin {
		t.Errorf("seed admin privilege = %q", admin.Privilege)
	}
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	content := `stock:
  - name: Test Tile
    type: Ceramic
    size: 10x10cm
    price: 5.5
    stockQuantity: 10
staff:
  - name: Boss
    role: Store Manager
    username: boss
    password: secret
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	catalog, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}
	if len(catalog.Stock) != 1 || len(catalog.Staff) != 1 {
		t.Fatalf("unexpected catalog sizes: %d stock, %d staff", len(catalog.Stock), len(catalog.Staff))
	}
	if catalog.Stock[0].ID == "" {
		t.Error("stock seed did not get a generated id")
	}
	if catalog.Staff[0].Privilege != PrivilegeManager {
		t.Errorf("staff seed privilege = %q, want manager", catalog.Staff[0].Privilege)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("stock:\n  - name: X\n    type: Nope\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSeedFile(bad); err == nil {
		t.Error("invalid seed material accepted")
	}
}
