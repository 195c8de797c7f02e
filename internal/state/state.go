// Package state owns the in-memory collections and triggers sync
// engine writes on every mutation. The engine is handed explicit
// snapshots; nothing here is reachable as ambient global state.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tilemaster/internal/schema"
	syncengine "tilemaster/internal/sync"
)

var (
	// ErrNotFound is returned when an operation targets a record id
	// that is not in the collection.
	ErrNotFound = errors.New("record not found")

	// ErrBadCredentials is returned by Authenticate on any mismatch.
	// Callers get no detail about which part was wrong.
	ErrBadCredentials = errors.New("invalid username or password")

	// ErrUsernameTaken is returned when registering a staff member
	// with a username that already exists on the roster.
	ErrUsernameTaken = errors.New("username already taken")
)

// ChangeEvent describes one collection mutation, for observers such as
// the dashboard.
type ChangeEvent struct {
	Collection string // tiles, customers, employees
	Action     string // created, updated, deleted, reset
	ID         string
	Name       string
}

// ChangeFunc receives change events. It is called outside the state
// lock and must not call back into mutating operations.
type ChangeFunc func(ChangeEvent)

// App holds the three collections behind one mutex. Every mutation
// snapshots the affected collection and hands it to the sync engine;
// persistence failures never surface here.
type App struct {
	mu        sync.Mutex
	engine    *syncengine.Engine
	stock     []schema.StockItem
	customers []schema.CustomerRecord
	staff     []schema.StaffRecord
	onChange  ChangeFunc
}

// New creates an empty App bound to a sync engine.
func New(engine *syncengine.Engine) *App {
	return &App{engine: engine}
}

// SetChangeFunc registers a mutation observer. Pass nil to remove it.
func (a *App) SetChangeFunc(fn ChangeFunc) {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
}

// Load populates all three collections from the backing store. The
// three loads are independent and issued concurrently; Load returns
// once all of them have completed. Seed data is used only where the
// store is empty or unreadable.
func (a *App) Load(ctx context.Context, seed *schema.SeedCatalog) {
	if seed == nil {
		seed = &schema.SeedCatalog{}
	}

	var (
		wg        sync.WaitGroup
		stock     []schema.StockItem
		customers []schema.CustomerRecord
		staff     []schema.StaffRecord
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		stock = a.engine.LoadStock(ctx, seed.Stock)
	}()
	go func() {
		defer wg.Done()
		customers = a.engine.LoadCustomers(ctx, seed.Customers)
	}()
	go func() {
		defer wg.Done()
		staff = a.engine.LoadStaff(ctx, seed.Staff)
	}()
	wg.Wait()

	a.mu.Lock()
	a.stock = stock
	a.customers = customers
	a.staff = staff
	a.mu.Unlock()
}

// Flush blocks until all pending saves have completed.
func (a *App) Flush() {
	a.engine.Flush()
}

func (a *App) notify(ev ChangeEvent) {
	a.mu.Lock()
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// ----- Stock -----

// Stock returns a copy of the inventory collection.
func (a *App) Stock() []schema.StockItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]schema.StockItem, len(a.stock))
	copy(out, a.stock)
	return out
}

// AddStock validates and appends a stock item, then persists.
func (a *App) AddStock(item schema.StockItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid stock item: %w", err)
	}

	a.mu.Lock()
	a.stock = append(a.stock, item)
	a.saveStockLocked()
	a.mu.Unlock()

	a.notify(ChangeEvent{Collection: "tiles", Action: "created", ID: item.ID, Name: item.Name})
	return nil
}

// UpdateStock replaces the item with the same id.
func (a *App) UpdateStock(item schema.StockItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid stock item: %w", err)
	}

	a.mu.Lock()
	idx := -1
	for i := range a.stock {
		if a.stock[i].ID == item.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return fmt.Errorf("stock item %s: %w", item.ID, ErrNotFound)
	}
	a.stock[idx] = item
	a.saveStockLocked()
	a.mu.Unlock()

	a.notify(ChangeEvent{Collection: "tiles", Action: "updated", ID: item.ID, Name: item.Name})
	return nil
}

// DeleteStock removes the item with the given id.
func (a *App) DeleteStock(id string) error {
	a.mu.Lock()
	kept := a.stock[:0]
	found := false
	for _, item := range a.stock {
		if item.ID == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		a.mu.Unlock()
		return fmt.Errorf("stock item %s: %w", id, ErrNotFound)
	}
	a.stock = kept
	a.saveStockLocked()
	a.mu.Unlock()

	a.notify(ChangeEvent{Collection: "tiles", Action: "deleted", ID: id})
	return nil
}

// FindStock returns the stock item with the given id.
func (a *App) FindStock(id string) (schema.StockItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, item := range a.stock {
		if item.ID == id {
			return item, nil
		}
	}
	return schema.StockItem{}, fmt.Errorf("stock item %s: %w", id, ErrNotFound)
}

func (a *App) saveStockLocked() {
	a.engine.SaveStock(a.stock)
}

// ----- Customers -----

// Customers returns a copy of the customer collection.
func (a *App) Customers() []schema.CustomerRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]schema.CustomerRecord, len(a.customers))
	copy(out, a.customers)
	return out
}

// AddCustomer validates and appends a customer record, then persists.
func (a *App) AddCustomer(rec schema.CustomerRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid customer: %w", err)
	}

	a.mu.Lock()
	a.customers = append(a.customers, rec)
	a.saveCustomersLocked()
	a.mu.Unlock()

	a.notify(ChangeEvent{Collection: "customers", Action: "created", ID: rec.ID, Name: rec.Name})
	return nil
}

// UpdateCustomer replaces the record with the same id.
func (a *App) UpdateCustomer(rec schema.CustomerRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid customer: %w", err)
	}

	a.mu.Lock()
	idx := -1
	for i := range a.customers {
		if a.customers[i].ID == rec.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return fmt.Errorf("customer %s: %w", rec.ID, ErrNotFound)
	}
	a.customers[idx] = rec
	a.saveCustomersLocked()
	a.mu.Unlock()

	a.notify(ChangeEvent{Collection: "customers", Action: "updated", ID: rec.ID, Name: rec.Name})
	return nil
}

// DeleteCustomer removes the record with the given id.
func (a *App) DeleteCustomer(id string) error {
	a.mu.Lock()
	kept := a.customers[:0]
	found := false
	for _, rec := range a.customers {
		if rec.ID == id {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	if !found {
		a.mu.Unlock()
		return fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	a.customers = kept
	a.saveCustomersLocked()
	a.mu.Unlock()

	a.notify(ChangeEvent{Collection: "customers", Action: "deleted", ID: id})
	return nil
}

// FindCustomer returns the customer with the given id.
func (a *App) FindCustomer(id string) (schema.CustomerRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, rec := range a.customers {
		if rec.ID == id {
			return rec, nil
		}
	}
	return schema.CustomerRecord{}, fmt.Errorf("customer %s: %w", id, ErrNotFound)
}

// NextMeeting returns the earliest upcoming meeting among customers
// assigned to the given staff member, comparing dates as strings
// (valid for zero-padded ISO dates).
func (a *App) NextMeeting(staffID, today string) (schema.CustomerRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var best schema.CustomerRecord
	found := false
	for _, rec := range a.customers {
		if rec.AssignedTo != staffID || !rec.HasUpcomingMeeting(today) {
			continue
		}
		if !found || rec.MeetingDate < best.MeetingDate {
			best = rec
			found = true
		}
	}
	return best, found
}

func (a *App) saveCustomersLocked() {
	a.engine.SaveCustomers(a.customers)
}

// ----- Staff -----

// Staff returns a copy of the employee roster. Each record is cloned
// so the caller's inbox slices never alias the live ones.
func (a *App) Staff() []schema.StaffRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]schema.StaffRecord, len(a.staff))
	for i := range a.staff {
		out[i] = a.staff[i].Clone()
	}
	return out
}

// AddStaff validates and appends a roster entry, then persists. The
// privilege level is fixed here, at creation time, from the role text.
func (a *App) AddStaff(rec schema.StaffRecord) error {
	rec.SetDefaults()
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid staff record: %w", err)
	}

	a.mu.Lock()
	if rec.Username != "" {
		for _, existing := range a.staff {
			if existing.Username == rec.Username {
				a.mu.Unlock()
				return fmt.Errorf("%w: %s", ErrUsernameTaken, rec.Username)
			}
		}
	}
	a.staff = append(a.staff, rec)
	a.saveStaffLocked()
	a.mu.Unlock()

	a.notify(ChangeEvent{Collection: "employees", Action: "created", ID: rec.ID, Name: rec.Name})
	return nil
}

// UpdateStaff replaces the record with the same id.
func (a *App) UpdateStaff(rec schema.StaffRecord) error {
	rec.SetDefaults()
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid staff record: %w", err)
	}

	a.mu.Lock()
	idx := -1
	for i := range a.staff {
		if a.staff[i].ID == rec.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return fmt.Errorf("staff %s: %w", rec.ID, ErrNotFound)
	}
	a.staff[idx] = rec
	a.saveStaffLocked()
	a.mu.Unlock()

	a.notify(ChangeEvent{Collection: "employees", Action: "updated", ID: rec.ID, Name: rec.Name})
	return nil
}

// DeleteStaff removes the record with the given id. Customers assigned
// to the removed staff member keep their dangling assignment; the
// pointer was never validated to begin with.
func (a *App) DeleteStaff(id string) error {
	a.mu.Lock()
	kept := a.staff[:0]
	found := false
	for _, rec := range a.staff {
		if rec.ID == id {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	if !found {
		a.mu.Unlock()
		return fmt.Errorf("staff %s: %w", id, ErrNotFound)
	}
	a.staff = kept
	a.saveStaffLocked()
	a.mu.Unlock()

	a.notify(ChangeEvent{Collection: "employees", Action: "deleted", ID: id})
	return nil
}

// FindStaff returns the roster entry with the given id.
func (a *App) FindStaff(id string) (schema.StaffRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, rec := range a.staff {
		if rec.ID == id {
			return rec.Clone(), nil
		}
	}
	return schema.StaffRecord{}, fmt.Errorf("staff %s: %w", id, ErrNotFound)
}

// Authenticate matches a username and password against the roster.
// Plaintext comparison, exactly like the app this replaces; there is
// no session, no hashing, no lockout.
func (a *App) Authenticate(username, password string) (schema.StaffRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, rec := range a.staff {
		if rec.Username != "" && rec.Username == username && rec.Password == password {
			return rec.Clone(), nil
		}
	}
	return schema.StaffRecord{}, ErrBadCredentials
}

// UpdateProfile updates the self-service fields of a roster entry.
func (a *App) UpdateProfile(id, avatarURL, password string) error {
	a.mu.Lock()
	idx := -1
	for i := range a.staff {
		if a.staff[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return fmt.Errorf("staff %s: %w", id, ErrNotFound)
	}
	a.staff[idx].AvatarURL = avatarURL
	if password != "" {
		a.staff[idx].Password = password
	}
	rec := a.staff[idx]
	a.saveStaffLocked()
	a.mu.Unlock()

	a.notify(ChangeEvent{Collection: "employees", Action: "updated", ID: rec.ID, Name: rec.Name})
	return nil
}

// Notify appends a message to a staff member's inbox.
func (a *App) Notify(staffID, message, sender string) error {
	a.mu.Lock()
	idx := -1
	for i := range a.staff {
		if a.staff[i].ID == staffID {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return fmt.Errorf("staff %s: %w", staffID, ErrNotFound)
	}
	a.staff[idx].Notifications = append(a.staff[idx].Notifications, schema.Notification{
		ID:      schema.NewID(),
		Message: message,
		Date:    time.Now(),
		Sender:  sender,
	})
	rec := a.staff[idx]
	a.saveStaffLocked()
	a.mu.Unlock()

	a.notify(ChangeEvent{Collection: "employees", Action: "updated", ID: rec.ID, Name: rec.Name})
	return nil
}

// MarkNotificationRead flags one inbox entry as read.
func (a *App) MarkNotificationRead(staffID, noteID string) error {
	a.mu.Lock()
	for i := range a.staff {
		if a.staff[i].ID != staffID {
			continue
		}
		for j := range a.staff[i].Notifications {
			if a.staff[i].Notifications[j].ID == noteID {
				a.staff[i].Notifications[j].IsRead = true
				a.saveStaffLocked()
				a.mu.Unlock()
				return nil
			}
		}
		a.mu.Unlock()
		return fmt.Errorf("notification %s: %w", noteID, ErrNotFound)
	}
	a.mu.Unlock()
	return fmt.Errorf("staff %s: %w", staffID, ErrNotFound)
}

func (a *App) saveStaffLocked() {
	a.engine.SaveStaff(a.staff)
}

// ----- Reset -----

// FactoryReset empties all three collections and persists the empty
// state. The backing store converges to empty on the next completed
// save per collection.
func (a *App) FactoryReset() {
	a.mu.Lock()
	a.stock = nil
	a.customers = nil
	a.staff = nil
	a.saveStockLocked()
	a.saveCustomersLocked()
	a.saveStaffLocked()
	a.mu.Unlock()

	a.notify(ChangeEvent{Action: "reset"})
}
