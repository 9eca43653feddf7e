package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tripbot/tripbot/internal/metrics"
	"github.com/tripbot/tripbot/internal/models"
)

// Trigger schedules a snapshot publish after a mutation. It must be
// non-blocking; the store calls it outside its own lock.
type Trigger interface {
	Trigger()
}

// Store is the single in-process authority over the trip's mutable state:
// items, members, budget ledger, trip metadata and sync configuration. Every
// mutating operation is serialized behind one mutex, persisted as a full
// JSON document, and followed by a sync trigger where the change is trip
// content worth mirroring.
type Store struct {
	mu      sync.Mutex
	path    string
	logger  *logrus.Logger
	trigger Trigger

	trip           *models.Trip
	members        map[string]*models.Member
	items          []models.Item
	nextItemID     int
	venuePageIndex int
	ledger         []models.BudgetEntry
	syncCfg        models.SyncConfig
}

// New creates an empty store bound to the given state file. Call Load to
// read persisted state before use.
func New(path string, logger *logrus.Logger) *Store {
	s := &Store{
		path:   path,
		logger: logger,
	}
	s.resetLocked()
	return s
}

// SetSyncTrigger wires the sync trigger invoked after content mutations. It
// is set once during startup, after the syncer is constructed.
func (s *Store) SetSyncTrigger(t Trigger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trigger = t
}

// resetLocked initializes default empty state: new untracked trip, empty
// collections, id counter at 1.
func (s *Store) resetLocked() {
	s.trip = models.NewTrip()
	s.members = make(map[string]*models.Member)
	s.items = nil
	s.nextItemID = 1
	s.venuePageIndex = 0
	s.ledger = nil
	s.syncCfg = models.DefaultSyncConfig()
}

// persistedState is the on-disk layout: one JSON document per trip, written
// in full after every mutating operation.
type persistedState struct {
	Trip                 *models.Trip              `json:"trip"`
	Members              map[string]*models.Member `json:"members"`
	Items                []json.RawMessage         `json:"items"`
	NextItemID           int                       `json:"next_item_id"`
	VenuePaginationIndex int                       `json:"venue_pagination_index"`
	BudgetLedger         []models.BudgetEntry      `json:"budget_ledger"`
	SyncConfig           models.SyncConfig         `json:"sync_config"`
}

// Load reads the persisted state file. On any failure (missing file,
// corrupt JSON, unreadable records) it falls back to fresh default state
// instead of returning an error: persistence corruption must never take the
// process down.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warn("Failed to read state file, starting fresh")
		}
		s.resetLocked()
		return
	}

	var ps persistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		s.logger.WithError(err).Warn("State file is corrupt, starting fresh")
		s.resetLocked()
		return
	}

	items, err := models.DecodeItems(ps.Items)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to decode stored items, starting fresh")
		s.resetLocked()
		return
	}

	s.trip = ps.Trip
	s.members = ps.Members
	if s.members == nil {
		s.members = make(map[string]*models.Member)
	}
	s.items = items
	s.nextItemID = ps.NextItemID
	if s.nextItemID < 1 {
		s.nextItemID = 1
	}
	s.venuePageIndex = ps.VenuePaginationIndex
	if s.venuePageIndex < 0 {
		s.venuePageIndex = 0
	}
	s.ledger = ps.BudgetLedger
	s.syncCfg = ps.SyncConfig
	if s.syncCfg.LastSyncStatus == "" {
		s.syncCfg.LastSyncStatus = models.SyncStatusNever
	}

	s.logger.WithFields(logrus.Fields{
		"items":   len(s.items),
		"members": len(s.members),
		"next_id": s.nextItemID,
	}).Info("Loaded travel state")
}

// saveLocked serializes the full current state and writes it through a temp
// file + rename, so a concurrent reader of the path never observes a
// half-written document. Write failures are logged and swallowed: losing one
// save must not abort the user-facing operation that caused it.
func (s *Store) saveLocked() {
	raws, err := models.EncodeItems(s.items)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode items for save")
		metrics.StateSaveFailures.Inc()
		return
	}

	ps := persistedState{
		Trip:                 s.trip,
		Members:              s.members,
		Items:                raws,
		NextItemID:           s.nextItemID,
		VenuePaginationIndex: s.venuePageIndex,
		BudgetLedger:         s.ledger,
		SyncConfig:           s.syncCfg,
	}

	data, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal state")
		metrics.StateSaveFailures.Inc()
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.WithError(err).Error("Failed to write state file")
		metrics.StateSaveFailures.Inc()
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.WithError(err).Error("Failed to replace state file")
		metrics.StateSaveFailures.Inc()
		_ = os.Remove(tmp)
		return
	}
	metrics.StateSaves.Inc()
}

// Path returns the state file path
func (s *Store) Path() string {
	return filepath.Clean(s.path)
}

// scheduleSync fires the sync trigger, if one is wired. Called after the
// store's lock has been released.
func (s *Store) scheduleSync() {
	s.mu.Lock()
	t := s.trigger
	s.mu.Unlock()
	if t != nil {
		t.Trigger()
	}
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// AddItem assigns the next unused id to the item, appends it, persists and
// schedules a sync. The stored item is returned with its assigned id.
func (s *Store) AddItem(it models.Item) models.Item {
	s.mu.Lock()
	meta := it.Meta()
	meta.ID = s.nextItemID
	s.nextItemID++
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}
	if meta.CreatedBy == "" {
		meta.CreatedBy = "system"
	}
	s.items = append(s.items, it)
	s.saveLocked()
	s.mu.Unlock()

	metrics.StoreMutations.WithLabelValues("add_item").Inc()
	s.scheduleSync()
	return it
}

// DeleteItem removes the item with the given id. It reports whether an item
// was found and removed; ids are never reused afterwards.
func (s *Store) DeleteItem(id int) bool {
	s.mu.Lock()
	idx := -1
	for i, it := range s.items {
		if it.Meta().ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.saveLocked()
	s.mu.Unlock()

	metrics.StoreMutations.WithLabelValues("delete_item").Inc()
	s.scheduleSync()
	return true
}

// ItemByID returns the item with the given id, or nil
func (s *Store) ItemByID(id int) models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemByIDLocked(id)
}

func (s *Store) itemByIDLocked(id int) models.Item {
	for _, it := range s.items {
		if it.Meta().ID == id {
			return it
		}
	}
	return nil
}

// Items returns all items in insertion order
func (s *Store) Items() []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Item, len(s.items))
	copy(out, s.items)
	return out
}

// FindByURL returns the first item saved from the given URL, or nil. Used
// for duplicate detection when links are pasted in chat.
func (s *Store) FindByURL(url string) models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.Meta().URL == url {
			return it
		}
	}
	return nil
}

// Venues returns all venue items in insertion order
func (s *Store) Venues() []*models.Venue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.venuesLocked()
}

func (s *Store) venuesLocked() []*models.Venue {
	var out []*models.Venue
	for _, it := range s.items {
		if v, ok := it.(*models.Venue); ok {
			out = append(out, v)
		}
	}
	return out
}

// Documents returns all document items in insertion order
func (s *Store) Documents() []*models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Document
	for _, it := range s.items {
		if d, ok := it.(*models.Document); ok {
			out = append(out, d)
		}
	}
	return out
}

// Flights returns all flight items in insertion order
func (s *Store) Flights() []*models.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Flight
	for _, it := range s.items {
		if f, ok := it.(*models.Flight); ok {
			out = append(out, f)
		}
	}
	return out
}

// OfficialItems returns all items flagged official, in insertion order
func (s *Store) OfficialItems() []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Item
	for _, it := range s.items {
		if it.Meta().IsOfficial {
			out = append(out, it)
		}
	}
	return out
}

// OfficialDocuments returns all official documents, in insertion order
func (s *Store) OfficialDocuments() []*models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Document
	for _, it := range s.items {
		if d, ok := it.(*models.Document); ok && d.IsOfficial {
			out = append(out, d)
		}
	}
	return out
}

// MarkOfficial flags the given items as official. Accommodation-class items
// (venues and airbnb/vrbo documents) are mutually exclusive: marking one
// un-marks any previously official accommodation, except items being marked
// in the same batch. The operation never rejects an invariant conflict, it
// resolves it by adjusting the other items' flags. Returns the items marked
// and the ids that were not found.
func (s *Store) MarkOfficial(ids ...int) (marked []models.Item, notFound []int) {
	batch := make(map[int]bool, len(ids))
	for _, id := range ids {
		batch[id] = true
	}

	s.mu.Lock()
	for _, id := range ids {
		it := s.itemByIDLocked(id)
		if it == nil {
			notFound = append(notFound, id)
			continue
		}

		if models.IsAccommodation(it) {
			for _, other := range s.items {
				if batch[other.Meta().ID] {
					continue
				}
				if models.IsAccommodation(other) && other.Meta().IsOfficial {
					other.Meta().IsOfficial = false
					s.logger.WithField("item_id", other.Meta().ID).
						Info("Un-marked previous official accommodation")
				}
			}
		}

		it.Meta().IsOfficial = true
		marked = append(marked, it)
	}

	if len(marked) > 0 {
		s.saveLocked()
	}
	s.mu.Unlock()

	if len(marked) > 0 {
		metrics.StoreMutations.WithLabelValues("mark_official").Inc()
		s.scheduleSync()
	}
	return marked, notFound
}

// UnmarkOfficial clears the official flag on one item. Returns false when no
// such item exists.
func (s *Store) UnmarkOfficial(id int) bool {
	s.mu.Lock()
	it := s.itemByIDLocked(id)
	if it == nil {
		s.mu.Unlock()
		return false
	}
	it.Meta().IsOfficial = false
	s.saveLocked()
	s.mu.Unlock()

	metrics.StoreMutations.WithLabelValues("unmark_official").Inc()
	s.scheduleSync()
	return true
}

// AddComment appends a comment to the item with the given id. Returns the
// item, or nil when it does not exist.
func (s *Store) AddComment(id int, user, text string) models.Item {
	s.mu.Lock()
	it := s.itemByIDLocked(id)
	if it == nil {
		s.mu.Unlock()
		return nil
	}
	it.Meta().AddComment(user, text)
	s.saveLocked()
	s.mu.Unlock()

	metrics.StoreMutations.WithLabelValues("add_comment").Inc()
	s.scheduleSync()
	return it
}

// clearItems removes all items matching the predicate and persists. Bulk
// resets are maintenance, not trip content changes, so no sync is scheduled;
// the next content mutation publishes the cleared state.
func (s *Store) clearItems(op string, drop func(models.Item) bool) int {
	s.mu.Lock()
	kept := s.items[:0]
	removed := 0
	for _, it := range s.items {
		if drop(it) {
			removed++
		} else {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.saveLocked()
	s.mu.Unlock()

	metrics.StoreMutations.WithLabelValues(op).Inc()
	return removed
}

// ClearVenues removes all venues and returns how many were removed
func (s *Store) ClearVenues() int {
	return s.clearItems("clear_venues", func(it models.Item) bool {
		_, ok := it.(*models.Venue)
		return ok
	})
}

// ClearFlights removes all flights and returns how many were removed
func (s *Store) ClearFlights() int {
	return s.clearItems("clear_flights", func(it models.Item) bool {
		_, ok := it.(*models.Flight)
		return ok
	})
}

// ClearDocuments removes all documents and returns how many were removed
func (s *Store) ClearDocuments() int {
	return s.clearItems("clear_documents", func(it models.Item) bool {
		_, ok := it.(*models.Document)
		return ok
	})
}

// ---------------------------------------------------------------------------
// Venue pagination
// ---------------------------------------------------------------------------

// NextVenuePage returns the next window of venues for paged browsing. The
// cursor advances past the returned window. Once the cursor would expose no
// further venues it is reset to 0 rather than clamped, signaling "seen all", and
// wrapped is true with an empty page.
func (s *Store) NextVenuePage(size int) (page []*models.Venue, start, total int, wrapped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	venues := s.venuesLocked()
	total = len(venues)
	if total == 0 {
		return nil, 0, 0, false
	}

	start = s.venuePageIndex
	if start < 0 {
		start = 0
	}
	if start >= total {
		s.venuePageIndex = 0
		s.saveLocked()
		return nil, 0, total, true
	}

	end := start + size
	if end > total {
		end = total
	}
	page = venues[start:end]
	s.venuePageIndex = end
	s.saveLocked()
	return page, start, total, false
}

// SetVenuePageIndex positions the pagination cursor, used after a fresh
// search has already shown the first page inline.
func (s *Store) SetVenuePageIndex(idx int) {
	s.mu.Lock()
	if idx < 0 {
		idx = 0
	}
	s.venuePageIndex = idx
	s.saveLocked()
	s.mu.Unlock()
}

// VenuePageIndex returns the current pagination cursor
func (s *Store) VenuePageIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.venuePageIndex
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

// GetOrCreateMember returns a copy of the named member, creating the record
// first when it does not exist yet.
func (s *Store) GetOrCreateMember(name string) models.Member {
	s.mu.Lock()
	m, ok := s.members[name]
	if !ok {
		m = &models.Member{Name: name}
		s.members[name] = m
		s.saveLocked()
		s.logger.WithField("member", name).Info("Created trip member")
	}
	out := *m
	s.mu.Unlock()

	if !ok {
		metrics.StoreMutations.WithLabelValues("create_member").Inc()
	}
	return out
}

// UpdateMember applies fn to the named member under the store lock, creating
// the member first if needed, then persists.
func (s *Store) UpdateMember(name string, fn func(*models.Member)) models.Member {
	s.mu.Lock()
	m, ok := s.members[name]
	if !ok {
		m = &models.Member{Name: name}
		s.members[name] = m
	}
	fn(m)
	s.saveLocked()
	out := *m
	s.mu.Unlock()

	metrics.StoreMutations.WithLabelValues("update_member").Inc()
	return out
}

// Members returns a copy of the member map
func (s *Store) Members() map[string]models.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.Member, len(s.members))
	for name, m := range s.members {
		out[name] = *m
	}
	return out
}

// TotalMemberBudget sums all members' personal budgets
func (s *Store) TotalMemberBudget() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, m := range s.members {
		if m.Budget != nil {
			total += *m.Budget
		}
	}
	return total
}

// ---------------------------------------------------------------------------
// Budget ledger
// ---------------------------------------------------------------------------

// AddBudgetEntry appends an entry to the ledger, persists and schedules a
// sync. The ledger is append-only; entries are never mutated or removed.
// Amount validation happens at the handler boundary.
func (s *Store) AddBudgetEntry(entry models.BudgetEntry) {
	s.mu.Lock()
	s.ledger = append(s.ledger, entry)
	s.saveLocked()
	s.mu.Unlock()

	metrics.StoreMutations.WithLabelValues("add_budget_entry").Inc()
	s.scheduleSync()
}

// Ledger returns a copy of the budget ledger in insertion order
func (s *Store) Ledger() []models.BudgetEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BudgetEntry, len(s.ledger))
	copy(out, s.ledger)
	return out
}

// TotalSpent sums all ledger entries' amounts
func (s *Store) TotalSpent() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSpentLocked()
}

func (s *Store) totalSpentLocked() float64 {
	var total float64
	for _, e := range s.ledger {
		total += e.Amount
	}
	return total
}

// ---------------------------------------------------------------------------
// Trip
// ---------------------------------------------------------------------------

// Trip returns a copy of the trip and whether one has been created yet
func (s *Store) Trip() (models.Trip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trip == nil {
		return models.Trip{}, false
	}
	return *s.trip, true
}

// UpdateTrip applies fn to the trip under the store lock, creating the trip
// with defaults first when none exists, then persists.
func (s *Store) UpdateTrip(fn func(*models.Trip)) models.Trip {
	s.mu.Lock()
	if s.trip == nil {
		s.trip = models.NewTrip()
	}
	fn(s.trip)
	s.saveLocked()
	out := *s.trip
	s.mu.Unlock()

	metrics.StoreMutations.WithLabelValues("update_trip").Inc()
	return out
}

// ---------------------------------------------------------------------------
// Sync configuration
// ---------------------------------------------------------------------------

// SyncConfig returns a copy of the sync configuration
func (s *Store) SyncConfig() models.SyncConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncCfg
}

// UpdateSyncConfig applies fn to the sync configuration and persists
func (s *Store) UpdateSyncConfig(fn func(*models.SyncConfig)) models.SyncConfig {
	s.mu.Lock()
	fn(&s.syncCfg)
	s.saveLocked()
	out := s.syncCfg
	s.mu.Unlock()
	return out
}

// SetSyncStatus records the publish outcome and persists it. Terminal
// states also stamp the last-sync time.
func (s *Store) SetSyncStatus(status models.SyncStatus) {
	s.mu.Lock()
	s.syncCfg.LastSyncStatus = status
	if status == models.SyncStatusSuccess || status == models.SyncStatusFailed {
		s.syncCfg.LastSyncAt = time.Now().Format(time.RFC3339)
	}
	s.saveLocked()
	s.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns current item counts
func (s *Store) Stats() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

func (s *Store) statsLocked() models.Stats {
	st := models.Stats{TotalItems: len(s.items)}
	for _, it := range s.items {
		switch it.(type) {
		case *models.Venue:
			st.Venues++
		case *models.Flight:
			st.Flights++
		case *models.Document:
			st.Documents++
		}
		if it.Meta().IsOfficial {
			st.Official++
		}
	}
	return st
}
