package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ecommercejockey/jockey/pkg/models"
)

const (
	StateVersion     = "1.0"
	DefaultStateFile = "output/.jockey-state.json"
)

// HistoryEntry represents a single action in the history
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"` // import, link, calculate, push, etc.
	Source    string    `json:"source"` // premier, sema, shopify
	Count     int       `json:"count"`  // Number of records affected
	Details   string    `json:"details"`
}

// PushRecord records what was last pushed to Shopify for one record
type PushRecord struct {
	Fingerprint string    `json:"fingerprint"`
	ShopifyID   int64     `json:"shopify_id,omitempty"`
	PushedAt    time.Time `json:"pushed_at"`
}

// StateFile represents the state file structure
type StateFile struct {
	Version     string                `json:"version"`
	Products    map[string]PushRecord `json:"products"`    // Keyed by SKU
	Collections map[string]PushRecord `json:"collections"` // Keyed by title
	History     []HistoryEntry        `json:"history"`
	LastUpdated time.Time             `json:"last_updated"`
}

// Store tracks push state so unchanged records can be skipped
type Store struct {
	mu       sync.RWMutex
	filePath string
	state    *StateFile
}

// NewStore creates a new state store
func NewStore(filePath string) *Store {
	if filePath == "" {
		filePath = DefaultStateFile
	}

	return &Store{
		filePath: filePath,
		state:    emptyState(),
	}
}

func emptyState() *StateFile {
	return &StateFile{
		Version:     StateVersion,
		Products:    make(map[string]PushRecord),
		Collections: make(map[string]PushRecord),
		History:     []HistoryEntry{},
	}
}

// Load reads the state from disk
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.state = emptyState()
			return nil
		}
		return err
	}

	var state StateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}
	if state.Products == nil {
		state.Products = make(map[string]PushRecord)
	}
	if state.Collections == nil {
		state.Collections = make(map[string]PushRecord)
	}
	s.state = &state

	return nil
}

// Save writes the state to disk
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveInternal()
}

// saveInternal saves without acquiring lock (for internal use)
func (s *Store) saveInternal() error {
	s.state.LastUpdated = time.Now()

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.filePath, data, 0644)
}

// ProductNeedsPush reports whether a product differs from what was last
// pushed. Products that were never pushed always need a push.
func (s *Store) ProductNeedsPush(product *models.ShopifyProduct) bool {
	sku := productKey(product)
	if sku == "" {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.state.Products[sku]
	if !exists {
		return true
	}
	return record.Fingerprint != FingerprintProduct(product)
}

// MarkProductPushed records the pushed state of a product
func (s *Store) MarkProductPushed(product *models.ShopifyProduct) {
	sku := productKey(product)
	if sku == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Products[sku] = PushRecord{
		Fingerprint: FingerprintProduct(product),
		ShopifyID:   product.ProductID,
		PushedAt:    time.Now(),
	}
}

// CollectionNeedsPush reports whether a collection differs from what was
// last pushed
func (s *Store) CollectionNeedsPush(collection *models.ShopifyCollection) bool {
	if collection.Title == "" {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.state.Collections[collection.Title]
	if !exists {
		return true
	}
	return record.Fingerprint != FingerprintCollection(collection)
}

// MarkCollectionPushed records the pushed state of a collection
func (s *Store) MarkCollectionPushed(collection *models.ShopifyCollection) {
	if collection.Title == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Collections[collection.Title] = PushRecord{
		Fingerprint: FingerprintCollection(collection),
		ShopifyID:   collection.CollectionID,
		PushedAt:    time.Now(),
	}
}

// LastPush returns the push record for a SKU
func (s *Store) LastPush(sku string) (PushRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.state.Products[sku]
	return record, exists
}

// Count returns the number of tracked products and collections
func (s *Store) Count() (products int, collections int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Products), len(s.state.Collections)
}

// Clear removes all tracked push records
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Products = make(map[string]PushRecord)
	s.state.Collections = make(map[string]PushRecord)
}

// AddHistory adds an entry to the history
func (s *Store) AddHistory(action, source string, count int, details string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.History = append(s.state.History, HistoryEntry{
		Timestamp: time.Now(),
		Action:    action,
		Source:    source,
		Count:     count,
		Details:   details,
	})
}

// GetHistory returns the history entries
func (s *Store) GetHistory() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]HistoryEntry, len(s.state.History))
	copy(history, s.state.History)
	return history
}

// GetRecentHistory returns the last N history entries
func (s *Store) GetRecentHistory(n int) []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n >= len(s.state.History) {
		history := make([]HistoryEntry, len(s.state.History))
		copy(history, s.state.History)
		return history
	}

	start := len(s.state.History) - n
	history := make([]HistoryEntry, n)
	copy(history, s.state.History[start:])
	return history
}

func productKey(product *models.ShopifyProduct) string {
	if v := product.FirstVariant(); v != nil {
		return v.SKU
	}
	return ""
}

// FingerprintProduct produces a stable digest of the fields pushed to
// Shopify for a product
func FingerprintProduct(product *models.ShopifyProduct) string {
	return fingerprint(product)
}

// FingerprintCollection produces a stable digest of the fields pushed to
// Shopify for a collection
func FingerprintCollection(collection *models.ShopifyCollection) string {
	// The parent pointer would make the digest depend on sibling state
	trimmed := *collection
	trimmed.Parent = nil
	return fingerprint(&trimmed)
}

func fingerprint(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultStore is the global state store
var DefaultStore = NewStore("")

// Load loads the default store
func Load() error {
	return DefaultStore.Load()
}

// Save saves the default store
func Save() error {
	return DefaultStore.Save()
}
