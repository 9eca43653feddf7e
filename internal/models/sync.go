package models

// SyncStatus is the outcome of the most recent snapshot publish.
// Transitions: never -> in_progress -> {success, failed}; from success or
// failed the next trigger moves back to in_progress.
type SyncStatus string

const (
	SyncStatusNever      SyncStatus = "never"
	SyncStatusInProgress SyncStatus = "in_progress"
	SyncStatusSuccess    SyncStatus = "success"
	SyncStatusFailed     SyncStatus = "failed"
)

// SyncConfig controls mirroring of trip state into an external document
type SyncConfig struct {
	Enabled        bool       `json:"enabled"`
	DocURL         string     `json:"doc_url,omitempty"`
	LastSyncAt     string     `json:"last_sync_at,omitempty"`
	LastSyncStatus SyncStatus `json:"last_sync_status"`
}

// DefaultSyncConfig returns a disabled sync configuration
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{LastSyncStatus: SyncStatusNever}
}
