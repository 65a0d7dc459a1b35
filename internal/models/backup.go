package models

import "time"

const (
	BackupTypeDatabase = "database"

	BackupStatusInProgress = "in_progress"
	BackupStatusCompleted  = "completed"
	BackupStatusFailed     = "failed"
)

type Backup struct {
	ID          int64
	Filename    string
	FilePath    string
	BackupType  string
	Status      string
	Size        *int64
	CreatedBy   *string
	IsAutomatic bool
	CreatedAt   time.Time
}

// BackupFile describes a dump file present in the backup directory.
type BackupFile struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
	Size int64     `json:"size"`
}

// Stats holds the admin dashboard counters.
type Stats struct {
	Users   int64 `json:"users"`
	Files   int64 `json:"files"`
	Backups int64 `json:"backups"`
}
