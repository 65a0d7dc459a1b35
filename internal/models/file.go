package models

import "time"

const (
	FileStatusPending  = "Pending"
	FileStatusApproved = "Approved"
)

type File struct {
	ID           int64
	UserID       *string // nil once the uploader has been deleted
	OriginalName string
	StorageName  string
	StoragePath  string
	Size         int64
	Status       string
	UploadDate   time.Time
}

// UserFile is a row of the caller's own file listing.
type UserFile struct {
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminFile is a row of the admin file listing, joined with the uploader.
type AdminFile struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"file_size"`
	Status     string    `json:"status"`
	UploadDate time.Time `json:"upload_date"`
	UploadedBy *string   `json:"uploaded_by"`
}
