package models

import (
	"time"

	"github.com/google/uuid"
)

// Folder groups stored files under a single owner. Ownership of a file is
// transitive through its folder.
type Folder struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OwnerID   uuid.UUID `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Folder model
func (Folder) TableName() string {
	return "folders"
}

// FileRecord describes a stored file. The gateway reads files and folders but
// never mutates them; upload and management flows live outside this service.
type FileRecord struct {
	ID           uuid.UUID `json:"id" db:"id"`
	FolderID     uuid.UUID `json:"folder_id" db:"folder_id"`
	StorageKey   string    `json:"-" db:"storage_key"` // object-storage key, never exposed
	MimeType     string    `json:"mime_type" db:"mime_type"`
	Size         int64     `json:"size" db:"size"`
	OriginalName string    `json:"original_name" db:"original_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Folder is the owning folder, populated when fetched for an access check.
	Folder *Folder `json:"-" db:"-"`
}

// TableName returns the table name for the FileRecord model
func (FileRecord) TableName() string {
	return "files"
}

// OwnedBy reports whether the file's owning folder belongs to the given user.
func (f *FileRecord) OwnedBy(userID uuid.UUID) bool {
	return f.Folder != nil && f.Folder.OwnerID == userID
}
