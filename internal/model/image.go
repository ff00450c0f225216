package model

import "time"

// Image represents a stored file record in the `images` table. At most
// one image is owned by a user as their profile photo. Replaced photos
// are soft deleted and swept permanently after thirty days.
//
// Fields:
//  ID        – primary key identifier.
//  Link      – storage path of the file relative to the storage root.
//  Size      – file size in bytes.
//  DeletedAt – soft-delete timestamp (nil when the record is live).
//  CreatedAt – timestamp of creation.
type Image struct {
	ID        uint64     // images.id
	Link      string     // images.link
	Size      int64      // images.size
	DeletedAt *time.Time // images.deleted_at (nullable)
	CreatedAt time.Time  // images.created_at
}
