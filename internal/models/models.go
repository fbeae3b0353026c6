package models

type User struct {
	ID           uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string      `gorm:"unique;not null"          json:"username"`
	Email        string      `gorm:"unique;not null"          json:"email"`
	PasswordHash string      `gorm:"not null"                 json:"-"`
	SavedBooks   []SavedBook `gorm:"foreignKey:UserID"        json:"saved_books"`
}

// SavedBook is one catalog entry a user saved to their list. BookID is the
// catalog's volume id, the rest is a denormalized copy of the volume data at
// the time it was saved.
type SavedBook struct {
	ID          uint     `gorm:"primaryKey"                           json:"id"`
	UserID      uint     `gorm:"index;not null;uniqueIndex:idx_user_book" json:"user_id"`
	BookID      string   `gorm:"not null;uniqueIndex:idx_user_book"   json:"book_id"`
	Title       string   `gorm:"not null"                             json:"title"`
	Authors     []string `gorm:"serializer:json"                      json:"authors"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Link        string   `json:"link"`
}

// Volume mirrors the shape of a catalog search hit as the upstream book API
// returns it: an id plus nested volume info.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

type VolumeInfo struct {
	Title       string     `json:"title"`
	Authors     []string   `json:"authors"`
	Description string     `json:"description"`
	ImageLinks  ImageLinks `json:"imageLinks"`
	Link        string     `json:"link"`
}

type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}
