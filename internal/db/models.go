package db

import (
	"time"
)

// User is the credential and identity record. ID is supplied by the client at
// registration time and is never generated by the database.
//
// Age is derived from BirthDate on every read and write (see AgeAt); the stored
// column only mirrors the last computed value.
type User struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	PasswordHash string     `gorm:"column:password;size:255;not null" json:"-"`
	Gender       string     `gorm:"size:32" json:"gender"`
	BirthDate    *time.Time `json:"birth_date"`
	Preferences  string     `gorm:"size:255" json:"preferences"`
	Location     string     `gorm:"size:255" json:"location"`
	Age          int        `json:"age"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"-"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"-"`
}

// RefreshAge recomputes Age from BirthDate relative to now.
func (u *User) RefreshAge(now time.Time) {
	if u.BirthDate == nil {
		u.Age = 0
		return
	}
	u.Age = AgeAt(*u.BirthDate, now)
}

// AgeAt returns completed years between birth and now. The birthday itself
// counts: 2000-05-20 is 23 on 2024-05-19 and 24 on 2024-05-20.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// Profile extends a user one-to-one.
type Profile struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64    `gorm:"uniqueIndex;not null" json:"user_id"`
	Photo       []byte    `json:"-"`
	Description string    `gorm:"type:text" json:"description"`
	Interests   string    `gorm:"type:text" json:"interests"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"-"`
}

// Admin marks a user as administrator. IsBlocked lives here rather than on
// User, so only admins can be blocked.
type Admin struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64 `gorm:"uniqueIndex;not null" json:"user_id"`
	IsBlocked bool   `gorm:"not null;default:false" json:"is_blocked"`
}

// Match is a directed like edge UserID -> LikedUserID.
//
// Indexes:
//   - idx_match_pair(user_id, liked_user_id) UNIQUE
//     One row per ordered pair; also serves the O(1) reverse-edge lookup.
//   - idx_match_liked(liked_user_id)
//     Cleanup of edges pointing at a deleted user.
//
// A mutual match is never stored: it exists iff both directions exist.
type Match struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:1" json:"user_id"`
	LikedUserID uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:2;index:idx_match_liked" json:"liked_user_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Message is a directed text message. The body is stored in the "message"
// column and exposed as "content".
type Message struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID   uint64    `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint64    `gorm:"not null;index" json:"receiver_id"`
	Content    string    `gorm:"column:message;type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Models lists every table in migration order.
func Models() []any {
	return []any{&User{}, &Profile{}, &Admin{}, &Match{}, &Message{}}
}
