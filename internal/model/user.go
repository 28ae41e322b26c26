package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account in the credential store.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:30;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role      `json:"role" gorm:"type:varchar(10);not null;default:'user'"`
	IsActive     bool      `json:"isActive" gorm:"not null;index"`
	LastActive   time.Time `json:"lastActive" gorm:"column:last_active_at;index"`
	APIUsage     APIUsage  `json:"apiUsage" gorm:"embedded;embeddedPrefix:usage_"`
	Profile      Profile   `json:"profile" gorm:"embedded;embeddedPrefix:profile_"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// APIUsage holds the per-user request counters.
type APIUsage struct {
	TotalRequests   int64     `json:"totalRequests" gorm:"not null;default:0"`
	DailyRequests   int64     `json:"dailyRequests" gorm:"not null;default:0"`
	LastRequestDate time.Time `json:"lastRequestDate" gorm:"column:last_request_at"`
}

// Profile is the optional descriptive part of a user.
type Profile struct {
	FirstName string `json:"firstName,omitempty" gorm:"size:100"`
	LastName  string `json:"lastName,omitempty" gorm:"size:100"`
	Avatar    string `json:"avatar,omitempty" gorm:"size:500"`
	Bio       string `json:"bio,omitempty" gorm:"size:1000"`
	Website   string `json:"website,omitempty" gorm:"size:500"`
	Location  string `json:"location,omitempty" gorm:"size:255"`
}

// BeforeCreate sets UUID and initial timestamps before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	now := time.Now()
	if u.LastActive.IsZero() {
		u.LastActive = now
	}
	if u.APIUsage.LastRequestDate.IsZero() {
		u.APIUsage.LastRequestDate = now
	}
	return nil
}

// FullName returns "first last" when both names are known and the username otherwise.
func (u *User) FullName() string {
	if u.Profile.FirstName != "" && u.Profile.LastName != "" {
		return u.Profile.FirstName + " " + u.Profile.LastName
	}
	return u.Username
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Record accounts one request made at now. The daily counter starts over the first
// time a request lands on a calendar day different from the previous one, compared
// in now's location.
func (a *APIUsage) Record(now time.Time) {
	a.TotalRequests++
	if !SameDay(a.LastRequestDate, now) {
		a.DailyRequests = 0
	}
	a.DailyRequests++
	a.LastRequestDate = now
}

// SameDay reports whether a and b fall on the same calendar date in b's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
