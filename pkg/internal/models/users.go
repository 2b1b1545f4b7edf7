package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	GenderFemale = "F"
	GenderMale   = "M"
	GenderOther  = "O"
)

// MaxRefreshTokens is how many sessions a user may hold, the oldest one is evicted first.
const MaxRefreshTokens = 5

type User struct {
	BaseModel

	Username     string `json:"username" gorm:"uniqueIndex;size:64"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name"`
	Avatar       string `json:"avatar"`
	CoverPhoto   string `json:"cover_photo"`

	Dob       *time.Time                  `json:"dob"`
	Gender    *string                     `json:"gender" gorm:"size:1"`
	Education string                      `json:"education"`
	About     string                      `json:"about"`
	Address   string                      `json:"address"`
	Links     datatypes.JSONSlice[string] `json:"links"`
	Interests datatypes.JSONSlice[string] `json:"interests"`

	IsVerified     bool                        `json:"is_verified"`
	LoginOTP       *string                     `json:"-" gorm:"size:6"`
	LoginExpiresAt *time.Time                  `json:"-"`
	RefreshTokens  datatypes.JSONSlice[string] `json:"-"`

	ResetPasswordOTP       *string    `json:"-" gorm:"size:6"`
	ResetPasswordExpiresAt *time.Time `json:"-"`

	PendingEmail         *string    `json:"-"`
	EmailChangeOTP       *string    `json:"-" gorm:"size:6"`
	EmailChangeExpiresAt *time.Time `json:"-"`
}
