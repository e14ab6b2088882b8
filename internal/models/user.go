package models

// User represents a registered account. AuthToken holds the active session
// token; nil means logged out.
type User struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	FirstName     string  `json:"firstName" gorm:"size:64;not null" validate:"required,min=1,max=64"`
	LastName      string  `json:"lastName" gorm:"size:64;not null" validate:"required,min=1,max=64"`
	Email         string  `json:"email" gorm:"size:256;uniqueIndex:idx_users_email;not null" validate:"required,email,max=256"`
	Password      string  `json:"-" gorm:"size:256;not null" validate:"required,min=6,max=64"` // bcrypt hash once stored
	ImageFilename *string `json:"-" gorm:"size:64"`
	AuthToken     *string `json:"-" gorm:"size:512;index:idx_users_auth_token"`
}

func (User) TableName() string { return "users" }

// UserView is the public projection of a user. Email is only filled in when
// the viewer is the user themself.
type UserView struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
}

// Session is returned by a successful login.
type Session struct {
	UserID uint   `json:"userId"`
	Token  string `json:"token"`
}
