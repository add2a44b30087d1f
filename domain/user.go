package domain

// User is the public summary of an account, embedded in tasks and messages.
// Account lifecycle (credentials, sessions) is owned by the auth layer.
type User struct {
	ID    string  `gorm:"primaryKey;size:36" json:"id"`
	Name  *string `gorm:"size:100" json:"name"`
	Email string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
}
