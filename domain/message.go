package domain

import "time"

// Message is one chat entry in a team's stream. Messages are immutable once
// created and retrieved newest-first.
type Message struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TeamID    string    `gorm:"size:36;not null;index:idx_messages_team_created" json:"teamId"`
	AuthorID  string    `gorm:"size:36;not null" json:"authorId"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	Content   string    `gorm:"size:5000;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_messages_team_created" json:"createdAt"`
}

// Team implements TeamScoped so message events route to the right sessions.
func (m Message) Team() string { return m.TeamID }
