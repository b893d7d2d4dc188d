package model

import "time"

// Participant is an exam taker. Participants are identified by email and
// created on the fly when they start their first attempt; there is no
// participant account or password.
type Participant struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
