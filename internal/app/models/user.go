package models

// Sender is the public part of a user attached to delivered messages
type Sender struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Presence is the online flag of one user. Last writer wins.
type Presence struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}
