package entity

import "time"

// Recipient is one entry of an eligibility snapshot.
type Recipient struct {
	Address     string
	DisplayName string
}

// Snapshot is a frozen list of addresses judged eligible under some external
// rule at the time it was taken. Immutable once taken; re-snapshotting
// replaces it wholesale.
type Snapshot struct {
	Id         string
	Rule       string
	Recipients []Recipient
	TakenAt    time.Time
}
