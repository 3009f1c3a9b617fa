package domain

import "time"

// Owner holds one or more accounts.
type Owner struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
