package policy

import "time"

// Policy is a company policy document visible to every user
type Policy struct {
	ID        string
	Title     string
	Content   string
	Category  string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
