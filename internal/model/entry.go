package model

import (
	"strings"
	"time"
)

// Entry is the persisted form of an accepted Record. Multi-valued contact
// fields are stored as comma-joined strings; uniqueness on website/name is a
// soft invariant enforced by pre-insert lookup plus the cleanup pass.
type Entry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Website     string    `json:"website,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EntryFromRecord flattens an accepted Record into its persisted shape.
func EntryFromRecord(r *Record) Entry {
	return Entry{
		Name:        r.Name,
		Website:     r.Website,
		Email:       strings.Join(r.Emails, ", "),
		Phone:       strings.Join(r.Phones, ", "),
		Address:     strings.Join(r.Addresses, ", "),
		Category:    r.Category,
		Description: r.Description,
	}
}

// PopulatedFields counts the non-empty fields considered by the duplicate
// cleanup pass when choosing which entry in a group survives.
func (e Entry) PopulatedFields() int {
	n := 0
	for _, v := range []string{e.Name, e.Email, e.Phone, e.Description, e.Category} {
		if v != "" {
			n++
		}
	}
	return n
}

// CleanupPlan describes the changes a duplicate maintenance pass wants to
// apply: entries to delete and survivor website rewrites. A store applies
// the whole plan in one transaction, or none of it.
type CleanupPlan struct {
	DeleteIDs []string
	Renames   map[string]string // entry ID → cleaned website
}

// Empty reports whether the plan contains no work.
func (p CleanupPlan) Empty() bool {
	return len(p.DeleteIDs) == 0 && len(p.Renames) == 0
}
