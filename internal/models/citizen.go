package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// CitizenRecord is the persisted demographic record, one per CitizenID.
type CitizenRecord struct {
	UserID    string    `bson:"userId" json:"userId"`
	CitizenID string    `bson:"citizenId" json:"citizenId"`
	Firstname string    `bson:"firstname" json:"firstname"`
	Lastname  string    `bson:"lastname" json:"lastname"`
	Mobile    string    `bson:"mobile,omitempty" json:"mobile"`
	Email     string    `bson:"email,omitempty" json:"email"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitzero"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitzero"`
}

const (
	MaxUserIDLen    = 50
	MaxCitizenIDLen = 13
	MaxNameLen      = 100
	MaxMobileLen    = 10
	MaxEmailLen     = 100
)

// Normalize trims every field in place.
func (c *CitizenRecord) Normalize() {
	c.UserID = strings.TrimSpace(c.UserID)
	c.CitizenID = strings.TrimSpace(c.CitizenID)
	c.Firstname = strings.TrimSpace(c.Firstname)
	c.Lastname = strings.TrimSpace(c.Lastname)
	c.Mobile = strings.TrimSpace(c.Mobile)
	c.Email = strings.TrimSpace(c.Email)
}

// Validate checks required fields and column limits.
func (c CitizenRecord) Validate() error {
	var errs []error

	required := []struct {
		name string
		val  string
	}{
		{"userId", c.UserID},
		{"citizenId", c.CitizenID},
		{"firstname", c.Firstname},
		{"lastname", c.Lastname},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}

	limits := []struct {
		name string
		val  string
		max  int
	}{
		{"userId", c.UserID, MaxUserIDLen},
		{"citizenId", c.CitizenID, MaxCitizenIDLen},
		{"firstname", c.Firstname, MaxNameLen},
		{"lastname", c.Lastname, MaxNameLen},
		{"mobile", c.Mobile, MaxMobileLen},
		{"email", c.Email, MaxEmailLen},
	}
	for _, l := range limits {
		if n := utf8.RuneCountInString(l.val); n > l.max {
			errs = append(errs, fmt.Errorf("%s exceeds %d characters (got %d)", l.name, l.max, n))
		}
	}

	return errors.Join(errs...)
}
