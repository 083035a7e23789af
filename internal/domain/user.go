package domain

import "time"

type User struct {
	ID            int64      `json:"-"`
	PublicID      string     `json:"id"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName,omitempty"`
	Email         string     `json:"email"`
	TaxID         string     `json:"taxId"`
	Phone         string     `json:"phone,omitempty"`
	PostalCode    string     `json:"postalCode,omitempty"`
	Address       string     `json:"address,omitempty"`
	Number        string     `json:"number,omitempty"`
	Complement    string     `json:"complement,omitempty"`
	City          string     `json:"city,omitempty"`
	State         string     `json:"state,omitempty"`
	EmailVerified bool       `json:"emailVerified"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLoginAt   *time.Time `json:"lastLogin,omitempty"`
	DeletedAt     *time.Time `json:"-"`
}

// FullName joins first and last name for display; the pieces are optional.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
