package domain

import (
	"fmt"
	"strings"
)

type Address struct {
	FullName    string `json:"full_name,omitempty"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	StateCode   string `json:"state_code,omitempty"`
	CountryCode string `json:"country_code"`
	PostalCode  string `json:"postal_code"`
}

func (a *Address) Valid() bool {
	return a != nil && a.FullName != "" && a.Address1 != "" && a.City != "" &&
		a.CountryCode != "" && a.PostalCode != ""
}

// IsBlank reports an address that was created as a placeholder and never filled in.
func (a *Address) IsBlank() bool {
	return a == nil || (a.Address1 == "" && a.City == "" && a.CountryCode == "" && a.PostalCode == "")
}

// User is the host application's buyer, as seen by orders.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	FullName  string

	BillingAddress  *Address
	ShippingAddress *Address
}

func (u *User) Valid() bool {
	return u != nil && u.ID != "" && u.Email != ""
}

// DisplayName falls back from full name to first/last name, email and finally the id.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	return fmt.Sprintf("User %s", u.ID)
}
