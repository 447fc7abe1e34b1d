package models

import "time"

// Address is one postal address embedded in a person record.
type Address struct {
	PostalCode string `json:"postal_code,omitempty"`
	Street     string `json:"street,omitempty"`
	Number     string `json:"number,omitempty"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Person is the natural or legal person behind a party. Scalar fields are
// copied verbatim from the raw payload; the two dates are parsed only when
// present.
type Person struct {
	Type            string     `json:"type,omitempty"`
	PrimaryDocument string     `json:"primary_document,omitempty"`
	Name            string     `json:"name,omitempty"`
	FatherName      string     `json:"father_name,omitempty"`
	MotherName      string     `json:"mother_name,omitempty"`
	BirthDate       *time.Time `json:"birth_date,omitempty"`
	DeathDate       *time.Time `json:"death_date,omitempty"`
	Sex             string     `json:"sex,omitempty"`
	BirthCity       string     `json:"birth_city,omitempty"`
	BirthState      string     `json:"birth_state,omitempty"`
	Nationality     string     `json:"nationality,omitempty"`
	Addresses       []Address  `json:"addresses,omitempty"`
}

// Lawyer is one legal representative attached to a party.
type Lawyer struct {
	Name               string `json:"name,omitempty"`
	PrimaryDocument    string `json:"primary_document,omitempty"`
	IdentityNumber     string `json:"identity_number,omitempty"`
	RepresentativeType string `json:"representative_type,omitempty"`
}

// Party is one participant on one side of a process. The party set of a
// process is fully replaced on every extraction; the external source has no
// party identifier stable enough for an incremental merge.
type Party struct {
	ProcessNumber string   `json:"process_number"`
	Pole          string   `json:"pole"`
	Person        Person   `json:"person"`
	Lawyers       []Lawyer `json:"lawyers,omitempty"`
}
