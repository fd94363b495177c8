package models

import "time"

// RenewalCount is the fixed number of positional renewal groups a record carries.
const RenewalCount = 4

// Record is one accredited person.
type Record struct {
	ID int64

	GivenNames  string
	Surnames    string
	Nationality string
	NationalID  string
	Phone       string
	City        string
	Age         *int

	AccreditationNumber string
	AccreditationYear   int
	GazetteNumber       string
	DecisionNumber      string

	UpdatedIDCopy          string
	MentalHealthCert       string
	MentalHealthCertExpiry *time.Time
	Credential             string
	WorkProof              string
	Resume                 string

	ActiveAtDefenseOffice bool
	DefenseOfficeAddress  string
	Inactive              bool
	InactiveReason        string
	CurrentlyEmployed     bool
	Employer              string

	// Renewals are positional (1st..4th); dates are not checked for order.
	Renewals [RenewalCount]Renewal
}

type Renewal struct {
	Date           *time.Time
	GazetteNumber  string
	DecisionNumber string
}

func (r Record) FullName() string {
	switch {
	case r.GivenNames == "":
		return r.Surnames
	case r.Surnames == "":
		return r.GivenNames
	}
	return r.GivenNames + " " + r.Surnames
}

// CityCount is one row of the per-city aggregation.
type CityCount struct {
	City  string
	Count int64
}
