// Package tenant defines tenant, lease and tenant-event entities.
// Pure domain package: no infrastructure imports.
package tenant

import "time"

// Occupation is a tenant's line of work.
type Occupation string

const (
	OccupationDoctor        Occupation = "Doctor"
	OccupationLawyer        Occupation = "Lawyer"
	OccupationTeacher       Occupation = "Teacher"
	OccupationEngineer      Occupation = "Engineer"
	OccupationRetailWorker  Occupation = "Retail Worker"
	OccupationOfficeWorker  Occupation = "Office Worker"
	OccupationManager       Occupation = "Manager"
	OccupationBusinessOwner Occupation = "Business Owner"
	OccupationServiceWorker Occupation = "Service Worker"
	OccupationFreelancer    Occupation = "Freelancer"
	OccupationStudent       Occupation = "Student"
	OccupationRetired       Occupation = "Retired"
	OccupationUnemployed    Occupation = "Unemployed"
)

// Occupations lists every occupation the generator can draw.
func Occupations() []Occupation {
	return []Occupation{
		OccupationDoctor, OccupationLawyer, OccupationTeacher, OccupationEngineer,
		OccupationRetailWorker, OccupationOfficeWorker, OccupationManager,
		OccupationBusinessOwner, OccupationServiceWorker, OccupationFreelancer,
		OccupationStudent, OccupationRetired, OccupationUnemployed,
	}
}

// ReferenceGrade rates a tenant's references or prior-landlord reviews.
type ReferenceGrade string

const (
	ReferenceExcellent ReferenceGrade = "Excellent"
	ReferenceGood      ReferenceGrade = "Good"
	ReferenceAverage   ReferenceGrade = "Average"
	ReferencePoor      ReferenceGrade = "Poor"
	ReferenceNone      ReferenceGrade = "None"
	ReferenceUnknown   ReferenceGrade = "Unknown"
)

// History summarizes a tenant's rental track record.
type History struct {
	Evictions               int            `json:"evictions"`
	PreviousLandlordReviews ReferenceGrade `json:"previous_landlord_reviews"`
	YearsOfRentalHistory    int            `json:"years_of_rental_history"`
	TimesMovedLastFiveYears int            `json:"times_moved_last_five_years"`
}

// Tenant is a generated applicant or sitting renter.
type Tenant struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Occupation    Occupation `json:"occupation"`
	MonthlyIncome int        `json:"monthly_income"`
	CreditScore   int        `json:"credit_score"` // 350-850
	FamilySize    int        `json:"family_size"`
	Pets          bool       `json:"pets"`
	Smoker        bool       `json:"smoker"`

	RentalHistory History        `json:"rental_history"`
	References    ReferenceGrade `json:"references"`

	LeaseStart           *time.Time `json:"lease_start,omitempty"`
	LeaseLength          int        `json:"lease_length"`           // months
	PlannedStayDuration  int        `json:"planned_stay_duration"`  // months, may differ from lease
	HasNotifiedDeparture bool       `json:"has_notified_departure"`
	RentAmount           int        `json:"rent_amount"`

	// Behavioral probabilities, both in [0,1].
	PaymentProbability      float64 `json:"payment_probability"`
	PropertyCareProbability float64 `json:"property_care_probability"`
}

// LeaseApplication is an ephemeral (tenant, terms, fee) proposal.
type LeaseApplication struct {
	Tenant             Tenant    `json:"tenant"`
	DesiredLeaseLength int       `json:"desired_lease_length"` // months
	ApplicationDate    time.Time `json:"application_date"`
	ApplicationFee     int       `json:"application_fee"`
}

// EventType tags an entry in a property's tenant event log.
type EventType string

const (
	EventRentPaid   EventType = "RENT_PAID"
	EventRentLate   EventType = "RENT_LATE"
	EventRentMissed EventType = "RENT_MISSED"
	EventDamage     EventType = "DAMAGE"
	EventLeaseBreak EventType = "LEASE_BREAK"
	EventComplaint  EventType = "COMPLAINT"
	EventRenewal    EventType = "RENEWAL"
)

// Event records a tenant-related happening on a property.
type Event struct {
	Type            EventType `json:"type"`
	Date            time.Time `json:"date"`
	Description     string    `json:"description"`
	FinancialImpact int       `json:"financial_impact"` // positive for rent, negative for repairs
	PropertyImpact  int       `json:"property_impact,omitempty"` // renovation-percentage damage
}
