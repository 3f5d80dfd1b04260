package generator

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/mbellver/estatesim/internal/domain/tenant"
)

var firstNames = []string{
	"James", "Robert", "John", "Michael", "David", "William", "Richard",
	"Joseph", "Thomas", "Charles", "Mary", "Patricia", "Jennifer", "Linda",
	"Elizabeth", "Barbara", "Susan", "Jessica", "Sarah", "Karen",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Miller", "Davis",
	"Garcia", "Rodriguez", "Wilson", "Martinez", "Anderson", "Taylor",
	"Thomas", "Hernandez", "Moore", "Martin", "Jackson", "Thompson", "White",
}

// incomeMultiplier scales income by occupation, applied on top of a
// 2x-the-rent base so tenants can plausibly afford the unit.
func incomeMultiplier(o tenant.Occupation) float64 {
	switch o {
	case tenant.OccupationDoctor:
		return 8
	case tenant.OccupationLawyer:
		return 7
	case tenant.OccupationBusinessOwner:
		return 6
	case tenant.OccupationEngineer:
		return 5
	case tenant.OccupationManager:
		return 4.5
	case tenant.OccupationTeacher, tenant.OccupationOfficeWorker, tenant.OccupationFreelancer:
		return 3
	case tenant.OccupationRetailWorker, tenant.OccupationServiceWorker, tenant.OccupationRetired:
		return 2
	case tenant.OccupationStudent:
		return 1.5
	case tenant.OccupationUnemployed:
		return 1
	default:
		return 3
	}
}

// creditAdjustment shifts the 650 base score by occupation stability.
func creditAdjustment(o tenant.Occupation) int {
	switch o {
	case tenant.OccupationDoctor, tenant.OccupationLawyer:
		return 100
	case tenant.OccupationBusinessOwner, tenant.OccupationEngineer:
		return 70
	case tenant.OccupationStudent:
		return -50
	case tenant.OccupationUnemployed:
		return -100
	default:
		return 0
	}
}

func clampCredit(score int) int {
	if score < 350 {
		return 350
	}
	if score > 850 {
		return 850
	}
	return score
}

// GenerateTenant builds a prospective tenant for a unit renting at the given
// monthly price. Income, credit and the behavioral probabilities are all
// correlated so high earners tend to pay and look after the place.
func GenerateTenant(rng *rand.Rand, rent int) tenant.Tenant {
	occupations := tenant.Occupations()
	occupation := occupations[rng.Intn(len(occupations))]

	income := int(math.Round(float64(rent*2) * incomeMultiplier(occupation) * (0.8 + rng.Float64()*0.4)))
	credit := clampCredit(650 + creditAdjustment(occupation) + rng.Intn(100) - 50)

	incomeFactor := 0.0
	if rent > 0 {
		incomeFactor = float64(income) / (float64(rent) * 10)
	}
	paymentProb := math.Min(0.98, 0.5+float64(credit)/1000+incomeFactor)
	careProb := math.Min(0.95, 0.6+float64(credit)/1000*0.5)

	leaseOptions := []int{6, 12, 18, 24}
	leaseLength := leaseOptions[rng.Intn(len(leaseOptions))]

	// Planned stay: 20% leave early, 50% match the lease, 30% overstay.
	var plannedStay int
	switch roll := rng.Float64(); {
	case roll < 0.2:
		plannedStay = int(math.Ceil(float64(leaseLength) * (0.5 + rng.Float64()*0.3)))
	case roll < 0.7:
		plannedStay = leaseLength
	default:
		plannedStay = leaseLength + rng.Intn(12)
	}

	return tenant.Tenant{
		ID:                      uuid.NewString(),
		Name:                    firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))],
		Occupation:              occupation,
		MonthlyIncome:           income,
		CreditScore:             credit,
		FamilySize:              1 + rng.Intn(5),
		Pets:                    rng.Float64() < 0.3,
		Smoker:                  rng.Float64() < 0.2,
		RentalHistory:           randomRentalHistory(rng),
		References:              referencesFor(rng, credit),
		PaymentProbability:      paymentProb,
		PropertyCareProbability: careProb,
		LeaseLength:             leaseLength,
		PlannedStayDuration:     plannedStay,
		RentAmount:              rent,
	}
}

func randomRentalHistory(rng *rand.Rand) tenant.History {
	evictions := 0
	if rng.Float64() < 0.1 {
		evictions = 1 + rng.Intn(2)
	}

	var reviews tenant.ReferenceGrade
	if rng.Float64() < 0.3 {
		if rng.Float64() < 0.5 {
			reviews = tenant.ReferenceExcellent
		} else {
			reviews = tenant.ReferenceGood
		}
	} else {
		if rng.Float64() < 0.5 {
			reviews = tenant.ReferenceAverage
		} else {
			reviews = tenant.ReferencePoor
		}
	}

	return tenant.History{
		Evictions:               evictions,
		PreviousLandlordReviews: reviews,
		YearsOfRentalHistory:    1 + rng.Intn(10),
		TimesMovedLastFiveYears: 1 + rng.Intn(4),
	}
}

// referencesFor draws a reference grade correlated with the credit score.
func referencesFor(rng *rand.Rand, credit int) tenant.ReferenceGrade {
	switch {
	case credit > 750:
		if rng.Float64() < 0.8 {
			return tenant.ReferenceExcellent
		}
		return tenant.ReferenceGood
	case credit > 650:
		if rng.Float64() < 0.5 {
			return tenant.ReferenceGood
		}
		return tenant.ReferenceAverage
	case credit > 550:
		if rng.Float64() < 0.5 {
			return tenant.ReferenceAverage
		}
		return tenant.ReferencePoor
	default:
		if rng.Float64() < 0.5 {
			return tenant.ReferencePoor
		}
		return tenant.ReferenceNone
	}
}

// GenerateApplications produces count lease applications for a listed rental.
// qualityModifier shifts the applicant credit-score distribution up or down,
// which is how active world events change the tenant pool. A non-positive
// rent yields no applicants.
func GenerateApplications(rng *rand.Rand, rent, count int, qualityModifier float64, now time.Time) []tenant.LeaseApplication {
	if rent <= 0 {
		return nil
	}

	apps := make([]tenant.LeaseApplication, 0, count)
	for i := 0; i < count; i++ {
		t := GenerateTenant(rng, rent)

		// The occupation-driven credit score is overridden with a
		// quality-banded draw so application batches have a visible spread.
		adjusted := math.Max(0, math.Min(1, rng.Float64()+qualityModifier))
		switch {
		case adjusted > 0.8:
			t.CreditScore = int(math.Round(700 + rng.Float64()*150))
		case adjusted > 0.5:
			t.CreditScore = int(math.Round(650 + rng.Float64()*100))
		case adjusted > 0.2:
			t.CreditScore = int(math.Round(550 + rng.Float64()*150))
		default:
			t.CreditScore = int(math.Round(500 + rng.Float64()*100))
		}

		// 12-month terms are twice as likely as the others.
		desired := []int{6, 12, 12, 18, 24}
		apps = append(apps, tenant.LeaseApplication{
			Tenant:             t,
			DesiredLeaseLength: desired[rng.Intn(len(desired))],
			ApplicationDate:    now,
			ApplicationFee:     50,
		})
	}
	return apps
}

// TenantEventProbability is the chance a tenant causes an incident of the
// given type when rolled. Damage risk scales with pets, household size and
// poor care habits; lease breaks with moving history.
func TenantEventProbability(t *tenant.Tenant, eventType tenant.EventType) float64 {
	switch eventType {
	case tenant.EventRentPaid:
		return t.PaymentProbability
	case tenant.EventRentLate:
		return 0.1
	case tenant.EventRentMissed:
		return 0.05
	case tenant.EventDamage:
		prob := 0.03
		if t.Pets {
			prob *= 1.5
		}
		if t.FamilySize > 2 {
			prob *= 1.2
		}
		if t.PropertyCareProbability < 0.7 {
			prob *= 1.5
		}
		return math.Min(0.2, prob)
	case tenant.EventLeaseBreak:
		prob := 0.02
		if t.RentalHistory.TimesMovedLastFiveYears > 3 {
			prob *= 1.5
		}
		return math.Min(0.15, prob)
	case tenant.EventComplaint:
		return 0.04
	default:
		return 0
	}
}
