package generator

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/mbellver/estatesim/internal/domain/property"
	"github.com/mbellver/estatesim/internal/domain/tenant"
)

var testNow = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func TestGeneratePropertiesDeterministic(t *testing.T) {
	a, err := GenerateProperties(rand.New(rand.NewSource(7)), 10, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := GenerateProperties(rand.New(rand.NewSource(7)), 10, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different inventories")
	}

	c, err := GenerateProperties(rand.New(rand.NewSource(8)), 10, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds produced identical inventories")
	}
}

func TestGeneratedPropertiesValidate(t *testing.T) {
	props, err := GenerateProperties(rand.New(rand.NewSource(99)), 50, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(props) != 50 {
		t.Fatalf("expected 50 properties, got %d", len(props))
	}

	for i := range props {
		p := &props[i]
		if err := p.Validate(); err != nil {
			t.Errorf("property %d invalid: %v", p.ID, err)
		}
		if p.ID != i {
			t.Errorf("expected sequential ID %d, got %d", i, p.ID)
		}
		if p.Owner != "" {
			t.Errorf("property %d generated already owned", p.ID)
		}
		if p.Value <= 0 {
			t.Errorf("property %d has non-positive value %d", p.ID, p.Value)
		}
		if p.MaintenanceCosts <= 0 {
			t.Errorf("property %d has non-positive maintenance %d", p.ID, p.MaintenanceCosts)
		}
	}
}

func TestLandHasNoRooms(t *testing.T) {
	props, err := GenerateProperties(rand.New(rand.NewSource(3)), 200, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	sawLand := false
	for i := range props {
		p := &props[i]
		if p.Type == property.TypeLand {
			sawLand = true
			if p.Rooms != nil {
				t.Errorf("land parcel %d has rooms", p.ID)
			}
			if p.Size < 1000 {
				t.Errorf("land parcel %d only %d m²", p.ID, p.Size)
			}
		} else if p.Rooms == nil {
			t.Errorf("property %d (%s) missing rooms", p.ID, p.Type)
		}
	}
	if !sawLand {
		t.Error("expected at least one land parcel in 200 draws")
	}
}

func TestAllowedTypesRespectLocation(t *testing.T) {
	props, err := GenerateProperties(rand.New(rand.NewSource(5)), 200, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for i := range props {
		p := &props[i]
		found := false
		for _, allowed := range allowedTypes(p.Location) {
			if p.Type == allowed {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("property %d: type %s not allowed in %s", p.ID, p.Type, p.Location)
		}
	}
}

func TestSeasonalityFor(t *testing.T) {
	cases := []struct {
		month time.Month
		want  float64
	}{
		{time.January, 0.9},
		{time.February, 0.9},
		{time.April, 1.1},   // spring market
		{time.July, 1.0},
		{time.October, 1.05}, // fall market
		{time.December, 0.9},
	}
	for _, tc := range cases {
		if got := SeasonalityFor(tc.month); got != tc.want {
			t.Errorf("SeasonalityFor(%s) = %v, want %v", tc.month, got, tc.want)
		}
	}
}

func TestGenerateTenantBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		tn := GenerateTenant(rng, 1500)

		if tn.ID == "" || tn.Name == "" {
			t.Fatal("tenant missing identity")
		}
		if tn.CreditScore < 350 || tn.CreditScore > 850 {
			t.Errorf("credit score %d outside [350,850]", tn.CreditScore)
		}
		if tn.MonthlyIncome <= 0 {
			t.Errorf("non-positive income %d", tn.MonthlyIncome)
		}
		if tn.PaymentProbability <= 0 || tn.PaymentProbability > 0.98 {
			t.Errorf("payment probability %v outside (0,0.98]", tn.PaymentProbability)
		}
		if tn.PropertyCareProbability <= 0 || tn.PropertyCareProbability > 0.95 {
			t.Errorf("care probability %v outside (0,0.95]", tn.PropertyCareProbability)
		}
		if tn.RentAmount != 1500 {
			t.Errorf("rent amount %d, want 1500", tn.RentAmount)
		}
		switch tn.LeaseLength {
		case 6, 12, 18, 24:
		default:
			t.Errorf("unexpected lease length %d", tn.LeaseLength)
		}
		if tn.PlannedStayDuration <= 0 {
			t.Errorf("non-positive planned stay %d", tn.PlannedStayDuration)
		}
	}
}

func TestGenerateApplicationsZeroRent(t *testing.T) {
	if apps := GenerateApplications(rand.New(rand.NewSource(1)), 0, 5, 0, testNow); apps != nil {
		t.Errorf("expected no applications for zero rent, got %d", len(apps))
	}
	if apps := GenerateApplications(rand.New(rand.NewSource(1)), -100, 5, 0, testNow); apps != nil {
		t.Errorf("expected no applications for negative rent, got %d", len(apps))
	}
}

func TestGenerateApplicationsQualityBands(t *testing.T) {
	rng := rand.New(rand.NewSource(21))

	// A +1 modifier saturates the quality roll, so every applicant lands in
	// the top credit band.
	high := GenerateApplications(rng, 1200, 20, 1.0, testNow)
	if len(high) != 20 {
		t.Fatalf("expected 20 applications, got %d", len(high))
	}
	for _, app := range high {
		if app.Tenant.CreditScore < 700 {
			t.Errorf("top-band applicant with credit %d", app.Tenant.CreditScore)
		}
		if app.ApplicationFee != 50 {
			t.Errorf("application fee %d, want 50", app.ApplicationFee)
		}
		if !app.ApplicationDate.Equal(testNow) {
			t.Errorf("application date %v, want %v", app.ApplicationDate, testNow)
		}
		switch app.DesiredLeaseLength {
		case 6, 12, 18, 24:
		default:
			t.Errorf("unexpected desired lease length %d", app.DesiredLeaseLength)
		}
	}

	// A -1 modifier floors the roll into the bottom band.
	low := GenerateApplications(rng, 1200, 20, -1.0, testNow)
	for _, app := range low {
		if app.Tenant.CreditScore < 500 || app.Tenant.CreditScore > 600 {
			t.Errorf("bottom-band applicant with credit %d", app.Tenant.CreditScore)
		}
	}
}

func TestTenantEventProbability(t *testing.T) {
	base := &tenant.Tenant{
		PaymentProbability:      0.9,
		PropertyCareProbability: 0.9,
		FamilySize:              1,
	}

	if got := TenantEventProbability(base, tenant.EventRentPaid); got != 0.9 {
		t.Errorf("rent-paid probability = %v, want payment probability 0.9", got)
	}
	if got := TenantEventProbability(base, tenant.EventRentLate); got != 0.1 {
		t.Errorf("rent-late probability = %v, want 0.1", got)
	}
	if got := TenantEventProbability(base, tenant.EventRentMissed); got != 0.05 {
		t.Errorf("rent-missed probability = %v, want 0.05", got)
	}
	if got := TenantEventProbability(base, tenant.EventDamage); got != 0.03 {
		t.Errorf("baseline damage probability = %v, want 0.03", got)
	}

	risky := &tenant.Tenant{
		PaymentProbability:      0.5,
		PropertyCareProbability: 0.5, // below the 0.7 care threshold
		FamilySize:              4,
		Pets:                    true,
	}
	want := 0.03 * 1.5 * 1.2 * 1.5
	if got := TenantEventProbability(risky, tenant.EventDamage); got != want {
		t.Errorf("risky damage probability = %v, want %v", got, want)
	}

	mover := &tenant.Tenant{
		RentalHistory: tenant.History{TimesMovedLastFiveYears: 4},
	}
	if got := TenantEventProbability(mover, tenant.EventLeaseBreak); got != 0.02*1.5 {
		t.Errorf("frequent-mover lease-break probability = %v, want 0.03", got)
	}

	if got := TenantEventProbability(base, tenant.EventType("UNKNOWN")); got != 0 {
		t.Errorf("unknown event probability = %v, want 0", got)
	}
}
