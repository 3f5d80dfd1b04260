// Package engine contains the simulation clock and financial state machine.
// This is the heartbeat of the real-estate world.
//
// ARCHITECTURAL RULE: all world state lives in one World struct guarded by a
// single mutex. The clock phases and every player command take that mutex, so
// a tick body always runs to completion before the next transition starts.
package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/mbellver/estatesim/internal/config"
	"github.com/mbellver/estatesim/internal/domain/property"
	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/generator"
	"github.com/mbellver/estatesim/internal/market"
	"github.com/mbellver/estatesim/internal/platform/logger"
)

// RateChange is one entry of the interest-rate history, newest first.
type RateChange struct {
	Date time.Time `json:"date"`
	Rate float64   `json:"rate"`
}

// LoanPayment is one entry of the mortgage payment history, newest first.
// Fee holds the admin fee for scheduled payments and the early-repayment fee
// for manual ones.
type LoanPayment struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Fee    float64   `json:"fee"`
}

// CapitalGain records one property sale for the tax report.
type CapitalGain struct {
	Property            string `json:"property"`
	PurchasePrice       int    `json:"purchase_price"`
	SalePrice           int    `json:"sale_price"`
	HoldingPeriodMonths int    `json:"holding_period_months"`
	TaxPaid             int    `json:"tax_paid"`
}

// RateProtection is the optional interest-rate cap plan.
type RateProtection struct {
	Active      bool    `json:"active"`
	CapRate     float64 `json:"cap_rate"`
	MonthlyCost float64 `json:"monthly_cost"`
}

// Manager is the hireable property manager.
type Manager struct {
	Hired      bool    `json:"hired"`
	Fee        float64 `json:"fee"`        // monthly
	Efficiency float64 `json:"efficiency"` // share of issues absorbed
}

// TaxTotals aggregates the taxes charged in the latest monthly billing.
type TaxTotals struct {
	PropertyTax int `json:"property_tax"`
	IncomeTax   int `json:"income_tax"`
}

// World is the complete state of one simulation run. All fields are guarded
// by mu; the accessors and commands below are the only entry points.
type World struct {
	mu  sync.Mutex
	cfg *config.Config
	rng *rand.Rand
	log *logger.Logger

	ledger *events.Ledger

	// Time
	currentDate time.Time
	tickCount   int64

	// Portfolio
	properties []property.Property

	// Finances
	cash             float64
	totalDebt        float64
	monthlyRepayment float64

	// Banking
	bankCreditScore     int
	maxLoanAmount       float64
	initialMaxLoan      float64
	maxLoanToValueRatio float64
	consecutivePayments int
	missedPayments      int
	paymentHistory      []LoanPayment

	// Interest rate
	baseInterestRate   float64
	rateHistory        []RateChange
	nextRateChangeDate time.Time
	rateProtection     RateProtection

	// Taxes
	monthlyTaxes       TaxTotals
	yearlyTaxesPaid    float64
	recentCapitalGains []CapitalGain

	// Management
	outsourced map[int]bool
	manager    Manager

	// World events
	events []market.Event
}

// NewWorld seeds a world: generates the initial property inventory and sets
// the banking state to its opening position. A zero seed derives one from
// the wall clock.
func NewWorld(cfg *config.Config, ledger *events.Ledger, log *logger.Logger) (*World, error) {
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start, err := cfg.Simulation.StartTime()
	if err != nil {
		return nil, err
	}

	properties, err := generator.GenerateProperties(rng, cfg.Simulation.InitialProperties, start)
	if err != nil {
		return nil, fmt.Errorf("seed world: %w", err)
	}

	w := &World{
		cfg:    cfg,
		rng:    rng,
		log:    log,
		ledger: ledger,

		currentDate: start,
		properties:  properties,

		cash: cfg.Simulation.StartingCash,

		bankCreditScore:     cfg.Simulation.StartingCreditScore,
		maxLoanAmount:       cfg.Banking.InitialMaxLoan,
		initialMaxLoan:      cfg.Banking.InitialMaxLoan,
		maxLoanToValueRatio: cfg.Banking.LoanToValueRatio,

		baseInterestRate:   cfg.Banking.BaseInterestRate,
		rateHistory:        []RateChange{{Date: start, Rate: cfg.Banking.BaseInterestRate}},
		nextRateChangeDate: start.AddDate(0, 3, 0),

		outsourced: make(map[int]bool),
		manager: Manager{
			Fee:        cfg.Simulation.ManagerMonthlyFee,
			Efficiency: 0.85,
		},
	}

	log.Info("world seeded: %d properties, $%.0f cash, seed %d", len(properties), w.cash, seed)
	return w, nil
}

// record appends a ledger entry stamped with the current simulation date.
// Callers must hold the mutex.
func (w *World) record(t events.EntryType, propertyID int, amount float64, detail string) {
	w.ledger.Append(events.Entry{
		SimDate:    w.currentDate,
		Type:       t,
		PropertyID: propertyID,
		Amount:     amount,
		Detail:     detail,
	})
	w.log.Ledger(string(t), propertyID, detail)
}

// findProperty returns the index of a property or -1. Callers hold the mutex.
func (w *World) findProperty(id int) int {
	for i := range w.properties {
		if w.properties[i].ID == id {
			return i
		}
	}
	return -1
}

// activeEvents filters to currently-active world events. Callers hold the
// mutex; the result aliases w.events and must not escape the critical
// section unmodified.
func (w *World) activeEvents() []market.Event {
	var active []market.Event
	for _, e := range w.events {
		if e.IsActive {
			active = append(active, e)
		}
	}
	return active
}

// totalAssetValue sums player-owned property values. Callers hold the mutex.
func (w *World) totalAssetValue() float64 {
	total := 0.0
	for _, p := range w.properties {
		if p.OwnedByPlayer() {
			total += float64(p.Value)
		}
	}
	return total
}

// currentDebtRatio is debt over asset value, 0 when nothing is owned.
func (w *World) currentDebtRatio() float64 {
	assets := w.totalAssetValue()
	if assets <= 0 {
		return 0
	}
	return w.totalDebt / assets
}

// adminFee computes the per-payment mortgage servicing fee.
func (w *World) adminFee(payment float64) float64 {
	if payment <= 0 {
		return 0
	}
	return w.cfg.Banking.AdminFeeFlat + payment*w.cfg.Banking.AdminFeeRate
}

// LoanApprovalProbability is the bank's base approval percentage: a credit
// factor (50-100) averaged with a debt factor that falls to zero as the debt
// ratio approaches the allowed maximum.
func LoanApprovalProbability(creditScore int, totalDebt, assetValue, maxLTV float64) int {
	creditFactor := math.Min(100, 50+float64(creditScore)/20)

	debtFactor := 100.0
	if assetValue > 0 {
		currentRatio := totalDebt / assetValue
		debtFactor = math.Max(0, 100*(1-currentRatio/maxLTV))
	}

	return int(math.Round(math.Min(100, (creditFactor+debtFactor)/2)))
}

// MaxAvailableLoan is what the bank would lend right now: the hard cap or
// the LTV headroom, whichever is smaller.
func (w *World) MaxAvailableLoan() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return math.Min(w.maxLoanAmount, math.Max(0, w.totalAssetValue()*w.maxLoanToValueRatio-w.totalDebt))
}
