// Package test holds headless stress scenarios: full simulated years run
// against a seeded world, validating the invariants the unit tests can't
// reach (long-run ledger reconciliation, credit score bounds, debt floor).
package test

import (
	"fmt"
	"strings"

	"github.com/mbellver/estatesim/internal/config"
	"github.com/mbellver/estatesim/internal/engine"
	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/platform/logger"
)

// ScenarioResult captures the outcome of one scenario check.
type ScenarioResult struct {
	ScenarioName string
	Input        string
	Expected     string
	Actual       string
	Passed       bool
	Reason       string
}

// HighLeverageScenario simulates a player borrowing to the limit, buying
// aggressively and then coasting for a simulated year.
type HighLeverageScenario struct {
	world   *engine.World
	clock   *engine.Clock
	ledger  *events.Ledger
	cfg     *config.Config
	logger  *logger.Logger
	results []ScenarioResult
}

// NewHighLeverageScenario creates the scenario with a fixed seed so reruns
// reproduce the same year.
func NewHighLeverageScenario() (*HighLeverageScenario, error) {
	log := logger.NewLogger()
	cfg := config.Default()
	cfg.Simulation.Seed = 42
	cfg.Simulation.StartDate = "2024-01-01"

	ledger := events.NewLedger(nil)
	world, err := engine.NewWorld(cfg, ledger, log)
	if err != nil {
		return nil, err
	}

	return &HighLeverageScenario{
		world:   world,
		clock:   engine.NewClock(world),
		ledger:  ledger,
		cfg:     cfg,
		logger:  log,
		results: make([]ScenarioResult, 0),
	}, nil
}

// lever runs the player actions: borrow as much as the bank allows, then
// buy everything affordable.
func (s *HighLeverageScenario) lever() {
	loan := s.world.MaxAvailableLoan()
	if res := s.world.TakeLoan(loan); res.OK {
		s.logger.Info("SCENARIO: took loan of %.0f", loan)
	}

	snap := s.world.Snapshot()
	bought := 0
	for _, p := range snap.Properties {
		if float64(p.MarketPrice) > s.world.Snapshot().Cash {
			continue
		}
		if res := s.world.BuyOrSell(p.ID); res.OK {
			bought++
			s.world.FindTenants(p.ID)
		}
	}
	s.logger.Info("SCENARIO: bought %d properties", bought)
}

// Run executes the scenario: lever up, simulate a year, verify invariants.
func (s *HighLeverageScenario) Run() {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("STRESS SCENARIO: HIGH LEVERAGE YEAR")
	fmt.Println(strings.Repeat("=", 60))

	s.lever()

	// One tick per simulated day for a year.
	s.clock.AdvanceTicks(365)

	snap := s.world.Snapshot()

	fmt.Println("\nFINAL STATE:")
	fmt.Printf("   Date: %s\n", snap.Date.Format("2006-01-02"))
	fmt.Printf("   Cash: %.2f\n", snap.Cash)
	fmt.Printf("   Debt: %.2f\n", snap.Debt.TotalDebt)
	fmt.Printf("   Credit: %d\n", snap.Debt.BankCreditScore)
	fmt.Printf("   Ledger entries: %d\n", s.ledger.Len())

	s.check("Debt floor", "debt stays non-negative",
		snap.Debt.TotalDebt >= 0,
		fmt.Sprintf("debt=%.2f", snap.Debt.TotalDebt))

	s.check("Credit bounds", "credit score stays within [300, 850]",
		snap.Debt.BankCreditScore >= 300 && snap.Debt.BankCreditScore <= 850,
		fmt.Sprintf("credit=%d", snap.Debt.BankCreditScore))

	s.check("LTV bounds", "max loan-to-value stays within [0.5, 0.9]",
		snap.Debt.MaxLoanToValueRatio >= 0.5 && snap.Debt.MaxLoanToValueRatio <= 0.9,
		fmt.Sprintf("ltv=%.2f", snap.Debt.MaxLoanToValueRatio))

	var net float64
	for _, e := range s.ledger.All() {
		net += e.Amount
	}
	drift := s.cfg.Simulation.StartingCash + net - snap.Cash
	s.check("Ledger reconciliation", "starting cash + ledger net equals final cash",
		drift < 1 && drift > -1,
		fmt.Sprintf("drift=%.4f", drift))

	fmt.Println("\n" + strings.Repeat("=", 60))
	for _, r := range s.results {
		mark := "PASS"
		if !r.Passed {
			mark = "FAIL"
		}
		fmt.Printf("[%s] %-24s %s (%s)\n", mark, r.ScenarioName, r.Expected, r.Actual)
	}
	fmt.Println(strings.Repeat("=", 60))
}

func (s *HighLeverageScenario) check(name, expected string, ok bool, actual string) {
	result := ScenarioResult{
		ScenarioName: name,
		Input:        "high leverage year, seed 42",
		Expected:     expected,
		Actual:       actual,
		Passed:       ok,
	}
	if ok {
		result.Reason = "invariant held over the simulated year"
	} else {
		result.Reason = "VIOLATION: " + expected
		s.logger.Error("SCENARIO FAILED: %s (%s)", name, actual)
	}
	s.results = append(s.results, result)
}

// Results returns all scenario check outcomes.
func (s *HighLeverageScenario) Results() []ScenarioResult {
	return s.results
}
