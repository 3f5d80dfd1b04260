package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mbellver/estatesim/internal/domain/property"
	"github.com/mbellver/estatesim/internal/domain/tenant"
	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/generator"
	"github.com/mbellver/estatesim/internal/market"
	"github.com/mbellver/estatesim/internal/platform/metrics"
)

// CommandResult is the outcome of a player command. Rejections are values,
// not errors: a declined loan or an unaffordable renovation is a normal
// simulation outcome, and the world state is untouched when OK is false.
type CommandResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func reject(format string, args ...interface{}) CommandResult {
	metrics.Get().RecordCommand(false)
	return CommandResult{OK: false, Message: fmt.Sprintf(format, args...)}
}

func accept(format string, args ...interface{}) CommandResult {
	metrics.Get().RecordCommand(true)
	return CommandResult{OK: true, Message: fmt.Sprintf(format, args...)}
}

// silentReject is for not-found cases: logged, no player-visible message.
func silentReject() CommandResult {
	metrics.Get().RecordCommand(false)
	return CommandResult{OK: false}
}

func dollars(v float64) string {
	return humanize.Commaf(math.Round(v))
}

// BuyOrSell buys a market property or sells an owned one at current value.
// Selling charges capital-gains tax on the spread over the listed market
// price, with the holding period counted in 30-day months.
func (w *World) BuyOrSell(propertyID int) CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.findProperty(propertyID)
	if idx == -1 {
		w.log.Warn("buy/sell: property %d not found", propertyID)
		return silentReject()
	}
	p := &w.properties[idx]

	if p.OwnedByPlayer() {
		salePrice := p.Value

		purchaseDate := w.currentDate
		if p.PurchaseDate != nil {
			purchaseDate = *p.PurchaseDate
		}
		holdingMonths := int(math.Round(w.currentDate.Sub(purchaseDate).Hours() / 24 / 30))

		taxPaid := w.cfg.Taxes.CapitalGainsTax(p.MarketPrice, salePrice, holdingMonths)
		netProceeds := float64(salePrice - taxPaid)

		gain := CapitalGain{
			Property:            p.Address,
			PurchasePrice:       p.MarketPrice,
			SalePrice:           salePrice,
			HoldingPeriodMonths: holdingMonths,
			TaxPaid:             taxPaid,
		}
		w.recentCapitalGains = append([]CapitalGain{gain}, w.recentCapitalGains...)
		if len(w.recentCapitalGains) > 10 {
			w.recentCapitalGains = w.recentCapitalGains[:10]
		}

		if p.IsRented && p.CurrentTenant != nil {
			p.TenantHistory = append(p.TenantHistory, *p.CurrentTenant)
		}
		p.Owner = ""
		p.IsRented = false
		p.CurrentTenant = nil
		p.LeaseStart = nil
		p.PurchaseDate = nil
		w.cash += netProceeds

		w.record(events.EntryPropertySold, p.ID, float64(salePrice),
			fmt.Sprintf("sold %s for $%s", p.Address, humanize.Comma(int64(salePrice))))
		if taxPaid > 0 {
			w.record(events.EntryCapitalGainsTax, p.ID, -float64(taxPaid),
				fmt.Sprintf("capital gains tax, %d month hold", holdingMonths))
		}
		return accept("Sold %s for $%s", p.Address, humanize.Comma(int64(salePrice)))
	}

	if w.cash < float64(p.MarketPrice) {
		return reject("You don't have enough money to buy this property.")
	}

	w.cash -= float64(p.MarketPrice)
	p.Owner = property.OwnerPlayer
	purchase := w.currentDate
	p.PurchaseDate = &purchase

	w.record(events.EntryPropertyPurchased, p.ID, -float64(p.MarketPrice),
		fmt.Sprintf("purchased %s", p.Address))
	return accept("Purchased %s for $%s", p.Address, humanize.Comma(int64(p.MarketPrice)))
}

// TakeLoan borrows from the bank. The request must clear the hard limits
// (max loan, max debt ratio) and then survive a stochastic approval roll
// whose odds come from the credit score, the debt ratio and any
// loan-approval world-event impact.
func (w *World) TakeLoan(amount float64) CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	if amount <= 0 {
		return reject("Loan amount must be greater than zero.")
	}
	if amount > w.maxLoanAmount {
		return reject("You cannot take a loan greater than your maximum loan amount of $%s.", dollars(w.maxLoanAmount))
	}

	assets := w.totalAssetValue()
	newDebtRatio := 1.0
	if assets > 0 {
		newDebtRatio = (w.totalDebt + amount) / assets
	}
	if newDebtRatio > w.maxLoanToValueRatio {
		return reject("This loan would exceed your maximum allowed debt ratio of %.1f%%.", w.maxLoanToValueRatio*100)
	}

	base := LoanApprovalProbability(w.bankCreditScore, w.totalDebt, assets, w.maxLoanToValueRatio)
	impact := market.CalculateImpact(w.activeEvents(), market.ImpactLoanApproval, "", "")
	adjusted := float64(base) + impact*100

	if w.rng.Float64()*100 > adjusted {
		w.record(events.EntryLoanRejected, -1, 0,
			fmt.Sprintf("loan of $%s denied, approval odds %.0f%%", dollars(amount), adjusted))
		return reject("Loan application denied. Improve your credit score or reduce debt ratio.")
	}

	w.cash += amount
	w.totalDebt += amount
	w.monthlyRepayment = w.totalDebt * (w.baseInterestRate / 12)

	w.record(events.EntryLoanTaken, -1, amount, fmt.Sprintf("loan of $%s at %.2f%%", dollars(amount), w.baseInterestRate*100))
	return accept("You took a loan of $%s.", dollars(amount))
}

// RepayLoan pays down principal ahead of schedule. An early-repayment fee of
// 2%% of the amount is charged on top.
func (w *World) RepayLoan(amount float64) CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	if amount <= 0 {
		return reject("Repayment amount must be greater than zero.")
	}
	if amount > w.totalDebt {
		amount = w.totalDebt
	}

	fee := math.Round(amount * w.cfg.Banking.EarlyRepaymentFeeRate)
	totalPayment := amount + fee
	if w.cash < totalPayment {
		return reject("You need $%s to repay this loan with fees.", dollars(totalPayment))
	}

	w.cash -= totalPayment
	w.totalDebt -= amount
	if w.totalDebt > 0 {
		w.monthlyRepayment = w.totalDebt * (w.baseInterestRate / 12)
	} else {
		w.monthlyRepayment = 0
	}

	w.paymentHistory = append([]LoanPayment{{Date: w.currentDate, Amount: amount, Fee: fee}}, w.paymentHistory...)
	w.record(events.EntryLoanRepaid, -1, -totalPayment, fmt.Sprintf("early repayment of $%s, fee $%s", dollars(amount), dollars(fee)))
	return accept("Repaid $%s of your loan.", dollars(amount))
}

// Renovate spends 5%% of a property's value (adjusted by any renovation-cost
// event impact) for a 10%% value bump and +20 renovation bonus.
func (w *World) Renovate(propertyID int) CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.findProperty(propertyID)
	if idx == -1 {
		w.log.Warn("renovate: property %d not found", propertyID)
		return silentReject()
	}
	p := &w.properties[idx]

	baseCost := math.Round(float64(p.Value) * 0.05)
	impact := market.CalculateImpact(w.activeEvents(), market.ImpactRenovationCost, p.Location, p.Type)
	cost := math.Round(baseCost * (1 + impact))

	if w.cash < cost {
		return reject("You need $%s to renovate this property.", dollars(cost))
	}

	w.cash -= cost
	p.Value = int(math.Round(float64(p.Value) * 1.1))
	p.RenovationBonusPercentage = minInt(100, p.RenovationBonusPercentage+20)

	w.record(events.EntryPropertyRenovated, p.ID, -cost, fmt.Sprintf("renovated %s", p.Address))
	return accept("Renovated %s for $%s", p.Address, dollars(cost))
}

// FindTenants opens a vacant property for rent: it generates a batch of
// lease applications sized and skewed by the tenant-quality event impact for
// the property's segment. Land cannot be rented.
func (w *World) FindTenants(propertyID int) CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.findProperty(propertyID)
	if idx == -1 {
		w.log.Warn("find tenants: property %d not found", propertyID)
		return silentReject()
	}
	p := &w.properties[idx]

	if p.Type == property.TypeLand {
		return reject("Land properties cannot be rented. Consider developing it in the future.")
	}
	if p.IsRented {
		return reject("This property already has a tenant.")
	}

	qualityImpact := market.CalculateImpact(w.activeEvents(), market.ImpactTenantQuality, p.Location, p.Type)

	baseCount := 3 + w.rng.Intn(3)
	count := maxInt(1, int(math.Round(float64(baseCount)*(1+qualityImpact))))

	apps := generator.GenerateApplications(w.rng, p.RentPrice, count, qualityImpact, w.currentDate)
	if len(apps) == 0 {
		w.log.Warn("find tenants: no applications generated for property %d (rent %d)", p.ID, p.RentPrice)
		return reject("No applications received.")
	}
	p.LeaseApplications = apps

	return accept("%d lease applications received for %s", len(apps), p.Address)
}

// EndLease terminates the current lease amicably: the tenant moves out into
// the property history with no fee.
func (w *World) EndLease(propertyID int) CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.findProperty(propertyID)
	if idx == -1 {
		w.log.Warn("end lease: property %d not found", propertyID)
		return silentReject()
	}
	p := &w.properties[idx]

	if !p.IsRented || p.CurrentTenant == nil {
		return reject("This property has no active lease to end.")
	}

	name := p.CurrentTenant.Name
	p.TenantHistory = append(p.TenantHistory, *p.CurrentTenant)
	p.IsRented = false
	p.CurrentTenant = nil
	p.LeaseStart = nil
	p.LeaseLength = 0

	w.record(events.EntryTenantMovedOut, p.ID, 0, fmt.Sprintf("lease ended for %s", name))
	return accept("Ended the lease at %s", p.Address)
}

// AcceptApplication moves an applicant in as the current tenant. The
// application fee is credited unless the property is outsourced.
func (w *World) AcceptApplication(propertyID int, tenantID string) CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.findProperty(propertyID)
	if idx == -1 {
		w.log.Warn("accept application: property %d not found", propertyID)
		return silentReject()
	}
	p := &w.properties[idx]

	var app *tenant.LeaseApplication
	for i := range p.LeaseApplications {
		if p.LeaseApplications[i].Tenant.ID == tenantID {
			app = &p.LeaseApplications[i]
			break
		}
	}
	if app == nil {
		return reject("Application not found.")
	}

	t := app.Tenant
	leaseStart := w.currentDate
	t.LeaseStart = &leaseStart
	t.RentAmount = p.RentPrice

	p.IsRented = true
	p.CurrentTenant = &t
	p.LeaseStart = &leaseStart
	p.LeaseLength = app.DesiredLeaseLength

	fee := app.ApplicationFee
	p.LeaseApplications = nil

	// The agency keeps the application fee for outsourced units.
	credited := 0
	if !w.outsourced[p.ID] {
		w.cash += float64(fee)
		credited = fee
	}

	w.record(events.EntryTenantMovedIn, p.ID, float64(credited),
		fmt.Sprintf("accepted tenant %s, %d month lease", t.Name, p.LeaseLength))
	return accept("Accepted tenant %s for %s", t.Name, p.Address)
}

// EvictTenant removes the current tenant for a flat legal fee. The eviction
// is recorded as a lease break in the property's tenant event log.
func (w *World) EvictTenant(propertyID int) CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.findProperty(propertyID)
	if idx == -1 {
		w.log.Warn("evict: property %d not found", propertyID)
		return silentReject()
	}
	p := &w.properties[idx]

	if !p.IsRented || p.CurrentTenant == nil {
		return reject("This property doesn't have a tenant to evict.")
	}

	cost := w.cfg.Simulation.EvictionCost
	if w.cash < cost {
		return reject("You need $%s to cover legal fees for eviction.", dollars(cost))
	}

	w.cash -= cost
	name := p.CurrentTenant.Name
	p.TenantHistory = append(p.TenantHistory, *p.CurrentTenant)
	p.TenantEvents = append(p.TenantEvents, tenant.Event{
		Type:        tenant.EventLeaseBreak,
		Date:        w.currentDate,
		Description: "Tenant was evicted",
	})
	p.IsRented = false
	p.CurrentTenant = nil
	p.LeaseStart = nil
	p.LeaseLength = 0

	w.record(events.EntryTenantEvicted, p.ID, -cost, fmt.Sprintf("evicted %s", name))
	return accept("Evicted tenant from %s", p.Address)
}

// ToggleOutsource flips whether a property's management is outsourced.
// Outsourced properties absorb tenant incident costs but forfeit
// application fees.
func (w *World) ToggleOutsource(propertyID int) CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.findProperty(propertyID)
	if idx == -1 {
		w.log.Warn("toggle outsource: property %d not found", propertyID)
		return silentReject()
	}

	if w.outsourced[propertyID] {
		delete(w.outsourced, propertyID)
		return accept("Management of %s brought back in-house.", w.properties[idx].Address)
	}
	w.outsourced[propertyID] = true
	return accept("Management of %s outsourced.", w.properties[idx].Address)
}

// ToggleManager hires or dismisses the portfolio-wide property manager.
func (w *World) ToggleManager() CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.manager.Hired = !w.manager.Hired
	if w.manager.Hired {
		return accept("Property manager hired! They'll handle tenant issues and find new renters.")
	}
	return accept("Property manager has been dismissed.")
}

// SelectEventChoice records the player's response to an active world event
// and applies its money cost.
func (w *World) SelectEventChoice(eventID, choiceID string) CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	result := market.SelectChoice(w.events, eventID, choiceID, w.cash)
	if !result.Success {
		return reject("%s", result.Message)
	}

	w.cash += float64(result.MoneyChange)
	w.record(events.EntryEventChoiceMade, -1, float64(result.MoneyChange),
		fmt.Sprintf("event %s: chose %s", eventID, choiceID))
	return accept("%s", result.Message)
}

// PurchaseRateProtection buys an interest-rate cap. The monthly premium is
// priced off the gap between the cap and the current rate; the first premium
// is charged up front.
func (w *World) PurchaseRateProtection(capRate float64) CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	gap := capRate - w.baseInterestRate
	var monthlyCost float64
	switch {
	case gap <= 0.01:
		monthlyCost = math.Round(w.totalDebt * 0.0005)
	case gap <= 0.02:
		monthlyCost = math.Round(w.totalDebt * 0.0003)
	default:
		monthlyCost = math.Round(w.totalDebt * 0.0002)
	}

	if w.cash < monthlyCost {
		return reject("You don't have enough money for the first payment")
	}

	w.rateProtection = RateProtection{Active: true, CapRate: capRate, MonthlyCost: monthlyCost}
	w.cash -= monthlyCost

	w.record(events.EntryProtectionBilled, -1, -monthlyCost,
		fmt.Sprintf("rate protection purchased, cap %.2f%%", capRate*100))
	return accept("Interest rate protection purchased! Your rate will not exceed %.2f%%", capRate*100)
}

// CancelRateProtection drops the rate cap plan.
func (w *World) CancelRateProtection() CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rateProtection = RateProtection{}
	return accept("Interest rate protection plan canceled.")
}

// OverrideDate sets the simulation clock directly. Intended for tests and
// bootstrapping.
func (w *World) OverrideDate(date time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.currentDate = date
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
