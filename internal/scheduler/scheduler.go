// Package scheduler runs the recurring alert evaluation loop and handles
// the portfolio and alert-management commands arriving over Telegram.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"CryptoSentinel/internal/advisor"
	"CryptoSentinel/internal/alert"
	"CryptoSentinel/internal/collector"
	"CryptoSentinel/internal/notifier"
	"CryptoSentinel/internal/portfolio"
)

// Scheduler periodically evaluates pending alert rules against live prices
// and delivers one-shot notifications. It is the only background component;
// the alert store is its single shared mutable resource.
type Scheduler struct {
	Cron         *cron.Cron
	Store        alert.Store
	Fetcher      collector.Fetcher
	Advisor      *advisor.Advisor
	Notifier     notifier.Notifier
	Addresses    map[string]string // owner -> notification address
	ForecastDays int
	Ctx          context.Context

	ledgerMu sync.Mutex
	ledgers  map[int64]*portfolio.Ledger // chat id -> session portfolio

	log zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, store alert.Store, fetcher collector.Fetcher, adv *advisor.Advisor, n notifier.Notifier, addresses map[string]string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Store:        store,
		Fetcher:      fetcher,
		Advisor:      adv,
		Notifier:     n,
		Addresses:    addresses,
		ForecastDays: 7,
		Ctx:          ctx,
		ledgers:      make(map[int64]*portfolio.Ledger),
		log:          log.With().Str("component", "scheduler").Logger(),
	}
}

// ledgerFor returns the chat's portfolio, creating it on first use. Each chat
// owns an independent ledger for the lifetime of the process.
func (s *Scheduler) ledgerFor(chatID int64) *portfolio.Ledger {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	l, ok := s.ledgers[chatID]
	if !ok {
		l = portfolio.NewLedger()
		s.ledgers[chatID] = l
	}
	return l
}

// RegisterAll registers the alert evaluation task on the given cron schedule.
func (s *Scheduler) RegisterAll(alertCron string) error {
	if _, err := s.Cron.AddFunc(alertCron, s.EvaluateAlerts); err != nil {
		return fmt.Errorf("register alert task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the evaluation task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.EvaluateAlerts()
}

// EvaluateAlerts runs one evaluation cycle: every pending rule is checked
// against the current price and delivered at most once. The cycle always
// runs to completion; a fault in one rule never aborts the others.
func (s *Scheduler) EvaluateAlerts() {
	rules, err := s.Store.ListPending()
	if err != nil {
		s.log.Error().Err(err).Msg("list pending alerts")
		return
	}
	if len(rules) == 0 {
		return
	}
	s.log.Info().Int("pending", len(rules)).Msg("evaluating alerts")

	for _, rule := range rules {
		s.evaluateRule(rule)
	}
}

func (s *Scheduler) evaluateRule(rule alert.Rule) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("id", rule.ID).Interface("panic", r).Msg("alert evaluation panicked")
		}
	}()

	price, err := s.Fetcher.CurrentPrice(rule.Symbol)
	if err != nil {
		// Deferred to the next cycle, no state change.
		s.log.Warn().Err(err).Str("symbol", rule.Symbol).Msg("price lookup failed, alert deferred")
		return
	}
	if price <= rule.Threshold {
		return
	}

	address, ok := s.resolveAddress(rule.Owner)
	if !ok {
		// Configuration gap, not fatal: the rule stays pending.
		s.log.Warn().Str("owner", rule.Owner).Str("id", rule.ID).Msg("no notification address for owner")
		return
	}

	body := rule.Message
	if body == "" {
		body = notifier.FormatAlertBody(rule.Symbol, rule.Threshold, price)
	}
	if err := s.Notifier.Deliver(s.Ctx, address, notifier.FormatAlertSubject(rule.Symbol), body); err != nil {
		s.log.Error().Err(err).Str("id", rule.ID).Msg("alert delivery failed")
		return
	}

	applied, err := s.Store.MarkSentIfPending(rule.ID)
	if err != nil {
		s.log.Error().Err(err).Str("id", rule.ID).Msg("mark alert sent")
		return
	}
	if !applied {
		s.log.Info().Str("id", rule.ID).Msg("alert already sent by a concurrent cycle")
		return
	}
	s.log.Info().Str("id", rule.ID).Str("symbol", rule.Symbol).Float64("price", price).Msg("alert delivered")
}

// resolveAddress maps an owner identity to a notification address. Owners
// created through the Telegram interface are chat ids and resolve to
// themselves when not explicitly configured.
func (s *Scheduler) resolveAddress(owner string) (string, bool) {
	if addr, ok := s.Addresses[owner]; ok {
		return addr, true
	}
	if _, err := strconv.ParseInt(owner, 10, 64); err == nil {
		return owner, true
	}
	return "", false
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(chatID int64, command string) string {
	owner := strconv.FormatInt(chatID, 10)
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}

	switch fields[0] {
	case "/add":
		if len(fields) != 3 && len(fields) != 4 {
			return "Usage: /add SYMBOL AMOUNT [PRICE]"
		}
		amount, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || amount <= 0 {
			return "Invalid amount. Enter a positive number."
		}
		symbol := strings.ToUpper(fields[1])
		var price float64
		if len(fields) == 4 {
			price, err = strconv.ParseFloat(fields[3], 64)
			if err != nil || price < 0 {
				return "Invalid price. Enter a non-negative number."
			}
		} else {
			price, err = s.Fetcher.CurrentPrice(symbol)
			if err != nil {
				s.log.Warn().Err(err).Str("symbol", symbol).Msg("price lookup for add failed")
				return fmt.Sprintf("Price for %s is unavailable right now. Provide one: /add %s %s PRICE", symbol, symbol, fields[2])
			}
		}
		if err := s.ledgerFor(chatID).AddAsset(symbol, amount, price); err != nil {
			return "Could not record the purchase."
		}
		return fmt.Sprintf("Added %g %s at %.2f USD.", amount, symbol, price)

	case "/remove":
		if len(fields) != 3 {
			return "Usage: /remove SYMBOL AMOUNT"
		}
		amount, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || amount <= 0 {
			return "Invalid amount. Enter a positive number."
		}
		symbol := strings.ToUpper(fields[1])
		s.ledgerFor(chatID).RemoveAsset(symbol, amount)
		return fmt.Sprintf("Removed %g %s.", amount, symbol)

	case "/portfolio":
		ledger := s.ledgerFor(chatID)
		if err := ledger.RefreshPrices(s.Fetcher); err != nil {
			s.log.Warn().Err(err).Msg("portfolio price refresh incomplete")
		}
		return notifier.FormatHoldings(ledger.Holdings(), ledger.TotalValue())

	case "/rebalance":
		return strings.Join(s.Advisor.Rebalance(s.ledgerFor(chatID)), "\n")

	case "/projection":
		return notifier.FormatProjection(s.Advisor.ProjectValue(s.ledgerFor(chatID), 30))

	case "/outlook":
		if len(fields) != 2 {
			return "Usage: /outlook SYMBOL"
		}
		symbol := strings.ToUpper(fields[1])
		out, err := s.Advisor.Outlook(symbol, s.ForecastDays)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("outlook failed")
			return fmt.Sprintf("No data available for %s.", symbol)
		}
		if len(out.Forecast) > 0 {
			last := out.Forecast[len(out.Forecast)-1]
			return notifier.FormatOutlookSummary(symbol, out.History, out.SMA, last.Value, last.Lower, last.Upper, true)
		}
		return notifier.FormatOutlookSummary(symbol, out.History, out.SMA, 0, 0, 0, false)

	case "/alerts":
		rules, err := s.Store.ListByOwner(owner)
		if err != nil {
			s.log.Error().Err(err).Msg("list alerts")
			return "Could not load your alerts."
		}
		return notifier.FormatAlertList(rules)

	case "/watch":
		if len(fields) != 3 {
			return "Usage: /watch SYMBOL PRICE"
		}
		threshold, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || threshold <= 0 {
			return "Invalid price threshold. Enter a positive number."
		}
		symbol := strings.ToUpper(fields[1])
		rule := &alert.Rule{
			Owner:     owner,
			Symbol:    symbol,
			Threshold: threshold,
			Message:   fmt.Sprintf("%s rose above your %.2f USD threshold.", symbol, threshold),
		}
		id, err := s.Store.Create(rule)
		if err != nil {
			s.log.Error().Err(err).Msg("create alert")
			return "Could not create the alert."
		}
		s.log.Info().Str("id", id).Str("symbol", symbol).Float64("threshold", threshold).Msg("alert created")
		return fmt.Sprintf("✅ Watching %s above %.2f USD.", symbol, threshold)

	case "/unwatch":
		if len(fields) != 2 {
			return "Usage: /unwatch ID"
		}
		removed, err := s.Store.DeleteIfOwner(fields[1], owner)
		if err != nil {
			s.log.Error().Err(err).Msg("delete alert")
			return "Could not delete the alert."
		}
		if !removed {
			return "No such alert."
		}
		return "Alert removed."

	default:
		return notifier.FormatHelp()
	}
}
