// Package notify delivers best-effort user notifications. Every method
// returns a bool, not an error: a lost email never fails the operation that
// triggered it, and callers only log the outcome.
package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/arenasul/courtbet/internal/config"
	"github.com/shopspring/decimal"
)

// Notifier sends user-facing notifications for betting lifecycle events.
type Notifier interface {
	// BetConfirmed tells the user their stake is in the pool.
	BetConfirmed(to, matchLabel, outcome string, amount, potentialReturn decimal.Decimal) bool

	// BetWon tells a winner their payout amount.
	BetWon(to, matchLabel, outcome string, payout decimal.Decimal) bool

	// BetLost tells a loser the match result.
	BetLost(to, matchLabel, winner string) bool

	// BetRefunded tells the user their stake is on its way back.
	BetRefunded(to, matchLabel string, amount decimal.Decimal) bool
}

// New returns the notifier selected by configuration. With email disabled it
// returns a logger-only notifier so the call sites stay unconditional.
func New(cfg config.EmailConfig) Notifier {
	if !cfg.Enabled {
		return &LogNotifier{}
	}
	return &EmailNotifier{cfg: cfg}
}

// ──────────────────────────────────────────────────────────────────────────────
// Email notifier
// ──────────────────────────────────────────────────────────────────────────────

// EmailNotifier delivers notifications over SMTP.
type EmailNotifier struct {
	cfg config.EmailConfig
}

func (n *EmailNotifier) BetConfirmed(to, matchLabel, outcome string, amount, potentialReturn decimal.Decimal) bool {
	subject := "Bet confirmed: " + matchLabel
	body := fmt.Sprintf(
		"Your bet of R$ %s on %s is in.\nMatch: %s\nCurrent potential return: R$ %s\n\nOdds move as the pool grows, so the final payout may differ.",
		amount.StringFixed(2), outcome, matchLabel, potentialReturn.StringFixed(2))
	return n.send(to, subject, body)
}

func (n *EmailNotifier) BetWon(to, matchLabel, outcome string, payout decimal.Decimal) bool {
	subject := "You won! " + matchLabel
	body := fmt.Sprintf(
		"%s won the match %s.\nYour payout: R$ %s\n\nCongratulations!",
		outcome, matchLabel, payout.StringFixed(2))
	return n.send(to, subject, body)
}

func (n *EmailNotifier) BetLost(to, matchLabel, winner string) bool {
	subject := "Match settled: " + matchLabel
	body := fmt.Sprintf(
		"The match %s has finished. Winner: %s.\nBetter luck next time.",
		matchLabel, winner)
	return n.send(to, subject, body)
}

func (n *EmailNotifier) BetRefunded(to, matchLabel string, amount decimal.Decimal) bool {
	subject := "Bet refunded: " + matchLabel
	body := fmt.Sprintf(
		"The match %s was cancelled. Your stake of R$ %s is being returned to your original payment method.",
		matchLabel, amount.StringFixed(2))
	return n.send(to, subject, body)
}

func (n *EmailNotifier) send(to, subject, body string) bool {
	if to == "" {
		return false
	}

	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := n.cfg.Host + ":" + n.cfg.Port
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		slog.Warn("notify: email send failed", "to", to, "subject", subject, "err", err)
		return false
	}
	slog.Info("notify: email sent", "to", to, "subject", subject)
	return true
}

// ──────────────────────────────────────────────────────────────────────────────
// Log-only notifier
// ──────────────────────────────────────────────────────────────────────────────

// LogNotifier logs notifications instead of delivering them. Used in dev and
// whenever email is disabled.
type LogNotifier struct{}

func (n *LogNotifier) BetConfirmed(to, matchLabel, outcome string, amount, potentialReturn decimal.Decimal) bool {
	slog.Info("notify: bet confirmed", "to", to, "match", matchLabel,
		"outcome", outcome, "amount", amount.StringFixed(2), "potential_return", potentialReturn.StringFixed(2))
	return true
}

func (n *LogNotifier) BetWon(to, matchLabel, outcome string, payout decimal.Decimal) bool {
	slog.Info("notify: bet won", "to", to, "match", matchLabel,
		"outcome", outcome, "payout", payout.StringFixed(2))
	return true
}

func (n *LogNotifier) BetLost(to, matchLabel, winner string) bool {
	slog.Info("notify: bet lost", "to", to, "match", matchLabel, "winner", winner)
	return true
}

func (n *LogNotifier) BetRefunded(to, matchLabel string, amount decimal.Decimal) bool {
	slog.Info("notify: bet refunded", "to", to, "match", matchLabel, "amount", amount.StringFixed(2))
	return true
}
