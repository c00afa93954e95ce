package service

import (
	"github.com/arenasul/courtbet/internal/config"
	"github.com/arenasul/courtbet/internal/domain"
	"github.com/shopspring/decimal"
)

// houseEdge converts the configured edge fraction to a decimal once per use.
// Falls back to the domain default when the config value is unusable.
func houseEdge(cfg *config.Config) decimal.Decimal {
	edge := decimal.NewFromFloat(cfg.Betting.HouseEdge)
	one := decimal.NewFromInt(1)
	if !edge.IsPositive() || edge.GreaterThanOrEqual(one) {
		return domain.DefaultHouseEdge
	}
	return edge
}

// minBet returns the configured minimum stake as a decimal.
func minBet(cfg *config.Config) decimal.Decimal {
	return decimal.NewFromFloat(cfg.Betting.MinBet)
}
