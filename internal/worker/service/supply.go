package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"onchain-health/internal/worker/model"
	"onchain-health/pkg/utils"
)

// resolveSupply 填充默认供应量并校验。未配置流通量时按 total - burned - locked 推导
func resolveSupply(cfg model.SupplyConfig) (model.SupplyConfig, error) {
	parse := func(name, value, fallback string) (decimal.Decimal, error) {
		if value == "" {
			value = fallback
		}
		d, err := utils.ParseAmount(value)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s supply %q: %w", name, value, err)
		}
		return d, nil
	}

	total, err := parse("total", cfg.Total, DefaultTotalSupply)
	if err != nil {
		return model.SupplyConfig{}, err
	}
	burned, err := parse("burned", cfg.Burned, DefaultBurnedTokens)
	if err != nil {
		return model.SupplyConfig{}, err
	}
	locked, err := parse("locked", cfg.Locked, DefaultLockedTokens)
	if err != nil {
		return model.SupplyConfig{}, err
	}

	circulating := total.Sub(burned).Sub(locked)
	if cfg.Circulating != "" {
		if circulating, err = parse("circulating", cfg.Circulating, ""); err != nil {
			return model.SupplyConfig{}, err
		}
	}
	if circulating.IsNegative() {
		return model.SupplyConfig{}, fmt.Errorf("burned and locked supply exceed total supply %s", total)
	}
	if circulating.GreaterThan(total) {
		return model.SupplyConfig{}, fmt.Errorf("circulating supply %s exceeds total supply %s", circulating, total)
	}

	return model.SupplyConfig{
		Total:       utils.FormatAmount(total),
		Circulating: utils.FormatAmount(circulating),
		Burned:      utils.FormatAmount(burned),
		Locked:      utils.FormatAmount(locked),
	}, nil
}
