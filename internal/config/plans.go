package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/plan"
)

// planFile is the on-disk shape of a tier table override:
//
//	[[tier]]
//	plan = "pro"
//	limit = 44000
type planFile struct {
	Tiers []planEntry `toml:"tier"`
}

type planEntry struct {
	Plan  string `toml:"plan"`
	Limit int64  `toml:"limit"`
}

// LoadPlanTable reads a tier table from a TOML file. A missing file yields
// the default table.
func LoadPlanTable(path string) (plan.Table, error) {
	if path == "" {
		return plan.DefaultTable(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return plan.DefaultTable(), nil
	}

	var pf planFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return plan.Table{}, fmt.Errorf("decode plans %s: %w", path, err)
	}

	tiers := make([]plan.Tier, 0, len(pf.Tiers))
	for _, e := range pf.Tiers {
		p, err := models.ParsePlan(e.Plan)
		if err != nil {
			return plan.Table{}, fmt.Errorf("plans %s: %w", path, err)
		}
		tiers = append(tiers, plan.Tier{Plan: p, Limit: e.Limit})
	}

	table, err := plan.NewTable(tiers)
	if err != nil {
		return plan.Table{}, fmt.Errorf("plans %s: %w", path, err)
	}
	return table, nil
}
