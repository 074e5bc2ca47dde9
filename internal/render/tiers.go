package render

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Tier is one risk band. When is a CEL expression over the double variable
// pct (the rounded percentage, 0–100); an empty When always matches.
type Tier struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
	When  string `yaml:"when"`
}

// DefaultTiers are the low / moderate / high bands.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "low", Color: "lightgreen", When: "pct < 20.0"},
		{Name: "moderate", Color: "khaki", When: "pct < 50.0"},
		{Name: "high", Color: "lightcoral"},
	}
}

type compiledTier struct {
	Tier
	prog cel.Program // nil when When is empty
}

// TierTable picks the first tier whose expression holds for a percentage.
// Expressions are compiled once; a TierTable is safe for concurrent use.
type TierTable struct {
	tiers []compiledTier
}

// NewTierTable compiles tiers in order.
func NewTierTable(tiers []Tier) (*TierTable, error) {
	if len(tiers) == 0 {
		return nil, errors.New("render.NewTierTable: at least one tier is required")
	}

	env, err := cel.NewEnv(cel.Variable("pct", cel.DoubleType))
	if err != nil {
		return nil, fmt.Errorf("render.NewTierTable: create CEL environment: %w", err)
	}

	table := &TierTable{tiers: make([]compiledTier, 0, len(tiers))}
	for i, t := range tiers {
		if t.Color == "" {
			return nil, fmt.Errorf("render.NewTierTable: tier %d (%s) has no color", i, t.Name)
		}
		ct := compiledTier{Tier: t}
		if t.When != "" {
			ast, issues := env.Compile(t.When)
			if issues != nil && issues.Err() != nil {
				return nil, fmt.Errorf("render.NewTierTable: tier %q: compile %q: %w", t.Name, t.When, issues.Err())
			}
			if !ast.OutputType().IsExactType(cel.BoolType) {
				return nil, fmt.Errorf("render.NewTierTable: tier %q: %q must be a boolean expression", t.Name, t.When)
			}
			ct.prog, err = env.Program(ast, cel.CostLimit(10000))
			if err != nil {
				return nil, fmt.Errorf("render.NewTierTable: tier %q: program: %w", t.Name, err)
			}
		}
		table.tiers = append(table.tiers, ct)
	}
	return table, nil
}

// MustTierTable is NewTierTable that panics on error, for static tables.
func MustTierTable(tiers []Tier) *TierTable {
	t, err := NewTierTable(tiers)
	if err != nil {
		panic(err)
	}
	return t
}

// Match returns the first tier matching pct. An expression that fails to
// evaluate counts as not matching. ok is false when no tier matched.
func (tt *TierTable) Match(pct float64) (tier Tier, ok bool) {
	for _, t := range tt.tiers {
		if t.prog == nil {
			return t.Tier, true
		}
		out, _, err := t.prog.Eval(map[string]any{"pct": pct})
		if err != nil {
			continue
		}
		if matched, isBool := out.Value().(bool); isBool && matched {
			return t.Tier, true
		}
	}
	return Tier{}, false
}
