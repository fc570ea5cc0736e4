package rules

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
)

// Level is one round of the game.
type Level struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Budget int    `json:"budget"`
	Rules  []Rule `json:"rules"`
}

// Catalog is the fixed, ordered collection of rules plus the level table.
type Catalog struct {
	rules  []Rule
	levels map[int]Level
}

// NewCatalog validates rule records and rejects duplicate identifiers. Level rules
// are bound to their level number; global rules keep their declared level.
func NewCatalog(levels []Level, global ...Rule) (*Catalog, error) {
	validate := validator.New()
	c := &Catalog{levels: make(map[int]Level, len(levels))}
	seen := make(map[string]struct{})

	add := func(r Rule) error {
		if err := validate.Struct(r); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid rule %q", r.ID))
		}
		if _, dup := seen[r.ID]; dup {
			return appErrors.Clone(appErrors.ErrDuplicateRule, fmt.Sprintf("rule id %q is declared twice", r.ID))
		}
		seen[r.ID] = struct{}{}
		c.rules = append(c.rules, r)
		return nil
	}

	for _, lvl := range levels {
		if lvl.Number < 1 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("level number %d must be positive", lvl.Number))
		}
		if _, dup := c.levels[lvl.Number]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("level %d is declared twice", lvl.Number))
		}
		bound := make([]Rule, 0, len(lvl.Rules))
		for _, r := range lvl.Rules {
			r = r.AtLevel(lvl.Number)
			if err := add(r); err != nil {
				return nil, err
			}
			bound = append(bound, r)
		}
		lvl.Rules = bound
		c.levels[lvl.Number] = lvl
	}
	for _, r := range global {
		if err := add(r); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustCatalog is NewCatalog panicking on authoring errors.
func MustCatalog(levels []Level, global ...Rule) *Catalog {
	c, err := NewCatalog(levels, global...)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the built-in game catalog.
func Default() *Catalog {
	return MustCatalog(DefaultLevels(), GlobalRules()...)
}

// Rules returns every rule in catalog order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Rule looks up a rule by id.
func (c *Catalog) Rule(id string) (Rule, bool) {
	for _, r := range c.rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// Level returns the level definition.
func (c *Catalog) Level(number int) (Level, bool) {
	lvl, ok := c.levels[number]
	return lvl, ok
}

// Levels returns the level table in order.
func (c *Catalog) Levels() []Level {
	out := make([]Level, 0, len(c.levels))
	for _, lvl := range c.levels {
		out = append(out, lvl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// LevelCount returns the number of playable levels.
func (c *Catalog) LevelCount() int {
	return len(c.levels)
}

// Budget returns the willpower budget of a level, 0 when unknown.
func (c *Catalog) Budget(level int) int {
	return c.levels[level].Budget
}

// IsActive reports whether r applies to ctx: same level, wildcard level, or an
// activation predicate that holds.
func IsActive(r Rule, ctx Context) bool {
	if r.Level == AllLevels || r.Level == ctx.Level {
		return true
	}
	if r.Activation == nil {
		return false
	}
	switch r.Activation.Kind {
	case ActivateFromLevel:
		return ctx.Level >= r.Activation.Value
	case ActivateBankedECTS:
		return ctx.BankedECTS >= r.Activation.Value
	case ActivateCompletedLevels:
		return len(ctx.History) >= r.Activation.Value
	}
	return false
}

// Active filters the catalog down to the rules relevant for ctx, keeping catalog order.
func (c *Catalog) Active(ctx Context) []Rule {
	active := make([]Rule, 0, len(c.rules))
	for _, r := range c.rules {
		if IsActive(r, ctx) {
			active = append(active, r)
		}
	}
	return active
}
