package rules

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Mode is the strategic priority for one turn.
type Mode int

const (
	ModeBalanced Mode = iota
	ModeFavorGrowth
	ModeFavorExtraction
)

func (m Mode) String() string {
	switch m {
	case ModeFavorGrowth:
		return "favor_growth"
	case ModeFavorExtraction:
		return "favor_extraction"
	default:
		return "balanced"
	}
}

// condition is a compiled prioritizer predicate.
type condition struct {
	Name string
	Src  string // expr source (kept for logging)
	prog *vm.Program
}

// Prioritizer decides the mode from two independent conditions. When both
// or neither hold the turn is balanced. It carries no state between turns,
// so the mode may flip back and forth when ratios hover at a threshold.
type Prioritizer struct {
	growth     condition
	extraction condition
}

// NewPrioritizer compiles the doctrine's conditions into expr bytecode.
func NewPrioritizer(d Doctrine) (*Prioritizer, error) {
	growthSrc, extractionSrc := conditionSources(d)
	growth, err := compileCondition("growth", growthSrc)
	if err != nil {
		return nil, err
	}
	extraction, err := compileCondition("extraction", extractionSrc)
	if err != nil {
		return nil, err
	}
	return &Prioritizer{growth: growth, extraction: extraction}, nil
}

// conditionSources builds the expr sources with the doctrine thresholds
// interpolated, unless the doctrine overrides them.
func conditionSources(d Doctrine) (growth, extraction string) {
	growth = fmt.Sprintf(`GrowthRatio > %g`, d.GrowthThreshold)
	extraction = fmt.Sprintf(`ExtractionRatio < %g || ExtractionCells == 1`, d.ExtractionThreshold)
	if d.GrowthCondition != "" {
		growth = d.GrowthCondition
	}
	if d.ExtractionCondition != "" {
		extraction = d.ExtractionCondition
	}
	return growth, extraction
}

func compileCondition(name, src string) (condition, error) {
	prog, err := expr.Compile(src, expr.Env(PriorityEnv{}), expr.AsBool())
	if err != nil {
		return condition{}, fmt.Errorf("compile %s condition %q: %w", name, src, err)
	}
	return condition{Name: name, Src: src, prog: prog}, nil
}

func (c condition) eval(env PriorityEnv) (bool, error) {
	out, err := vm.Run(c.prog, env)
	if err != nil {
		return false, fmt.Errorf("%s condition: %w", c.Name, err)
	}
	match, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%s condition: non-bool result %T", c.Name, out)
	}
	return match, nil
}

// Mode evaluates both conditions against env.
func (p *Prioritizer) Mode(env PriorityEnv) (Mode, error) {
	goGrowth, err := p.growth.eval(env)
	if err != nil {
		return ModeBalanced, err
	}
	goExtraction, err := p.extraction.eval(env)
	if err != nil {
		return ModeBalanced, err
	}

	switch {
	case goGrowth && !goExtraction:
		return ModeFavorGrowth, nil
	case goExtraction && !goGrowth:
		return ModeFavorExtraction, nil
	default:
		return ModeBalanced, nil
	}
}

// Sources returns the expr sources in use, for logging.
func (p *Prioritizer) Sources() (growth, extraction string) {
	return p.growth.Src, p.extraction.Src
}
