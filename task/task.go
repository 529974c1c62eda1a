// Package task defines finite-domain planning tasks: a YAML file format,
// its validation, and the compiled form consumed by the state-space backends.
package task

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTask is returned for task files that fail validation.
var ErrInvalidTask = errors.New("invalid task")

var validate = validator.New()

// File is the YAML representation of a task.
type File struct {
	Name      string            `yaml:"name"`
	Variables []VariableSpec    `yaml:"variables" validate:"required,min=1,dive"`
	Actions   []ActionSpec      `yaml:"actions" validate:"dive"`
	Initial   map[string]string `yaml:"initial" validate:"required"`
	Goal      map[string]string `yaml:"goal" validate:"required,min=1"`
}

// VariableSpec declares a variable and its values.
type VariableSpec struct {
	Name   string   `yaml:"name" validate:"required"`
	Values []string `yaml:"values" validate:"required,min=1,unique,dive,required"`
}

// ActionSpec declares an action. Cost defaults to 1.
type ActionSpec struct {
	Name string            `yaml:"name" validate:"required"`
	Cost *int              `yaml:"cost" validate:"omitempty,gte=0"`
	Pre  map[string]string `yaml:"pre"`
	Eff  map[string]string `yaml:"eff" validate:"required,min=1"`
}

// Variable is a compiled variable.
type Variable struct {
	Name   string
	Values []string
}

// Fact assigns a value index to a variable index.
type Fact struct {
	Var   int
	Value int
}

// Operator is a ground action with a precondition and unconditional effects.
type Operator struct {
	name  string
	cost  int
	Pre   []Fact
	Eff   []Fact
	Index int
}

// Name implements symsearch.Action.
func (o *Operator) Name() string { return o.name }

// Cost implements symsearch.Action.
func (o *Operator) Cost() int { return o.cost }

// Apply implements symsearch.Action.
func (o *Operator) Apply(state []int) []int {
	next := slices.Clone(state)
	for _, e := range o.Eff {
		next[e.Var] = e.Value
	}
	return next
}

// Applicable reports whether the precondition holds in state.
func (o *Operator) Applicable(state []int) bool {
	for _, p := range o.Pre {
		if state[p.Var] != p.Value {
			return false
		}
	}
	return true
}

// PreValue returns the value v must have for o to apply, or -1.
func (o *Operator) PreValue(v int) int {
	for _, p := range o.Pre {
		if p.Var == v {
			return p.Value
		}
	}
	return -1
}

// EffValue returns the value o assigns to v, or -1.
func (o *Operator) EffValue(v int) int {
	for _, e := range o.Eff {
		if e.Var == v {
			return e.Value
		}
	}
	return -1
}

// Task is a compiled planning task.
type Task struct {
	Name      string
	Variables []Variable
	Operators []*Operator
	Initial   []int
	Goal      []Fact
}

// DomainSizes returns the number of values of each variable.
func (t *Task) DomainSizes() []int {
	sizes := make([]int, len(t.Variables))
	for i, v := range t.Variables {
		sizes[i] = len(v.Values)
	}
	return sizes
}

// IsGoal reports whether state satisfies the goal.
func (t *Task) IsGoal(state []int) bool {
	for _, g := range t.Goal {
		if state[g.Var] != g.Value {
			return false
		}
	}
	return true
}

// Format renders state as "var=value" pairs.
func (t *Task) Format(state []int) string {
	parts := make([]string, len(state))
	for i, v := range state {
		parts[i] = t.Variables[i].Name + "=" + t.Variables[i].Values[v]
	}
	return strings.Join(parts, " ")
}

// Load reads and compiles a task file.
func Load(path string) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task: %w", err)
	}
	return Parse(data)
}

// Parse decodes and compiles a YAML task.
func Parse(data []byte) (*Task, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}
	return Compile(&f)
}

// Compile validates f and resolves names to indices.
func Compile(f *File) (*Task, error) {
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	t := &Task{Name: f.Name}
	varIndex := make(map[string]int, len(f.Variables))
	valueIndex := make([]map[string]int, len(f.Variables))
	for i, v := range f.Variables {
		if _, dup := varIndex[v.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate variable %q", ErrInvalidTask, v.Name)
		}
		varIndex[v.Name] = i
		valueIndex[i] = make(map[string]int, len(v.Values))
		for j, value := range v.Values {
			valueIndex[i][value] = j
		}
		t.Variables = append(t.Variables, Variable{Name: v.Name, Values: slices.Clone(v.Values)})
	}

	facts := func(where string, m map[string]string) ([]Fact, error) {
		out := make([]Fact, 0, len(m))
		for name, value := range m {
			vi, ok := varIndex[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s: unknown variable %q", ErrInvalidTask, where, name)
			}
			xi, ok := valueIndex[vi][value]
			if !ok {
				return nil, fmt.Errorf("%w: %s: unknown value %q for %q", ErrInvalidTask, where, value, name)
			}
			out = append(out, Fact{Var: vi, Value: xi})
		}
		slices.SortFunc(out, func(a, b Fact) int { return a.Var - b.Var })
		return out, nil
	}

	initial, err := facts("initial", f.Initial)
	if err != nil {
		return nil, err
	}
	if len(initial) != len(t.Variables) {
		return nil, fmt.Errorf("%w: initial state assigns %d of %d variables", ErrInvalidTask, len(initial), len(t.Variables))
	}
	t.Initial = make([]int, len(t.Variables))
	for _, fact := range initial {
		t.Initial[fact.Var] = fact.Value
	}

	if t.Goal, err = facts("goal", f.Goal); err != nil {
		return nil, err
	}

	names := make(map[string]struct{}, len(f.Actions))
	for i, a := range f.Actions {
		if _, dup := names[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate action %q", ErrInvalidTask, a.Name)
		}
		names[a.Name] = struct{}{}
		op := &Operator{name: a.Name, cost: 1, Index: i}
		if a.Cost != nil {
			op.cost = *a.Cost
		}
		if op.Pre, err = facts("action "+a.Name+" pre", a.Pre); err != nil {
			return nil, err
		}
		if op.Eff, err = facts("action "+a.Name+" eff", a.Eff); err != nil {
			return nil, err
		}
		t.Operators = append(t.Operators, op)
	}
	return t, nil
}
