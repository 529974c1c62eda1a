// Package bdd implements the symbolic state-space interfaces on binary
// decision diagrams.
//
// Each finite-domain variable is encoded on ceil(log2(domain)) boolean
// variables. Current and next-state copies of every bit are interleaved in
// the variable order (bit i at level 2i, its primed copy at level 2i+1).
// Every operator gets its own transition relation.
package bdd

import (
	"fmt"
	"math/big"

	"github.com/dalzilio/rudd"

	"github.com/pdrpinto/symsearch"
	"github.com/pdrpinto/symsearch/internal"
	"github.com/pdrpinto/symsearch/task"
)

// engine lists the rudd operations used by the model.
type engine interface {
	Error() string
	True() rudd.Node
	False() rudd.Node
	Ithvar(i int) rudd.Node
	NIthvar(i int) rudd.Node
	Makeset(varset []int) rudd.Node
	Not(n rudd.Node) rudd.Node
	Apply(left rudd.Node, right rudd.Node, op rudd.Operator) rudd.Node
	AppEx(left rudd.Node, right rudd.Node, op rudd.Operator, varset rudd.Node) rudd.Node
	Satcount(n rudd.Node) *big.Int
	Allnodes(f func(id, level, low, high int) error, n ...rudd.Node) error
}

// Options sizes the BDD tables.
type Options struct {
	NodeSize  int
	CacheSize int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithNodeSize sets the initial node table size.
func WithNodeSize(n int) Option {
	return func(o *Options) { o.NodeSize = n }
}

// WithCacheSize sets the operation cache size.
func WithCacheSize(n int) Option {
	return func(o *Options) { o.CacheSize = n }
}

// Model is a symsearch.Problem over BDD nodes.
type Model struct {
	task *task.Task
	b    engine

	// offsets[v] is the index of the first bit of variable v; widths[v] its bit count.
	offsets []int
	widths  []int
	nbits   int

	// same relates every bit to its primed copy and renames sets across copies.
	current, primed rudd.Node
	same            rudd.Node
	valid, goal     rudd.Node
	trs             map[int][]symsearch.Transition[rudd.Node]
}

var _ symsearch.Problem[rudd.Node] = (*Model)(nil)

// New builds the BDD model of t.
func New(t *task.Task, opts ...Option) (*Model, error) {
	o := Options{NodeSize: 10000, CacheSize: 3000}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Model{
		task:    t,
		offsets: make([]int, len(t.Variables)),
		widths:  make([]int, len(t.Variables)),
		trs:     make(map[int][]symsearch.Transition[rudd.Node]),
	}
	for v, size := range t.DomainSizes() {
		m.offsets[v] = m.nbits
		m.widths[v] = internal.BitWidth(size)
		m.nbits += m.widths[v]
	}

	b, err := rudd.New(2*m.nbits, rudd.Nodesize(o.NodeSize), rudd.Cachesize(o.CacheSize))
	if err != nil {
		return nil, fmt.Errorf("bdd: %w", err)
	}
	m.b = b

	cur := make([]int, m.nbits)
	pri := make([]int, m.nbits)
	for i := 0; i < m.nbits; i++ {
		cur[i] = 2 * i
		pri[i] = 2*i + 1
	}
	m.current = m.b.Makeset(cur)
	m.primed = m.b.Makeset(pri)
	m.same = m.b.True()
	for v := range t.Variables {
		m.same = m.and(m.same, m.frame(v))
	}

	m.valid = m.b.True()
	for v, size := range t.DomainSizes() {
		values := m.b.False()
		for x := 0; x < size; x++ {
			values = m.or(values, m.value(v, x, false))
		}
		m.valid = m.and(m.valid, values)
	}

	m.goal = m.valid
	for _, g := range t.Goal {
		m.goal = m.and(m.goal, m.value(g.Var, g.Value, false))
	}

	for _, op := range t.Operators {
		m.trs[op.Cost()] = append(m.trs[op.Cost()], m.relation(op))
	}
	if msg := m.b.Error(); msg != "" {
		return nil, fmt.Errorf("bdd: %s", msg)
	}
	return m, nil
}

func (m *Model) and(a, b rudd.Node) rudd.Node { return m.b.Apply(a, b, rudd.OPand) }
func (m *Model) or(a, b rudd.Node) rudd.Node  { return m.b.Apply(a, b, rudd.OPor) }

// level returns the BDD level of bit i of variable v.
func (m *Model) level(v, i int, primed bool) int {
	l := 2 * (m.offsets[v] + i)
	if primed {
		l++
	}
	return l
}

// value returns the cube of v == x on the current or primed copy.
func (m *Model) value(v, x int, primed bool) rudd.Node {
	cube := m.b.True()
	for i := 0; i < m.widths[v]; i++ {
		bit := m.b.NIthvar(m.level(v, i, primed))
		if x&(1<<i) != 0 {
			bit = m.b.Ithvar(m.level(v, i, primed))
		}
		cube = m.and(cube, bit)
	}
	return cube
}

// frame returns the constraint that v keeps its value.
func (m *Model) frame(v int) rudd.Node {
	f := m.b.True()
	for i := 0; i < m.widths[v]; i++ {
		same := m.b.Apply(m.b.Ithvar(m.level(v, i, false)), m.b.Ithvar(m.level(v, i, true)), rudd.OPbiimp)
		f = m.and(f, same)
	}
	return f
}

func (m *Model) relation(op *task.Operator) *relation {
	t := m.b.True()
	for _, p := range op.Pre {
		t = m.and(t, m.value(p.Var, p.Value, false))
	}
	for v := range m.task.Variables {
		if x := op.EffValue(v); x >= 0 {
			t = m.and(t, m.value(v, x, true))
		} else {
			t = m.and(t, m.frame(v))
		}
	}
	return &relation{model: m, op: op, t: t}
}

// Task returns the task of the model.
func (m *Model) Task() *task.Task { return m.task }

func (m *Model) Empty() rudd.Node { return m.b.False() }

func (m *Model) Union(a, b rudd.Node) rudd.Node { return m.or(a, b) }

func (m *Model) Intersect(a, b rudd.Node) rudd.Node { return m.and(a, b) }

func (m *Model) Complement(a rudd.Node) rudd.Node { return m.and(m.valid, m.b.Not(a)) }

func (m *Model) IsEmpty(a rudd.Node) bool { return *a == *m.b.False() }

func (m *Model) NodeCount(a rudd.Node) int {
	n := 0
	_ = m.b.Allnodes(func(id, level, low, high int) error {
		n++
		return nil
	}, a)
	return n
}

// StateCount counts the valid states of a. Satcount ranges over the primed
// bits too, which a state set never constrains.
func (m *Model) StateCount(a rudd.Node) float64 {
	count := m.b.Satcount(m.and(a, m.valid))
	count.Rsh(count, uint(m.nbits))
	f, _ := new(big.Float).SetInt(count).Float64()
	return f
}

func (m *Model) StateSetOf(state []int) rudd.Node {
	cube := m.b.True()
	for v, x := range state {
		cube = m.and(cube, m.value(v, x, false))
	}
	return cube
}

func (m *Model) Contains(a rudd.Node, state []int) bool {
	return !m.IsEmpty(m.and(a, m.StateSetOf(state)))
}

func (m *Model) Transitions() map[int][]symsearch.Transition[rudd.Node] { return m.trs }

func (m *Model) HasZeroCost() bool { return len(m.trs[0]) > 0 }

func (m *Model) Initial() []int { return m.task.Initial }

// ShrinkForall is the identity: the model does not abstract variables.
func (m *Model) ShrinkForall(a rudd.Node) rudd.Node { return a }

func (m *Model) Goal() rudd.Node { return m.goal }

type relation struct {
	model *Model
	op    *task.Operator
	t     rudd.Node
}

func (r *relation) Cost() int { return r.op.Cost() }

func (r *relation) Actions() []symsearch.Action { return []symsearch.Action{r.op} }

// Image computes exists x. from(x) & T(x, x'), renamed back to x.
func (r *relation) Image(from rudd.Node) rudd.Node {
	m := r.model
	next := m.b.AppEx(from, r.t, rudd.OPand, m.current)
	return m.b.AppEx(next, m.same, rudd.OPand, m.primed)
}

// Preimage computes exists x'. to(x') & T(x, x'), restricted to valid
// states: effects without a precondition leave the old value free.
func (r *relation) Preimage(to rudd.Node) rudd.Node {
	m := r.model
	primed := m.b.AppEx(to, m.same, rudd.OPand, m.current)
	return m.and(m.b.AppEx(primed, r.t, rudd.OPand, m.primed), m.valid)
}
