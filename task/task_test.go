package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tk, err := Load(filepath.Join("testdata", "gripper.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gripper", tk.Name)
	assert.Equal(t, []int{2, 3}, tk.DomainSizes())
	assert.Equal(t, []int{0, 0}, tk.Initial)
	assert.Equal(t, []Fact{{Var: 1, Value: 1}}, tk.Goal)
	require.Len(t, tk.Operators, 6)

	pick := tk.Operators[2]
	assert.Equal(t, "pick-a", pick.Name())
	assert.Equal(t, 1, pick.Cost())
	assert.Equal(t, 2, pick.Index)
	if diff := cmp.Diff([]Fact{{Var: 0, Value: 0}, {Var: 1, Value: 0}}, pick.Pre); diff != "" {
		t.Errorf("pre mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, tk.Operators[5].Cost())
}

func TestOperator(t *testing.T) {
	tk, err := Load(filepath.Join("testdata", "gripper.yaml"))
	require.NoError(t, err)
	pick := tk.Operators[2]

	state := []int{0, 0}
	assert.True(t, pick.Applicable(state))
	next := pick.Apply(state)
	assert.Equal(t, []int{0, 2}, next)
	assert.Equal(t, []int{0, 0}, state, "Apply must not modify its input")
	assert.False(t, pick.Applicable(next))

	assert.Equal(t, 0, pick.PreValue(0))
	assert.Equal(t, -1, pick.EffValue(0))
	assert.Equal(t, 2, pick.EffValue(1))

	assert.False(t, tk.IsGoal(next))
	assert.True(t, tk.IsGoal([]int{1, 1}))
	assert.Equal(t, "robot=rooma ball=held", tk.Format(next))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "malformed yaml",
			src:  "variables: [",
		},
		{
			name: "no goal",
			src: `
variables: [{name: v, values: [a, b]}]
initial: {v: a}
goal: {}
`,
			want: "Goal",
		},
		{
			name: "duplicate variable",
			src: `
variables: [{name: v, values: [a]}, {name: v, values: [b]}]
initial: {v: a}
goal: {v: a}
`,
			want: `duplicate variable "v"`,
		},
		{
			name: "duplicate value",
			src: `
variables: [{name: v, values: [a, a]}]
initial: {v: a}
goal: {v: a}
`,
			want: "Values",
		},
		{
			name: "unknown variable",
			src: `
variables: [{name: v, values: [a, b]}]
initial: {v: a}
goal: {w: a}
`,
			want: `unknown variable "w"`,
		},
		{
			name: "unknown value",
			src: `
variables: [{name: v, values: [a, b]}]
initial: {v: c}
goal: {v: a}
`,
			want: `unknown value "c"`,
		},
		{
			name: "partial initial state",
			src: `
variables: [{name: v, values: [a, b]}, {name: w, values: [a, b]}]
initial: {v: a}
goal: {v: b}
`,
			want: "assigns 1 of 2",
		},
		{
			name: "negative cost",
			src: `
variables: [{name: v, values: [a, b]}]
actions: [{name: x, cost: -1, eff: {v: b}}]
initial: {v: a}
goal: {v: b}
`,
			want: "Cost",
		},
		{
			name: "duplicate action",
			src: `
variables: [{name: v, values: [a, b]}]
actions: [{name: x, eff: {v: b}}, {name: x, eff: {v: a}}]
initial: {v: a}
goal: {v: b}
`,
			want: `duplicate action "x"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTask)
			if tc.want != "" {
				assert.Contains(t, err.Error(), tc.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
