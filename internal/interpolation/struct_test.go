package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Path  string `env_interpolation:"yes"`
	Plain string
}

type outer struct {
	Name     string            `env_interpolation:"yes"`
	Literal  string            `env_interpolation:"no"`
	Commands map[string]string `env_interpolation:"yes"`
	Args     []string          `env_interpolation:"yes"`
	Nested   inner             `env_interpolation:"yes"`
	NestedP  *inner            `env_interpolation:"yes"`
	Skipped  inner
	Count    int `env_interpolation:"yes"`
	hidden   string
}

func TestInterpolate(t *testing.T) {
	t.Parallel()

	env := lookupFrom(map[string]string{"USER": "dev", "SH": "/bin/dash"})
	v := &outer{
		Name:     "${USER}",
		Literal:  "${USER}",
		Commands: map[string]string{"sh": "${SH}", "bash": "${BASH:/bin/bash}"},
		Args:     []string{"${USER}", ""},
		Nested:   inner{Path: "/home/${USER}", Plain: "${USER}"},
		NestedP:  &inner{Path: "${USER}"},
		Skipped:  inner{Path: "${USER}"},
		Count:    3,
		hidden:   "${USER}",
	}

	require.NoError(t, Interpolate(v, env))
	assert.Equal(t, "dev", v.Name)
	assert.Equal(t, "${USER}", v.Literal)
	assert.Equal(t, map[string]string{"sh": "/bin/dash", "bash": "/bin/bash"}, v.Commands)
	assert.Equal(t, []string{"dev", ""}, v.Args)
	assert.Equal(t, "/home/dev", v.Nested.Path)
	assert.Equal(t, "${USER}", v.Nested.Plain)
	assert.Equal(t, "dev", v.NestedP.Path)
	assert.Equal(t, "${USER}", v.Skipped.Path)
	assert.Equal(t, "${USER}", v.hidden)
}

func TestInterpolate_Errors(t *testing.T) {
	t.Parallel()

	v := &outer{
		Name:     "${MISSING}",
		Commands: map[string]string{"sh": "${ALSO_MISSING}"},
		Nested:   inner{Path: "${DEEP}"},
	}
	err := Interpolate(v, lookupFrom(nil))
	require.ErrorIs(t, err, ErrUndefinedVariable)
	assert.Contains(t, err.Error(), "field Name")
	assert.Contains(t, err.Error(), "field Commands[sh]")
	assert.Contains(t, err.Error(), "field Nested.Path")
}

func TestInterpolate_InvalidTargets(t *testing.T) {
	t.Parallel()

	require.NoError(t, Interpolate(nil, lookupFrom(nil)))
	require.NoError(t, Interpolate((*outer)(nil), lookupFrom(nil)))
	require.Error(t, Interpolate(outer{}, lookupFrom(nil)))

	s := "x"
	require.Error(t, Interpolate(&s, lookupFrom(nil)))
}
