package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()

	env := map[string]string{"HOME_DIR": "/home/dev", "EMPTY": "", "SHELL_BIN": "/bin/bash"}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty string", input: "", want: ""},
		{name: "no references", input: "/bin/sh", want: "/bin/sh"},
		{name: "defined", input: "${SHELL_BIN}", want: "/bin/bash"},
		{name: "embedded", input: "${HOME_DIR}/notes.md", want: "/home/dev/notes.md"},
		{name: "defined but empty wins over default", input: "${EMPTY:x}", want: ""},
		{name: "default used", input: "${RUN_DIR:.CodeRunner}", want: ".CodeRunner"},
		{name: "empty default", input: "a${NOPE:}b", want: "ab"},
		{name: "default containing colon", input: "${NOPE:C:/tools/sh.exe}", want: "C:/tools/sh.exe"},
		{name: "bare dollar is untouched", input: "$HOME_DIR", want: "$HOME_DIR"},
		{name: "undefined", input: "${NOPE}/x", want: "${NOPE}/x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Expand(tt.input, lookupFrom(env))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUndefinedVariable)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpand_ReportsEveryMissingVariable(t *testing.T) {
	t.Parallel()

	_, err := Expand("${A}${B}", lookupFrom(nil))
	require.ErrorIs(t, err, ErrUndefinedVariable)
	assert.Contains(t, err.Error(), "A")
	assert.Contains(t, err.Error(), "B")
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CODERUNNER_TEST_SHELL", "/usr/bin/zsh")

	got, err := ExpandEnvVars("${CODERUNNER_TEST_SHELL:/bin/sh}")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/zsh", got)
}
