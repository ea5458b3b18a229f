package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atlanticdynamic/coderunner/internal/configblock"
	"github.com/atlanticdynamic/coderunner/internal/document"
	"github.com/atlanticdynamic/coderunner/internal/prompt"
	"github.com/atlanticdynamic/coderunner/internal/resolver"
	"github.com/atlanticdynamic/coderunner/internal/script"
	"github.com/atlanticdynamic/coderunner/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notesDoc = "# Notes\n" +
	"\n" +
	"<!--CodeRunnerCONFIG-->\n" +
	"greeting = hello\n" +
	"<!--/CodeRunnerCONFIG-->\n" +
	"\n" +
	"## Say hello\n" +
	"\n" +
	"```sh\n" +
	"echo \"$greeting, $name\"\n" +
	"echo second\n" +
	"```\n" +
	"<!--CodeRunnerOUT-->\n" +
	"<!--/CodeRunnerOUT-->\n"

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func writeDoc(t *testing.T, name, text string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func newSession(t *testing.T, values map[string]string, opts ...Option) (*Session, *bytes.Buffer) {
	t.Helper()
	var transcript bytes.Buffer
	opts = append([]Option{
		WithPrompter(prompt.NewFixed(values)),
		WithTranscript(&transcript),
		WithClock(func() time.Time { return fixedTime }),
	}, opts...)
	return New(opts...), &transcript
}

func TestSession_RunFileBacked(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "notes.md", notesDoc)
	doc, err := document.Open(path)
	require.NoError(t, err)

	sess, transcript := newSession(t, map[string]string{"name": "world"})
	require.NoError(t, sess.SelectBlock(doc, "SayHello"))

	start := time.Now()
	out, err := sess.Run(t.Context(), doc)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 3*time.Second, "run should return as soon as the script exits")

	var logged []string
	for _, entry := range out.Log {
		logged = append(logged, entry.Message)
	}
	assert.Contains(t, logged, "Script finished")

	dir := filepath.Dir(path)
	scriptPath := filepath.Join(dir, ".CodeRunner", "notes", "SayHello.sh")
	require.NotNil(t, out.Plan.Artifact)
	assert.Equal(t, scriptPath, out.Plan.Artifact.Path)
	assert.Equal(t, scriptPath, out.Plan.Invocation.Command)
	assert.Equal(t, 9, out.Plan.Line)

	content, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n\n"+
		"timestamp=\"2024-01-02T03:04:05\"\n"+
		"working_dir=\""+dir+"\"\n"+
		"greeting=\"hello\"\n"+
		"name=\"world\"\n"+
		"\n"+
		"echo \"$greeting, $name\"\n"+
		"echo second\n", string(content))

	assert.False(t, out.RunID.IsNil())
	assert.Equal(t, 0, out.Result.ExitCode)
	assert.Equal(t, "hello, world\nsecond", out.Result.Tail)

	wantSummary := "* [Script](.CodeRunner/notes/SayHello.sh)\n```\nhello, world\nsecond\n```"
	assert.Equal(t, wantSummary, out.Summary)
	assert.True(t, out.Spliced)
	assert.True(t, out.Saved)
	assert.True(t, out.Transcribed)

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "<!--CodeRunnerOUT-->\n"+wantSummary+"\n<!--/CodeRunnerOUT-->\n")

	text := transcript.String()
	assert.True(t, strings.HasPrefix(text, `{"timestamp":"2024-01-02T03:04:05",`), text)
	assert.Contains(t, text, `"name":"world"}`+"\n---\n")
	assert.Contains(t, text, "> "+scriptPath+"\n\nhello, world\nsecond\n---\n\n\n")
}

func TestSession_RunTwiceReplacesSummary(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "notes.md", notesDoc)
	doc, err := document.Open(path)
	require.NoError(t, err)

	sess, _ := newSession(t, map[string]string{"name": "world"})
	require.NoError(t, sess.SelectBlock(doc, "1"))
	_, err = sess.Run(t.Context(), doc)
	require.NoError(t, err)
	first := doc.Text()

	require.NoError(t, sess.SelectBlock(doc, "1"))
	_, err = sess.Run(t.Context(), doc)
	require.NoError(t, err)
	assert.Equal(t, first, doc.Text())
}

func TestSession_RunUnsavedBuffer(t *testing.T) {
	t.Parallel()

	doc := document.NewBuffer("intro\n\n```sh\necho $word\n```\n<!--CodeRunnerOUT-->\n<!--/CodeRunnerOUT-->\n")
	require.NoError(t, SelectLine(doc, 4))

	sess, transcript := newSession(t, map[string]string{"word": "hi"})
	out, err := sess.Run(t.Context(), doc)
	require.NoError(t, err)

	assert.Nil(t, out.Plan.Artifact)
	assert.Equal(t, "echo hi", out.Plan.Invocation.Command)
	assert.Equal(t, "Script", out.Plan.Name)
	assert.False(t, out.Plan.Args.Has(resolver.ArgWorkingDir))
	assert.Equal(t, "```\nhi\n```", out.Summary)
	assert.False(t, out.Saved)
	assert.Contains(t, doc.Text(), "<!--CodeRunnerOUT-->\n```\nhi\n```\n<!--/CodeRunnerOUT-->")
	assert.Contains(t, transcript.String(), "> echo hi\n\nhi\n---\n\n\n")
}

func TestSession_WorkingDirectoryDirective(t *testing.T) {
	t.Parallel()

	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	sub := filepath.Join(base, "work")
	require.NoError(t, os.Mkdir(sub, 0o755))

	path := writeDoc(t, "dir.md", "```sh\n#"+sub+"\npwd -P\n```\n")
	doc, err := document.Open(path)
	require.NoError(t, err)
	require.NoError(t, SelectLine(doc, 1))

	sess, _ := newSession(t, nil)
	out, err := sess.Run(t.Context(), doc)
	require.NoError(t, err)

	wd, _ := out.Plan.Args.Get(resolver.ArgWorkingDir)
	assert.Equal(t, sub, wd)
	assert.Equal(t, script.DirectiveLine, out.Plan.Block.Lines[0])
	assert.Equal(t, sub, out.Result.Tail)
	assert.False(t, out.Spliced)
}

func TestSession_Builtin(t *testing.T) {
	t.Parallel()

	s := settings.Default()
	s.Commands = map[string]string{"sh": "builtin"}

	path := writeDoc(t, "builtin.md", "# Greeting\n```sh\necho \"hi $who\"\nexit 4\n```\n")
	doc, err := document.Open(path)
	require.NoError(t, err)
	require.NoError(t, SelectLine(doc, 3))

	sess, _ := newSession(t, map[string]string{"who": "there"}, WithSettings(s))
	out, err := sess.Run(t.Context(), doc)
	require.NoError(t, err)
	assert.Equal(t, "hi there", out.Result.Tail)
	assert.Equal(t, 4, out.Result.ExitCode)
	assert.Equal(t, "Greeting", out.Plan.Name)
}

func TestSession_NonZeroExitStillSplices(t *testing.T) {
	t.Parallel()

	doc := document.NewBuffer("```sh\necho failing; exit 3\n```\n<!--CodeRunnerOUT-->\nold\n<!--/CodeRunnerOUT-->\n")
	sess, _ := newSession(t, nil)

	out, err := sess.Run(t.Context(), doc)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Result.ExitCode)
	assert.NotContains(t, doc.Text(), "old")
}

func TestSession_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		line    int
		values  map[string]string
		wantErr []error
	}{
		{
			name:    "selection outside block",
			text:    "# Title\n```sh\necho\n```\n",
			line:    1,
			wantErr: []error{ErrNotInBlock},
		},
		{
			name:    "missing value",
			text:    "```sh\necho $missing\n```\n",
			line:    2,
			wantErr: []error{resolver.ErrCancelled, prompt.ErrMissingValue},
		},
		{
			name: "undefined config reference",
			text: "<!--CodeRunnerCONFIG-->\na = ${b}\n<!--/CodeRunnerCONFIG-->\n" +
				"```sh\necho $a\n```\n",
			line:    5,
			wantErr: []error{configblock.ErrUndefinedConfigReference},
		},
		{
			name:    "syntax error",
			text:    "```sh\nif true; then echo x\n```\n",
			line:    2,
			wantErr: []error{script.ErrSyntax},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := document.NewBuffer(tt.text)
			require.NoError(t, SelectLine(doc, tt.line))

			sess, transcript := newSession(t, tt.values)
			_, err := sess.Run(t.Context(), doc)
			for _, want := range tt.wantErr {
				require.ErrorIs(t, err, want)
			}
			assert.Empty(t, transcript.String())
			assert.Equal(t, tt.text, doc.Text())
		})
	}
}

func TestSession_MemoryOffersPreviousValue(t *testing.T) {
	t.Parallel()

	text := "```sh\necho $target\n```\n"
	memory := resolver.NewMemory()

	first, _ := newSession(t, map[string]string{"target": "prod"}, WithMemory(memory))
	_, err := first.Run(t.Context(), document.NewBuffer(text))
	require.NoError(t, err)

	second, _ := newSession(t, nil, WithMemory(memory))
	out, err := second.Run(t.Context(), document.NewBuffer(text))
	require.NoError(t, err)
	assert.Equal(t, "prod", out.Result.Tail)
	assert.Same(t, memory, second.Memory())
}

func TestSession_DryRun(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "notes.md", notesDoc)
	doc, err := document.Open(path)
	require.NoError(t, err)

	sess, transcript := newSession(t, map[string]string{"name": "world"}, WithDryRun(true))
	require.NoError(t, sess.SelectBlock(doc, "sayhello"))

	out, err := sess.Run(t.Context(), doc)
	require.NoError(t, err)
	assert.True(t, out.DryRun)
	assert.Nil(t, out.Result)
	assert.Nil(t, out.Plan.Artifact)
	assert.Contains(t, out.Plan.Invocation.Source, "name=\"world\"\n")
	assert.Equal(t, "echo \"hello, world\" echo second", out.Plan.Invocation.Command)
	assert.Empty(t, transcript.String())
	assert.NoDirExists(t, filepath.Join(filepath.Dir(path), ".CodeRunner"))
	assert.Equal(t, notesDoc, doc.Text())
}

func TestSession_NoWrite(t *testing.T) {
	t.Parallel()

	path := writeDoc(t, "notes.md", notesDoc)
	doc, err := document.Open(path)
	require.NoError(t, err)

	sess, transcript := newSession(t, map[string]string{"name": "world"}, WithNoWrite(true))
	require.NoError(t, sess.SelectBlock(doc, "SayHello"))

	out, err := sess.Run(t.Context(), doc)
	require.NoError(t, err)
	assert.False(t, out.Spliced)
	assert.NotEmpty(t, transcript.String())
	assert.Equal(t, notesDoc, doc.Text())
}

func TestSession_LiveOutput(t *testing.T) {
	t.Parallel()

	var live bytes.Buffer
	sess, _ := newSession(t, nil, WithLiveOutput(&live))
	_, err := sess.Run(t.Context(), document.NewBuffer("```sh\necho one; echo two\n```\n"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", live.String())
}

func TestSession_ExecuteUnresolved(t *testing.T) {
	t.Parallel()

	sess, _ := newSession(t, nil)
	doc := document.NewBuffer("```sh\necho\n```\n")
	plan, err := sess.Prepare(doc)
	require.NoError(t, err)

	require.ErrorIs(t, sess.Materialize(plan), ErrNotResolved)
	_, err = sess.Execute(t.Context(), doc, plan)
	require.ErrorIs(t, err, ErrNotResolved)
}
