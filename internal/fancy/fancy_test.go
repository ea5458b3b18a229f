package fancy_test

import (
	"testing"

	"github.com/atlanticdynamic/coderunner/internal/fancy"
	"github.com/stretchr/testify/assert"
)

func TestStylesRender(t *testing.T) {
	sample := "sample"
	for name, render := range map[string]func(string) string{
		"block":   fancy.BlockText,
		"param":   fancy.ParamText,
		"config":  fancy.ConfigText,
		"valid":   fancy.ValidText,
		"error":   fancy.ErrorText,
		"path":    fancy.PathText,
		"summary": fancy.SummaryText,
		"count":   fancy.CountText,
		"prompt":  fancy.PromptLabel,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, render(sample), sample)
		})
	}
}

func TestTree(t *testing.T) {
	tree := fancy.Tree()
	assert.NotNil(t, tree)

	tree.Root("Root Node")
	child := tree.Child("Child Node")
	child.Child("Grandchild")

	out := tree.String()
	assert.Contains(t, out, "Root Node")
	assert.Contains(t, out, "Child Node")
	assert.Contains(t, out, "Grandchild")
}

func TestBranchNode(t *testing.T) {
	node := fancy.BranchNode("Blocks", "(5)")
	out := node.String()
	assert.Contains(t, out, "Blocks")
	assert.Contains(t, out, "(5)")
}

func TestDocumentTreeWithBlocks(t *testing.T) {
	doc := fancy.DocumentTree("notes.md")
	doc.Child(fancy.BlockNode(1, "DeployTheApp", 12, []string{"host", "user_name"}))
	doc.Child(fancy.BlockNode(2, "Script", 30, nil))

	out := doc.String()
	assert.Contains(t, out, "notes.md")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "DeployTheApp")
	assert.Contains(t, out, "line 12")
	assert.Contains(t, out, "$host")
	assert.Contains(t, out, "$user_name")
	assert.Contains(t, out, "#2")
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter", "abc", 10, "abc"},
		{"equal", "abcde", 5, "abcde"},
		{"longer", "abcdefghij", 8, "abcde..."},
		{"tiny limit", "abcdef", 2, "abcdef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fancy.TruncateString(tt.in, tt.max))
		})
	}
}
