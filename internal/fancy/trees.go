package fancy

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// Tree returns a new tree with common styling applied
func Tree() *tree.Tree {
	t := tree.New()
	t.EnumeratorStyle(BranchStyle)
	t.Enumerator(tree.RoundedEnumerator)
	return t
}

// BranchNode creates a styled section header node
func BranchNode(title string, count string) *tree.Tree {
	return Tree().Root(
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			HeaderStyle.Render(title),
			" ",
			InfoStyle.Render(count),
		),
	)
}

// DocumentTree starts a tree rooted at a document path.
func DocumentTree(path string) *tree.Tree {
	return Tree().Root(RootStyle.Render(path))
}

// BlockNode creates a node for one script block with its parameters as children.
func BlockNode(index int, name string, line int, params []string) *tree.Tree {
	title := lipgloss.JoinHorizontal(
		lipgloss.Top,
		CountText("#"+strconv.Itoa(index)),
		" ",
		BlockText(name),
		" ",
		InfoStyle.Render("line "+strconv.Itoa(line)),
	)
	node := Tree().Root(title)
	for _, p := range params {
		node.Child(ParamText("$" + p))
	}
	return node
}
