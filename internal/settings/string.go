package settings

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/atlanticdynamic/coderunner/internal/fancy"
)

// String returns a pretty-printed tree representation of the settings
func (s *Settings) String() string {
	source := s.Source
	if source == "" {
		source = "defaults"
	}

	t := fancy.Tree()
	t.Root(fancy.RootStyle.Render(fmt.Sprintf("CodeRunner Settings (%s)", source)))

	logs := fancy.BranchNode("Logging", "")
	logs.Child(fmt.Sprintf("Verbose: %t", s.Verbose))
	logs.Child(fmt.Sprintf("Level: %s", s.LogLevel))
	logs.Child(fmt.Sprintf("Format: %s", s.LogFormat))
	t.Child(logs)

	ids := make([]string, 0, len(s.Commands))
	for id := range s.Commands {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	commands := fancy.BranchNode("Commands", fancy.CountText("("+strconv.Itoa(len(ids))+")"))
	for _, id := range ids {
		label := fmt.Sprintf("%s: %s", id, s.Commands[id])
		if id == s.Interpreter {
			label = fancy.ValidText(label + " (interpreter)")
		}
		commands.Child(label)
	}
	t.Child(commands)

	doc := fancy.BranchNode("Document", "")
	doc.Child(fmt.Sprintf("Block scope: %s", s.BlockScope))
	doc.Child(fmt.Sprintf("Header scope: %s", s.HeaderScope))
	doc.Child(fmt.Sprintf("Config tag: %s", fancy.ConfigText(s.ConfigTag)))
	doc.Child(fmt.Sprintf("Output tag: %s", fancy.ConfigText(s.OutputTag)))
	t.Child(doc)

	run := fancy.BranchNode("Runs", "")
	run.Child(fmt.Sprintf("Tail lines: %d", s.TailLines))
	run.Child(fmt.Sprintf("Run directory: %s", s.RunDirectory))
	run.Child(fmt.Sprintf("Transcript: %s", s.Transcript))
	t.Child(run)

	return t.String()
}
