package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atlanticdynamic/coderunner/internal/configblock"
	"github.com/atlanticdynamic/coderunner/internal/document"
	"github.com/atlanticdynamic/coderunner/internal/resolver"
	"github.com/atlanticdynamic/coderunner/internal/script"
)

// Navigable is a document whose blocks can be listed and whose selection can be moved.
// document.Buffer and document.File implement it.
type Navigable interface {
	document.Document
	Blocks() []document.Region
	LineNumber(pos int) int
	LineOffset(line int) (int, error)
	SetSelection(pos int)
}

// BlockInfo summarizes one fenced block.
type BlockInfo struct {
	// Index is 1-based, in document order.
	Index int

	// Line is the 1-based line of the opening fence.
	Line int

	Name       string
	Shell      bool
	Region     document.Region
	WorkingDir string
	Params     []string

	// Prompted lists the parameters that neither the config block nor an implicit
	// argument supplies.
	Prompted []string

	// SyntaxErr is the POSIX parse error of a shell block, if any.
	SyntaxErr error
}

// Blocks lists every fenced block of doc.
func (s *Session) Blocks(doc Navigable) ([]BlockInfo, error) {
	config, err := configblock.Extract(doc, s.settings.ConfigTag, s.logger)
	if err != nil {
		return nil, err
	}

	regions := doc.Blocks()
	infos := make([]BlockInfo, 0, len(regions))
	for i, region := range regions {
		header, _ := document.HeaderBefore(doc, region.A, s.settings.HeaderScope)
		block := script.Parse(document.RegionText(doc, region))

		info := BlockInfo{
			Index:      i + 1,
			Line:       doc.LineNumber(region.A),
			Name:       script.Name(header),
			Shell:      doc.MatchScope(region.A, document.ScopeShellSource),
			Region:     region,
			WorkingDir: block.WorkingDir,
			Params:     block.Parameters(),
		}
		for _, p := range info.Params {
			if config.Has(p) || p == resolver.ArgTimestamp || p == resolver.ArgWorkingDir {
				continue
			}
			info.Prompted = append(info.Prompted, p)
		}
		if info.Shell {
			info.SyntaxErr = script.Check(info.Name, block.Code())
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// SelectLine places the selection at the start of a 1-based line.
func SelectLine(doc Navigable, line int) error {
	pos, err := doc.LineOffset(line)
	if err != nil {
		return err
	}
	doc.SetSelection(pos)
	return nil
}

// SelectBlock places the selection on the opening fence of the block named by ref: either
// a 1-based index or a script name, compared case-insensitively.
func (s *Session) SelectBlock(doc Navigable, ref string) error {
	infos, err := s.Blocks(doc)
	if err != nil {
		return err
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(infos) {
			return fmt.Errorf("%w: index %d of %d", ErrBlockNotFound, n, len(infos))
		}
		doc.SetSelection(infos[n-1].Region.A)
		return nil
	}

	for _, info := range infos {
		if strings.EqualFold(info.Name, ref) {
			doc.SetSelection(info.Region.A)
			return nil
		}
	}
	return fmt.Errorf("%w: '%s'", ErrBlockNotFound, ref)
}
