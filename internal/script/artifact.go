package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atlanticdynamic/coderunner/internal/placeholder"
)

// DefaultRunDirectory is the hidden directory, next to the document, holding written scripts.
const DefaultRunDirectory = ".CodeRunner"

// ArtifactRequest describes a script file to write.
type ArtifactRequest struct {
	// DocumentPath is the file the block came from. Empty means an unsaved buffer.
	DocumentPath string

	// RunDirectory defaults to DefaultRunDirectory.
	RunDirectory string

	// Name is the script name without extension.
	Name string

	// Args are written as `name="value"` assignments in order.
	Args *placeholder.Values

	// Code is the script body.
	Code string
}

// Artifact is a script written to disk.
type Artifact struct {
	Path        string
	DocumentDir string
}

// RelPath returns the script path relative to the document's directory.
func (a *Artifact) RelPath() string {
	rel, err := filepath.Rel(a.DocumentDir, a.Path)
	if err != nil {
		return a.Path
	}
	return filepath.ToSlash(rel)
}

// Write creates `<document dir>/<run dir>/<document base name>/<name>.sh`, readable, writable
// and executable by the owner only.
func Write(req ArtifactRequest) (*Artifact, error) {
	if req.DocumentPath == "" {
		return nil, ErrNoBackingFile
	}

	docPath, err := filepath.Abs(req.DocumentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(docPath); err == nil {
		docPath = resolved
	}

	runDir := req.RunDirectory
	if runDir == "" {
		runDir = DefaultRunDirectory
	}
	name := req.Name
	if name == "" {
		name = DefaultName
	}

	docDir := filepath.Dir(docPath)
	base := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	scriptDir := filepath.Join(docDir, runDir, base)
	if err := os.MkdirAll(scriptDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	path := filepath.Join(scriptDir, name+".sh")
	if err := os.WriteFile(path, []byte(Render(req.Args, req.Code)), 0o700); err != nil {
		return nil, fmt.Errorf("failed to write script: %w", err)
	}
	// WriteFile only applies the mode when it creates the file
	if err := os.Chmod(path, 0o700); err != nil {
		return nil, fmt.Errorf("failed to set script permissions: %w", err)
	}

	return &Artifact{Path: path, DocumentDir: docDir}, nil
}

// Render returns the content of a script file. Values are wrapped in double quotes but
// embedded double quotes are not escaped.
func Render(args *placeholder.Values, code string) string {
	var sb strings.Builder
	sb.WriteString("#!/bin/sh\n\n")
	for _, k := range args.Keys() {
		v, _ := args.Get(k)
		fmt.Fprintf(&sb, "%s=\"%s\"\n", k, v)
	}
	sb.WriteString("\n")
	sb.WriteString(code)
	sb.WriteString("\n")
	return sb.String()
}
