package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"ruchy/parser"
)

// ModuleExt is the extension of file modules
const ModuleExt = ".ruchy"

// SourceFile is one file that contributed to a Unit
type SourceFile struct {
	Name   string // module name; "" for the root file
	Path   string
	Source string
}

// Unit is a parsed program with its file modules spliced in as module
// declarations ahead of the root file's statements
type Unit struct {
	Name    string // display name of the root file
	Source  string
	Program *parser.Program
	Files   []SourceFile // root first, then modules in splice order
}

// hostRoots are import roots that never name a file module
var hostRoots = map[string]bool{"std": true, "core": true, "self": true, "crate": true, "super": true}

// LoadFile parses the file at path and resolves its file modules
func (d *Driver) LoadFile(path string) (*Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return d.LoadSource(path, string(src), filepath.Dir(path))
}

// LoadSource parses src under the display name name. File modules are
// searched for in dir, then in the configured module paths.
func (d *Driver) LoadSource(name, src, dir string) (*Unit, error) {
	ld := &loader{
		d:       d,
		loading: make(map[string]bool),
		loaded:  make(map[string]bool),
	}
	prog, err := ld.parse(name, src)
	if err != nil {
		return nil, err
	}
	ld.files = append(ld.files, SourceFile{Path: name, Source: src})
	if err := ld.resolve(prog.Stmts, dir, declaredModules(prog.Stmts)); err != nil {
		return nil, err
	}

	spliced := &parser.Program{Pos: prog.Pos, Stmts: append(ld.mods, prog.Stmts...)}
	return &Unit{Name: name, Source: src, Program: spliced, Files: ld.files}, nil
}

// loader splices each file module once; a module already being loaded is
// skipped, which breaks import cycles
type loader struct {
	d       *Driver
	loading map[string]bool
	loaded  map[string]bool
	mods    []parser.Stmt
	files   []SourceFile
}

func (ld *loader) parse(name, src string) (*parser.Program, error) {
	prog, err := parser.Parse(src, parser.WithMaxDepth(ld.d.cfg.MaxParseDepth))
	if err != nil {
		return nil, &SourceError{Name: name, Source: src, Err: err}
	}
	return prog, nil
}

// resolve loads the file modules named by the imports in stmts, looking
// inside inline modules too
func (ld *loader) resolve(stmts []parser.Stmt, dir string, declared map[string]bool) error {
	for _, s := range stmts {
		s, _ = parser.Unexport(s)
		switch s := s.(type) {
		case *parser.ImportStmt:
			if len(s.Path) == 0 || hostRoots[s.Path[0]] || declared[s.Path[0]] {
				continue
			}
			if err := ld.load(s.Path[0], dir); err != nil {
				return err
			}
		case *parser.ModDecl:
			inner := declaredModules(s.Body)
			for name := range declared {
				inner[name] = true
			}
			if err := ld.resolve(s.Body, dir, inner); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ld *loader) load(name, dir string) error {
	if ld.loaded[name] || ld.loading[name] {
		return nil
	}
	path, ok := ld.find(name, dir)
	if !ok {
		// not a file module; evaluation reports the unresolved import
		return nil
	}
	ld.loading[name] = true
	defer delete(ld.loading, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read module %s: %w", name, err)
	}
	src := string(data)
	prog, err := ld.parse(path, src)
	if err != nil {
		return err
	}
	for _, s := range prog.Stmts {
		if !parser.IsItem(s) {
			pos := s.Position()
			diag := &parser.Diagnostic{
				Kind:    parser.ParseError,
				Message: fmt.Sprintf("module `%s` may only contain items", name),
				Span:    parser.Span{Start: pos, End: pos},
				Hint:    "move top-level statements into a function",
			}
			return &SourceError{Name: path, Source: src, Err: parser.Diagnostics{diag}}
		}
	}
	if err := ld.resolve(prog.Stmts, filepath.Dir(path), declaredModules(prog.Stmts)); err != nil {
		return err
	}
	ld.loaded[name] = true
	ld.mods = append(ld.mods, &parser.ModDecl{Pos: prog.Pos, Name: name, Body: prog.Stmts})
	ld.files = append(ld.files, SourceFile{Name: name, Path: path, Source: src})
	return nil
}

// find looks for name.ruchy in dir, then in the module paths
func (ld *loader) find(name, dir string) (string, bool) {
	dirs := append([]string{dir}, ld.d.cfg.modulePaths()...)
	for _, dir := range dirs {
		path := filepath.Join(dir, name+ModuleExt)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// declaredModules lists the inline modules declared among stmts
func declaredModules(stmts []parser.Stmt) map[string]bool {
	names := make(map[string]bool)
	for _, s := range stmts {
		s, _ = parser.Unexport(s)
		if m, ok := s.(*parser.ModDecl); ok {
			names[m.Name] = true
		}
	}
	return names
}
