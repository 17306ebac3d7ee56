package modules

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
	rerrors "github.com/ruchy-lang/ruchy/pkg/ruchy/errors"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/evaluator"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/lexer"
	"github.com/ruchy-lang/ruchy/pkg/ruchy/parser"
)

// DefaultSearchPaths are tried in order when a loader is built without
// explicit paths.
var DefaultSearchPaths = []string{".", "./src", "./modules"}

// candidateNames lists the file layouts an import name can resolve to,
// relative to a search path.
func candidateNames(name string) []string {
	base := filepath.FromSlash(name)
	return []string{
		base + ".ruchy",
		filepath.Join(base, "mod.ruchy"),
		base + ".rchy",
	}
}

type cacheEntry struct {
	mod   *evaluator.ParsedModule
	mtime time.Time
}

// Loader resolves import names to parsed modules from the filesystem.
// Parsed modules are cached per resolved path and reparsed when the file's
// modification time changes.
type Loader struct {
	mu          sync.Mutex
	searchPaths []string
	cache       map[string]*cacheEntry
	loading     []string // import stack for cycle detection
}

// NewLoader builds a loader over the given search paths, falling back to
// DefaultSearchPaths when none are given.
func NewLoader(searchPaths ...string) *Loader {
	if len(searchPaths) == 0 {
		searchPaths = DefaultSearchPaths
	}
	return &Loader{
		searchPaths: searchPaths,
		cache:       make(map[string]*cacheEntry),
	}
}

// LoadModule resolves, reads, and parses the module called name.
// Implements evaluator.ModuleLoader.
func (l *Loader) LoadModule(name string) (*evaluator.ParsedModule, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(name)
}

func (l *Loader) load(name string) (*evaluator.ParsedModule, error) {
	for _, active := range l.loading {
		if active == name {
			cycle := strings.Join(append(append([]string{}, l.loading...), name), " -> ")
			return nil, rerrors.New("IMPORT-0002", map[string]any{"Cycle": cycle})
		}
	}

	path, info, found := l.resolve(name)
	if !found {
		return nil, rerrors.New("IMPORT-0001", map[string]any{
			"Name":  name,
			"Paths": strings.Join(l.searchPaths, ", "),
		})
	}

	if entry, ok := l.cache[path]; ok && entry.mtime.Equal(info.ModTime()) {
		return entry.mod, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerrors.New("IO-0001", map[string]any{"Path": path, "Cause": err.Error()})
	}

	p := parser.New(lexer.New(string(data)))
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		return nil, errs[0].WithFile(path)
	}

	mod := &evaluator.ParsedModule{
		AST:          program,
		Path:         path,
		Dependencies: importNames(program),
		LastModified: info.ModTime(),
	}

	// Pre-load dependencies so cycles surface at the importing module,
	// with the full chain in the message.
	l.loading = append(l.loading, name)
	for _, dep := range mod.Dependencies {
		if _, err := l.load(dep); err != nil {
			l.loading = l.loading[:len(l.loading)-1]
			return nil, err
		}
	}
	l.loading = l.loading[:len(l.loading)-1]

	l.cache[path] = &cacheEntry{mod: mod, mtime: info.ModTime()}
	return mod, nil
}

// resolve finds the first existing candidate file for name.
func (l *Loader) resolve(name string) (string, os.FileInfo, bool) {
	for _, dir := range l.searchPaths {
		for _, candidate := range candidateNames(name) {
			path := filepath.Join(dir, candidate)
			info, err := os.Stat(path)
			if err == nil && !info.IsDir() {
				return path, info, true
			}
		}
	}
	return "", nil, false
}

// Invalidate drops any cached parse for the given file path.
func (l *Loader) Invalidate(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, path)
}

// InvalidateAll empties the parse cache.
func (l *Loader) InvalidateAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*cacheEntry)
}

// importNames collects the modules a program imports, top level only.
func importNames(program *ast.Program) []string {
	var names []string
	seen := make(map[string]bool)
	for _, expr := range program.Expressions {
		imp, ok := expr.(*ast.ImportExpression)
		if !ok {
			if exp, isExport := expr.(*ast.ExportExpression); isExport {
				imp, ok = exp.Item.(*ast.ImportExpression)
			}
			if !ok {
				continue
			}
		}
		if !seen[imp.Module] {
			seen[imp.Module] = true
			names = append(names, imp.Module)
		}
	}
	return names
}
