// Package fileinclude expands include directives in HTML documents:
//
//	@@include('partials/header.html', {"title": "Home"})
//
// Included files see the variables passed to them as @@name and may include
// further files.
package fileinclude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// DefaultPrefix introduces a directive or a variable.
	DefaultPrefix = "@@"
	// BasepathFile resolves includes relative to the including file.
	BasepathFile = "@file"
	// BasepathRoot resolves includes relative to the project root.
	BasepathRoot = "@root"
)

var _ ports.Transformer = (*Includer)(nil)

// Includer implements the include-html step.
type Includer struct {
	readFile func(string) ([]byte, error)
}

// NewIncluder creates an Includer reading partials from disk.
func NewIncluder() *Includer {
	return &Includer{readFile: os.ReadFile}
}

// Kind returns domain.KindIncludeHTML.
func (i *Includer) Kind() domain.StepKind {
	return domain.KindIncludeHTML
}

// Transform expands every include directive of the asset.
func (i *Includer) Transform(_ context.Context, step domain.Step, asset domain.Asset) ([]domain.Asset, error) {
	opts := domain.IncludeOptions{Prefix: DefaultPrefix, Basepath: BasepathFile}
	if step.Include != nil {
		opts = *step.Include
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}

	e := &expander{
		readFile: i.readFile,
		prefix:   opts.Prefix,
		basepath: opts.Basepath,
		root:     asset.Root,
	}

	source := asset.Source
	if source == "" {
		source = filepath.Join(asset.Root, filepath.FromSlash(asset.Path))
	}

	out, err := e.expand(source, asset.Data, nil, []string{filepath.Clean(source)})
	if err != nil {
		return nil, err
	}
	return []domain.Asset{asset.WithData(out)}, nil
}

type expander struct {
	readFile func(string) ([]byte, error)
	prefix   string
	basepath string
	root     string
}

// expand processes one document. stack holds the files currently being
// expanded, outermost first.
func (e *expander) expand(file string, data []byte, vars map[string]string, stack []string) ([]byte, error) {
	directive := []byte(e.prefix + "include(")

	var out bytes.Buffer
	rest := data
	for {
		idx := bytes.Index(rest, directive)
		if idx < 0 {
			out.Write(e.substitute(rest, vars))
			return out.Bytes(), nil
		}
		out.Write(e.substitute(rest[:idx], vars))

		start := len(data) - len(rest) + idx
		call, n, err := parseCall(rest[idx+len(directive):])
		if err != nil {
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrIncludeSyntax, err.Error()),
				"file", file), "line", lineAt(data, start))
		}
		rest = rest[idx+len(directive)+n:]

		included, err := e.include(file, call, vars, stack)
		if err != nil {
			return nil, err
		}
		out.Write(included)
	}
}

func (e *expander) include(from string, c call, vars map[string]string, stack []string) ([]byte, error) {
	target := filepath.Clean(filepath.Join(e.base(from), filepath.FromSlash(c.path)))
	if slices.Contains(stack, target) {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrIncludeCycle, "cannot include file"), "file", from), "include", c.path)
	}

	data, err := e.readFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrIncludeNotFound, "cannot include file"), "file", from), "include", c.path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read include"), "include", target)
	}

	child := make(map[string]string, len(vars)+len(c.vars))
	for k, v := range vars {
		child[k] = v
	}
	for k, v := range c.vars {
		child[k] = v
	}

	return e.expand(target, data, child, append(slices.Clone(stack), target))
}

func (e *expander) base(from string) string {
	switch e.basepath {
	case "", BasepathFile:
		return filepath.Dir(from)
	case BasepathRoot:
		return e.root
	default:
		if filepath.IsAbs(e.basepath) {
			return e.basepath
		}
		return filepath.Join(e.root, filepath.FromSlash(e.basepath))
	}
}

// substitute replaces @@name with its value. Longer names are replaced first
// so @@titleSuffix is not clobbered by @@title.
func (e *expander) substitute(text []byte, vars map[string]string) []byte {
	if len(vars) == 0 || !bytes.Contains(text, []byte(e.prefix)) {
		return text
	}

	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	slices.SortFunc(names, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})

	pairs := make([]string, 0, 2*len(names))
	for _, k := range names {
		pairs = append(pairs, e.prefix+k, vars[k])
	}
	return []byte(strings.NewReplacer(pairs...).Replace(string(text)))
}

type call struct {
	path string
	vars map[string]string
}

// parseCall parses the arguments of a directive up to and including the
// closing parenthesis and returns the number of bytes consumed.
func parseCall(b []byte) (call, int, error) {
	var c call
	i := skipSpace(b, 0)
	if i >= len(b) || (b[i] != '\'' && b[i] != '"') {
		return c, 0, errors.New("expected quoted path")
	}
	quote := b[i]
	end := bytes.IndexByte(b[i+1:], quote)
	if end < 0 {
		return c, 0, errors.New("unterminated path")
	}
	c.path = string(b[i+1 : i+1+end])
	i = skipSpace(b, i+end+2)

	if i < len(b) && b[i] == ',' {
		i = skipSpace(b, i+1)
		n, err := objectEnd(b[i:])
		if err != nil {
			return c, 0, err
		}
		vars, err := decodeVars(b[i : i+n])
		if err != nil {
			return c, 0, err
		}
		c.vars = vars
		i = skipSpace(b, i+n)
	}

	if i >= len(b) || b[i] != ')' {
		return c, 0, errors.New("expected closing parenthesis")
	}
	return c, i + 1, nil
}

// objectEnd returns the length of the JSON object at the start of b.
func objectEnd(b []byte) (int, error) {
	if len(b) == 0 || b[0] != '{' {
		return 0, errors.New("expected JSON object")
	}
	depth := 0
	inString := false
	for i := 0; i < len(b); i++ {
		ch := b[i]
		if inString {
			switch ch {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, errors.New("unterminated JSON object")
}

// decodeVars decodes a JSON object and flattens nested objects into dotted names.
func decodeVars(b []byte) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	flatten("", raw, out)
	return out, nil
}

func flatten(prefix string, m map[string]any, out map[string]string) {
	for k, v := range m {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch v := v.(type) {
		case map[string]any:
			flatten(name, v, out)
		case string:
			out[name] = v
		case float64:
			out[name] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[name] = strconv.FormatBool(v)
		case nil:
			out[name] = ""
		default:
			data, _ := json.Marshal(v)
			out[name] = string(data)
		}
	}
}

func skipSpace(b []byte, i int) int {
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}
	return i
}

func lineAt(data []byte, offset int) int {
	return bytes.Count(data[:offset], []byte("\n")) + 1
}
