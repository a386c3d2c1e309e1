package fileinclude

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// DefaultMaxDepth bounds nested includes; exceeding it usually means a cycle.
const DefaultMaxDepth = 32

const (
	directiveInclude     = "include"
	directiveIncludeOnce = "include_once"
)

// Options configures a Processor.
type Options struct {
	Prefix   string                       // Directive prefix, "@@" when empty
	MaxDepth int                          // DefaultMaxDepth when zero
	Context  map[string]any               // Variables visible in every file
	ReadFile func(string) ([]byte, error) // os.ReadFile when nil
}

// Processor expands include directives.
type Processor struct {
	prefix   string
	maxDepth int
	global   map[string]any
	readFile func(string) ([]byte, error)
	md       goldmark.Markdown
	varRe    *regexp.Regexp
}

// New returns a Processor for opts.
func New(opts Options) *Processor {
	p := &Processor{
		prefix:   opts.Prefix,
		maxDepth: opts.MaxDepth,
		global:   opts.Context,
		readFile: opts.ReadFile,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	if p.prefix == "" {
		p.prefix = "@@"
	}
	if p.maxDepth <= 0 {
		p.maxDepth = DefaultMaxDepth
	}
	if p.readFile == nil {
		p.readFile = os.ReadFile
	}
	p.varRe = regexp.MustCompile(regexp.QuoteMeta(p.prefix) + `([A-Za-z_$][A-Za-z0-9_$]*(?:\.[A-Za-z0-9_$]+)*)`)
	return p
}

// state is shared by one top-level Process call.
type state struct {
	once map[string]struct{}
}

// Process expands content read from path.
func (p *Processor) Process(path string, content []byte) ([]byte, error) {
	st := &state{once: make(map[string]struct{})}
	return p.expand(st, path, content, p.global, 0)
}

func (p *Processor) expand(st *state, path string, content []byte, vars map[string]any, depth int) ([]byte, error) {
	if depth > p.maxDepth {
		return nil, errors.TransformError(fmt.Sprintf("include depth exceeds %d", p.maxDepth)).
			WithContext("path", path).Build()
	}

	content = p.substitute(content, vars)

	var out bytes.Buffer
	rest := content
	for {
		d, ok, err := p.next(rest)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryTransform, "malformed include directive").
				WithContext("path", path).Build()
		}
		if !ok {
			out.Write(rest)
			return out.Bytes(), nil
		}
		out.Write(rest[:d.start])
		rest = rest[d.end:]

		target := filepath.Join(filepath.Dir(path), filepath.FromSlash(d.target))
		if d.name == directiveIncludeOnce {
			key := filepath.Clean(target)
			if _, seen := st.once[key]; seen {
				continue
			}
			st.once[key] = struct{}{}
		}

		data, err := p.readFile(target)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryTransform, "failed to read included file").
				WithContext("path", path).WithContext("include", d.target).Build()
		}

		if d.markdown {
			var html bytes.Buffer
			if err := p.md.Convert(data, &html); err != nil {
				return nil, errors.WrapError(err, errors.CategoryTransform, "failed to render markdown include").
					WithContext("path", target).Build()
			}
			out.Write(html.Bytes())
			continue
		}

		expanded, err := p.expand(st, target, data, merge(vars, d.vars), depth+1)
		if err != nil {
			return nil, err
		}
		out.Write(expanded)
	}
}

// substitute replaces @@name references resolvable in vars.
func (p *Processor) substitute(content []byte, vars map[string]any) []byte {
	if len(vars) == 0 {
		return content
	}
	return p.varRe.ReplaceAllFunc(content, func(m []byte) []byte {
		name := string(m[len(p.prefix):])
		if name == directiveInclude || name == directiveIncludeOnce {
			return m
		}
		v, ok := lookup(vars, name)
		if !ok {
			return m
		}
		return []byte(format(v))
	})
}

func lookup(vars map[string]any, name string) (any, bool) {
	var cur any = vars
	for _, part := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	switch cur.(type) {
	case map[string]any, []any, nil:
		return nil, false
	}
	return cur, true
}

func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}

// merge returns a new map with child's keys overriding parent's.
func merge(parent, child map[string]any) map[string]any {
	if len(child) == 0 {
		return parent
	}
	out := make(map[string]any, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}
