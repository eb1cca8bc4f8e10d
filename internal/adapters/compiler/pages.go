package compiler

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*PageRenderer)(nil)

// PageData is the value pages are executed with.
type PageData struct {
	Name       string
	Mode       string
	Production bool
}

// PageRenderer renders the pages under <templates>/<pages> to <dest>/<name>.html.
//
// A page is either pages/<name><ext> or pages/<name>/<name><ext>. Templates
// outside the pages directory, and partials directly inside it, are shared by
// every page. The other files of pages/<name>/ belong to that page only. Each
// template is keyed by its path relative to the templates directory.
type PageRenderer struct {
	root     string
	dir      string
	pagesDir string
	ext      string
}

// NewPageRenderer creates a PageRenderer for the templates directory dir, relative to root.
func NewPageRenderer(root, dir, pagesDir, ext string) *PageRenderer {
	return &PageRenderer{root: root, dir: dir, pagesDir: filepath.ToSlash(filepath.Clean(pagesDir)), ext: ext}
}

type page struct {
	name string
	rel  string
}

// Compile renders the pages whose source path, relative to the templates
// directory, is matched by selector.
func (r *PageRenderer) Compile(_ context.Context, selector domain.Selector, destRoot string, env domain.Environment) error {
	files, err := r.templates()
	if err != nil {
		return err
	}

	var pages []page
	var shared []string
	owned := make(map[string][]string)
	for _, rel := range files {
		if name, ok := r.pageName(rel); ok {
			if selector.Matches(rel) {
				pages = append(pages, page{name: name, rel: rel})
			}
			continue
		}
		if name, ok := r.owner(rel); ok {
			owned[name] = append(owned[name], rel)
			continue
		}
		shared = append(shared, rel)
	}

	var errs error
	for _, p := range pages {
		includes := append(slices.Clone(shared), owned[p.name]...)
		if err := r.render(p, includes, destRoot, env); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

func (r *PageRenderer) render(p page, includes []string, destRoot string, env domain.Environment) error {
	// The root stays unnamed: re-defining a template under the root's own name
	// leaves it incomplete.
	set := template.New("").Funcs(funcMap())
	for _, rel := range includes {
		if err := r.parse(set, rel); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrCompilationFailed, err.Error()), "page", p.name)
		}
	}
	if err := r.parse(set, p.rel); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCompilationFailed, err.Error()), "page", p.name)
	}

	var buf bytes.Buffer
	data := PageData{Name: p.name, Mode: env.Mode(), Production: env.Production}
	if err := set.ExecuteTemplate(&buf, p.rel, data); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCompilationFailed, err.Error()), "page", p.name)
	}

	return writeOutput(filepath.Join(destRoot, p.name+".html"), buf.Bytes())
}

func (r *PageRenderer) parse(set *template.Template, rel string) error {
	data, err := os.ReadFile(filepath.Join(r.root, r.dir, filepath.FromSlash(rel))) // #nosec G304 -- templates are discovered under the templates directory
	if err != nil {
		return err
	}
	_, err = set.New(rel).Parse(string(data))
	return err
}

// pageName reports whether rel is a page and returns its name.
func (r *PageRenderer) pageName(rel string) (string, bool) {
	rest, ok := strings.CutPrefix(rel, r.pagesDir+"/")
	if !ok || !strings.HasSuffix(rest, r.ext) {
		return "", false
	}
	parts := strings.Split(strings.TrimSuffix(rest, r.ext), "/")
	switch {
	case len(parts) == 1 && !strings.HasPrefix(parts[0], "_"):
		return parts[0], true
	case len(parts) == 2 && parts[0] == parts[1]:
		return parts[0], true
	default:
		return "", false
	}
}

// owner reports whether rel lives in a grouped page directory and returns the
// name of the page it belongs to.
func (r *PageRenderer) owner(rel string) (string, bool) {
	rest, ok := strings.CutPrefix(rel, r.pagesDir+"/")
	if !ok {
		return "", false
	}
	name, _, grouped := strings.Cut(rest, "/")
	return name, grouped
}

// templates lists every template under the templates directory, sorted.
func (r *PageRenderer) templates() ([]string, error) {
	dir := filepath.Join(r.root, r.dir)
	files, err := doublestar.Glob(os.DirFS(dir), "**/*"+r.ext, doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrCompilationFailed, err.Error()), "dir", r.dir)
	}
	slices.Sort(files)
	return files, nil
}

// funcMap returns the sprig functions plus markdown.
func funcMap() template.FuncMap {
	funcs := sprig.HtmlFuncMap()
	funcs["markdown"] = renderMarkdown
	return funcs
}

func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	// #nosec G203 -- markdown is authored alongside the templates
	return template.HTML(buf.String()), nil
}
