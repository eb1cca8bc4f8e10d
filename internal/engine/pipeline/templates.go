package pipeline

import (
	"path"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// TemplateRules returns the watch rules of the templates directory in match order:
//
//  1. an underscore-prefixed partial re-renders every page;
//  2. a declared include re-renders the pages that own it;
//  3. a file under the pages directory re-renders the page it belongs to;
//  4. any other template re-renders every page.
//
// Page globs are relative to the templates directory. expand turns them into
// the action rendering the matched pages.
func TemplateRules(cfg *domain.Config, expand func(globs []string) domain.Action) []domain.WatchRule {
	templates := slash(cfg.TemplatesDir)
	pages := path.Join(templates, slash(cfg.PagesDir))
	fullRender := func(string, domain.EventKind) (domain.Rebuild, error) {
		return domain.RebuildTarget(TaskRender, domain.Run(TaskRender)), nil
	}

	rules := []domain.WatchRule{
		{
			Name:     "template-partial",
			Patterns: []string{path.Join(templates, "**", "_*")},
			Events:   domain.FileEvents,
			Handler:  fullRender,
		},
	}

	if len(cfg.Includes) > 0 {
		owners := make(map[string][]string, len(cfg.Includes))
		patterns := make([]string, 0, len(cfg.Includes))
		for _, inc := range cfg.Includes {
			p := path.Join(templates, slash(inc.Template))
			owners[p] = append(owners[p], inc.Pages...)
			patterns = append(patterns, p)
		}
		rules = append(rules, domain.WatchRule{
			Name:     "template-include",
			Patterns: patterns,
			Events:   domain.FileEvents,
			Expand:   expand,
			Handler: func(rel string, _ domain.EventKind) (domain.Rebuild, error) {
				var globs []string
				for _, name := range owners[rel] {
					globs = append(globs, ownerGlobs(cfg, name)...)
				}
				if len(globs) == 0 {
					return domain.Rebuild{}, zerr.With(
						zerr.Wrap(domain.ErrClassificationFailed, "include has no owning pages"), "path", rel)
				}
				return domain.RebuildGlobs("render "+strings.Join(owners[rel], ", "), globs...), nil
			},
		})
	}

	rules = append(rules,
		domain.WatchRule{
			Name:     "template-page",
			Patterns: []string{path.Join(pages, "**")},
			Events:   domain.FileEvents,
			Expand:   expand,
			Handler: func(rel string, _ domain.EventKind) (domain.Rebuild, error) {
				name, glob, err := pageGlob(cfg, pages, rel)
				if err != nil {
					return domain.Rebuild{}, err
				}
				return domain.RebuildGlobs("render "+name, glob), nil
			},
		},
		domain.WatchRule{
			Name:     "template",
			Patterns: []string{path.Join(templates, "**")},
			Events:   domain.FileEvents,
			Handler:  fullRender,
		},
	)

	return rules
}

// pageGlob maps a path under the pages root to the page it belongs to. The page
// name is the first segment below the pages root: a directory for grouped pages,
// the file stem for top-level pages.
func pageGlob(cfg *domain.Config, pages, rel string) (string, string, error) {
	sub, ok := strings.CutPrefix(rel, pages+"/")
	if !ok || sub == "" {
		return "", "", zerr.With(
			zerr.Wrap(domain.ErrClassificationFailed, "path does not name a page"), "path", rel)
	}

	pagesDir := slash(cfg.PagesDir)
	if first, _, grouped := strings.Cut(sub, "/"); grouped {
		return first, path.Join(pagesDir, first, "**"), nil
	}

	name := strings.TrimSuffix(sub, path.Ext(sub))
	return name, path.Join(pagesDir, name+cfg.TemplateExt), nil
}

// ownerGlobs selects a page regardless of whether it is grouped.
func ownerGlobs(cfg *domain.Config, name string) []string {
	pagesDir := slash(cfg.PagesDir)
	return []string{
		path.Join(pagesDir, name+cfg.TemplateExt),
		path.Join(pagesDir, name, "**"),
	}
}
