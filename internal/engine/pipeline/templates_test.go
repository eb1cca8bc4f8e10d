package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/pipeline"
)

func templateRules(t *testing.T) []domain.WatchRule {
	t.Helper()
	cfg := domain.DefaultConfig()
	return pipeline.TemplateRules(&cfg, func([]string) domain.Action { return nil })
}

func TestTemplateRules_Order(t *testing.T) {
	names := make([]string, 0, 3)
	for _, r := range templateRules(t) {
		names = append(names, r.Name)
	}
	// Without includes the include rule is not registered.
	assert.Equal(t, []string{"template-partial", "template-page", "template"}, names)
}

func TestTemplateRules_PartialTriggersFullRender(t *testing.T) {
	rule, ok := classify(templateRules(t), "templates/_header.tmpl", domain.EventWrite)
	require.True(t, ok)

	rebuild, err := rule.Handler("templates/_header.tmpl", domain.EventWrite)
	require.NoError(t, err)
	assert.Equal(t, pipeline.TaskRender, rebuild.Target.String())
	assert.Empty(t, rebuild.Globs)
}

func TestTemplateRules_PageRootFailsClassification(t *testing.T) {
	rules := templateRules(t)
	var page domain.WatchRule
	for _, r := range rules {
		if r.Name == "template-page" {
			page = r
		}
	}
	require.NotNil(t, page.Handler)

	for _, rel := range []string{"templates/pages", "templates/pages/", "templates/other/x.tmpl"} {
		_, err := page.Handler(rel, domain.EventWrite)
		require.Error(t, err, rel)
		assert.ErrorIs(t, err, domain.ErrClassificationFailed)
	}
}

func TestTemplateRules_CustomLayout(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.TemplatesDir = "./site/views/"
	cfg.PagesDir = "routes"
	cfg.TemplateExt = ".html"
	rules := pipeline.TemplateRules(&cfg, func([]string) domain.Action { return nil })

	rule, ok := classify(rules, "site/views/routes/blog.html", domain.EventWrite)
	require.True(t, ok)
	rebuild, err := rule.Handler("site/views/routes/blog.html", domain.EventWrite)
	require.NoError(t, err)
	assert.Equal(t, []string{"routes/blog.html"}, rebuild.Globs)
	assert.Equal(t, "render blog", rebuild.Label)
}
