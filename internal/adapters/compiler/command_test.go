package compiler_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/compiler"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestCommandCompiler_Placeholders(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	root := t.TempDir()
	writeFile(t, root, "icons/b.svg", "<svg/>")
	writeFile(t, root, "icons/sub/a.svg", "<svg/>")
	writeFile(t, root, "icons/readme.txt", "")
	dest := filepath.Join(root, "build")

	spec := domain.CommandSpec{
		Name:    "icons",
		Sources: []string{"icons/**/*.svg"},
		Run:     []string{"svg-sprite", "--out={dest}/icons", "{sources}", "--mode", "{mode}"},
	}

	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd *domain.Command, _, _ io.Writer) error {
			assert.Equal(t, "svg-sprite", cmd.Name)
			assert.Equal(t, []string{
				"--out=" + dest + "/icons",
				"icons/b.svg",
				"icons/sub/a.svg",
				"--mode",
				"production",
			}, cmd.Args)
			assert.Equal(t, root, cmd.Dir)
			assert.Equal(t, "production", cmd.Env["NODE_ENV"])
			return nil
		})

	c := compiler.NewCommandCompiler(spec, root, executor)
	require.NoError(t, c.Compile(context.Background(), domain.SelectAll(), dest, domain.Environment{Production: true}))
}

func TestCommandCompiler_SkipsWithoutMatchingSources(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	root := t.TempDir()
	spec := domain.CommandSpec{Name: "icons", Sources: []string{"icons/**/*.svg"}, Run: []string{"svg-sprite", "{sources}"}}

	c := compiler.NewCommandCompiler(spec, root, executor)
	require.NoError(t, c.Compile(context.Background(), domain.SelectAll(), filepath.Join(root, "build"), domain.Environment{}))
}

func TestCommandCompiler_WithoutSourcesAlwaysRuns(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	root := t.TempDir()
	spec := domain.CommandSpec{Name: "stamp", Run: []string{"date", "{sources}"}}

	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd *domain.Command, _, _ io.Writer) error {
			assert.Equal(t, "date", cmd.Name)
			assert.Empty(t, cmd.Args)
			return nil
		})

	c := compiler.NewCommandCompiler(spec, root, executor)
	require.NoError(t, c.Compile(context.Background(), domain.SelectAll(), filepath.Join(root, "build"), domain.Environment{}))
}

func TestCommandCompiler_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	root := t.TempDir()
	spec := domain.CommandSpec{Name: "stamp", Run: []string{"false"}}

	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.Join(domain.ErrCommandFailed, errors.New("exit status 1")))

	c := compiler.NewCommandCompiler(spec, root, executor)
	err := c.Compile(context.Background(), domain.SelectAll(), filepath.Join(root, "build"), domain.Environment{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCompilationFailed)
	assert.Contains(t, err.Error(), "exit status 1")
}
