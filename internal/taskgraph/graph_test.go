package taskgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

func noop(context.Context) error { return nil }

func task(name string) Task { return Task{Name: name, Run: noop} }

func TestNewDropsEmptyStages(t *testing.T) {
	g := New("prod",
		Stage{Name: "sprites"},
		Stage{Name: "clear", Tasks: []Task{task("clear")}},
		Stage{Name: "assets", Tasks: []Task{task("html"), task("styles")}},
	)

	require.Len(t, g.Stages, 2)
	assert.Equal(t, "clear", g.Stages[0].Name)
	assert.Equal(t, []string{"clear", "html", "styles"}, g.TaskNames())
}

func TestThenDoesNotMutateReceiver(t *testing.T) {
	base := New("prod", Stage{Name: "clear", Tasks: []Task{task("clear")}})
	ext := base.Then(Stage{Name: "assets", Tasks: []Task{task("html")}})

	assert.Len(t, base.Stages, 1)
	assert.Len(t, ext.Stages, 2)
}

func TestCompose(t *testing.T) {
	prod := New("prod",
		Stage{Name: "clear", Tasks: []Task{task("clear")}},
		Stage{Name: "assets", Tasks: []Task{task("html")}},
	)
	serve := New("serve", Stage{Name: "serve", Tasks: []Task{task("watch"), task("serve")}, Linked: true})

	dev := Compose("dev", prod, nil, serve)
	assert.Equal(t, "dev", dev.Name)
	assert.Equal(t, []string{"clear", "html", "watch", "serve"}, dev.TaskNames())
	assert.True(t, dev.Stages[2].Linked)
	assert.Len(t, prod.Stages, 2)
}

func TestOrderingQueries(t *testing.T) {
	g := New("prod",
		Stage{Name: "sprites", Tasks: []Task{task("sprite:icons"), task("sprite:logos")}},
		Stage{Name: "clear", Tasks: []Task{task("clear")}},
		Stage{Name: "assets", Tasks: []Task{task("html"), task("styles")}},
	)

	idx, ok := g.StageIndex("clear")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = g.StageIndex("missing")
	assert.False(t, ok)

	assert.True(t, g.Before("sprite:icons", "clear"))
	assert.True(t, g.Before("clear", "styles"))
	assert.False(t, g.Before("styles", "clear"))
	assert.False(t, g.Before("html", "styles"))
	assert.False(t, g.Before("clear", "missing"))

	assert.True(t, g.Parallel("html", "styles"))
	assert.False(t, g.Parallel("clear", "html"))

	st, ok := g.Stage("assets")
	require.True(t, ok)
	assert.Len(t, st.Tasks, 2)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		graph *Graph
		ok    bool
	}{
		{"valid", New("prod", Stage{Name: "a", Tasks: []Task{task("x")}}), true},
		{"empty graph is valid", New("prod"), true},
		{"no graph name", New("", Stage{Name: "a", Tasks: []Task{task("x")}}), false},
		{"no stage name", &Graph{Name: "g", Stages: []Stage{{Tasks: []Task{task("x")}}}}, false},
		{"duplicate stage", New("g",
			Stage{Name: "a", Tasks: []Task{task("x")}},
			Stage{Name: "a", Tasks: []Task{task("y")}}), false},
		{"duplicate task", New("g",
			Stage{Name: "a", Tasks: []Task{task("x")}},
			Stage{Name: "b", Tasks: []Task{task("x")}}), false},
		{"nil run", New("g", Stage{Name: "a", Tasks: []Task{{Name: "x"}}}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.graph.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryBuild))
		})
	}
}
