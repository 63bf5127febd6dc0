package catalog_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/orchestrator/pkg/catalog"
	"github.com/dukex/orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Flows(t *testing.T) {
	c := catalog.Default(catalog.MapResolver{})

	flows := c.Flows()
	require.Len(t, flows, 6)

	update, err := c.Flow(models.FlowUpdateProfile)
	require.NoError(t, err)
	assert.True(t, update.RequiresEmbeddings)
	require.Len(t, update.Steps, 10)
	assert.Equal(t, catalog.StepCreateEmbeddings, update.Steps[0].Name)
	assert.Equal(t, models.StepClassEmbeddings, update.Steps[0].Class)
	assert.Equal(t, 300*time.Second, update.Steps[0].Timeout)

	firstLogin, err := c.Flow(models.FlowFirstLogin)
	require.NoError(t, err)
	assert.False(t, firstLogin.RequiresEmbeddings)
	assert.Equal(t, []string{
		"match_usuario_profissao",
		"match_candidato",
		"match_usuario_carreira",
		"match_analysis_user_profession",
		"gap_analysis_user_profession",
		"suggest_course_profession",
		"match_analysis_user_vacancy",
		"gap_analysis_user_vacancy",
		"suggest_course_vacancy",
	}, firstLogin.StepNames())

	analysis, err := c.Flow(models.FlowAnalysisToVacancy)
	require.NoError(t, err)
	assert.Equal(t, []string{"match_analysis_user_vacancy", "gap_analysis_user_vacancy"}, analysis.StepNames())
}

func TestDefault_ParallelGroups(t *testing.T) {
	c := catalog.Default(nil)

	carreira, ok := c.Step(catalog.StepMatchUsuarioCarreira)
	require.True(t, ok)
	assert.Equal(t, catalog.ProfessionParallelGroup, carreira.ParallelGroup)
	assert.Equal(t, models.StepClassProfession, carreira.Class)

	suggest, ok := c.Step(catalog.StepSuggestCourseVacancy)
	require.True(t, ok)
	assert.Equal(t, catalog.VacancyParallelGroup, suggest.ParallelGroup)

	gap, ok := c.Step(catalog.StepGapAnalysisUserVacancy)
	require.True(t, ok)
	assert.False(t, gap.IsParallel())
}

func TestCatalog_UnknownFlow(t *testing.T) {
	c := catalog.Default(nil)

	_, err := c.Flow("nope")
	require.Error(t, err)
	assert.True(t, catalog.IsUnknownFlow(err))
	assert.Contains(t, err.Error(), "nope")
}

func TestCatalog_FlowReturnsCopy(t *testing.T) {
	c := catalog.Default(nil)

	flow, err := c.Flow(models.FlowFirstLogin)
	require.NoError(t, err)
	flow.Steps[0].Name = "mutated"

	again, err := c.Flow(models.FlowFirstLogin)
	require.NoError(t, err)
	assert.Equal(t, catalog.StepMatchUsuarioProfissao, again.Steps[0].Name)
}

func TestBuild_Errors(t *testing.T) {
	t.Run("unknown step in flow", func(t *testing.T) {
		_, err := catalog.Build(catalog.Declaration{
			Flows: []catalog.FlowDeclaration{{Name: "f", Steps: []string{"missing"}}},
		}, nil)
		assert.ErrorIs(t, err, catalog.ErrUnknownStep)
	})

	t.Run("duplicate step", func(t *testing.T) {
		_, err := catalog.Build(catalog.Declaration{
			Steps: []models.Step{models.NewStep("a", "A"), models.NewStep("a", "B")},
		}, nil)
		assert.ErrorIs(t, err, catalog.ErrDuplicateStep)
	})

	t.Run("invalid step", func(t *testing.T) {
		_, err := catalog.Build(catalog.Declaration{
			Steps: []models.Step{models.NewStep("", "A")},
		}, nil)
		assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
	})
}

func TestResolvers(t *testing.T) {
	t.Setenv("ORCH_TEST_URL", "http://env.example")

	assert.Equal(t, "http://env.example", catalog.EnvResolver{}.Resolve("ORCH_TEST_URL"))
	assert.Empty(t, catalog.EnvResolver{}.Resolve(""))
	assert.Empty(t, catalog.EnvResolver{}.Resolve("ORCH_TEST_UNSET_URL"))

	chain := catalog.ChainResolver{
		catalog.MapResolver{"A": "http://map.example"},
		catalog.EnvResolver{},
	}
	assert.Equal(t, "http://map.example", chain.Resolve("A"))
	assert.Equal(t, "http://env.example", chain.Resolve("ORCH_TEST_URL"))
	assert.Empty(t, chain.Resolve("NONE"))

	fn := catalog.ResolverFunc(func(target string) string { return "x-" + target })
	assert.Equal(t, "x-T", fn.Resolve("T"))
}

func TestCatalog_Resolve(t *testing.T) {
	c := catalog.Default(catalog.MapResolver{"DEFAULT_MATCH_CANDIDATO_URL": "http://match"})

	step, ok := c.Step(catalog.StepMatchCandidato)
	require.True(t, ok)
	assert.Equal(t, "http://match", c.Resolve(step))

	other, ok := c.Step(catalog.StepSuggestCourseVacancy)
	require.True(t, ok)
	assert.Empty(t, c.Resolve(other))
}

func TestOverlay_Apply(t *testing.T) {
	overlay, err := catalog.ParseOverlay([]byte(`
steps:
  match_candidato:
    target: CUSTOM_MATCH_URL
    timeout: 45s
    parallel_group: vacancy_parallel
targets:
  CUSTOM_MATCH_URL: http://custom.example
`))
	require.NoError(t, err)

	decl, err := overlay.Apply(catalog.DefaultDeclaration())
	require.NoError(t, err)

	c, err := catalog.Build(decl, overlay.Resolver(catalog.MapResolver{}))
	require.NoError(t, err)

	step, ok := c.Step(catalog.StepMatchCandidato)
	require.True(t, ok)
	assert.Equal(t, "CUSTOM_MATCH_URL", step.Target)
	assert.Equal(t, 45*time.Second, step.Timeout)
	assert.Equal(t, catalog.VacancyParallelGroup, step.ParallelGroup)
	assert.Equal(t, "http://custom.example", c.Resolve(step))

	// Flows pick up the overridden step.
	flow, err := c.Flow(models.FlowFirstLogin)
	require.NoError(t, err)
	assert.Equal(t, "CUSTOM_MATCH_URL", flow.Steps[1].Target)

	// The built-in declaration is left untouched.
	for _, s := range catalog.DefaultDeclaration().Steps {
		if s.Name == catalog.StepMatchCandidato {
			assert.Equal(t, "DEFAULT_MATCH_CANDIDATO_URL", s.Target)
		}
	}
}

func TestOverlay_Errors(t *testing.T) {
	_, err := catalog.ParseOverlay([]byte("steps: [unclosed"))
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)

	overlay, err := catalog.ParseOverlay([]byte("steps:\n  ghost:\n    target: X\n"))
	require.NoError(t, err)
	_, err = overlay.Apply(catalog.DefaultDeclaration())
	assert.ErrorIs(t, err, catalog.ErrUnknownStep)

	overlay, err = catalog.ParseOverlay([]byte("steps:\n  match_candidato:\n    timeout: soon\n"))
	require.NoError(t, err)
	_, err = overlay.Apply(catalog.DefaultDeclaration())
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
}

func TestLoad(t *testing.T) {
	c, err := catalog.Load("")
	require.NoError(t, err)
	assert.Len(t, c.Flows(), 6)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targets:\n  MATCH_USUARIO_PROFISSAO_URL: http://file.example\n"), 0o600))

	c, err = catalog.Load(path)
	require.NoError(t, err)

	step, ok := c.Step(catalog.StepMatchUsuarioProfissao)
	require.True(t, ok)
	assert.Equal(t, "http://file.example", c.Resolve(step))

	_, err = catalog.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
