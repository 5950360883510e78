package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-recipes/internal/infrastructure/config"
	"storefront-recipes/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 6, 0, 0, 0, time.FixedZone("CLT", -3*3600))

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		RandomCount:         20,
		PerDietCount:        5,
		MaxRecipes:          30,
		Diets:               []string{DietVegan, DietSugarFree, DietKeto},
		DietDelay:           time.Second,
		TranslatePauseEvery: 5,
		TranslatePause:      1500 * time.Millisecond,
	}
}

type pipelineFixture struct {
	catalog    *fakeCatalog
	source     *fakeRecipeSource
	translator *passthroughLocalizer
	store      *fakeStore
	sleeper    *sleepRecorder
	pipeline   *Pipeline
}

func newPipelineFixture(cfg config.PipelineConfig) *pipelineFixture {
	f := &pipelineFixture{
		catalog: &fakeCatalog{products: []common.Product{
			product("p-pollo", "Pechuga de pollo 1kg"),
			product("p-espinaca", "Espinaca Orgánica 250g", "vegano"),
		}},
		source:     &fakeRecipeSource{byDiet: map[string][]common.ExternalRecipe{}, dietErr: map[string]error{}},
		translator: &passthroughLocalizer{},
		store:      &fakeStore{},
		sleeper:    &sleepRecorder{},
	}
	f.pipeline = NewPipeline(cfg, f.catalog, f.source, f.translator, f.store).
		WithSleep(f.sleeper.sleep).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func TestPipelineRun_AssemblesAndPersists(t *testing.T) {
	f := newPipelineFixture(testPipelineConfig())
	r := externalRecipe(101, "Chicken and spinach bowl", "chicken breast", "spinach")
	r.Summary = "<p>Quick &amp; <b>easy</b> bowl.</p>"
	r.PreparationMinutes = intPtr(10)
	r.CookingMinutes = intPtr(15)
	r.Nutrition = nutrients("Calories", 420.4, "Carbohydrates", 50.0, "Fat", 10.0, "Sugar", 12.0, "Protein", 20.6, "Fiber", 4.5)
	f.source.random = []common.ExternalRecipe{r}

	report, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, f.store.saved, 1)
	snap := f.store.saved[0]
	assert.Equal(t, "2026-03-01T09:00:00Z", snap.GeneratedAt)
	require.Len(t, snap.Recipes, 1)
	assert.Same(t, snap, report.Snapshot)

	got := snap.Recipes[0]
	assert.Equal(t, "recipe-101", got.ID)
	assert.Equal(t, int64(101), got.SourceID)
	assert.Equal(t, "Quick & easy bowl.", got.Description)
	assert.Equal(t, "10 min", got.PrepTime)
	assert.Equal(t, "15 min", got.CookTime)
	assert.Equal(t, common.DifficultyEasy, got.Difficulty)
	assert.Equal(t, []string{"1 chicken breast", "1 spinach"}, got.Ingredients)
	assert.Equal(t, []string{"Cook everything."}, got.Instructions)
	assert.Equal(t, 420, got.Nutrition.Calories)
	assert.Equal(t, 21, got.Nutrition.Protein)
	require.NotNil(t, got.Nutrition.Fiber)
	assert.Equal(t, 5, *got.Nutrition.Fiber)
	assert.Equal(t, []string{DietHealthy}, got.Diets)

	require.Len(t, got.Products, 2)
	assert.Equal(t, "p-pollo", got.Products[0].ProductID)
	assert.Equal(t, "p-espinaca", got.Products[1].ProductID)
}

func TestPipelineRun_DedupKeepsFirstSeen(t *testing.T) {
	f := newPipelineFixture(testPipelineConfig())
	first := externalRecipe(7, "First seen", "rice")
	second := externalRecipe(7, "Second seen", "rice")
	f.source.random = []common.ExternalRecipe{first}
	f.source.byDiet[DietVegan] = []common.ExternalRecipe{second, externalRecipe(8, "Other", "oats")}

	report, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Snapshot.Recipes, 2)
	assert.Equal(t, "First seen", report.Snapshot.Recipes[0].Title)
	assert.Equal(t, "recipe-8", report.Snapshot.Recipes[1].ID)
}

func TestPipelineRun_DropsRecipesWithoutSteps(t *testing.T) {
	f := newPipelineFixture(testPipelineConfig())
	noSteps := externalRecipe(1, "No steps")
	noSteps.AnalyzedInstructions = nil
	f.source.random = []common.ExternalRecipe{noSteps, externalRecipe(2, "With steps")}

	report, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Snapshot.Recipes, 1)
	assert.Equal(t, "recipe-2", report.Snapshot.Recipes[0].ID)
}

func TestPipelineRun_CapsSnapshot(t *testing.T) {
	cfg := testPipelineConfig()
	cfg.RandomCount = 40
	f := newPipelineFixture(cfg)
	for i := 1; i <= 40; i++ {
		f.source.random = append(f.source.random, externalRecipe(int64(i), "Recipe", "milk"))
	}

	report, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Snapshot.Recipes, 30)
	assert.Equal(t, 30, f.translator.calls)

	ids := map[string]bool{}
	for _, r := range report.Snapshot.Recipes {
		assert.False(t, ids[r.ID])
		ids[r.ID] = true
	}
}

func TestPipelineRun_RateLimitPauses(t *testing.T) {
	cfg := testPipelineConfig()
	f := newPipelineFixture(cfg)
	for i := 1; i <= 12; i++ {
		f.source.random = append(f.source.random, externalRecipe(int64(i), "Recipe", "milk"))
	}

	_, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)

	// vegano 與 keto 有對應、sin-azucar 沒有：一次分類間隔；12 次翻譯：兩次暫停
	assert.Equal(t, []time.Duration{
		time.Second,
		1500 * time.Millisecond,
		1500 * time.Millisecond,
	}, f.sleeper.sleeps)
	assert.Equal(t, []string{DietVegan, DietKeto}, f.source.searched)
}

func TestPipelineRun_PartialFailuresBecomeWarnings(t *testing.T) {
	f := newPipelineFixture(testPipelineConfig())
	f.source.random = []common.ExternalRecipe{externalRecipe(1, "Lost in translation", "milk")}
	f.source.dietErr[DietVegan] = errUpstream
	f.source.byDiet[DietKeto] = []common.ExternalRecipe{externalRecipe(2, "Keto eggs", "eggs")}
	f.translator.failTitles = map[string]bool{"Lost in translation": true}

	report, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Snapshot.Recipes, 2)
	require.Len(t, report.Warnings, 2)
	assert.Equal(t, StageFetchDiet, report.Warnings[0].Stage)
	assert.Equal(t, DietVegan, report.Warnings[0].Diet)
	assert.Equal(t, StageTranslate, report.Warnings[1].Stage)
	assert.Equal(t, int64(1), report.Warnings[1].SourceID)
	// 翻譯失敗仍保留原文
	assert.Equal(t, "Lost in translation", report.Snapshot.Recipes[0].Title)
}

func TestPipelineRun_CatalogFailureIsFatal(t *testing.T) {
	f := newPipelineFixture(testPipelineConfig())
	f.catalog.err = errUpstream

	_, err := f.pipeline.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable)
	assert.Empty(t, f.store.saved)
}

func TestPipelineRun_PersistenceFailurePropagates(t *testing.T) {
	f := newPipelineFixture(testPipelineConfig())
	f.source.random = []common.ExternalRecipe{externalRecipe(1, "Recipe", "milk")}
	f.store.saveErr = errors.New("bucket not writable")

	_, err := f.pipeline.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrPersistenceFailed)
	status, code := common.StatusFromError(err)
	assert.Equal(t, 500, status)
	assert.Equal(t, common.ErrCodePersistenceFailed, code)
}

func TestPipelineRun_AllSourcesFailKeepsPreviousSnapshot(t *testing.T) {
	f := newPipelineFixture(testPipelineConfig())
	f.source.randomErr = errUpstream
	f.source.dietErr[DietVegan] = errUpstream
	f.source.dietErr[DietKeto] = errUpstream

	_, err := f.pipeline.Run(context.Background())

	assert.ErrorIs(t, err, common.ErrGenerationFailed)
	assert.Empty(t, f.store.saved)
}

func TestPipelineRun_Cancelled(t *testing.T) {
	f := newPipelineFixture(testPipelineConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.pipeline.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.store.saved)
}

func TestRecipeTimesAndDifficulty(t *testing.T) {
	tests := []struct {
		name      string
		ready     int
		prep      *int
		cook      *int
		wantPrep  int
		wantCook  int
		wantLevel common.Difficulty
	}{
		{name: "both present", ready: 45, prep: intPtr(15), cook: intPtr(30), wantPrep: 15, wantCook: 30, wantLevel: common.DifficultyMedium},
		{name: "prep derived", ready: 90, cook: intPtr(60), wantPrep: 30, wantCook: 60, wantLevel: common.DifficultyHard},
		{name: "cook derived", ready: 30, prep: intPtr(10), wantPrep: 10, wantCook: 20, wantLevel: common.DifficultyEasy},
		{name: "negative markers", ready: 20, prep: intPtr(-1), cook: intPtr(-1), wantPrep: 20, wantCook: 0, wantLevel: common.DifficultyEasy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := common.ExternalRecipe{ReadyInMinutes: tt.ready, PreparationMinutes: tt.prep, CookingMinutes: tt.cook}
			prep, cook := recipeTimes(r)
			assert.Equal(t, tt.wantPrep, prep)
			assert.Equal(t, tt.wantCook, cook)
			assert.Equal(t, tt.wantLevel, difficultyFor(tt.ready))
		})
	}
}

func TestExtractNutrition_NeverNegative(t *testing.T) {
	r := common.ExternalRecipe{Nutrition: nutrients("Calories", -10.0, "Fat", 3.6)}
	n := extractNutrition(r)
	assert.Equal(t, 0, n.Calories)
	assert.Equal(t, 0, n.Carbs)
	assert.Equal(t, 4, n.Fat)
	assert.Nil(t, n.Fiber)
}
