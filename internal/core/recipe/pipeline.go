package recipe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"storefront-recipes/internal/infrastructure/config"
	"storefront-recipes/internal/metrics"
	"storefront-recipes/internal/pkg/common"

	"go.uber.org/zap"
)

// 描述最多字元數
const maxDescriptionRunes = 200

// CatalogSource 商品目錄
type CatalogSource interface {
	ListProducts(ctx context.Context) ([]common.Product, error)
}

// RecipeSource 第三方食譜來源
type RecipeSource interface {
	Random(ctx context.Context, count int) ([]common.ExternalRecipe, error)
	SearchByDiet(ctx context.Context, diet Diet, count int) ([]common.ExternalRecipe, error)
}

// Localizer 食譜在地化
type Localizer interface {
	Localize(ctx context.Context, d Draft) Outcome[Draft]
}

// SnapshotStore 食譜快照的持久化（整份取代）
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *common.RecipesSnapshot) error
	LoadSnapshot(ctx context.Context) (*common.RecipesSnapshot, error)
}

// SleepFunc 可被 context 中斷的等待
type SleepFunc func(ctx context.Context, d time.Duration) error

// RunReport 一次批次生成的結果
type RunReport struct {
	Snapshot *common.RecipesSnapshot
	Warnings []Warning
}

// Pipeline 批次食譜生成管線
type Pipeline struct {
	cfg        config.PipelineConfig
	catalog    CatalogSource
	recipes    RecipeSource
	translator Localizer
	store      SnapshotStore
	sleep      SleepFunc
	now        func() time.Time
}

// NewPipeline 創建批次生成管線
func NewPipeline(cfg config.PipelineConfig, catalog CatalogSource, recipes RecipeSource, translator Localizer, store SnapshotStore) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		catalog:    catalog,
		recipes:    recipes,
		translator: translator,
		store:      store,
		sleep:      sleepContext,
		now:        time.Now,
	}
}

// WithSleep 替換等待函式
func (p *Pipeline) WithSleep(sleep SleepFunc) *Pipeline {
	p.sleep = sleep
	return p
}

// WithClock 替換時間來源
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Run 執行一次完整的批次生成並寫入快照
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	start := p.now()
	report := &RunReport{}

	products, err := p.catalog.ListProducts(ctx)
	if err != nil {
		return nil, common.ErrCatalogUnavailable.Wrap(err)
	}
	common.LogInfo("商品目錄已載入", zap.Int("products", len(products)))

	candidates, warnings, err := p.fetchCandidates(ctx)
	report.Warnings = append(report.Warnings, warnings...)
	if err != nil {
		return nil, err
	}

	candidates = dedupeCandidates(candidates)
	if len(candidates) == 0 && len(warnings) > 0 {
		// 所有來源都失敗時保留既有快照
		return nil, common.ErrGenerationFailed.Wrap(errors.New("no candidate recipes could be fetched"))
	}

	generatedAt := start.UTC().Format(time.RFC3339)
	assembled := make([]common.Recipe, 0, min(len(candidates), p.cfg.MaxRecipes))
	translations := 0

	for _, candidate := range candidates {
		if len(assembled) >= p.cfg.MaxRecipes {
			break
		}

		dietIDs, dietNames := Classify(candidate)
		matched := MatchProducts(ingredientNames(candidate), products, dietIDs)
		nutrition := extractNutrition(candidate)

		if p.cfg.TranslatePauseEvery > 0 && translations > 0 && translations%p.cfg.TranslatePauseEvery == 0 {
			if err := p.sleep(ctx, p.cfg.TranslatePause); err != nil {
				return nil, err
			}
		}
		out := p.translator.Localize(ctx, draftFrom(candidate))
		translations++
		if out.Warning != nil {
			w := *out.Warning
			w.SourceID = candidate.ID
			report.Warnings = append(report.Warnings, w)
		}

		assembled = append(assembled, assembleRecipe(candidate, out.Value, dietIDs, dietNames, matched, nutrition, generatedAt))
	}

	report.Snapshot = &common.RecipesSnapshot{
		GeneratedAt: generatedAt,
		Recipes:     assembled,
	}

	if err := p.store.SaveSnapshot(ctx, report.Snapshot); err != nil {
		return nil, common.ErrPersistenceFailed.Wrap(err)
	}
	metrics.RecordSnapshotSize(len(assembled))

	common.LogInfo("食譜批次生成完成",
		zap.Int("recipes", len(assembled)),
		zap.Int("candidates", len(candidates)),
		zap.Int("warnings", len(report.Warnings)),
		zap.Duration("耗時", p.now().Sub(start)),
	)

	return report, nil
}

// fetchCandidates 先取隨機食譜，再依序取各飲食分類（每個分類之間等待固定時間）。
// 個別來源失敗只產生警告；只有 context 取消會回傳錯誤。
func (p *Pipeline) fetchCandidates(ctx context.Context) ([]common.ExternalRecipe, []Warning, error) {
	var candidates []common.ExternalRecipe
	var warnings []Warning

	if p.cfg.RandomCount > 0 {
		batch, err := p.recipes.Random(ctx, p.cfg.RandomCount)
		if err != nil {
			if ctx.Err() != nil {
				return nil, warnings, ctx.Err()
			}
			warnings = append(warnings, *newWarning("spoonacular", StageFetchRandom, err))
		} else {
			candidates = append(candidates, batch...)
		}
	}

	requested := 0
	for _, id := range p.cfg.Diets {
		diet, ok := LookupDiet(id)
		if !ok || !diet.Searchable() {
			common.LogDebug("飲食分類無第三方對應，略過", zap.String("diet", id))
			continue
		}

		if requested > 0 {
			if err := p.sleep(ctx, p.cfg.DietDelay); err != nil {
				return nil, warnings, err
			}
		}
		requested++

		batch, err := p.recipes.SearchByDiet(ctx, diet, p.cfg.PerDietCount)
		if err != nil {
			if ctx.Err() != nil {
				return nil, warnings, ctx.Err()
			}
			warnings = append(warnings, *newWarning("spoonacular", StageFetchDiet, err, zap.String("diet", diet.ID)))
			continue
		}
		candidates = append(candidates, batch...)
	}

	return candidates, warnings, nil
}

// dedupeCandidates 捨棄沒有步驟的食譜，再以來源 id 去重（保留先出現者）
func dedupeCandidates(candidates []common.ExternalRecipe) []common.ExternalRecipe {
	seen := make(map[int64]struct{}, len(candidates))
	out := make([]common.ExternalRecipe, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Steps()) == 0 {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

func ingredientNames(r common.ExternalRecipe) []string {
	names := make([]string, 0, len(r.ExtendedIngredients))
	for _, ing := range r.ExtendedIngredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			name = strings.TrimSpace(ing.Original)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func draftFrom(r common.ExternalRecipe) Draft {
	ingredients := make([]string, 0, len(r.ExtendedIngredients))
	for _, ing := range r.ExtendedIngredients {
		text := strings.TrimSpace(ing.Original)
		if text == "" {
			text = strings.TrimSpace(ing.Name)
		}
		if text != "" {
			ingredients = append(ingredients, text)
		}
	}
	return Draft{
		Title:        r.Title,
		Description:  common.StripHTML(r.Summary),
		Ingredients:  ingredients,
		Instructions: r.Steps(),
	}
}

// extractNutrition 每份營養資訊，四捨五入且不為負
func extractNutrition(r common.ExternalRecipe) common.NutritionInfo {
	n := common.NutritionInfo{
		Calories: roundNonNegative(r.NutrientAmount("Calories")),
		Carbs:    roundNonNegative(r.NutrientAmount("Carbohydrates")),
		Protein:  roundNonNegative(r.NutrientAmount("Protein")),
		Fat:      roundNonNegative(r.NutrientAmount("Fat")),
	}
	if r.HasNutrient("Fiber") {
		fiber := roundNonNegative(r.NutrientAmount("Fiber"))
		n.Fiber = &fiber
	}
	return n
}

func roundNonNegative(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}

// recipeTimes 回傳準備與烹調分鐘數；缺少時以總時間推算
func recipeTimes(r common.ExternalRecipe) (prep, cook int) {
	if r.CookingMinutes != nil && *r.CookingMinutes > 0 {
		cook = *r.CookingMinutes
	}
	if r.PreparationMinutes != nil && *r.PreparationMinutes > 0 {
		prep = *r.PreparationMinutes
	} else {
		prep = max(r.ReadyInMinutes-cook, 0)
	}
	if cook == 0 {
		cook = max(r.ReadyInMinutes-prep, 0)
	}
	return prep, cook
}

// difficultyFor 依總分鐘數判斷難度
func difficultyFor(totalMinutes int) common.Difficulty {
	switch {
	case totalMinutes <= 30:
		return common.DifficultyEasy
	case totalMinutes <= 60:
		return common.DifficultyMedium
	default:
		return common.DifficultyHard
	}
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%d min", m)
}

func assembleRecipe(r common.ExternalRecipe, d Draft, dietIDs, dietNames []string, products []common.RecipeProduct, nutrition common.NutritionInfo, generatedAt string) common.Recipe {
	prep, cook := recipeTimes(r)
	total := r.ReadyInMinutes
	if total <= 0 {
		total = prep + cook
	}

	servings := r.Servings
	if servings <= 0 {
		servings = 1
	}
	if products == nil {
		products = []common.RecipeProduct{}
	}

	return common.Recipe{
		ID:           fmt.Sprintf("recipe-%d", r.ID),
		Title:        d.Title,
		Description:  common.TruncateRunes(common.StripHTML(d.Description), maxDescriptionRunes),
		Image:        r.Image,
		SourceURL:    r.SourceURL,
		Diets:        dietIDs,
		DietNames:    dietNames,
		PrepTime:     formatMinutes(prep),
		CookTime:     formatMinutes(cook),
		Servings:     servings,
		Difficulty:   difficultyFor(total),
		Ingredients:  d.Ingredients,
		Instructions: d.Instructions,
		Products:     products,
		Nutrition:    nutrition,
		Tip:          d.Tip,
		SourceID:     r.ID,
		GeneratedAt:  generatedAt,
	}
}

// sleepContext 等待 d，context 取消時提前返回
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
