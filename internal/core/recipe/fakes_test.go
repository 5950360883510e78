package recipe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	aiservice "storefront-recipes/internal/core/ai/service"
	"storefront-recipes/internal/pkg/common"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	content string
	err     error
}

func (f *fakeGenerator) ProcessRequest(ctx context.Context, prompt string) (*aiservice.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return &aiservice.Response{Content: f.content}, nil
}

type fakeCatalog struct {
	products []common.Product
	err      error
}

func (f *fakeCatalog) ListProducts(ctx context.Context) ([]common.Product, error) {
	return f.products, f.err
}

type fakeRecipeSource struct {
	random    []common.ExternalRecipe
	randomErr error
	byDiet    map[string][]common.ExternalRecipe
	dietErr   map[string]error
	searched  []string
}

func (f *fakeRecipeSource) Random(ctx context.Context, count int) ([]common.ExternalRecipe, error) {
	if f.randomErr != nil {
		return nil, f.randomErr
	}
	if len(f.random) > count {
		return f.random[:count], nil
	}
	return f.random, nil
}

func (f *fakeRecipeSource) SearchByDiet(ctx context.Context, diet Diet, count int) ([]common.ExternalRecipe, error) {
	f.searched = append(f.searched, diet.ID)
	if err := f.dietErr[diet.ID]; err != nil {
		return nil, err
	}
	return f.byDiet[diet.ID], nil
}

type fakeStore struct {
	saved   []*common.RecipesSnapshot
	saveErr error
}

func (f *fakeStore) SaveSnapshot(ctx context.Context, s *common.RecipesSnapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeStore) LoadSnapshot(ctx context.Context) (*common.RecipesSnapshot, error) {
	if len(f.saved) == 0 {
		return nil, common.ErrSnapshotNotFound
	}
	return f.saved[len(f.saved)-1], nil
}

// passthroughLocalizer 原樣回傳，可指定失敗的標題
type passthroughLocalizer struct {
	failTitles map[string]bool
	calls      int
}

func (p *passthroughLocalizer) Localize(ctx context.Context, d Draft) Outcome[Draft] {
	p.calls++
	if p.failTitles[d.Title] {
		return Outcome[Draft]{Value: d, Warning: &Warning{Stage: StageTranslate, Message: "translation unavailable"}}
	}
	return Outcome[Draft]{Value: d}
}

type sleepRecorder struct {
	sleeps []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.sleeps = append(s.sleeps, d)
	return ctx.Err()
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func nutrients(pairs ...interface{}) *common.Nutrition {
	n := &common.Nutrition{}
	for i := 0; i+1 < len(pairs); i += 2 {
		n.Nutrients = append(n.Nutrients, common.Nutrient{Name: pairs[i].(string), Amount: pairs[i+1].(float64), Unit: "g"})
	}
	return n
}

// externalRecipe 建立含一個步驟的第三方食譜
func externalRecipe(id int64, title string, ingredients ...string) common.ExternalRecipe {
	r := common.ExternalRecipe{
		ID:             id,
		Title:          title,
		Image:          fmt.Sprintf("https://img.example.com/%d.jpg", id),
		SourceURL:      fmt.Sprintf("https://example.com/recipes/%d", id),
		ReadyInMinutes: 25,
		Servings:       2,
		Summary:        "A <b>tasty</b> dish.",
		AnalyzedInstructions: []common.InstructionBlock{{
			Steps: []common.InstructionStep{{Number: 1, Step: "Cook everything."}},
		}},
		Nutrition: nutrients("Calories", 420.4, "Carbohydrates", 50.0, "Fat", 10.0, "Sugar", 12.0, "Protein", 20.6),
	}
	for _, ing := range ingredients {
		r.ExtendedIngredients = append(r.ExtendedIngredients, common.ExtendedIngredient{Original: "1 " + ing, Name: ing})
	}
	return r
}

func product(id, title string, tags ...string) common.Product {
	return common.Product{
		ID:       id,
		Title:    title,
		Handle:   id,
		Tags:     tags,
		Variants: []common.ProductVariant{{ID: "var-" + id, Price: floatPtr(9.99)}},
	}
}

var errUpstream = errors.New("upstream unavailable")
