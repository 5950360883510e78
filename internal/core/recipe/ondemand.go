package recipe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"storefront-recipes/internal/metrics"
	"storefront-recipes/internal/pkg/common"

	"go.uber.org/zap"
)

// 隨選生成的商品數量限制
const (
	minOnDemandProducts = 2
	maxMustInclude      = 4
)

// OnDemandRequest 隨選生成請求
type OnDemandRequest struct {
	Diet     string           `json:"diet"`
	Products []common.Product `json:"products"`
}

// Validate 檢查必要欄位
func (r OnDemandRequest) Validate() error {
	if strings.TrimSpace(r.Diet) == "" {
		return common.NewValidationError("diet is required")
	}
	if len(r.Products) < minOnDemandProducts {
		return common.NewValidationError(fmt.Sprintf("at least %d products are required", minOnDemandProducts))
	}
	return nil
}

// onDemandResponse 模型回傳的固定欄位
type onDemandResponse struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PrepTime     string   `json:"prepTime"`
	CookTime     string   `json:"cookTime"`
	Servings     int      `json:"servings"`
	Difficulty   string   `json:"difficulty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	ProductsUsed []string `json:"productsUsed"`
	Nutrition    struct {
		Calories float64 `json:"calories"`
		Protein  float64 `json:"protein"`
		Carbs    float64 `json:"carbs"`
		Fat      float64 `json:"fat"`
	} `json:"nutrition"`
	Tip string `json:"tip"`
}

// OnDemandGenerator 依指定飲食分類與商品清單即時生成一道食譜（不寫入快照）
type OnDemandGenerator struct {
	generator TextGenerator
	enabled   bool

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewOnDemandGenerator 創建隨選生成器；rng 為 nil 時使用時間種子
func NewOnDemandGenerator(generator TextGenerator, enabled bool, rng *rand.Rand) *OnDemandGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &OnDemandGenerator{
		generator: generator,
		enabled:   enabled && generator != nil,
		rng:       rng,
		now:       time.Now,
	}
}

// Generate 生成一道食譜；驗證失敗時不會呼叫外部服務
func (g *OnDemandGenerator) Generate(ctx context.Context, req OnDemandRequest) (recipe *common.Recipe, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	defer func() { metrics.RecordOnDemand(err) }()

	if !g.enabled {
		return nil, common.ErrGenerationFailed.Wrap(errors.New("generation service is not configured"))
	}

	pool := filterByDiet(req.Products, req.Diet)
	selected := g.pickProducts(pool, maxMustInclude)

	resp, err := g.generator.ProcessRequest(ctx, buildOnDemandPrompt(req.Diet, selected))
	if err != nil {
		return nil, common.ErrGenerationFailed.Wrap(err)
	}

	var parsed onDemandResponse
	if err := common.ParseModelJSON(resp.Content, &parsed); err != nil {
		common.LogWarn("隨選食譜回應解析失敗", zap.String("diet", req.Diet), zap.Error(err))
		return nil, common.ErrGenerationFailed.Wrap(fmt.Errorf("parse recipe: %w", err))
	}
	if err := parsed.complete(); err != nil {
		return nil, common.ErrGenerationFailed.Wrap(err)
	}

	now := g.now()
	out := &common.Recipe{
		ID:           fmt.Sprintf("recipe-gen-%d", now.UnixMilli()),
		Title:        strings.TrimSpace(parsed.Title),
		Description:  common.TruncateRunes(common.StripHTML(parsed.Description), maxDescriptionRunes),
		Diets:        []string{req.Diet},
		DietNames:    []string{DietName(req.Diet)},
		PrepTime:     strings.TrimSpace(parsed.PrepTime),
		CookTime:     strings.TrimSpace(parsed.CookTime),
		Servings:     max(parsed.Servings, 1),
		Difficulty:   normalizeDifficulty(parsed.Difficulty),
		Ingredients:  nonEmpty(parsed.Ingredients),
		Instructions: nonEmpty(parsed.Instructions),
		Products:     resolveProducts(parsed.ProductsUsed, selected),
		Nutrition: common.NutritionInfo{
			Calories: roundNonNegative(parsed.Nutrition.Calories),
			Protein:  roundNonNegative(parsed.Nutrition.Protein),
			Carbs:    roundNonNegative(parsed.Nutrition.Carbs),
			Fat:      roundNonNegative(parsed.Nutrition.Fat),
		},
		Tip:         strings.TrimSpace(parsed.Tip),
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
	return out, nil
}

// complete 確認回應不是半成品
func (r onDemandResponse) complete() error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return errors.New("generated recipe has no title")
	case len(nonEmpty(r.Ingredients)) == 0:
		return errors.New("generated recipe has no ingredients")
	case len(nonEmpty(r.Instructions)) == 0:
		return errors.New("generated recipe has no instructions")
	}
	return nil
}

// filterByDiet 取帶有該飲食標籤的商品；不足兩個時使用完整清單
func filterByDiet(products []common.Product, diet string) []common.Product {
	var tagged []common.Product
	for _, p := range products {
		if p.HasTag(diet) {
			tagged = append(tagged, p)
		}
	}
	if len(tagged) < minOnDemandProducts {
		return products
	}
	return tagged
}

// pickProducts 隨機排列後取前 n 個
func (g *OnDemandGenerator) pickProducts(products []common.Product, n int) []common.Product {
	shuffled := make([]common.Product, len(products))
	copy(shuffled, products)

	g.mu.Lock()
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	g.mu.Unlock()

	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}

// resolveProducts 以不分大小寫的雙向子字串比對，將模型提到的商品名稱對回候選商品。
// 對不到的名稱直接忽略。
func resolveProducts(names []string, candidates []common.Product) []common.RecipeProduct {
	out := []common.RecipeProduct{}
	used := make(map[string]struct{})

	for _, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		if n == "" {
			continue
		}
		for _, p := range candidates {
			if _, ok := used[p.ID]; ok {
				continue
			}
			title := strings.ToLower(p.Title)
			if !strings.Contains(title, n) && !strings.Contains(n, title) {
				continue
			}
			used[p.ID] = struct{}{}
			rp := common.RecipeProduct{
				ProductID: p.ID,
				Title:     p.Title,
				Handle:    p.Handle,
				Thumbnail: p.Thumbnail,
				Quantity:  defaultQuantityHint,
			}
			if len(p.Variants) > 0 {
				rp.VariantID = p.Variants[0].ID
				rp.Price = p.Variants[0].Price
			}
			out = append(out, rp)
			break
		}
	}
	return out
}

func normalizeDifficulty(s string) common.Difficulty {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "f"), strings.Contains(s, "easy"), strings.Contains(s, "fácil"):
		return common.DifficultyEasy
	case strings.HasPrefix(s, "d"), strings.Contains(s, "hard"), strings.Contains(s, "difícil"):
		return common.DifficultyHard
	default:
		return common.DifficultyMedium
	}
}

func buildOnDemandPrompt(diet string, products []common.Product) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		line := "- " + p.Title
		if len(p.Variants) > 0 && p.Variants[0].Price != nil {
			line += fmt.Sprintf(" ($%.2f)", math.Max(*p.Variants[0].Price, 0))
		}
		names = append(names, line)
	}

	return fmt.Sprintf(`Eres un chef experto en cocina %s. Crea UNA receta original en español apta para la dieta "%s".
Debes usar al menos 2 de estos productos de la tienda:
%s

Responde SOLO con un objeto JSON válido, sin texto adicional, con exactamente estos campos:
{"title":"","description":"","prepTime":"15 min","cookTime":"20 min","servings":2,"difficulty":"facil|media|dificil","ingredients":[""],"instructions":[""],"productsUsed":["nombre exacto del producto"],"nutrition":{"calories":0,"protein":0,"carbs":0,"fat":0},"tip":""}`,
		DietName(diet), diet, strings.Join(names, "\n"))
}
