package common

import (
	"strings"
)

// ProductVariant 商品可購買規格
type ProductVariant struct {
	ID                string   `json:"id"`
	Title             string   `json:"title,omitempty"`
	Price             *float64 `json:"price,omitempty"` // 後端計算後的價格（主要貨幣單位）
	InventoryQuantity *int     `json:"inventoryQuantity,omitempty"`
}

// Product 商品目錄中的商品（唯讀）
type Product struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Handle    string           `json:"handle"`
	Thumbnail string           `json:"thumbnail,omitempty"`
	Tags      []string         `json:"tags,omitempty"`
	Variants  []ProductVariant `json:"variants,omitempty"`
}

// HasTag 不分大小寫檢查商品是否帶有指定標籤
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// ExtendedIngredient 第三方食譜的食材
type ExtendedIngredient struct {
	Original string `json:"original"`
	Name     string `json:"name"`
}

// InstructionStep 第三方食譜的步驟
type InstructionStep struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
}

// InstructionBlock 第三方食譜的步驟區塊
type InstructionBlock struct {
	Name  string            `json:"name"`
	Steps []InstructionStep `json:"steps"`
}

// Nutrient 營養素（名稱/數量/單位）
type Nutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Nutrition 第三方食譜的營養資訊
type Nutrition struct {
	Nutrients []Nutrient `json:"nutrients"`
}

// ExternalRecipe 第三方食譜來源的原始資料（唯讀）
type ExternalRecipe struct {
	ID                   int64                `json:"id"`
	Title                string               `json:"title"`
	Image                string               `json:"image"`
	SourceURL            string               `json:"sourceUrl"`
	ReadyInMinutes       int                  `json:"readyInMinutes"`
	PreparationMinutes   *int                 `json:"preparationMinutes"`
	CookingMinutes       *int                 `json:"cookingMinutes"`
	Servings             int                  `json:"servings"`
	Summary              string               `json:"summary"`
	Vegan                bool                 `json:"vegan"`
	Vegetarian           bool                 `json:"vegetarian"`
	GlutenFree           bool                 `json:"glutenFree"`
	DairyFree            bool                 `json:"dairyFree"`
	ExtendedIngredients  []ExtendedIngredient `json:"extendedIngredients"`
	AnalyzedInstructions []InstructionBlock   `json:"analyzedInstructions"`
	Nutrition            *Nutrition           `json:"nutrition,omitempty"`
}

// Steps 攤平所有步驟文字
func (r ExternalRecipe) Steps() []string {
	var steps []string
	for _, block := range r.AnalyzedInstructions {
		for _, s := range block.Steps {
			if text := strings.TrimSpace(s.Step); text != "" {
				steps = append(steps, text)
			}
		}
	}
	return steps
}

// NutrientAmount 以名稱（不分大小寫）查詢營養素數量，缺少時回傳 0
func (r ExternalRecipe) NutrientAmount(name string) float64 {
	if r.Nutrition == nil {
		return 0
	}
	for _, n := range r.Nutrition.Nutrients {
		if strings.EqualFold(n.Name, name) {
			return n.Amount
		}
	}
	return 0
}

// HasNutrient 檢查營養素是否存在
func (r ExternalRecipe) HasNutrient(name string) bool {
	if r.Nutrition == nil {
		return false
	}
	for _, n := range r.Nutrition.Nutrients {
		if strings.EqualFold(n.Name, name) {
			return true
		}
	}
	return false
}

// Difficulty 食譜難度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "facil"
	DifficultyMedium Difficulty = "media"
	DifficultyHard   Difficulty = "dificil"
)

// RecipeProduct 與食譜連結的商品
type RecipeProduct struct {
	ProductID string   `json:"productId"`
	VariantID string   `json:"variantId"`
	Title     string   `json:"title"`
	Handle    string   `json:"handle"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Quantity  string   `json:"quantity"`
	Price     *float64 `json:"price,omitempty"`
}

// NutritionInfo 每份營養資訊（整數）
type NutritionInfo struct {
	Calories int  `json:"calories"`
	Carbs    int  `json:"carbs"`
	Protein  int  `json:"protein"`
	Fat      int  `json:"fat"`
	Fiber    *int `json:"fiber,omitempty"`
}

// Recipe 管線輸出的在地化食譜
type Recipe struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Image        string          `json:"image,omitempty"`
	SourceURL    string          `json:"sourceUrl,omitempty"`
	Diets        []string        `json:"diets"`
	DietNames    []string        `json:"dietNames"`
	PrepTime     string          `json:"prepTime"`
	CookTime     string          `json:"cookTime"`
	Servings     int             `json:"servings"`
	Difficulty   Difficulty      `json:"difficulty"`
	Ingredients  []string        `json:"ingredients"`
	Instructions []string        `json:"instructions"`
	Products     []RecipeProduct `json:"products"`
	Nutrition    NutritionInfo   `json:"nutrition"`
	Tip          string          `json:"tip,omitempty"`
	SourceID     int64           `json:"sourceId,omitempty"`
	GeneratedAt  string          `json:"generatedAt"`
}

// HasDiet 檢查食譜是否屬於指定飲食分類
func (r Recipe) HasDiet(diet string) bool {
	for _, d := range r.Diets {
		if strings.EqualFold(d, diet) {
			return true
		}
	}
	return false
}

// RecipesSnapshot 一次完整寫入的食譜快照
type RecipesSnapshot struct {
	GeneratedAt string   `json:"generatedAt"`
	Recipes     []Recipe `json:"recipes"`
}

// Find 依識別碼尋找食譜
func (s *RecipesSnapshot) Find(id string) (Recipe, bool) {
	for _, r := range s.Recipes {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}

// FilterByDiet 回傳屬於指定飲食分類的食譜（保持原順序）
func (s *RecipesSnapshot) FilterByDiet(diet string) []Recipe {
	out := make([]Recipe, 0, len(s.Recipes))
	for _, r := range s.Recipes {
		if r.HasDiet(diet) {
			out = append(out, r)
		}
	}
	return out
}
