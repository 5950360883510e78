package recipe

import (
	"strings"

	"storefront-recipes/internal/pkg/common"
)

// 飲食分類識別碼
const (
	DietVegan      = "vegano"
	DietVegetarian = "vegetariano"
	DietKeto       = "keto"
	DietGlutenFree = "sin-gluten"
	DietDairyFree  = "sin-lactosa"
	DietSugarFree  = "sin-azucar"
	DietHealthy    = "saludable"
	DietOrganic    = "organico"
)

// 營養素門檻（公克）
const (
	ketoMaxCarbs      = 20.0
	ketoMinFat        = 15.0
	sugarFreeMaxSugar = 5.0
)

// Diet 飲食分類與第三方搜尋參數的對應
type Diet struct {
	ID   string
	Name string
	// SearchParam / SearchValue 為空表示第三方來源無對應
	SearchParam string
	SearchValue string
}

// Searchable 第三方食譜來源是否支援此分類
func (d Diet) Searchable() bool {
	return d.SearchParam != "" && d.SearchValue != ""
}

// DietTaxonomy 內部飲食分類表
var DietTaxonomy = []Diet{
	{ID: DietVegan, Name: "Vegano", SearchParam: "diet", SearchValue: "vegan"},
	{ID: DietVegetarian, Name: "Vegetariano", SearchParam: "diet", SearchValue: "vegetarian"},
	{ID: DietKeto, Name: "Keto", SearchParam: "diet", SearchValue: "ketogenic"},
	{ID: DietGlutenFree, Name: "Sin Gluten", SearchParam: "intolerances", SearchValue: "gluten"},
	{ID: DietDairyFree, Name: "Sin Lactosa", SearchParam: "intolerances", SearchValue: "dairy"},
	{ID: DietSugarFree, Name: "Sin Azúcar"},
	{ID: DietHealthy, Name: "Saludable"},
	{ID: DietOrganic, Name: "Orgánico"},
}

// LookupDiet 依識別碼（不分大小寫）查詢飲食分類
func LookupDiet(id string) (Diet, bool) {
	for _, d := range DietTaxonomy {
		if strings.EqualFold(d.ID, strings.TrimSpace(id)) {
			return d, true
		}
	}
	return Diet{}, false
}

// DietName 取得顯示名稱，未知的識別碼原樣回傳
func DietName(id string) string {
	if d, ok := LookupDiet(id); ok {
		return d.Name
	}
	return id
}

// Classify 將第三方食譜對應到內部飲食分類，結果永不為空。
// 缺少的營養素視為 0，因此無營養資料的食譜也可能被歸為 keto 或 sin-azucar。
func Classify(r common.ExternalRecipe) (ids []string, names []string) {
	add := func(id string) {
		ids = append(ids, id)
		names = append(names, DietName(id))
	}

	if r.Vegan {
		add(DietVegan)
	}
	// vegano 已隱含 vegetariano，避免重複標籤
	if r.Vegetarian && !r.Vegan {
		add(DietVegetarian)
	}
	if r.GlutenFree {
		add(DietGlutenFree)
	}
	if r.DairyFree {
		add(DietDairyFree)
	}
	if r.NutrientAmount("Carbohydrates") < ketoMaxCarbs && r.NutrientAmount("Fat") > ketoMinFat {
		add(DietKeto)
	}
	if r.NutrientAmount("Sugar") < sugarFreeMaxSugar {
		add(DietSugarFree)
	}

	if len(ids) == 0 {
		add(DietHealthy)
	}
	return ids, names
}
