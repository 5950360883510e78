package recipe

import (
	"strings"
	"unicode/utf8"

	"storefront-recipes/internal/pkg/common"
)

// MaxProductsPerRecipe 每道食譜最多連結的商品數
const MaxProductsPerRecipe = 4

// 比對時詞彙需長於此值
const minMatchTermLength = 2

const defaultQuantityHint = "1 unidad"

// MatchProducts 將食材對應到商品目錄。先搜尋帶有飲食標籤的商品，再搜尋整個目錄；
// 每個商品最多使用一次，達到上限立即停止。
func MatchProducts(ingredients []string, catalog []common.Product, dietIDs []string) []common.RecipeProduct {
	matches, _ := searchPools(ingredients, buildPools(catalog, dietIDs), MaxProductsPerRecipe)
	return matches
}

// buildPools 依優先順序建立搜尋池：(a) 標籤符合飲食分類的商品，(b) 整個目錄。
// 沒有規格的商品無法加入購物車，不列入任何池。
func buildPools(catalog []common.Product, dietIDs []string) [][]common.Product {
	var tagged, all []common.Product
	for _, p := range catalog {
		if len(p.Variants) == 0 {
			continue
		}
		all = append(all, p)
		for _, id := range dietIDs {
			if p.HasTag(id) {
				tagged = append(tagged, p)
				break
			}
		}
	}
	return [][]common.Product{tagged, all}
}

// searchPools 依食材順序逐一在各池中尋找第一個標題包含候選詞的未使用商品。
// stop 為 true 表示在處理完所有食材前即已達到 limit。
func searchPools(ingredients []string, pools [][]common.Product, limit int) (matches []common.RecipeProduct, stop bool) {
	consumed := make(map[string]struct{})

	for i, ingredient := range ingredients {
		terms := matchTerms(ExpandTerms(ingredient))
		if len(terms) == 0 {
			continue
		}

		if p, ok := firstMatch(terms, pools, consumed); ok {
			consumed[p.ID] = struct{}{}
			matches = append(matches, toRecipeProduct(p))
		}

		if len(matches) >= limit {
			return matches, i < len(ingredients)-1
		}
	}
	return matches, false
}

func firstMatch(terms []string, pools [][]common.Product, consumed map[string]struct{}) (common.Product, bool) {
	for _, pool := range pools {
		for _, p := range pool {
			if _, used := consumed[p.ID]; used {
				continue
			}
			title := strings.ToLower(p.Title)
			for _, term := range terms {
				if strings.Contains(title, term) {
					return p, true
				}
			}
		}
	}
	return common.Product{}, false
}

func matchTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if utf8.RuneCountInString(t) > minMatchTermLength {
			out = append(out, t)
		}
	}
	return out
}

func toRecipeProduct(p common.Product) common.RecipeProduct {
	v := p.Variants[0]
	return common.RecipeProduct{
		ProductID: p.ID,
		VariantID: v.ID,
		Title:     p.Title,
		Handle:    p.Handle,
		Thumbnail: p.Thumbnail,
		Quantity:  defaultQuantityHint,
		Price:     v.Price,
	}
}
