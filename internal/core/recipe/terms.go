package recipe

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// 長度小於等於此值的詞彙不參與比對
const minTokenLength = 3

// ingredientSynonyms 英文食材名稱 → 西班牙文同義詞
var ingredientSynonyms = map[string][]string{
	// 禽肉、肉類
	"chicken": {"pollo", "gallina"},
	"turkey":  {"pavo"},
	"beef":    {"carne", "ternera"},
	"pork":    {"cerdo", "chancho"},
	"bacon":   {"tocino", "tocineta", "panceta"},
	"sausage": {"salchicha", "chorizo"},
	"lamb":    {"cordero"},

	// 魚類、海鮮
	"fish":   {"pescado"},
	"salmon": {"salmón", "salmon"},
	"tuna":   {"atun", "atún"},
	"shrimp": {"camaron", "camarón", "camarones", "langostino"},

	// 乳製品、蛋
	"milk":   {"leche"},
	"cheese": {"queso"},
	"butter": {"mantequilla", "manteca"},
	"cream":  {"crema", "nata"},
	"yogurt": {"yogur", "yogurt"},
	"eggs":   {"huevo", "huevos"},

	// 蔬果
	"spinach":    {"espinaca", "espinacas"},
	"tomato":     {"tomate", "tomates"},
	"tomatoes":   {"tomate", "tomates"},
	"onion":      {"cebolla"},
	"garlic":     {"ajo", "ajos"},
	"potato":     {"papa", "patata"},
	"potatoes":   {"papas", "patatas"},
	"carrot":     {"zanahoria"},
	"carrots":    {"zanahorias", "zanahoria"},
	"pepper":     {"pimiento", "pimienta", "aji", "ají"},
	"lettuce":    {"lechuga"},
	"broccoli":   {"brocoli", "brócoli"},
	"mushroom":   {"champiñon", "champiñón", "hongo", "seta"},
	"avocado":    {"palta", "aguacate"},
	"lemon":      {"limon", "limón"},
	"lime":       {"lima"},
	"apple":      {"manzana"},
	"banana":     {"platano", "plátano", "banana", "banano"},
	"orange":     {"naranja"},
	"strawberry": {"fresa", "frutilla"},
	"zucchini":   {"calabacin", "calabacín", "zapallito"},
	"pumpkin":    {"calabaza", "zapallo"},
	"corn":       {"maiz", "maíz", "choclo"},
	"beans":      {"frijoles", "porotos", "judias", "alubias"},
	"chickpeas":  {"garbanzo", "garbanzos"},
	"lentils":    {"lenteja", "lentejas"},
	"cucumber":   {"pepino"},
	"cabbage":    {"repollo"},
	"kale":       {"kale", "col rizada"},

	// 穀物、烘焙
	"rice":     {"arroz"},
	"pasta":    {"pasta", "fideos"},
	"bread":    {"pan"},
	"flour":    {"harina"},
	"oats":     {"avena"},
	"quinoa":   {"quinoa", "quinua"},
	"tortilla": {"tortilla", "tortillas"},

	// 調味、乾貨
	"sugar":     {"azucar", "azúcar"},
	"honey":     {"miel"},
	"olive":     {"oliva", "aceituna"},
	"vinegar":   {"vinagre"},
	"almond":    {"almendra", "almendras"},
	"almonds":   {"almendra", "almendras"},
	"walnuts":   {"nuez", "nueces"},
	"peanut":    {"mani", "maní", "cacahuate"},
	"coconut":   {"coco"},
	"chocolate": {"chocolate"},
	"cinnamon":  {"canela"},
	"coffee":    {"cafe", "café"},
	"tofu":      {"tofu"},
}

// synonymKeys 固定迭代順序，確保展開結果可重現
var synonymKeys = func() []string {
	keys := make([]string, 0, len(ingredientSynonyms))
	for k := range ingredientSynonyms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// ExpandTerms 將食材名稱展開為候選搜尋詞（小寫、去重）。
// 包含原始詞彙、同義詞表的正向翻譯，以及部分比對到同義詞時的反向鍵值。
func ExpandTerms(ingredientName string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}

	var tokens []string
	for _, raw := range strings.Fields(strings.ToLower(ingredientName)) {
		tok := strings.Trim(raw, ",.;:()")
		if utf8.RuneCountInString(tok) <= minTokenLength {
			continue
		}
		tokens = append(tokens, tok)
		add(tok)
	}

	for _, tok := range tokens {
		for _, syn := range ingredientSynonyms[tok] {
			add(syn)
		}
	}

	for _, tok := range tokens {
		for _, key := range synonymKeys {
			for _, syn := range ingredientSynonyms[key] {
				if strings.Contains(tok, syn) || strings.Contains(syn, tok) {
					add(key)
					break
				}
			}
		}
	}

	return out
}
