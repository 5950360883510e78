package recipe

import (
	"fmt"
	"testing"

	"storefront-recipes/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchProducts_SpinachScenario(t *testing.T) {
	catalog := []common.Product{
		product("prod-espinaca", "Espinaca Orgánica 250g", "organico"),
	}

	got := MatchProducts([]string{"2 cups spinach"}, catalog, []string{"organico"})

	require.Len(t, got, 1)
	assert.Equal(t, "prod-espinaca", got[0].ProductID)
	assert.Equal(t, "var-prod-espinaca", got[0].VariantID)
	assert.Equal(t, "1 unidad", got[0].Quantity)
	require.NotNil(t, got[0].Price)
	assert.InDelta(t, 9.99, *got[0].Price, 0.001)
}

func TestMatchProducts_PoolPriority(t *testing.T) {
	catalog := []common.Product{
		product("plain", "Pollo entero"),
		product("tagged", "Pollo entero", "keto"),
	}

	got := MatchProducts([]string{"chicken"}, catalog, []string{"KETO"})

	require.Len(t, got, 1)
	assert.Equal(t, "tagged", got[0].ProductID)
}

func TestMatchProducts_FallsBackToFullCatalog(t *testing.T) {
	catalog := []common.Product{
		product("tagged-rice", "Arroz integral", "vegano"),
		product("plain-chicken", "Pechuga de pollo"),
	}

	got := MatchProducts([]string{"chicken breast", "rice"}, catalog, []string{"vegano"})

	require.Len(t, got, 2)
	assert.Equal(t, "plain-chicken", got[0].ProductID)
	assert.Equal(t, "tagged-rice", got[1].ProductID)
}

func TestMatchProducts_CapAndUniqueness(t *testing.T) {
	var catalog []common.Product
	for i := 0; i < 10; i++ {
		catalog = append(catalog, product(fmt.Sprintf("p%d", i), fmt.Sprintf("Tomate cherry %d", i)))
	}
	ingredients := []string{"tomato", "tomato", "tomato", "tomato", "tomato", "tomato", "tomato"}

	got := MatchProducts(ingredients, catalog, nil)

	assert.Len(t, got, MaxProductsPerRecipe)
	seen := map[string]bool{}
	for _, rp := range got {
		assert.False(t, seen[rp.ProductID], "duplicate product %s", rp.ProductID)
		seen[rp.ProductID] = true
	}
}

func TestMatchProducts_SkipsProductsWithoutVariants(t *testing.T) {
	noVariant := product("no-variant", "Queso fresco")
	noVariant.Variants = nil
	catalog := []common.Product{noVariant, product("with-variant", "Queso rallado")}

	got := MatchProducts([]string{"cheese"}, catalog, nil)

	require.Len(t, got, 1)
	assert.Equal(t, "with-variant", got[0].ProductID)
}

func TestMatchProducts_NoMatch(t *testing.T) {
	got := MatchProducts([]string{"saffron"}, []common.Product{product("p1", "Leche entera")}, nil)
	assert.Empty(t, got)
}

func TestSearchPools_StopSignal(t *testing.T) {
	var catalog []common.Product
	for i := 0; i < 5; i++ {
		catalog = append(catalog, product(fmt.Sprintf("p%d", i), "Leche descremada"))
	}
	pools := buildPools(catalog, nil)

	matches, stop := searchPools([]string{"milk", "milk", "milk", "milk", "milk"}, pools, 4)
	assert.Len(t, matches, 4)
	assert.True(t, stop)

	matches, stop = searchPools([]string{"milk", "milk"}, pools, 4)
	assert.Len(t, matches, 2)
	assert.False(t, stop)
}

func TestMatchProducts_PriceOptional(t *testing.T) {
	p := product("p1", "Avena en hojuelas")
	p.Variants[0].Price = nil

	got := MatchProducts([]string{"rolled oats"}, []common.Product{p}, nil)

	require.Len(t, got, 1)
	assert.Nil(t, got[0].Price)
}
