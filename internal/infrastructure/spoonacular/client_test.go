package spoonacular

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-recipes/internal/core/recipe"
	"storefront-recipes/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bulkBody = `[{"id":11,"title":"Vegan chili","readyInMinutes":40,"servings":4,"vegan":true,
"extendedIngredients":[{"original":"1 can black beans","name":"black beans"}],
"analyzedInstructions":[{"name":"","steps":[{"number":1,"step":"Simmer."}]}],
"nutrition":{"nutrients":[{"name":"Calories","amount":310.5,"unit":"kcal"}]}}]`

func newTestClient(url, key string) *Client {
	return NewClient(config.SpoonacularConfig{BaseURL: url, APIKey: key, Timeout: 2 * time.Second})
}

func TestRandom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/random", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("number"))
		assert.Equal(t, "true", r.URL.Query().Get("includeNutrition"))
		assert.Equal(t, "key", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"recipes":[{"id":1,"title":"Pancakes","preparationMinutes":-1}]}`))
	}))
	defer srv.Close()

	recipes, err := newTestClient(srv.URL, "key").Random(context.Background(), 20)
	require.NoError(t, err)

	require.Len(t, recipes, 1)
	assert.Equal(t, int64(1), recipes[0].ID)
	require.NotNil(t, recipes[0].PreparationMinutes)
	assert.Equal(t, -1, *recipes[0].PreparationMinutes)
	assert.Nil(t, recipes[0].CookingMinutes)
}

func TestSearchByDiet_SearchThenBulk(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/recipes/complexSearch":
			assert.Equal(t, "vegan", r.URL.Query().Get("diet"))
			assert.Equal(t, "5", r.URL.Query().Get("number"))
			_, _ = w.Write([]byte(`{"results":[{"id":11},{"id":12}],"totalResults":2}`))
		case "/recipes/informationBulk":
			assert.Equal(t, "11,12", r.URL.Query().Get("ids"))
			_, _ = w.Write([]byte(bulkBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	diet, ok := recipe.LookupDiet(recipe.DietVegan)
	require.True(t, ok)

	recipes, err := newTestClient(srv.URL, "key").SearchByDiet(context.Background(), diet, 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"/recipes/complexSearch", "/recipes/informationBulk"}, paths)
	require.Len(t, recipes, 1)
	assert.True(t, recipes[0].Vegan)
	assert.Equal(t, []string{"Simmer."}, recipes[0].Steps())
	assert.InDelta(t, 310.5, recipes[0].NutrientAmount("Calories"), 0.001)
}

func TestSearchByDiet_IntoleranceParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gluten", r.URL.Query().Get("intolerances"))
		assert.Empty(t, r.URL.Query().Get("diet"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	diet, _ := recipe.LookupDiet(recipe.DietGlutenFree)
	recipes, err := newTestClient(srv.URL, "key").SearchByDiet(context.Background(), diet, 5)

	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "key").Random(context.Background(), 3)
	assert.Error(t, err)

	_, err = newTestClient(srv.URL, "").Random(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
