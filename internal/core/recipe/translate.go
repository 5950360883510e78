package recipe

import (
	"context"
	"fmt"
	"strings"

	aiservice "storefront-recipes/internal/core/ai/service"
	"storefront-recipes/internal/pkg/common"

	"go.uber.org/zap"
)

// TextGenerator 文字生成服務
type TextGenerator interface {
	ProcessRequest(ctx context.Context, prompt string) (*aiservice.Response, error)
}

// Draft 待在地化的食譜文字
type Draft struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tip          string   `json:"tip,omitempty"`
}

// Translator 透過文字生成服務將食譜翻譯為西班牙文
type Translator struct {
	generator TextGenerator
	enabled   bool
}

// NewTranslator 創建翻譯器；enabled 為 false 時直接回傳原文
func NewTranslator(generator TextGenerator, enabled bool) *Translator {
	return &Translator{
		generator: generator,
		enabled:   enabled && generator != nil,
	}
}

// Localize 翻譯食譜文字。任何失敗都回傳原始草稿並附上警告，不會中斷流程。
func (t *Translator) Localize(ctx context.Context, d Draft) Outcome[Draft] {
	if !t.enabled {
		return Outcome[Draft]{Value: d}
	}

	input, err := common.ToJSON(d)
	if err != nil {
		return Outcome[Draft]{Value: d, Warning: newWarning("translation", StageTranslate, err)}
	}

	resp, err := t.generator.ProcessRequest(ctx, buildTranslatePrompt(input))
	if err != nil {
		return Outcome[Draft]{Value: d, Warning: newWarning("translation", StageTranslate, err,
			zap.String("title", d.Title))}
	}

	var translated Draft
	if err := common.ParseModelJSON(resp.Content, &translated); err != nil {
		return Outcome[Draft]{Value: d, Warning: newWarning("translation", StageTranslate,
			fmt.Errorf("parse translation: %w", err), zap.String("title", d.Title))}
	}

	return Outcome[Draft]{Value: mergeDraft(d, translated)}
}

// mergeDraft 以翻譯結果覆蓋原文；空白欄位保留原文
func mergeDraft(orig, tr Draft) Draft {
	out := orig
	if s := strings.TrimSpace(tr.Title); s != "" {
		out.Title = s
	}
	if s := strings.TrimSpace(tr.Description); s != "" {
		out.Description = s
	}
	if items := nonEmpty(tr.Ingredients); len(items) > 0 {
		out.Ingredients = items
	}
	if items := nonEmpty(tr.Instructions); len(items) > 0 {
		out.Instructions = items
	}
	if s := strings.TrimSpace(tr.Tip); s != "" {
		out.Tip = s
	}
	return out
}

func nonEmpty(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func buildTranslatePrompt(recipeJSON string) string {
	return fmt.Sprintf(`Eres un chef profesional y traductor. Traduce al español neutro la siguiente receta.
Reglas:
1. Conserva el mismo número de ingredientes y de pasos, en el mismo orden.
2. Convierte las medidas a unidades métricas cuando sea natural.
3. La descripción debe ser breve y atractiva.
4. Agrega en "tip" un consejo corto de cocina.
5. Responde SOLO con un objeto JSON válido, sin texto adicional ni bloques de código.

Formato:
{"title":"...","description":"...","ingredients":["..."],"instructions":["..."],"tip":"..."}

Receta:
%s`, recipeJSON)
}
