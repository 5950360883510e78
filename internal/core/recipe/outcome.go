package recipe

import (
	"fmt"

	"storefront-recipes/internal/metrics"
	"storefront-recipes/internal/pkg/common"

	"go.uber.org/zap"
)

// 非致命警告發生的階段
const (
	StageFetchRandom = "fetch-random"
	StageFetchDiet   = "fetch-diet"
	StageTranslate   = "translate"
)

// Warning 非致命的失敗（該項目被略過或降級）
type Warning struct {
	Stage    string `json:"stage"`
	Diet     string `json:"diet,omitempty"`
	SourceID int64  `json:"sourceId,omitempty"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	switch {
	case w.Diet != "":
		return fmt.Sprintf("%s[%s]: %s", w.Stage, w.Diet, w.Message)
	case w.SourceID != 0:
		return fmt.Sprintf("%s[%d]: %s", w.Stage, w.SourceID, w.Message)
	default:
		return fmt.Sprintf("%s: %s", w.Stage, w.Message)
	}
}

// newWarning 建立警告並記錄日誌與指標
func newWarning(upstream, stage string, err error, fields ...zap.Field) *Warning {
	w := &Warning{Stage: stage, Message: err.Error()}
	for _, f := range fields {
		switch f.Key {
		case "diet":
			w.Diet = f.String
		case "source_id":
			w.SourceID = f.Integer
		}
	}
	common.LogUpstreamFailure(upstream, stage, err, fields...)
	metrics.RecordPipelineWarning(stage)
	return w
}

// Outcome 一個值加上可選的非致命警告
type Outcome[T any] struct {
	Value   T
	Warning *Warning
}

// OK 沒有警告
func (o Outcome[T]) OK() bool {
	return o.Warning == nil
}
