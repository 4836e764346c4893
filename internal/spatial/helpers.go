package spatial

import (
	"encoding/json"

	"go.uber.org/zap"
)

func zapState(name string, from, to any) []zap.Field {
	return []zap.Field{
		zap.String("breaker", name),
		zap.Any("from", from),
		zap.Any("to", to),
	}
}

func decodeExtraData(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
