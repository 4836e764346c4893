package jobs

import "go.uber.org/zap"

func zapErr(err error) []zap.Field {
	return []zap.Field{zap.Error(err)}
}

func zapInt(key string, v int) []zap.Field {
	return []zap.Field{zap.Int(key, v)}
}
