package services

import "context"

type contextKey string

const (
	runKeyContextKey    contextKey = "run_key"
	stageContextKey     contextKey = "stage"
	requestIDContextKey contextKey = "request_id"
)

func WithRunKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, runKeyContextKey, key)
}

func RunKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(runKeyContextKey).(string)
	return key, ok
}

func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageContextKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) {
	stage, ok := ctx.Value(stageContextKey).(string)
	return stage, ok
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}
