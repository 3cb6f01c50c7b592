package generator

import "context"

type operatorKey struct{}

// WithOperator attributes writes made with ctx to name.
func WithOperator(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operatorKey{}, name)
}

// Operator returns the name attached by WithOperator, or "".
func Operator(ctx context.Context) string {
	name, _ := ctx.Value(operatorKey{}).(string)
	return name
}
