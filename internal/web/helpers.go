package web

import "context"

// ContextValue returns the value stored under key, or the zero value of T.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// FromContext returns the Context serving the request ctx belongs to.
// Components rendered by Context.Render receive such a ctx.
func FromContext(ctx context.Context) (Context, bool) {
	if c, ok := ctx.(Context); ok {
		return c, true
	}
	if c, ok := ctx.Value(contextKey{}).(*requestContext); ok {
		return c, true
	}
	return nil, false
}
