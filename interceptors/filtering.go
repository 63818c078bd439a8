package interceptors

import (
	"context"
	"fmt"
	"strings"
)

// InvocationFilter decides whether an interceptor runs for an invocation
type InvocationFilter interface {
	// ShouldProcess returns true if the invocation should be intercepted
	ShouldProcess(ctx context.Context, inv Invocation) bool
}

// InvocationFilterFunc is a function adapter for InvocationFilter
type InvocationFilterFunc func(ctx context.Context, inv Invocation) bool

// ShouldProcess implements InvocationFilter
func (f InvocationFilterFunc) ShouldProcess(ctx context.Context, inv Invocation) bool {
	return f(ctx, inv)
}

// ConditionalInterceptor executes an interceptor only if a condition is met.
// Otherwise the invocation goes straight to the next handler.
type ConditionalInterceptor struct {
	condition   InvocationFilter
	interceptor Interceptor
}

// NewConditionalInterceptor creates a new conditional interceptor
func NewConditionalInterceptor(condition InvocationFilter, interceptor Interceptor) *ConditionalInterceptor {
	return &ConditionalInterceptor{
		condition:   condition,
		interceptor: interceptor,
	}
}

// Intercept implements Interceptor
func (i *ConditionalInterceptor) Intercept(ctx context.Context, inv Invocation, next Handler) (any, error) {
	if i.condition.ShouldProcess(ctx, inv) {
		return i.interceptor.Intercept(ctx, inv, next)
	}
	return next.Handle(ctx)
}

// Name implements Interceptor
func (i *ConditionalInterceptor) Name() string {
	return fmt.Sprintf("ConditionalInterceptor[%s]", i.interceptor.Name())
}

// CompositeFilter combines multiple filters with AND logic
type CompositeFilter struct {
	filters []InvocationFilter
}

// NewCompositeFilter creates a new composite filter
func NewCompositeFilter(filters ...InvocationFilter) *CompositeFilter {
	return &CompositeFilter{filters: filters}
}

// ShouldProcess implements InvocationFilter
func (f *CompositeFilter) ShouldProcess(ctx context.Context, inv Invocation) bool {
	for _, filter := range f.filters {
		if !filter.ShouldProcess(ctx, inv) {
			return false
		}
	}
	return true
}

// OrFilter combines multiple filters with OR logic
type OrFilter struct {
	filters []InvocationFilter
}

// NewOrFilter creates a new OR filter
func NewOrFilter(filters ...InvocationFilter) *OrFilter {
	return &OrFilter{filters: filters}
}

// ShouldProcess implements InvocationFilter
func (f *OrFilter) ShouldProcess(ctx context.Context, inv Invocation) bool {
	for _, filter := range f.filters {
		if filter.ShouldProcess(ctx, inv) {
			return true
		}
	}
	return false
}

// Not inverts a filter
func Not(filter InvocationFilter) InvocationFilter {
	return InvocationFilterFunc(func(ctx context.Context, inv Invocation) bool {
		return !filter.ShouldProcess(ctx, inv)
	})
}

// MessageTypeFilter matches message invocations of the given types
type MessageTypeFilter struct {
	allowedTypes map[string]bool
}

// NewMessageTypeFilter creates a filter that only allows specific message types
func NewMessageTypeFilter(allowedTypes ...string) *MessageTypeFilter {
	typeMap := make(map[string]bool)
	for _, t := range allowedTypes {
		typeMap[t] = true
	}
	return &MessageTypeFilter{allowedTypes: typeMap}
}

// ShouldProcess implements InvocationFilter
func (f *MessageTypeFilter) ShouldProcess(ctx context.Context, inv Invocation) bool {
	msg, ok := inv.Message()
	if !ok || isNilMessage(msg) {
		return false
	}
	return f.allowedTypes[msg.GetType()]
}

// PathFilter matches HTTP invocations by route or request path. A path
// ending in "/*" matches every path below it.
type PathFilter struct {
	paths []string
}

// NewPathFilter creates a filter matching the given paths
func NewPathFilter(paths ...string) *PathFilter {
	return &PathFilter{paths: paths}
}

// ShouldProcess implements InvocationFilter
func (f *PathFilter) ShouldProcess(ctx context.Context, inv Invocation) bool {
	call, ok := inv.HTTP()
	if !ok || call.Request == nil {
		return false
	}

	requestPath := call.Request.URL
	if i := strings.IndexAny(requestPath, "?#"); i >= 0 {
		requestPath = requestPath[:i]
	}

	for _, p := range f.paths {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			if strings.HasPrefix(call.Request.Path, prefix+"/") || strings.HasPrefix(requestPath, prefix+"/") {
				return true
			}
			continue
		}
		if call.Request.Path == p || requestPath == p {
			return true
		}
	}
	return false
}
