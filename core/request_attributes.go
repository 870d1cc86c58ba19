package core

import (
	"context"
	"fmt"
	"strings"
)

// RequestAttributes is the request-scoped attribute store carried on the
// context by the caller's request handling.
type RequestAttributes map[string]any

type requestAttributesKey struct{}

func WithRequestAttributes(ctx context.Context, attrs RequestAttributes) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	copied := make(RequestAttributes, len(attrs))
	for key, value := range attrs {
		copied[key] = value
	}
	return context.WithValue(ctx, requestAttributesKey{}, copied)
}

func RequestAttributesFromContext(ctx context.Context) RequestAttributes {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(requestAttributesKey{}).(RequestAttributes)
	return attrs
}

// RequestAttributeSecurityProvider resolves security contexts from the
// attributes stored with WithRequestAttributes.
type RequestAttributeSecurityProvider struct{}

func (RequestAttributeSecurityProvider) GetAttribute(ctx context.Context, key string) (SecurityContext, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("core: security context attribute key is required")
	}
	raw, ok := RequestAttributesFromContext(ctx)[key]
	if !ok || raw == nil {
		return "", nil
	}
	switch typed := raw.(type) {
	case SecurityContext:
		return typed, nil
	case string:
		return SecurityContext(typed), nil
	case []byte:
		return SecurityContext(typed), nil
	case fmt.Stringer:
		return SecurityContext(typed.String()), nil
	default:
		return "", fmt.Errorf("core: security context attribute %q has unsupported type %T", key, raw)
	}
}
