package prefs

import "context"

type ctxKey struct{}

// AccessError reports a consumer reached without a provisioned preferences store.
type AccessError struct {
	Consumer string
}

func (e *AccessError) Error() string {
	if e.Consumer == "" {
		return "prefs: store not provisioned in context"
	}
	return "prefs: " + e.Consumer + " used outside a provisioned context"
}

func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Store, error) {
	if s, ok := ctx.Value(ctxKey{}).(*Store); ok && s != nil {
		return s, nil
	}
	return nil, &AccessError{}
}

// MustFromContext panics with an *AccessError naming consumer when no store is present.
func MustFromContext(ctx context.Context, consumer string) *Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(&AccessError{Consumer: consumer})
	}
	return s
}
