package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

var requestDataKey ctxKey

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData is the per-request identity extracted from the auth cookie.
type RequestData struct {
	TokenString        string
	UserID             uuid.UUID
	Email              string
	Role               string
	FirstTimeLogin     bool
	RequiresOnboarding bool
	RequiresAssessment bool
}
