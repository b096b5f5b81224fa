package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

var requestDataKey = contextKey{}

// RequestData is the authenticated identity the middleware resolves from the
// bearer token. Role checks at the API boundary read from here; the clinical
// core never sees it.
type RequestData struct {
	UserID      uuid.UUID
	Role        string
	Email       string
	TokenString string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}

func (rd *RequestData) IsTherapist() bool {
	return rd != nil && rd.Role == "therapist"
}
