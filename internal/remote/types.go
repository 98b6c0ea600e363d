package remote

import (
	"shopsync/internal/adapter"
	"shopsync/internal/model"
)

// itemsEnvelope is the GET /cart and GET /wishlist response body.
type itemsEnvelope struct {
	Items []model.Item `json:"items"`
}

// addRequest is the POST /cart and POST /wishlist body.
type addRequest struct {
	ProductID model.ProductID `json:"productId"`
	Quantity  int             `json:"quantity,omitempty"`
}

// quantityRequest is the PUT /cart/{productId} body.
type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartSyncRequest struct {
	Items []adapter.SyncEntry `json:"items"`
}

type wishlistSyncRequest struct {
	Items []model.ProductID `json:"items"`
}

// errorResponse covers both {"error":{"code","message"}} and flat
// {"code","message"} bodies.
type errorResponse struct {
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Nested  *errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// incompatibleCode is sent when the server rejects the Storefront-Client version.
const incompatibleCode = "CLIENT_VERSION_UNSUPPORTED"

func (e errorResponse) code() string {
	if e.Nested != nil && e.Nested.Code != "" {
		return e.Nested.Code
	}
	return e.Code
}

func (e errorResponse) message() string {
	if e.Nested != nil && e.Nested.Message != "" {
		return e.Nested.Message
	}
	return e.Message
}
