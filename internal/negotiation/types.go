// Package negotiation implements client API version negotiation between the
// shopsync remote client and a storefront API.
// The client advertises itself in the Storefront-Client header (RFC 8941 dictionary);
// the server checks semver compatibility and records the result in the request context.
package negotiation

// ClientHeader is the request header carrying the client identity and API version.
const ClientHeader = "Storefront-Client"

// ClientInfo is the parsed content of the Storefront-Client header.
type ClientInfo struct {
	Name    string
	Version string
}

// NegotiatedContext is the result of version negotiation.
// Stored in http.Request context by Middleware.
type NegotiatedContext struct {
	Client ClientInfo

	// ServerVersion is the API version the server speaks.
	ServerVersion string

	// Legacy is set when the client sent no header and was admitted anyway.
	Legacy bool
}

// contextKey is the type for context values to avoid collisions
type contextKey string

// NegotiationContextKey is the context key for storing NegotiatedContext
const NegotiationContextKey contextKey = "shopsync.negotiation"

// Error codes written by Middleware.
const (
	ClientHeaderInvalid      = "CLIENT_HEADER_INVALID"
	ClientVersionUnsupported = "CLIENT_VERSION_UNSUPPORTED"
)
