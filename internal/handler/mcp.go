// MCP transport handler for the reference storefront using the official MCP Go SDK.
// Exposes cart and wishlist operations as MCP tools.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"shopsync/internal/model"
)

// === MCP Meta Types ===
// meta carries what REST callers send as headers.
// - Authorization: Bearer <token> → meta["token"]

// MCPMeta represents request metadata in MCP requests.
type MCPMeta struct {
	Token string `json:"token" jsonschema:"shopper bearer token"`
}

// === MCP Tool Input/Output Types ===

// CollectionInput is the input schema for get_cart and get_wishlist.
type CollectionInput struct {
	Meta MCPMeta `json:"meta" jsonschema:"request metadata"`
}

// AddToCartInput is the input schema for add_to_cart.
type AddToCartInput struct {
	Meta      MCPMeta `json:"meta" jsonschema:"request metadata"`
	ProductID string  `json:"productId" jsonschema:"product ID"`
	Quantity  int     `json:"quantity,omitempty" jsonschema:"units to add, defaults to 1"`
}

// ProductInput is the input schema for remove_from_cart and toggle_wishlist.
type ProductInput struct {
	Meta      MCPMeta `json:"meta" jsonschema:"request metadata"`
	ProductID string  `json:"productId" jsonschema:"product ID"`
}

// MCPItem is an item as returned to MCP clients. Prices are decimal strings.
type MCPItem struct {
	ProductID string `json:"productId"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity,omitempty"`
	Image     string `json:"image,omitempty"`
	Slug      string `json:"slug,omitempty"`
}

// CollectionOutput is the structured result of every collection tool.
type CollectionOutput struct {
	Items []MCPItem `json:"items"`
	Count int       `json:"count"`
	Total string    `json:"total"`
}

// ToggleOutput is the structured result of toggle_wishlist.
type ToggleOutput struct {
	OnWishlist bool      `json:"onWishlist"`
	Items      []MCPItem `json:"items"`
}

// NewMCPServer creates an MCP server with collection tools registered.
// The server exposes the same operations as the REST API but via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "shopsync-devapi",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Storefront cart and wishlist operations. " +
				"Pass the shopper's bearer token in meta.token.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_cart",
		Description: "Get the shopper's cart with item count and total.",
	}, h.mcpGetCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_to_cart",
		Description: "Add units of a product to the cart. Quantities accumulate.",
	}, h.mcpAddToCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_from_cart",
		Description: "Remove a product from the cart.",
	}, h.mcpRemoveFromCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_wishlist",
		Description: "Get the shopper's wishlist.",
	}, h.mcpGetWishlist)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_wishlist",
		Description: "Add a product to the wishlist, or remove it if already present.",
	}, h.mcpToggleWishlist)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpGetCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CollectionInput,
) (*mcp.CallToolResult, *CollectionOutput, error) {
	token, err := mcpToken(input.Meta)
	if err != nil {
		return nil, nil, err
	}
	return nil, collectionOutput(h.store.Items(token, model.KindCart)), nil
}

func (h *Handler) mcpAddToCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input AddToCartInput,
) (*mcp.CallToolResult, *CollectionOutput, error) {
	token, err := mcpToken(input.Meta)
	if err != nil {
		return nil, nil, err
	}
	if input.ProductID == "" {
		return nil, nil, fmt.Errorf("productId is required")
	}
	qty := input.Quantity
	if qty == 0 {
		qty = 1
	}

	items, err := h.store.Add(token, model.KindCart, model.ProductID(input.ProductID), qty)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, collectionOutput(items), nil
}

func (h *Handler) mcpRemoveFromCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ProductInput,
) (*mcp.CallToolResult, *CollectionOutput, error) {
	token, err := mcpToken(input.Meta)
	if err != nil {
		return nil, nil, err
	}
	if input.ProductID == "" {
		return nil, nil, fmt.Errorf("productId is required")
	}
	items := h.store.Remove(token, model.KindCart, model.ProductID(input.ProductID))
	return nil, collectionOutput(items), nil
}

func (h *Handler) mcpGetWishlist(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CollectionInput,
) (*mcp.CallToolResult, *CollectionOutput, error) {
	token, err := mcpToken(input.Meta)
	if err != nil {
		return nil, nil, err
	}
	return nil, collectionOutput(h.store.Items(token, model.KindWishlist)), nil
}

func (h *Handler) mcpToggleWishlist(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ProductInput,
) (*mcp.CallToolResult, *ToggleOutput, error) {
	token, err := mcpToken(input.Meta)
	if err != nil {
		return nil, nil, err
	}
	id := model.ProductID(input.ProductID)
	if id == "" {
		return nil, nil, fmt.Errorf("productId is required")
	}

	if model.FindItem(h.store.Items(token, model.KindWishlist), id) >= 0 {
		items := h.store.Remove(token, model.KindWishlist, id)
		return nil, &ToggleOutput{OnWishlist: false, Items: mcpItems(items)}, nil
	}

	items, err := h.store.Add(token, model.KindWishlist, id, 0)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &ToggleOutput{OnWishlist: true, Items: mcpItems(items)}, nil
}

// mcpToken returns the shopper token from meta.
func mcpToken(meta MCPMeta) (string, error) {
	if meta.Token == "" {
		return "", fmt.Errorf("UNAUTHORIZED: meta.token is required in MCP requests")
	}
	return meta.Token, nil
}

// mcpError converts store errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}

func mcpItems(items []model.Item) []MCPItem {
	out := make([]MCPItem, 0, len(items))
	for _, it := range items {
		out = append(out, MCPItem{
			ProductID: string(it.ProductID),
			Price:     it.Price.String(),
			Quantity:  it.Quantity,
			Image:     it.Image,
			Slug:      it.Slug,
		})
	}
	return out
}

func collectionOutput(items []model.Item) *CollectionOutput {
	var total model.Money
	count := 0
	for _, it := range items {
		total += it.LineTotal()
		count += max(it.Quantity, 1)
	}
	return &CollectionOutput{
		Items: mcpItems(items),
		Count: count,
		Total: total.String(),
	}
}
