package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"shopsync/internal/model"
	"shopsync/internal/storefront"
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

func disableColors() {
	colorReset, colorRed, colorGreen = "", "", ""
	colorYellow, colorCyan, colorGray = "", "", ""
}

// printSuccess is suppressed in JSON mode so stdout stays parseable.
func (a *app) printSuccess(format string, args ...interface{}) {
	if a.jsonOutput {
		return
	}
	fmt.Fprintf(a.out, "%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printStatus(st storefront.Status) error {
	if a.jsonOutput {
		return a.printJSON(st)
	}
	mode := "guest"
	if st.LoggedIn {
		mode = "logged in"
	}
	fmt.Fprintf(a.out, "  Session:  %s%s%s\n", colorCyan, mode, colorReset)
	fmt.Fprintf(a.out, "  Cart:     %d item(s), %s\n", st.CartItems, st.CartTotal)
	fmt.Fprintf(a.out, "  Wishlist: %d item(s)\n", st.WishlistItems)
	fmt.Fprintf(a.out, "  Merge:    %s\n", st.MergePolicy)
	return nil
}

type cartOutput struct {
	Items []model.Item `json:"items"`
	Count int          `json:"count"`
	Total model.Money  `json:"total"`
}

func (a *app) printCart(sf *storefront.Storefront) error {
	cart := sf.Cart()
	items := cart.Items()
	if a.jsonOutput {
		return a.printJSON(cartOutput{Items: nonNil(items), Count: cart.Count(), Total: cart.Total()})
	}
	if len(items) == 0 {
		fmt.Fprintf(a.out, "%s→ cart is empty%s\n", colorGray, colorReset)
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tVARIANT\tQTY\tPRICE\tTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", it.ProductID, dash(it.Variant), it.Quantity, it.Price, it.LineTotal())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "  %d item(s), total %s%s%s\n", cart.Count(), colorGreen, cart.Total(), colorReset)
	return nil
}

func (a *app) printWishlist(sf *storefront.Storefront) error {
	items := sf.Wishlist().Items()
	if a.jsonOutput {
		return a.printJSON(struct {
			Items []model.Item `json:"items"`
		}{Items: nonNil(items)})
	}
	if len(items) == 0 {
		fmt.Fprintf(a.out, "%s→ wishlist is empty%s\n", colorGray, colorReset)
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tPRICE\tSLUG")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ProductID, it.Price, dash(it.Slug))
	}
	return tw.Flush()
}

func nonNil(items []model.Item) []model.Item {
	if items == nil {
		return []model.Item{}
	}
	return items
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
