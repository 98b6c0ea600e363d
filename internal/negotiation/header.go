package negotiation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
)

// ParseClientHeader extracts client name and version from the Storefront-Client header.
// Format: name="shopsync", version="v1.2.0" (RFC 8941 Dictionary).
//
// Examples:
//   - version="v1.2.0"                 → {"", "v1.2.0"}
//   - name="web";x=1, version="1.0.0"  → {"web", "1.0.0"} (params ignored)
//
// Returns error if header is empty, malformed, or missing the version key.
func ParseClientHeader(header string) (ClientInfo, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return ClientInfo{}, errors.New("empty Storefront-Client header")
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return ClientInfo{}, fmt.Errorf("invalid Storefront-Client header: %w", err)
	}

	version, err := stringMember(dict, "version")
	if err != nil {
		return ClientInfo{}, err
	}
	if version == "" {
		return ClientInfo{}, errors.New("version key not found in Storefront-Client header")
	}

	name, err := stringMember(dict, "name")
	if err != nil {
		return ClientInfo{}, err
	}

	return ClientInfo{Name: name, Version: version}, nil
}

// FormatClientHeader renders the Storefront-Client header value for info.
func FormatClientHeader(info ClientInfo) (string, error) {
	dict := httpsfv.NewDictionary()
	if info.Name != "" {
		dict.Add("name", httpsfv.NewItem(info.Name))
	}
	dict.Add("version", httpsfv.NewItem(info.Version))
	return httpsfv.Marshal(dict)
}

// stringMember returns the string value of key, or "" when absent.
func stringMember(dict *httpsfv.Dictionary, key string) (string, error) {
	member, ok := dict.Get(key)
	if !ok {
		return "", nil
	}

	item, ok := member.(httpsfv.Item)
	if !ok {
		return "", fmt.Errorf("%s value must be an item", key)
	}

	s, ok := item.Value.(string)
	if !ok {
		return "", fmt.Errorf("%s value must be a string", key)
	}

	return s, nil
}
