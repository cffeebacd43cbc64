package db

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var errDBUnavailable = errors.New("db unavailable")

func newID() string {
	return uuid.NewString()
}

func marshalJSON(v any) []byte {
	if v == nil {
		return nil
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return out
}

func unmarshalStrings(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	_ = json.Unmarshal(raw, &out)
	return out
}

// legacyVendorIDForms returns every stored shape a vendor handle can take in
// the products table: the bare handle plus the ObjectId literal kept by the
// original document-store export.
func legacyVendorIDForms(vendorID string) []string {
	return []string{vendorID, fmt.Sprintf("ObjectId(%q)", vendorID)}
}
