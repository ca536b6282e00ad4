package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// VariantIDList stores the created Shopify variant ids as a JSONB array so
// approval can verify unwanted ids actually belong to the quote.
type VariantIDList []int64

// Value serializes the list to JSON.
func (v VariantIDList) Value() (driver.Value, error) {
	if v == nil {
		return json.Marshal([]int64{})
	}
	return json.Marshal([]int64(v))
}

// Scan decodes JSONB into the list.
func (v *VariantIDList) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	var raw []byte
	switch src := value.(type) {
	case []byte:
		raw = src
	case string:
		raw = []byte(src)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
	return json.Unmarshal(raw, (*[]int64)(v))
}

// Contains reports whether id is one of the quote's variants.
func (v VariantIDList) Contains(id int64) bool {
	for _, candidate := range v {
		if candidate == id {
			return true
		}
	}
	return false
}
