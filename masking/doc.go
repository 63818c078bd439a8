// Package masking redacts sensitive fields from structured values before they are logged.
//
// A Masker is built once from an ordered list of field selectors and never
// changes afterwards. A selector is either a bare field name ("password") or a
// dot-separated path ("headers.authorization"). Matching is case-insensitive
// and anchored at the leaf: a selector matches every key path that ends with
// its segments, at any depth. Array elements do not add a path segment.
//
//	masker := masking.New("headers.authorization", "password")
//	safe := masker.Apply(payload)
//
// Apply never mutates its argument. Values other than map[string]any and
// []any are first normalised through encoding/json so that struct fields can
// be matched by their JSON names. A Masker with no selectors returns its
// input unchanged.
package masking
