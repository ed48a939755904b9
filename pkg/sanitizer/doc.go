// Package sanitizer provides pure text normalization functions.
//
// All functions are idempotent: applying them multiple times produces the
// same result. Absent input (a nil *string) is treated as the empty string,
// so callers never have to branch before sanitizing.
//
// Normalization includes:
//   - Trim: strip surrounding Unicode whitespace
//   - CollapseWhitespace: trim, then reduce every whitespace run to one space
//   - StripMarkup: remove HTML-like tags, fold stray angle brackets into
//     guillemets, then collapse whitespace - "<b>a</b> < b" becomes "a « b"
//   - Labels: trim, collapse and lowercase
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
