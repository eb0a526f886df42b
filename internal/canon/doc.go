// Package canon produces RFC 8785 canonical JSON.
//
// Canonical output is used wherever bytes must be stable across runs and
// platforms, such as the catalog fingerprint embedded in every JSON export.
//
// Rules applied:
//   - Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//   - Strings NFC normalized, no HTML escaping, U+2028/U+2029 left literal
//   - No insignificant whitespace
//   - Integers only; floats and null are rejected
package canon
