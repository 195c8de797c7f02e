// Package schema defines the three TileMaster record collections and
// their wire representation.
//
// Every record is persisted as an opaque JSON payload keyed by an id
// column; the JSON field names here are the wire format and must not
// change without a storage key bump.
package schema
