// Package models contains the stored document layouts of each collection and
// the mappers between them and domain entities.
//
// Key Principles:
// 1. Domain entities are free of storage tags and document quirks
// 2. Document models carry the JSON field names used by the storefront
// 3. Value types (Text, Amount, Count, Flag, Timestamp) accept every shape the
//    storefront clients have written for a field
// 4. Repositories decode and encode documents only through this package
package models
