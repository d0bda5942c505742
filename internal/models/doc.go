// Package models defines the domain models for Tally.
//
// # Persisted Models
//
//   - LineItem: one priced entry in the list, stored in my_table
//
// # View Models
//
// DisplayRow is what the presentation layer renders. It is a closed set of
// two variants:
//   - ItemRow: wraps a persisted LineItem
//   - TotalRow: the synthetic running total appended after every refresh
//
// Consumers type-switch on DisplayRow instead of inspecting rendered text,
// so the total row can never be mistaken for a deletable item.
package models
