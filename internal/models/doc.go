// Package models defines the core domain models for eatnsplit.
//
// # Models
//
//   - User: Registered account; its ID is the identity used everywhere else
//   - Group: A set of users who share expenses
//   - Expense: One payment made by a member on behalf of other members,
//     stored together with its materialized splits
//   - Split: One member's share of an expense
//
// Balances are never stored. They are recomputed from a group's expenses on
// every request (see internal/calculator).
//
// # Design Principles
//
// 1. **Splits are computed once**: an expense's splits are calculated when it
// is created and persisted with it; they are never recalculated.
// 2. **Avoid circular references**: Use ID strings instead of pointers for relationships
// 3. **Exact money**: amounts are decimal.Decimal, never float64, below the API layer
package models
