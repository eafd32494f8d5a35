// Package models defines the core domain models for the club fee engine.
//
// # Model Overview
//
//   - Person: a club member, belonging to exactly one Household
//   - Household: a postal household grouping Persons
//   - Sport: a section of the club a Person can enroll in
//   - FeeChange: one versioned fee-schedule entry for a Sport
//   - Enrollment: a Person's time-bounded membership in one Sport
//   - StateChange: audit record of a membership-state transition
//   - Settings: club-wide flat fees for passive members
//
// # Design Principles
//
// 1. **Plain structs**: no persistence or transport tags; the storage and
// API layers own their own encodings.
// 2. **Avoid circular references**: relationships are ID strings, never
// pointers to other models.
// 3. **Derived state is marked as such**: Person.State and the Sport
// current-fee fields are caches of facts held elsewhere and are written
// only by the components that own the derivation.
// 4. **Exact money**: every monetary amount is a decimal.Decimal with
// two-decimal-place semantics; floats never touch fees.
package models
