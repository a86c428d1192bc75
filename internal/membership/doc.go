// Package membership groups the membership authorization core.
//
// The subpackages are pure functions over snapshots read by the caller:
//
//   - status classifies membership statuses as restricted or not
//   - policy decides status transitions and admin claim changes
//   - access resolves effective access-group membership
//   - section derives who may view, is listed in, or may join a section
//
// None of them read or write storage. Callers must re-read the inputs from
// the authoritative store immediately before deciding, inside the same
// transaction as the write that depends on the decision.
package membership
