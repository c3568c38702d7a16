// Package favourites provides a reusable favourites/collections library:
// authenticated users organise weak references to arbitrary registered
// content kinds into named, shareable, ordered lists.
//
// It exposes a single Service interface that orchestrates list lifecycle
// (including the invariant that every user always owns at least one list),
// idempotent ordered membership, per-list sharing roles (owners, editors,
// viewers, public) and discovery/aggregation queries. Repository
// implementations (memory, Postgres) live under subpackages; the web layer,
// user storage and content storage are external collaborators reached
// through small interfaces (Repository, UserDirectory, Backend).
//
// Content References
//
// An item points at content through a (kind, id) pair resolved via a
// Registry built once at startup. The reference is weak: content deleted by
// its own owner degrades to a missing entry during iteration, never an
// error.
//
// Permissions
//
// Capability checks are pure functions over a user identity and a loaded
// list snapshot (see CanViewList and friends). Mutating Service operations
// evaluate them against the acting user and fail with ErrPermissionDenied,
// so the core remains safe even when the caller skips its own checks.
package favourites
