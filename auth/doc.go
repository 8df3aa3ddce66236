// Package auth implements the identity subsystem of the lokanta-api backend:
// credential storage, password hashing, token issuance and verification, and
// the authorization primitives the HTTP layer builds on.
//
// Tokens:
//   - TokenService issues HS256-signed access and refresh tokens under
//     distinct signing keys. Validation checks signature, expiry, claim
//     structure, and (when configured) a revocation denylist, in that order.
//     Both keys come from startup configuration; there is no compiled-in
//     default and the process refuses to start without them.
//
// Authentication:
//   - Auther drives the credential lifecycle. Login verifies a password
//     against the bcrypt hash and mints a token pair. Refresh always
//     rehydrates the identity from the store before minting a new access
//     token, so role changes and account deletions take effect at the
//     refresh boundary. Logout revokes the presented token via the denylist.
//
// Authorization:
//   - AccessPolicy is a declarative per-route rule (Public, AnyAuthenticated,
//     RoleIn, OwnerOf) evaluated by the guard middleware. The zero policy
//     requires authentication, so an unset policy fails closed.
//
// Activity sinks:
//   - ActivitySink receives login, refresh, logout, and password change
//     events. Sinks run best-effort; errors are logged and never block
//     authentication.
package auth
