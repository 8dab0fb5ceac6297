// Package auth implements account credentials and session tokens.
//
// It contains the three pieces of the authentication core:
//
//   - Codec: issues and verifies signed, stateless session tokens (JWT).
//     Verification is pure and touches no storage, so the session gate can
//     run it on every request.
//   - AccountStore: persists accounts with salted one-way password hashes.
//     Username uniqueness is enforced by the database unique constraint,
//     not by a prior existence check.
//   - Service: validates submitted credentials and creates accounts. Login
//     failures are uniform; callers cannot distinguish an unknown username
//     from a wrong password.
//
// Token lifecycle is deliberately simple: fixed TTL from issuance, no
// refresh, no server-side revocation. Logout clears the client cookie only,
// so a stolen token stays valid until expiry. The TTL bounds that exposure
// window.
package auth
