// Package notes implements a small notes-taking service: registration,
// password login, and JWT-gated note CRUD.
//
// Authentication lifecycle:
//   - Credentials are stored as bcrypt hashes on the User model and verified
//     through HashPassword / ComparePasswordAndHash. Lookup failures and
//     password mismatches surface the same invalid-credentials error so the
//     login endpoint never reveals whether an account exists.
//   - TokenService issues HS256 JWTs binding {sub, uid, email, iat, exp}.
//     Tokens are stateless bearer credentials; expiry forces a new login.
//   - The middleware/jwtware gate extracts the bearer token, validates it,
//     and attaches the resulting claims to the request context. Every
//     rejection (missing header, malformed token, bad signature, expired)
//     maps to the same 401 response.
//
// Persistence is injected through RepositoryManager (Bun repositories for
// users and notes); nothing in the package holds process-wide mutable state
// beyond the read-only signing configuration fixed at startup.
package notes
