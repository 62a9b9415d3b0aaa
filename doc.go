// Package authcore implements the session and credential core of a
// content-management backend: bearer-token issuance with a fixed
// next-UTC-midnight expiry, dual-channel credential extraction
// (Authorization header or HTTP-only cookie), the ordered authentication
// chain, and opportunistic token refresh for sessions close to expiry.
//
// The core is stateless: there is no server-side session table, and a
// minted token stays cryptographically valid until its own expiry.
// Business storage is reached only through the narrow [UserStore]
// lookup contract.
package authcore
