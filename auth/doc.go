// Package auth provides bearer-token authentication for the HTTP surface.
//
// Two schemes are supported and may be combined:
//
//   - a static shared token (auth.token)
//   - HMAC-signed JWTs via auth/jwt (auth.jwt.secret)
//
// NewTokenValidator turns a Config into a TokenValidator that middleware.Auth
// consults. Validated claims are stored in the request context with authctx.
package auth
