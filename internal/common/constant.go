package common

// AccessTokenCookieName is the cookie that carries the session token.
const AccessTokenCookieName = "access_token"

// LoginPath is where unauthenticated browser requests are sent.
const LoginPath = "/auth/login"
