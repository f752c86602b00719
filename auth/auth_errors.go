package auth

import "errors"

var (
	NoTokenErr               = errors.New("no token found in the request")
	NoCodeErr                = errors.New("no authorization code found in the request")
	CodeLoginDisabledErr     = errors.New("authorization code login is not configured")
	RefreshTokenNotFoundErr  = errors.New("refresh token not found")
	InvalidRefreshTokenErr   = errors.New("invalid refresh token")
	RefreshTokenMismatchErr  = errors.New("refresh token does not belong to the token subject")
	MissingIdentityClaimsErr = errors.New("no user payload found in the identity token")
	LoginUnavailableErr      = errors.New("login could not be completed")
)
