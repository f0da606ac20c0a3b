package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
	UpstreamUnavailable = 503
)

var (
	ErrParamInvalid        = errors.New("invalid parameter")
	ErrMediaRequired       = errors.New("media url is required")
	ErrMediaTypeInvalid    = errors.New("unsupported media type")
	ErrMomentNotFound      = errors.New("moment not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrRelationInvalid     = errors.New("unknown relation type")
	ErrFollowSelf          = errors.New("cannot follow yourself")
	ErrBlockSelf           = errors.New("cannot block yourself")
	ErrCleanupUnauthorized = errors.New("cleanup secret mismatch")
	ErrStoreUnavailable    = errors.New("data store unavailable")
	UnExpectedError        = errors.New("unexpected error, please retry later")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:        BadRequest,
	ErrMediaRequired:       BadRequest,
	ErrMediaTypeInvalid:    BadRequest,
	ErrMomentNotFound:      NotFound,
	ErrPermissionDenied:    Forbidden,
	ErrRelationInvalid:     BadRequest,
	ErrFollowSelf:          BadRequest,
	ErrBlockSelf:           BadRequest,
	ErrCleanupUnauthorized: Unauthorized,
	ErrStoreUnavailable:    UpstreamUnavailable,
	UnExpectedError:        InternalServerError,
}
