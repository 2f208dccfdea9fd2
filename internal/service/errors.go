package service

import "errors"

var (
	ErrProviderCallFailed         = errors.New("llm provider call failed")
	ErrUnparsableProviderResponse = errors.New("unparsable provider response")
	ErrPersistenceFailed          = errors.New("persistence failed")
	ErrRateLimited                = errors.New("rate limited")
	ErrInvalidProfile             = errors.New("invalid creator profile")
	ErrReportNotFound             = errors.New("report not found")
	ErrReportTokenInvalid         = errors.New("report token invalid")
	ErrInvalidRecord              = errors.New("invalid record")
	ErrUnknownProduct             = errors.New("unknown product")
)
