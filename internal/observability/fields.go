package observability

import "go.uber.org/zap"

// Field constructors, so packages log through observability without importing zap.
//
//nolint:gochecknoglobals // function aliases
var (
	String   = zap.String
	Int      = zap.Int
	Int64    = zap.Int64
	Bool     = zap.Bool
	Float64  = zap.Float64
	Duration = zap.Duration
	Error    = zap.Error
	Any      = zap.Any
)
