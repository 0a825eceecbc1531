package commissioning

import "errors"

// 调试流程错误，调用方用 errors.Is 判断
var (
	ErrSessionNotFound      = errors.New("commissioning session not found")
	ErrSessionClosed        = errors.New("commissioning session is closed")
	ErrInvalidLoadLevel     = errors.New("invalid load level")
	ErrDuplicateBaseline    = errors.New("baseline already recorded for load level")
	ErrNoAlignmentData      = errors.New("no alignment data")
	ErrAlignmentFinalized   = errors.New("alignment already finalized")
	ErrInvalidBearingSpan   = errors.New("bearing span must be positive")
	ErrInsufficientReadings = errors.New("insufficient pressure readings")
	ErrBaselinesIncomplete  = errors.New("all 5 baseline fingerprints required")
	ErrAlignmentRequired    = errors.New("finalized alignment required")
	ErrInvalidSeverity      = errors.New("invalid override severity")
	ErrNoGeometryData       = errors.New("no geometry comparison")
)
