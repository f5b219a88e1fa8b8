// internal/api/error_codes.go
package api

// API error codes the handlers emit. Typed AppErrors carry their own codes
// (VALIDATION_ERROR, NOT_FOUND, CONFLICT, ...) generated by internal/errors.
const (
	// Generic
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorInternalError = "INTERNAL_ERROR"

	// Session
	ErrorSessionNotFound = "SESSION_NOT_FOUND"
	ErrorValidation      = "VALIDATION_ERROR"

	// Generation
	ErrorGenerationFailed   = "GENERATION_FAILED"
	ErrorGatewayNotReady    = "GATEWAY_NOT_READY"
	ErrorResponseNotJSON    = "RESPONSE_NOT_JSON"
	ErrorScreensIncomplete  = "SCREENS_INCOMPLETE"
	ErrorFrameNotFound      = "FRAME_NOT_FOUND"
	ErrorNoScenarioSelected = "NO_SCENARIO_SELECTED"
	ErrorNothingToResume    = "NOTHING_TO_RESUME"
)
