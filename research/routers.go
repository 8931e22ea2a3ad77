package research

// routeEnd is the label the error router uses for termination.
const routeEnd = "end"

// RouteAfterValidate picks the step after validation. Stage error goes to
// the handler; everything else, including unexpected stage values, falls
// through to processing. The permissive default is long-standing observed
// behavior and is kept deliberately; BindStage already rejects states
// whose stage escapes the enum entirely.
func RouteAfterValidate(state State) string {
	if state.Stage == StageError {
		return StepHandleError
	}
	return StepProcess
}

// RouteAfterError picks the step after the error handler: back to search
// when the handler scheduled a retry, otherwise terminate.
func RouteAfterError(state State) string {
	if state.Stage == StageSearching {
		return StepSearch
	}
	return routeEnd
}
