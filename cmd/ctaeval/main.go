package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess        = 0 // Every analysis succeeded
	ExitAnalysisFailed = 1 // An analysis ran but reported a failure
	ExitError          = 2 // Configuration or runtime error
)

// AnalysisFailedError indicates that the command ran to completion but at
// least one analysis returned a failure outcome.
type AnalysisFailedError struct {
	Message string
}

func (e *AnalysisFailedError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var failed *AnalysisFailedError
		if errors.As(err, &failed) {
			os.Exit(ExitAnalysisFailed)
		}
		os.Exit(ExitError)
	}
}
