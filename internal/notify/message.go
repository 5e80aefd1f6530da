package notify

import (
	"fmt"
	"strings"
	"time"
)

// FormatSessionMessage creates the notification body for a session summary.
// A non-nil err marks the session as failed and is appended to the body.
func FormatSessionMessage(session *SessionSummary, err error) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Passes: %d\n", session.Passes))
	sb.WriteString(fmt.Sprintf("Captured: %d\n", session.Captured))
	sb.WriteString(fmt.Sprintf("Failed: %d\n", session.Failed))
	sb.WriteString(fmt.Sprintf("Duration: %s", session.Duration.Round(time.Second)))

	if err != nil {
		sb.WriteString(fmt.Sprintf("\n\nError: %v", err))
	}

	// Include first 3 error messages if available
	if len(session.Errors) > 0 {
		sb.WriteString("\n\nErrors:\n")
		limit := 3
		if len(session.Errors) < limit {
			limit = len(session.Errors)
		}
		for i := 0; i < limit; i++ {
			sb.WriteString(fmt.Sprintf("- %s\n", session.Errors[i]))
		}
		if len(session.Errors) > 3 {
			sb.WriteString(fmt.Sprintf("... and %d more errors", len(session.Errors)-3))
		}
	}

	return sb.String()
}
