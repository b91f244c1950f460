// Package errmsg turns errors into the one-line messages shown in the
// viewer footer.
package errmsg

import "fmt"

// Op names what the user was doing when it failed.
type Op string

// Operations shown in the footer.
const (
	OpBindingsLoad  Op = "load key bindings"
	OpBindingsWatch Op = "watch key bindings"

	OpDocumentOpen Op = "open document"
	OpClick        Op = "click"

	OpMPRISConnect Op = "connect to media player"
	OpMPRISExpose  Op = "start MPRIS server"

	OpMarkersOpen Op = "open session markers"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
