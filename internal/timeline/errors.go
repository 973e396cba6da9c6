package timeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse         = errors.New("parse error")
	ErrReference     = errors.New("unresolved reference")
	ErrCountMismatch = errors.New("count mismatch")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("id conflict")
	ErrInvalidCue    = errors.New("invalid cue")
)

// Wrap builds an error message that carries component and operation context
// while tagging it with marker for errors.Is classification. marker should be
// one of the exported sentinels above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrParse
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func parseError(message string, args ...any) error {
	return Wrap(ErrParse, "timeline", "parse", fmt.Sprintf(message, args...), nil)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "timeline failure"
	}
	return strings.Join(parts, ": ")
}
