package shared

import (
	"fmt"
	"strings"
)

// NonEmptyStrings is a validation.RuleFunc for []string fields whose
// entries must be non-blank and at most max runes long.
func NonEmptyStrings(max int) func(value interface{}) error {
	return func(value interface{}) error {
		list, _ := value.([]string)
		for i, s := range list {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("entry %d is empty", i)
			}
			if len([]rune(s)) > max {
				return fmt.Errorf("entry %d is longer than %d characters", i, max)
			}
		}
		return nil
	}
}
