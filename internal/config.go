package internal

import (
	"chat-relay/errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate checks the `validate` struct tags of a configuration.
func Validate(config any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	return nil
}

// CharacterRune turns a one character setting into a rune.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"%w: CHARACTER_REPLACEMENT must be a single character, got %q",
			errors.ErrInvalidConfig, str,
		)
	}
	return r[0], nil
}

// SplitList reads a comma separated setting, dropping blanks.
func SplitList(str string) []string {
	return lo.Compact(lo.Map(strings.Split(str, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}
