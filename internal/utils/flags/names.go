package flags

import (
	"strings"
	"unicode"

	"github.com/spf13/pflag"
)

const kebabSeparatorRune = '-'

// KebabCaseNormalization lets users spell flags as camelCase or snake_case, so --remoteName and
// --remote_name both resolve to --remote-name.
func KebabCaseNormalization(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	var builder strings.Builder
	builder.Grow(len(name) + 4)
	for index, character := range name {
		switch {
		case character == '_':
			builder.WriteRune(kebabSeparatorRune)
		case unicode.IsUpper(character):
			if index > 0 {
				builder.WriteRune(kebabSeparatorRune)
			}
			builder.WriteRune(unicode.ToLower(character))
		default:
			builder.WriteRune(character)
		}
	}
	return pflag.NormalizedName(builder.String())
}
