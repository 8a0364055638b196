package gen

import (
	"errors"
	"fmt"
	"go/token"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// Helper functions
// =============================================================================

// CodeName turns a display name into an identifier usable by the generated
// code: diacritics are dropped, every run of characters that is neither a
// letter nor a digit separates words, words are title-cased and joined.
// A leading digit is prefixed with an underscore.
//
//	CodeName("Opportunity Product") // OpportunityProduct
//	CodeName("Número de Conta")     // NumeroDeConta
//	CodeName("1st Contact")         // _1stContact
func CodeName(s string) string {
	s = stripMarks(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	if strings.TrimSpace(s) == "" {
		return ""
	}
	name := strings.ReplaceAll(inflect.Camelize(s), " ", "")
	if name != "" && unicode.IsDigit([]rune(name)[0]) {
		name = "_" + name
	}
	return name
}

// codeName returns the CodeName of the first candidate that yields one.
func codeName(candidates ...string) string {
	for _, c := range candidates {
		if name := CodeName(c); name != "" {
			return name
		}
	}
	return ""
}

// optionName returns the code name of an option label, falling back
// to its value for unlabeled options.
func optionName(label string, value int) string {
	if name := CodeName(label); name != "" {
		return name
	}
	return "Value" + strings.ReplaceAll(strconv.Itoa(value), "-", "Neg")
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ValidCodeName reports whether name can be used as an identifier by the
// generated code.
func ValidCodeName(name string) error {
	if name == "" {
		return errors.New("code name cannot be empty")
	}
	if !token.IsIdentifier(name) {
		return fmt.Errorf("code name %q is not a valid identifier", name)
	}
	return nil
}

// uniqueName returns name, or name suffixed with an increasing number when
// it was already used.
func uniqueName(name string, used map[string]struct{}) string {
	candidate := name
	for i := 2; ; i++ {
		if _, ok := used[candidate]; !ok {
			used[candidate] = struct{}{}
			return candidate
		}
		candidate = name + strconv.Itoa(i)
	}
}

func names(ids ...string) map[string]struct{} {
	m := make(map[string]struct{})
	for i := range ids {
		m[ids[i]] = struct{}{}
	}
	return m
}

// =============================================================================
// Template helpers
// =============================================================================

// pascal converts a name to PascalCase: "primary_contact" -> "PrimaryContact".
func pascal(s string) string { return inflect.Camelize(s) }

// camel converts a name to camelCase: "PrimaryContact" -> "primaryContact".
func camel(s string) string {
	if s == "" {
		return ""
	}
	return inflect.CamelizeDownFirst(s)
}

// snake converts a name to snake_case: "PrimaryContact" -> "primary_contact".
func snake(s string) string { return inflect.Underscore(s) }
