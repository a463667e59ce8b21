package story

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON field names in errors.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidationError lists every invalid field of a Parameters value.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface. Fields are reported in sorted order.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	messages := make([]string, 0, len(names))
	for _, name := range names {
		messages = append(messages, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid story parameters: " + strings.Join(messages, ", ")
}

// Validate checks the parameters against the supported enums and bounds.
func (p Parameters) Validate() error {
	err := validatorInstance().Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate parameters: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "oneof":
			fields[fe.Field()] = fmt.Sprintf("%q is not one of %s", fe.Value(), fe.Param())
		case "min", "max":
			if fe.Kind() == reflect.String {
				fields[fe.Field()] = fmt.Sprintf("must be at most %s characters", fe.Param())
			} else {
				fields[fe.Field()] = fmt.Sprintf("must be between %d and %d", MinPages, MaxPages)
			}
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return &ValidationError{Fields: fields}
}

// WithDefaults fills zero-valued fields with the defaults the story form
// preselects.
func (p Parameters) WithDefaults() Parameters {
	if p.Genre == "" {
		p.Genre = GenreAdventure
	}
	if p.CharacterType == "" {
		p.CharacterType = CharacterBoy
	}
	if p.AgeGroup == "" {
		p.AgeGroup = Age5to7
	}
	if p.PageCount == 0 {
		p.PageCount = DefaultPages
	}
	return p
}

// ParseGenre matches a genre name case-insensitively.
func ParseGenre(s string) (Genre, error) {
	for _, g := range Genres() {
		if strings.EqualFold(string(g), strings.TrimSpace(s)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown genre: %q", s)
}

// ParseCharacterType matches a character type case-insensitively.
func ParseCharacterType(s string) (CharacterType, error) {
	for _, c := range CharacterTypes() {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown character type: %q", s)
}

// ParseAgeGroup accepts "5-7 years" or the short form "5-7".
func ParseAgeGroup(s string) (AgeGroup, error) {
	s = strings.TrimSpace(s)
	for _, a := range AgeGroups() {
		if strings.EqualFold(string(a), s) || strings.EqualFold(strings.TrimSuffix(string(a), " years"), s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown age group: %q", s)
}
