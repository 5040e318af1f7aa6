package quiz

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// SaveRequest is the payload accepted when a quiz is stored.
type SaveRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Questions   []Question `json:"questions" validate:"required,min=1,dive"`
	IsPublic    bool       `json:"isPublic"`
}

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func validate() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New()
		structValidator.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
			return Type(fl.Field().String()).Valid()
		})
	})
	return structValidator
}

// Check validates the request envelope and then every question. Envelope
// problems are reported as a plain error; question problems as a
// *ValidationError naming the first failing question.
func (r *SaveRequest) Check() error {
	r.Title = strings.TrimSpace(r.Title)
	if err := validate().Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %q constraint", strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("invalid quiz: %w", err)
	}
	return ValidateAll(r.Questions)
}
