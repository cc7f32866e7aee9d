package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ExpenseInput is the raw form data for creating or editing an expense.
type ExpenseInput struct {
	Amount      string `validate:"required"`
	Category    string `validate:"required,category"`
	Date        string `validate:"required,datetime=2006-01-02"`
	Description string
}

// ExpenseFields is the validated, typed form of ExpenseInput.
type ExpenseFields struct {
	Amount      Money
	Category    Category
	Date        Date
	Description string
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			_, ok := ParseCategory(fl.Field().String())
			return ok
		})
	})
	return validate
}

// Parse validates the input and converts it to typed fields. Every failure
// wraps ErrValidation.
func (in ExpenseInput) Parse() (ExpenseFields, error) {
	in.Amount = strings.TrimSpace(in.Amount)
	in.Category = strings.TrimSpace(in.Category)
	in.Date = strings.TrimSpace(in.Date)

	if err := inputValidator().Struct(in); err != nil {
		return ExpenseFields{}, translateValidation(err)
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return ExpenseFields{}, err
	}
	category, _ := ParseCategory(in.Category)
	date, err := ParseDate(in.Date)
	if err != nil {
		return ExpenseFields{}, err
	}

	return ExpenseFields{
		Amount:      amount,
		Category:    category,
		Date:        date,
		Description: in.Description,
	}, nil
}

// translateValidation maps the first validator failure onto the core error kinds.
func translateValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Amount":
		return ErrInvalidAmount
	case "Category":
		if fe.Tag() == "required" {
			return ErrEmptyCategory
		}
		return fmt.Errorf("%w: %q", ErrUnknownCategory, fe.Value())
	case "Date":
		if fe.Tag() == "required" {
			return ErrInvalidDate
		}
		return fmt.Errorf("%w: %q", ErrInvalidDate, fe.Value())
	default:
		return fmt.Errorf("%w: %s failed %s", ErrValidation, fe.Field(), fe.Tag())
	}
}
