// Package forms holds the create and edit forms: their validation rules and the prompts that
// fill them in interactively.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/snackshop-dev/snackadmin/internal/cli/client"
)

// ProductForm is the product editor
type ProductForm struct {
	SnackName   string   `json:"snackName" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=2000"`
	Price       float64  `json:"price" validate:"gt=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	CategoryID  string   `json:"categoryId" validate:"required"`
	Discount    float64  `json:"discount" validate:"gte=0,lte=100"`
	Images      []string `json:"images" validate:"min=1,dive,url"`
}

// ProductFormFrom prefills the form from an existing product
func ProductFormFrom(p client.Product) ProductForm {
	return ProductForm{
		SnackName:   p.SnackName,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Discount:    p.Discount,
		Images:      p.Images,
	}
}

// Input converts the form to the API body
func (f ProductForm) Input() client.ProductInput {
	return client.ProductInput{
		SnackName:   strings.TrimSpace(f.SnackName),
		Description: strings.TrimSpace(f.Description),
		Price:       f.Price,
		Stock:       f.Stock,
		CategoryID:  f.CategoryID,
		Discount:    f.Discount,
		Images:      f.Images,
	}
}

// CouponForm is the coupon editor. Codes are upper-cased before validation.
type CouponForm struct {
	Code          string    `json:"code" validate:"required,min=3,max=20,alphanum"`
	DiscountType  string    `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue float64   `json:"discountValue" validate:"gt=0"`
	MinPurchase   float64   `json:"minPurchase" validate:"gte=0"`
	StartDate     time.Time `json:"startDate" validate:"required"`
	EndDate       time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
	IsActive      bool      `json:"isActive"`
	Description   string    `json:"description" validate:"max=500"`
}

// CouponFormFrom prefills the form from an existing coupon
func CouponFormFrom(c client.Coupon) CouponForm {
	return CouponForm{
		Code:          c.Code,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
		MinPurchase:   c.MinPurchase,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		IsActive:      c.IsActive,
		Description:   c.Description,
	}
}

// Input converts the form to the API body
func (f CouponForm) Input() client.CouponInput {
	return client.CouponInput{
		Code:          strings.ToUpper(strings.TrimSpace(f.Code)),
		DiscountType:  f.DiscountType,
		DiscountValue: f.DiscountValue,
		MinPurchase:   f.MinPurchase,
		StartDate:     f.StartDate,
		EndDate:       f.EndDate,
		IsActive:      f.IsActive,
		Description:   strings.TrimSpace(f.Description),
	}
}

// UserForm is the user editor used by admins
type UserForm struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,numeric,min=9,max=15"`
	Role      string `json:"role" validate:"required,oneof=admin user"`
	Password  string `json:"password" validate:"omitempty,min=6"`
}

// UserFormFrom prefills the form from an existing user
func UserFormFrom(u client.User) UserForm {
	return UserForm{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
	}
}

// Input converts the form to the API body
func (f UserForm) Input() client.UserInput {
	return client.UserInput{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Phone:     strings.TrimSpace(f.Phone),
		Role:      f.Role,
		Password:  f.Password,
	}
}

// FieldError is one failed rule
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every failed rule of a form
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(couponRules, CouponForm{})
	return v
}

func couponRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(CouponForm)
	if f.DiscountType == client.DiscountPercentage && f.DiscountValue > 100 {
		sl.ReportError(f.DiscountValue, "discountValue", "DiscountValue", "percent", "")
	}
}

// Validate checks a form and returns a *ValidationError describing every problem
func Validate(form any) error {
	if f, ok := form.(*CouponForm); ok {
		f.Code = strings.ToUpper(strings.TrimSpace(f.Code))
	}

	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

// ValidateVar checks a single value against a rule, for prompt-time validation
func ValidateVar(label string, value any, rule string) error {
	err := validate.Var(value, rule)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errors.New(strings.Replace(message(verrs[0]), "value", label, 1))
	}
	return err
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	if field == "" {
		field = "value"
	}

	isList := fe.Kind() == reflect.Slice
	isText := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		if isList {
			return fmt.Sprintf("%s needs at least %s entry", field, fe.Param())
		}
		if isText {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "alphanum":
		return fmt.Sprintf("%s may only contain letters and digits", field)
	case "numeric":
		return fmt.Sprintf("%s may only contain digits", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", field, lowerFirst(fe.Param()))
	case "percent":
		return fmt.Sprintf("%s must be between 1 and 100 for a percentage discount", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
