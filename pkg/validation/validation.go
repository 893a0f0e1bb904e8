// Package validation wraps go-playground/validator with the form rules used
// by the dashboard and turns field errors into domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/phone"
)

// FormMessage is the summary message of every validation error
const FormMessage = "Please correct the highlighted fields"

// messages holds the per-field wording shown next to form inputs
var messages = map[string]string{
	"received_by":           "Receiver Name is required",
	"source":                "Source is required",
	"company_name":          "Company Name is required",
	"phone_number":          "Valid phone number required",
	"person_name":           "Person Name is required",
	"location":              "Location is required",
	"email":                 "Valid email is required",
	"state":                 "State is required",
	"address":               "Address is required",
	"nature_of_business":    "Nature of Business is required",
	"lead_no":               "Lead is required",
	"what_did_customer_say": "Customer feedback is required",
	"direct_no_or_lead_no":  "Direct No / Lead No is required",
	"patient_name":          "Patient Name is required",
	"patient_phone_number":  "Valid phone number is required",
	"patient_address":       "Patient Address is required",
	"total_patient":         "At least one patient is required",
	"username":              "Username is required",
	"password":              "Password is required",
}

// Validator implements echo.Validator
type Validator struct {
	validate *validator.Validate
}

// New creates a validator whose phone rule parses numbers in region
func New(region string) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phone.IsPlausible(fl.Field().String(), region)
	})
	return &Validator{validate: v}
}

// Validate checks i and returns a domain validation error listing every bad field
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewBadRequestError(err.Error())
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = message(fe)
	}
	return domain.NewValidationError(FormMessage, fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return "Date must be in YYYY-MM-DD format"
	case "email":
		return "Valid email is required"
	}
	if msg, ok := messages[fe.Field()]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
