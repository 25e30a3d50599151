package domain

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the domain rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()

		v.RegisterValidation("finite", isFinite)
		v.RegisterValidation("normalized_id", isNormalizedID)
		v.RegisterStructValidation(cleanRecordStructLevel, CleanRecord{})

		// Report JSON names in validation errors
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		validate = v
	})
	return validate
}

// Validate checks the CleanRecord invariants.
func (r CleanRecord) Validate() error {
	if err := Validator().Struct(r); err != nil {
		return fmt.Errorf("clean record %q violates invariants: %w", r.ElementID, err)
	}
	return nil
}

// Validate checks that the template can seed generated records.
func (t ElementTemplate) Validate() error {
	return Validator().Struct(t)
}

func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isNormalizedID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && s == strings.ToUpper(strings.TrimSpace(s))
}

func cleanRecordStructLevel(sl validator.StructLevel) {
	r := sl.Current().Interface().(CleanRecord)

	if r.StartDate.IsZero() {
		sl.ReportError(r.StartDate, "start_date", "StartDate", "required", "")
	}
	if r.EndDate.IsZero() {
		sl.ReportError(r.EndDate, "end_date", "EndDate", "required", "")
	}
	if r.EndDate.Before(r.StartDate.Time) {
		sl.ReportError(r.EndDate, "end_date", "EndDate", "gtefield", "start_date")
	}
	if r.DurationDays != DaysBetween(r.StartDate, r.EndDate) {
		sl.ReportError(r.DurationDays, "duration_days", "DurationDays", "eq_days_between", "")
	}
}
