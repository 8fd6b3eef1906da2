package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FailValidation writes a 400 envelope describing which fields were rejected.
func FailValidation(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		Fail(w, r, http.StatusBadRequest, "Validation failed")
		return
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fe.Field()+" failed on '"+fe.Tag()+"'")
	}
	Fail(w, r, http.StatusBadRequest, "Validation failed: "+strings.Join(parts, "; "))
}
