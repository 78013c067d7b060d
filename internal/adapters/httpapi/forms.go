package httpapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	msgRequired     = "This field is required."
	msgInvalidGroup = "Select a valid choice. That choice is not one of the available choices."
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

	msgInvalidUsername = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)

type postForm struct {
	Text  string `form:"text" json:"text" binding:"required"`
	Group string `form:"group" json:"group"`
}

type commentForm struct {
	Text string `form:"text" json:"text" binding:"required"`
}

type signupForm struct {
	Name     string `form:"name" json:"name" binding:"required,max=150"`
	Family   string `form:"family" json:"family" binding:"required,max=150"`
	Username string `form:"username" json:"username" binding:"required,max=150"`
	Email    string `form:"email" json:"email" binding:"omitempty,email,max=254"`
	Password string `form:"password" json:"password" binding:"required,min=8"`
}

type loginForm struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Next     string `form:"next" json:"next"`
}

// formView is a form re-rendered with the submitted values and its errors.
type formView struct {
	Values map[string]string `json:"values"`
	Errors map[string]string `json:"errors,omitempty"`
}

// formErrors turns a binding error into per-field messages keyed by form field name.
func formErrors(err error) map[string]string {
	errs := map[string]string{}
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["__all__"] = "Invalid form submission."
		return errs
	}
	for _, fe := range verrs {
		errs[strings.ToLower(fe.Field())] = fieldMessage(fe)
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	default:
		return "Enter a valid value."
	}
}

// safeNext accepts only local paths as a post-login redirect target.
func safeNext(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\")
}
