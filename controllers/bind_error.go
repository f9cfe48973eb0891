package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// bindErrorMessage turns a binding failure into a short sentence for the
// visitor, without validator or decoder internals.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			field := lowerFirst(fe.Field())
			switch fe.Tag() {
			case "required":
				parts = append(parts, field+" is required")
			default:
				parts = append(parts, field+" is invalid")
			}
		}
		return strings.Join(parts, ", ")
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return "request body is empty"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "request body is incomplete"
	case errors.As(err, &syntaxErr):
		return "request body is not valid JSON"
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Sprintf("%s has the wrong type", typeErr.Field)
		}
		return "request body has a value of the wrong type"
	}
	return "request could not be read"
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
