package web

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/DataSweeper/internal/core"
)

// exportRequest is the query of a download. The value itself is checked by
// codec.ParseFormat.
type exportRequest struct {
	Format string `json:"format" validate:"required"`
}

// columnsRequest is the body of PUT /api/files/{id}/columns and the form of
// POST /files/{id}/columns. An empty list selects no columns.
type columnsRequest struct {
	Columns []string `json:"columns" validate:"max=10000,dive,required"`
}

// requestValidator validates request structs by their validate tags.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &requestValidator{v: v}
}

// Struct validates req and wraps any failure in core.ErrInvalidRequest.
func (rv *requestValidator) Struct(req any) error {
	err := rv.v.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %w", core.ErrInvalidRequest, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", core.ErrInvalidRequest, strings.Join(fields, ", "))
}
