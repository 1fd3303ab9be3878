package grpcsvc

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

const tagOrderStatus = "order_status"

// requestValidator проверяет входящие сообщения по тегам validate.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Допустимые статусы берутся из того же списка, что и CHECK в миграции.
	mustRegisterValidation(v, tagOrderStatus, func(fl validator.FieldLevel) bool {
		return domain.OrderStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
	return &requestValidator{v: v}
}

// mustRegisterValidation паникует: ошибка регистрации тега - ошибка программиста.
func mustRegisterValidation(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// request возвращает InvalidArgument с описанием первого нарушения.
func (rv *requestValidator) request(req any) error {
	if req == nil || reflect.ValueOf(req).IsNil() {
		return status.Error(codes.InvalidArgument, "request is required")
	}

	err := rv.v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.InvalidArgument, describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	switch fe.Tag() {
	case tagOrderStatus:
		return domain.StatusValuesMessage()
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
