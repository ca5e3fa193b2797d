package util

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var ErrValidation = errors.New("校验失败")

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateDTO 返回第一条字段校验错误
func ValidateDTO(dto any) error {
	if err := validate.Struct(dto); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			firstError := vErrs[0]
			return fmt.Errorf("%w: 字段 [%s] 规则 [%s]", ErrValidation,
				firstError.Field(),
				firstError.Tag())
		}
		return err
	}
	return nil
}
