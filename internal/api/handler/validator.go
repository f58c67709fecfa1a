package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"maktab/backend/internal/model"
)

// RegisterValidators 向 gin 的 validator 引擎注册业务校验标签：
//
//	role    ADMIN | TEACHER | STUDENT
//	weekday Mon..Sat
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("role", validateRole); err != nil {
		return err
	}
	return v.RegisterValidation("weekday", validateWeekday)
}

func validateRole(fl validator.FieldLevel) bool {
	return model.Role(fl.Field().String()).Valid()
}

func validateWeekday(fl validator.FieldLevel) bool {
	return model.ValidWeekDay(fl.Field().String())
}
