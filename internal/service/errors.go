package service

import "github.com/Antony-QP/React-Ecommerce-Backend/pkg/validator"

func fieldError(field string, err error) error {
	return validator.FieldErrors{field: err.Error()}
}
