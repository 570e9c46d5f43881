// validate.go - Custom binding tags for request payloads

package middleware

import (
	"fmt"
	"sync"

	"cafesantander/auth"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the storemail tag to gin's validator. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("middleware: unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("storemail", func(fl validator.FieldLevel) bool {
			return auth.ValidEmail(fl.Field().String())
		})
	})
	return err
}
