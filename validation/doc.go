// Package validation runs validator/v10 struct-tag checks on configuration
// sections and converts failures to *errors.AppError.
//
//	type Config struct {
//	    Port        int    `mapstructure:"port" validate:"min=1,max=65535"`
//	    MaxBodySize string `mapstructure:"max_body_size" validate:"omitempty,bytesize"`
//	}
//	err := validation.Validate(cfg)
package validation
