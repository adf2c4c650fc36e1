package sdk

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/skyframe-dev/xplm-sdk/application/config"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
)

// validate is a package-level singleton; building a validator is expensive.
var validate = validator.New()

// ValidateSettings decodes settings into targetStruct and validates it
// against its `validate` tags. The map goes through JSON so numeric and
// nested values land in their typed fields.
func ValidateSettings(settings config.Settings, targetStruct any) error {
	jsonBytes, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := json.Unmarshal(jsonBytes, targetStruct); err != nil {
		return &errors.ConfigError{Err: fmt.Errorf("decode settings: %w", err)}
	}
	if err := validate.Struct(targetStruct); err != nil {
		var fieldErrs validator.ValidationErrors
		if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &errors.ConfigError{Field: fieldErrs[0].Field(), Err: err}
		}
		return &errors.ConfigError{Err: err}
	}
	return nil
}

// ValidateInfo checks what the plugin reports to the host on start.
func ValidateInfo(info entities.PluginInfo) error {
	if err := validate.Struct(info); err != nil {
		return fmt.Errorf("plugin info: %w", err)
	}
	return nil
}
