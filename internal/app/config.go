package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl file or directory
	ParamsPath string // optional yaml parameter overrides

	Pipeline string
	Runner   string `validate:"omitempty,oneof=sequential parallel"`
	Workers  int    `validate:"gte=0,lte=1024"`

	OnlyNodes []string
	Tags      []string
	FromNodes []string
	ToNodes   []string
	ToOutputs []string

	Trace bool

	LogFormat       string `validate:"omitempty,oneof=text json"`
	LogLevel        string `validate:"omitempty,oneof=debug info warn error"`
	HealthcheckPort int    `validate:"gte=0,lte=65535"`
}

var validate = validator.New()

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s has invalid value '%v' (%s)", fe.Field(), fe.Value(), fe.Tag())
			}
			return nil, fmt.Errorf("invalid application config: %s", strings.Join(msgs, "; "))
		}
		return nil, err
	}
	return &cfg, nil
}
