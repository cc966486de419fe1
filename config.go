// config.go: Engine configuration and validation.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"log/slog"

	goerrors "github.com/agilira/go-errors"
	"github.com/go-playground/validator/v10"
)

// EngineConfig configures a new Engine. The zero value is usable: ECB mode,
// PKCS5 padding, no IV, slog.Default for logging.
//
// Mode is fixed for the life of the engine. Padding and IV are only the
// initial values; SetPadding and SetIV change them for the next Init.
type EngineConfig struct {
	Mode    Mode         `json:"mode" validate:"gte=0"`         // Provider-defined block mode
	Padding Padding      `json:"padding" validate:"gte=0"`      // Provider-defined padding
	IV      []byte       `json:"-" validate:"omitempty,len=16"` // Initial IV, BlockSize bytes when set
	Logger  *slog.Logger `json:"-"`                             // Destination for lifecycle logs
}

// validate is shared; validator caches struct metadata per instance.
var validate = validator.New()

// Validate checks the configuration.
func (c *EngineConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return invalidArgument(goerrors.Wrap(err, ErrCodeInvalidConfig, "invalid engine configuration"))
	}
	return nil
}
