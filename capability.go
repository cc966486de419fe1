// capability.go: One-time detection of the accelerated native module.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package talos

import (
	"fmt"
	"sync"
	"time"

	goerrors "github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// Capability records whether a native module could be loaded.
//
// It is built once at process startup and passed to NewEngine, so tests can
// hand engines a capability backed by a double. The loader runs at most once,
// on the first Probe or Native call, under sync.Once; later reads take no lock.
//
// The result is advisory. Engines built on an unavailable capability are
// still usable objects: their first native call fails with ErrNativeFailure.
type Capability struct {
	name   string
	loader Loader

	once      sync.Once
	native    Native
	available bool
	loadErr   error
	probedAt  time.Time
}

// CapabilityReport describes the outcome of a probe.
type CapabilityReport struct {
	Module    string    `json:"module"`             // Module name given to NewCapability
	Available bool      `json:"available"`          // Whether the module loaded
	Features  []string  `json:"features,omitempty"` // CPU features the module relies on
	ProbedAt  time.Time `json:"probed_at"`          // When the loader ran
	Error     string    `json:"error,omitempty"`    // Load failure, if any
}

// NewCapability creates a capability for the module loaded by loader.
// Nothing is loaded until the first Probe.
func NewCapability(name string, loader Loader) *Capability {
	return &Capability{name: name, loader: loader}
}

// Probe loads the module on first use and reports whether it is available.
// Load errors and panics are converted to false; they never reach the caller.
func (c *Capability) Probe() bool {
	c.once.Do(c.load)
	return c.available
}

func (c *Capability) load() {
	c.probedAt = timecache.CachedTime().UTC()

	defer func() {
		if r := recover(); r != nil {
			c.native = nil
			c.available = false
			c.loadErr = goerrors.New(ErrCodeNativeUnavailable, fmt.Sprintf("native module %s panicked during load: %v", c.name, r))
		}
	}()

	if c.loader == nil {
		c.loadErr = goerrors.New(ErrCodeNativeUnavailable, "no loader for native module "+c.name)
		return
	}

	native, err := c.loader()
	if err != nil {
		c.loadErr = goerrors.Wrap(err, ErrCodeNativeUnavailable, "failed to load native module "+c.name)
		return
	}
	if native == nil {
		c.loadErr = goerrors.New(ErrCodeNativeUnavailable, "loader returned no module for "+c.name)
		return
	}

	c.native = native
	c.available = true
}

// Native returns the loaded module, probing first if needed.
// When the module is unavailable the error wraps ErrNativeFailure.
func (c *Capability) Native() (Native, error) {
	if !c.Probe() {
		return nil, fmt.Errorf("%w: %w", ErrNativeFailure, c.loadErr)
	}
	return c.native, nil
}

// Report probes if needed and returns a snapshot of the result.
func (c *Capability) Report() CapabilityReport {
	available := c.Probe()
	report := CapabilityReport{
		Module:    c.name,
		Available: available,
		ProbedAt:  c.probedAt,
	}
	if f, ok := c.native.(interface{ Features() []string }); ok {
		report.Features = f.Features()
	}
	if c.loadErr != nil {
		report.Error = c.loadErr.Error()
	}
	return report
}

// Unavailable returns a capability whose probe always fails.
// It is what an embedding caller passes when acceleration was ruled out by
// configuration rather than by probing.
func Unavailable(name string) *Capability {
	return NewCapability(name, nil)
}
