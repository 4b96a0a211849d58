package ladder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/albapepper/hoopscore/internal/pipeline"
)

// ConfigurationError is a malformed caller-supplied parameter.
type ConfigurationError struct {
	Param string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Param, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Param, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ParseThresholds reads query-string thresholds over the package defaults.
// See Service.ParseThresholds.
func ParseThresholds(minPoints, minEffectiveFg, minGamesStarted string) (pipeline.Thresholds, error) {
	return parseThresholds(pipeline.DefaultThresholds(), minPoints, minEffectiveFg, minGamesStarted)
}

// ParseThresholds reads query-string thresholds. Blank values take the
// service defaults. minEffectiveFg is a percentage ("40" means 0.40).
func (s *Service) ParseThresholds(minPoints, minEffectiveFg, minGamesStarted string) (pipeline.Thresholds, error) {
	return parseThresholds(s.defaults, minPoints, minEffectiveFg, minGamesStarted)
}

func parseThresholds(def pipeline.Thresholds, minPoints, minEffectiveFg, minGamesStarted string) (pipeline.Thresholds, error) {
	th := def

	if v := strings.TrimSpace(minPoints); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return th, &ConfigurationError{Param: "minPoints", Value: v, Err: err}
		}
		th.MinPoints = f
	}
	if v := strings.TrimSpace(minEffectiveFg); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return th, &ConfigurationError{Param: "minEffectiveFg", Value: v, Err: err}
		}
		th.MinEffectiveFG = f * 0.01
	}
	if v := strings.TrimSpace(minGamesStarted); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return th, &ConfigurationError{Param: "minGamesStarted", Value: v, Err: err}
		}
		th.MinGamesStarted = n
	}

	if err := th.Validate(); err != nil {
		return th, &ConfigurationError{Param: "thresholds", Err: err}
	}
	return th, nil
}
