package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ServeConfig holds serving configuration for the command-line front end.
type ServeConfig struct {
	Architecture []int
	Protocol     string
	Steps        int
	Addr         string
}

// ParseArchitecture parses an architecture string like "784 128 10" into a
// slice of layer widths.
func ParseArchitecture(archStr string) ([]int, error) {
	archParts := strings.Fields(archStr)
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		arch[i] = n
	}
	return arch, nil
}

// ValidateServeConfig validates serving configuration.
func ValidateServeConfig(config *ServeConfig) error {
	if len(config.Architecture) < 2 {
		return fmt.Errorf("architecture must have at least 2 layers (input and output)")
	}
	if config.Steps <= 0 {
		return fmt.Errorf("steps must be positive")
	}
	if config.Addr == "" {
		return fmt.Errorf("listen address must be set")
	}
	return nil
}
