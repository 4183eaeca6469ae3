package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// validateDriver validates a database driver name
func validateDriver(input string) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input != "sqlite" && input != "postgres" {
		return "", fmt.Errorf("unsupported driver: %s (must be sqlite or postgres)", input)
	}
	return input, nil
}

// validatePort validates a TCP port number
func validatePort(input string) (int, error) {
	input = strings.TrimSpace(input)
	port, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid port: %s", input)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range: %d (must be 1-65535)", port)
	}
	return port, nil
}

// validateURL validates a service endpoint URL
func validateURL(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("URL is required")
	}
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return "", fmt.Errorf("URL must start with http:// or https://")
	}
	return input, nil
}

// validateCronExpression validates cron expression input
func validateCronExpression(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("cron expression is required")
	}

	// Descriptors like @hourly are accepted by the cron parser
	if strings.HasPrefix(input, "@") {
		return input, nil
	}

	// Basic validation - check if it has 5 parts
	parts := strings.Fields(input)
	if len(parts) != 5 {
		return "", fmt.Errorf("invalid cron expression: %s (must have 5 parts)", input)
	}

	return input, nil
}
