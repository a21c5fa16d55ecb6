package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
)

const secretPrefix = "op://"

var (
	// Command is a variable that allows overriding the command creation for testing
	CommandContext = exec.CommandContext
	// LookPath is a variable that allows overriding the lookup behavior for testing
	LookPath = exec.LookPath
)

// ResolveSecretReference attempts to resolve a 1Password secret reference (e.g. op://vault/item/field)
// Returns the resolved value and whether it was a secret reference
func ResolveSecretReference(ctx context.Context, value string) (string, bool, error) {
	if !strings.HasPrefix(value, secretPrefix) {
		return value, false, nil
	}

	parts := strings.Split(strings.TrimPrefix(value, secretPrefix), "/")
	if len(parts) < 3 {
		return "", true, fmt.Errorf("invalid secret reference %q: expected op://vault/item/field", value)
	}
	for _, part := range parts {
		if part == "" {
			return "", true, fmt.Errorf("invalid secret reference %q: expected op://vault/item/field", value)
		}
	}

	// Check if op CLI is available
	if _, err := LookPath("op"); err != nil {
		return "", true, fmt.Errorf("1Password CLI (op) not found in PATH: %w", err)
	}

	cmd := CommandContext(ctx, "op", "read", value)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", true, fmt.Errorf("failed to read secret from 1Password: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", true, fmt.Errorf("failed to read secret from 1Password: %w", err)
	}

	// Trim any whitespace/newlines from the output
	return strings.TrimSpace(string(output)), true, nil
}

// ResolveHeaders replaces secret references in header values in place
func ResolveHeaders(ctx context.Context, headers http.Header) error {
	for name, values := range headers {
		for i, value := range values {
			resolved, _, err := ResolveSecretReference(ctx, value)
			if err != nil {
				return fmt.Errorf("error resolving header %s: %w", name, err)
			}
			values[i] = resolved
		}
	}
	return nil
}
