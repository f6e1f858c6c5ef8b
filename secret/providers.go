package secret

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// envProvider reads secrets from the process environment; the ref is the
// variable name.
type envProvider struct{}

// NewEnvProvider returns the builtin "env" provider.
func NewEnvProvider() Provider { return envProvider{} }

func (envProvider) Name() string { return "env" }

func (envProvider) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("env secret ref is empty")
	}
	val, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("environment variable %s is not set", ref)
	}
	return val, nil
}

func (envProvider) Close() error { return nil }

// fileProvider reads secrets from the filesystem; the ref is the file path.
// Trailing whitespace is trimmed so a newline-terminated secret file works.
type fileProvider struct{}

// NewFileProvider returns the builtin "file" provider.
func NewFileProvider() Provider { return fileProvider{} }

func (fileProvider) Name() string { return "file" }

func (fileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("file secret ref is empty")
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("read secret file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (fileProvider) Close() error { return nil }
