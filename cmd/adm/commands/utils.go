// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"fmt"
	"strings"

	"culturology/internal/di"
)

// ContainerOpener initializes the service container on first use
type ContainerOpener func(ctx context.Context) (*di.ServiceContainer, error)

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func printRule(width int) {
	fmt.Println(strings.Repeat("-", width))
}
