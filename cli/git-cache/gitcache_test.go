package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestWithDefaultCommand(t *testing.T) {
	root := newRootCmd()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "no args", args: nil, want: nil},
		{name: "known subcommand", args: []string{"add", "https://example.com/p"}, want: []string{"add", "https://example.com/p"}},
		{name: "repository url", args: []string{"https://example.com/p"}, want: []string{"clone", "https://example.com/p"}},
		{name: "url with destination", args: []string{"https://example.com/p", "dir"}, want: []string{"clone", "https://example.com/p", "dir"}},
		{name: "leading flag", args: []string{"--verbose", "add"}, want: []string{"--verbose", "add"}},
		{name: "help stays", args: []string{"help", "clone"}, want: []string{"help", "clone"}},
		{name: "version stays", args: []string{"version"}, want: []string{"version"}},
		{name: "completion request stays", args: []string{cobra.ShellCompRequestCmd, "gi"}, want: []string{cobra.ShellCompRequestCmd, "gi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, withDefaultCommand(root, tt.args))
		})
	}
}
