package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		cmd         string
		args        []string
		expectError bool
	}{
		{name: "allowed command no args", cmd: "nvidia-smi", expectError: false},
		{name: "allowed command with safe args", cmd: "hl-smi", args: []string{"-Q", "index,name", "--format", "csv,noheader"}, expectError: false},
		{name: "not in allowlist", cmd: "rm", args: []string{"-rf", "/"}, expectError: true},
		{name: "semicolon injection", cmd: "nvidia-smi", args: []string{"; rm -rf /"}, expectError: true},
		{name: "backtick injection", cmd: "sensors", args: []string{"`whoami`"}, expectError: true},
		{name: "subshell injection", cmd: "sensors", args: []string{"$(whoami)"}, expectError: true},
		{name: "pipe injection", cmd: "nvidia-smi", args: []string{"--query-gpu=uuid | cat"}, expectError: true},
		{name: "path traversal", cmd: "hl-smi", args: []string{"../../etc/passwd"}, expectError: true},
		{name: "basename with directory prefix allowed", cmd: "/usr/bin/nvidia-smi", expectError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cmd, tt.args)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateField(t *testing.T) {
	assert.NoError(t, ValidateField("index,name,driver_version", nil, 32))
	assert.Error(t, ValidateField("index;name", nil, 32))
	assert.Error(t, ValidateField("this-field-is-definitely-longer-than-32-chars", nil, 32))
}

func TestOutputRejectsDisallowedCommand(t *testing.T) {
	_, err := Output(context.Background(), "test", Options{}, "rm", "-rf", "/")
	assert.Error(t, err)
}
