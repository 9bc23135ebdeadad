package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tests := []struct {
		name         string
		args         []string
		expectedExit int
	}{
		{
			name:         "Help exits zero",
			args:         []string{"lane", "--help"},
			expectedExit: 0,
		},
		{
			name:         "Version exits zero",
			args:         []string{"lane", "version"},
			expectedExit: 0,
		},
		{
			name:         "Missing pipeline definition",
			args:         []string{"lane", "run", "-c", "nonexistent.yaml"},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()

			originalWd, _ := os.Getwd()
			err := os.Chdir(tmpDir)
			if err != nil {
				t.Fatalf("failed to chdir: %v", err)
			}
			defer func() {
				_ = os.Chdir(originalWd)
			}()

			os.Args = tt.args

			exitCode := run()
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}
