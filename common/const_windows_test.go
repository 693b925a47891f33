//go:build windows

package common

import "testing"

func TestPipePath(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{"default", "", DefaultPipePath()},
		{"bare name", "alarms-dev", `\\.\pipe\alarms-dev`},
		{"full path", `\\.\pipe\already-full`, `\\.\pipe\already-full`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(PipeNameEnv, tt.env)
			if got := PipePath(); got != tt.want {
				t.Errorf("PipePath() = %q; want %q", got, tt.want)
			}
		})
	}
}
