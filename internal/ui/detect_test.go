package ui

import "testing"

func TestDetectMode_EnvOptOuts(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"explicit opt-out", "FSTAGE_NON_INTERACTIVE", "1"},
		{"ci pipeline", "CI", "true"},
		{"no color", "NO_COLOR", "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if got := DetectMode(); got != ModeNonInteractive {
				t.Errorf("Expected ModeNonInteractive with %s=%s, got %v", tc.key, tc.value, got)
			}
			if IsInteractive() {
				t.Error("Expected IsInteractive to be false")
			}
		})
	}
}

func TestDetectMode_PipedStdio(t *testing.T) {
	// Under the test runner stdio is not a terminal, so even with the
	// opt-outs cleared the mode stays non-interactive.
	for _, key := range []string{"FSTAGE_NON_INTERACTIVE", "CI", "NO_COLOR"} {
		t.Setenv(key, "")
	}
	if got := DetectMode(); got != ModeNonInteractive {
		t.Errorf("Expected ModeNonInteractive for piped stdio, got %v", got)
	}
}
