package shared

import "testing"

func TestBrowserCommand(t *testing.T) {
	tc := []struct {
		goos    string
		wantBin string
		wantErr bool
	}{
		{goos: "darwin", wantBin: "open"},
		{goos: "linux", wantBin: "xdg-open"},
		{goos: "windows", wantBin: "rundll32"},
		{goos: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := browserCommand(tt.goos, "https://example.com")
			if tt.wantErr {
				if err == nil {
					t.Error("expected error for unsupported platform")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Args[0] != tt.wantBin {
				t.Errorf("expected %s, got %s", tt.wantBin, cmd.Args[0])
			}
			if cmd.Args[len(cmd.Args)-1] != "https://example.com" {
				t.Errorf("expected url as last argument, got %v", cmd.Args)
			}
		})
	}
}
