package ports

import (
	"net"
	"strconv"
	"testing"
)

func TestFindAvailablePort(t *testing.T) {
	// Let the system assign a port, then keep it busy
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("Failed to get a test port: %v", err)
	}
	defer ln.Close()

	blockedPort := ln.Addr().(*net.TCPAddr).Port

	got := FindAvailablePort(blockedPort)

	// The result should be the next port since blockedPort is busy
	if got != blockedPort+1 {
		t.Errorf("FindAvailablePort(%d) = %d; want %d (because %d is busy)", blockedPort, got, blockedPort+1, blockedPort)
	}
}

func TestParseInspect(t *testing.T) {
	tests := []struct {
		in       string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"9229", "", 9229, false},
		{"", "", DefaultInspectPort, false},
		{"true", "", DefaultInspectPort, false},
		{"0.0.0.0:9230", "0.0.0.0", 9230, false},
		{"localhost:0", "localhost", 0, false},
		{"[::1]:9231", "::1", 9231, false},
		{"abc", "", 0, true},
		{"host:99999", "", 0, true},
	}
	for _, tt := range tests {
		host, port, err := ParseInspect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseInspect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if host != tt.wantHost || port != tt.wantPort {
			t.Errorf("ParseInspect(%q) = %q, %d; want %q, %d", tt.in, host, port, tt.wantHost, tt.wantPort)
		}
	}
}

func TestCheckInspect(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("Failed to get a test port: %v", err)
	}
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	conflict, err := CheckInspect(strconv.Itoa(busy))
	if err != nil {
		t.Fatalf("CheckInspect() error: %v", err)
	}
	if conflict == nil {
		t.Fatal("expected a conflict for a busy port")
	}
	if conflict.Port != busy || conflict.Suggested <= busy {
		t.Errorf("conflict = %+v", conflict)
	}
	if got := conflict.Suggest("127.0.0.1:" + strconv.Itoa(busy)); got != "127.0.0.1:"+strconv.Itoa(conflict.Suggested) {
		t.Errorf("Suggest() = %q", got)
	}

	if c, err := CheckInspect("0"); err != nil || c != nil {
		t.Errorf("CheckInspect(0) = %+v, %v; want no conflict", c, err)
	}
	if _, err := CheckInspect("nope"); err == nil {
		t.Error("expected an error for an invalid value")
	}
}
