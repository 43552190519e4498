// Package ports checks whether the debugger port requested by a launch
// target is free before the process is started.
package ports

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// DefaultInspectPort is the port node uses for --inspect without a value.
const DefaultInspectPort = 9229

// Conflict describes a busy port.
type Conflict struct {
	Port      int
	PID       int32 // owning process, 0 if unknown
	Suggested int   // next free port, 0 if none was found
}

// Suggest returns the inspect value to use instead, keeping the host of the
// original value.
func (c Conflict) Suggest(inspect string) string {
	host, _, _ := ParseInspect(inspect)
	if host == "" {
		return strconv.Itoa(c.Suggested)
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Suggested))
}

// ParseInspect splits an --inspect value of the form [host:]port.
func ParseInspect(value string) (host string, port int, err error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "true" {
		return "", DefaultInspectPort, nil
	}

	portStr := value
	if strings.Contains(value, ":") {
		h, p, err := net.SplitHostPort(value)
		if err != nil {
			return "", 0, fmt.Errorf("invalid inspect address %q: %w", value, err)
		}
		host, portStr = h, p
	}

	port, err = strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid inspect port %q", portStr)
	}
	return host, port, nil
}

// IsPortAvailable checks if a port is available for binding
func IsPortAvailable(port int) bool {
	addr := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

// FindAvailablePort finds the next available port starting from the given port
func FindAvailablePort(startPort int) int {
	maxAttempts := 100 // Don't search forever
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		if port > 65535 {
			break
		}
		if IsPortAvailable(port) {
			return port
		}
	}
	return 0
}

// GetProcessOnPort returns the PID of a process listening on the given port.
// Returns 0 if no process is found or if the lookup fails.
func GetProcessOnPort(port int) int32 {
	conns, err := psnet.Connections("tcp")
	if err != nil {
		return 0
	}
	for _, c := range conns {
		if c.Status == "LISTEN" && int(c.Laddr.Port) == port && c.Pid > 0 {
			return c.Pid
		}
	}
	return 0
}

// CheckInspect reports a conflict when the debugger port in inspect is
// already taken. Port 0 asks the runtime to pick one and never conflicts.
func CheckInspect(inspect string) (*Conflict, error) {
	_, port, err := ParseInspect(inspect)
	if err != nil {
		return nil, err
	}
	if port == 0 || IsPortAvailable(port) {
		return nil, nil
	}
	return &Conflict{
		Port:      port,
		PID:       GetProcessOnPort(port),
		Suggested: FindAvailablePort(port + 1),
	}, nil
}
