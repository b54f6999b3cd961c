package scan

import (
	"context"
	"net"
	"strconv"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

const (
	defaultPingCount   = 1
	defaultPingTimeout = 1 * time.Second
	defaultPortTimeout = 500 * time.Millisecond
)

// Pinger reports whether a host answers an ICMP echo and at what round-trip
// time. A false ok means unreachable, not an error.
type Pinger interface {
	Ping(ctx context.Context, host string) (rtt time.Duration, ok bool)
}

// PortDialer reports whether a TCP port on a host accepts connections.
type PortDialer interface {
	Check(ctx context.Context, host string, port int) bool
}

type ICMPPinger struct {
	Count      int
	Timeout    time.Duration
	Privileged bool
}

func (p *ICMPPinger) Ping(ctx context.Context, host string) (time.Duration, bool) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return 0, false
	}
	defer pinger.Stop()
	pinger.SetPrivileged(p.Privileged)

	count := p.Count
	if count <= 0 {
		count = defaultPingCount
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pinger.Count = count
	pinger.Timeout = timeout

	if err := pinger.RunWithContext(ctx); err != nil {
		return 0, false
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, false
	}
	return stats.AvgRtt, true
}

type TCPDialer struct {
	Timeout time.Duration
}

func (d *TCPDialer) Check(ctx context.Context, host string, port int) bool {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultPortTimeout
	}
	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
