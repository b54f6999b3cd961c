// Package scan probes network devices for liveness: an ICMP ping for
// reachability plus a TCP dial per configured port. Devices are checked
// concurrently; results come back in configuration order.
package scan

import "time"

type Status string

const (
	StatusOnline   Status = "ONLINE"
	StatusDegraded Status = "DEGRADED"
	StatusOffline  Status = "OFFLINE"
)

// CheckResult is the outcome of one device check.
type CheckResult struct {
	Host        string
	Timestamp   time.Time
	PingOK      bool
	Latency     time.Duration
	OpenPorts   []int
	ClosedPorts []int
}

// Status derives the device state: unreachable hosts are OFFLINE, reachable
// hosts with every configured port open are ONLINE, anything in between is
// DEGRADED. Ports are never probed on an unreachable host, so OFFLINE takes
// precedence.
func (r CheckResult) Status() Status {
	if !r.PingOK {
		return StatusOffline
	}
	if len(r.ClosedPorts) > 0 {
		return StatusDegraded
	}
	return StatusOnline
}
