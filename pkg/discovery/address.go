package discovery

import (
	"net"
	"sort"
)

// SortIPsByPreference returns a copy of ips ordered for reaching a bridge
// over UDP:
//
//  1. IPv4 addresses
//  2. Global IPv6 addresses
//  3. Unique Local Addresses (fc00::/7)
//  4. Link-local IPv6 addresses
//  5. Loopback
func SortIPsByPreference(ips []net.IP) []net.IP {
	if len(ips) <= 1 {
		return ips
	}

	sorted := make([]net.IP, len(ips))
	copy(sorted, ips)

	sort.SliceStable(sorted, func(i, j int) bool {
		return ipPriority(sorted[i]) < ipPriority(sorted[j])
	})
	return sorted
}

// ipPriority returns the priority of an IP address (lower is better).
func ipPriority(ip net.IP) int {
	if ip.To16() == nil {
		return 99
	}
	switch {
	case ip.IsLoopback():
		return 80
	case ip.To4() != nil:
		return 0
	case isUniqueLocal(ip):
		return 2
	case ip.IsGlobalUnicast():
		return 1
	case ip.IsLinkLocalUnicast():
		return 3
	}
	return 10
}

// isUniqueLocal reports whether ip is in fc00::/7.
func isUniqueLocal(ip net.IP) bool {
	ip = ip.To16()
	return ip != nil && ip.To4() == nil && (ip[0] == 0xfc || ip[0] == 0xfd)
}
