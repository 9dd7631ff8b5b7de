package network

import (
	"fmt"
	"log/slog"
	"net"
)

// Interface is the host network link the device publishes over. Association
// itself (Wi-Fi credentials, DHCP) is owned by the OS network manager; the
// link only observes whether the interface is up with an IPv4 address.
type Interface struct {
	name   string
	logger *slog.Logger

	byName func(string) (*net.Interface, error)
	addrs  func(*net.Interface) ([]net.Addr, error)
}

func NewInterface(name string, logger *slog.Logger) *Interface {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interface{
		name:   name,
		logger: logger,
		byName: net.InterfaceByName,
		addrs:  func(i *net.Interface) ([]net.Addr, error) { return i.Addrs() },
	}
}

// Associate asks for the link to come up. It fails only when the interface
// does not exist at all.
func (l *Interface) Associate() error {
	if _, err := l.byName(l.name); err != nil {
		return fmt.Errorf("interface %s: %w", l.name, err)
	}
	l.logger.Debug("network association requested", "interface", l.name)
	return nil
}

// Connected reports whether the interface is up and holds an IPv4 address.
func (l *Interface) Connected() bool {
	return l.LocalIP() != ""
}

// LocalIP returns the first IPv4 address on the interface, or "" when there
// is none.
func (l *Interface) LocalIP() string {
	iface, err := l.byName(l.name)
	if err != nil || iface.Flags&net.FlagUp == 0 {
		return ""
	}
	addrs, err := l.addrs(iface)
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip4 := ip.To4(); ip4 != nil && !ip4.IsLoopback() {
			return ip4.String()
		}
	}
	return ""
}
