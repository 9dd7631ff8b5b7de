package network

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fakeInterface(flags net.Flags, addrs []net.Addr, lookupErr error) *Interface {
	l := NewInterface("wlan0", nil)
	l.byName = func(name string) (*net.Interface, error) {
		if lookupErr != nil {
			return nil, lookupErr
		}
		return &net.Interface{Name: name, Flags: flags}, nil
	}
	l.addrs = func(*net.Interface) ([]net.Addr, error) { return addrs, nil }
	return l
}

func ipNet(s string) *net.IPNet {
	ip, n, _ := net.ParseCIDR(s)
	n.IP = ip
	return n
}

func TestInterface_LocalIP(t *testing.T) {
	tests := []struct {
		name  string
		flags net.Flags
		addrs []net.Addr
		err   error
		want  string
	}{
		{
			name:  "up with ipv4",
			flags: net.FlagUp,
			addrs: []net.Addr{ipNet("fe80::1/64"), ipNet("10.0.0.5/24")},
			want:  "10.0.0.5",
		},
		{
			name:  "down",
			flags: 0,
			addrs: []net.Addr{ipNet("10.0.0.5/24")},
			want:  "",
		},
		{
			name:  "only ipv6",
			flags: net.FlagUp,
			addrs: []net.Addr{ipNet("fe80::1/64")},
			want:  "",
		},
		{
			name:  "loopback skipped",
			flags: net.FlagUp,
			addrs: []net.Addr{ipNet("127.0.0.1/8"), &net.IPAddr{IP: net.ParseIP("192.168.1.20")}},
			want:  "192.168.1.20",
		},
		{
			name: "missing interface",
			err:  errors.New("no such network interface"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := fakeInterface(tt.flags, tt.addrs, tt.err)
			assert.Equal(t, tt.want, l.LocalIP())
			assert.Equal(t, tt.want != "", l.Connected())
		})
	}
}

func TestInterface_Associate(t *testing.T) {
	assert.NoError(t, fakeInterface(0, nil, nil).Associate())
	assert.Error(t, fakeInterface(0, nil, errors.New("no such network interface")).Associate())
}
