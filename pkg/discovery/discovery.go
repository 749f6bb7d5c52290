package discovery

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/enbility/zeroconf/v3"

	"github.com/shuretools/shurelink/pkg/device"
)

const (
	// ServiceType is the mDNS service type Shure receivers announce.
	ServiceType = "_shure._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultBrowseTimeout bounds FindAll when the caller passes no deadline.
	DefaultBrowseTimeout = 5 * time.Second
)

// ErrNotFound is returned when no matching receiver appears before the
// context ends.
var ErrNotFound = errors.New("discovery: receiver not found")

// Receiver is one discovered unit.
type Receiver struct {
	// InstanceName is the mDNS instance, e.g. "AD4D-1A2B3C".
	InstanceName string

	// Host is the announced hostname.
	Host string

	// Port is the announced control port.
	Port uint16

	// Addresses are the IP addresses collected across interfaces.
	Addresses []string

	// Family is inferred from the instance name prefix. Unknown models
	// leave it at the zero value with Known set to false.
	Family device.Family
	Known  bool
}

// Config configures the browser.
type Config struct {
	// Interface restricts browsing to one network interface by name.
	// Empty means all interfaces.
	Interface string

	// BrowseTimeout is the default timeout for FindAll.
	BrowseTimeout time.Duration
}

// DefaultConfig returns the default browser configuration.
func DefaultConfig() Config {
	return Config{
		BrowseTimeout: DefaultBrowseTimeout,
	}
}

// Browser browses for receivers.
type Browser struct {
	config Config
}

// NewBrowser creates a browser with the given configuration.
func NewBrowser(config Config) *Browser {
	if config.BrowseTimeout <= 0 {
		config.BrowseTimeout = DefaultBrowseTimeout
	}
	return &Browser{config: config}
}

// Browse streams receivers as they are discovered until ctx ends. Each
// instance is emitted once; later announcements on other interfaces only
// extend its address list.
func (b *Browser) Browse(ctx context.Context) (<-chan *Receiver, error) {
	out := make(chan *Receiver)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.clientOptions()

	go func() {
		defer close(out)

		seen := make(map[string]*Receiver)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				rcv := entryToReceiver(entry)
				if existing, found := seen[rcv.InstanceName]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, rcv.Addresses)
					continue
				}
				seen[rcv.InstanceName] = rcv
				select {
				case out <- rcv:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				delete(seen, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindAll browses until the configured timeout and returns everything seen.
func (b *Browser) FindAll(ctx context.Context) ([]*Receiver, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.BrowseTimeout)
	defer cancel()

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	var found []*Receiver
	for rcv := range results {
		found = append(found, rcv)
	}
	return found, nil
}

// FindByName browses until a receiver whose instance name matches name
// (case-insensitive) appears, or the context ends.
func (b *Browser) FindByName(ctx context.Context, name string) (*Receiver, error) {
	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case rcv, ok := <-results:
			if !ok {
				return nil, ErrNotFound
			}
			if strings.EqualFold(rcv.InstanceName, name) {
				return rcv, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (b *Browser) clientOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

func entryToReceiver(entry *zeroconf.ServiceEntry) *Receiver {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	rcv := &Receiver{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
	}
	rcv.Family, rcv.Known = familyFromInstance(entry.Instance)
	return rcv
}

// familyFromInstance maps the model prefix of an instance name ("AD4D-...",
// "P10T-...") to a device family.
func familyFromInstance(instance string) (device.Family, bool) {
	model, _, _ := strings.Cut(instance, "-")
	f, err := device.ParseFamily(strings.ToLower(model))
	if err != nil {
		return 0, false
	}
	return f, true
}

// mergeAddresses adds new addresses to the existing list, skipping duplicates.
func mergeAddresses(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range extra {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}
