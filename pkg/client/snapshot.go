package client

import (
	"context"
	"errors"

	"github.com/shuretools/shurelink/pkg/device"
	"github.com/shuretools/shurelink/pkg/wire"
)

// Snapshot is the merged result of a bulk read. Keys no reply arrived for
// are absent, not present with an empty value; callers treat absence as
// "unknown/unavailable".
type Snapshot struct {
	Device   map[string]string
	Channels map[int]map[string]string
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() Snapshot {
	return Snapshot{
		Device:   make(map[string]string),
		Channels: make(map[int]map[string]string),
	}
}

// merge folds one reply into the snapshot. Merging is commutative per key
// apart from last-write-wins on duplicates, so arrival order does not
// matter for distinct keys.
func (s Snapshot) merge(rep wire.Reply) {
	if rep.Scope.IsChannel() {
		ch := rep.Scope.Channel()
		if s.Channels[ch] == nil {
			s.Channels[ch] = make(map[string]string)
		}
		s.Channels[ch][rep.Key] = rep.Value
		return
	}
	s.Device[rep.Key] = rep.Value
}

// Empty reports whether nothing was merged.
func (s Snapshot) Empty() bool {
	return len(s.Device) == 0 && len(s.Channels) == 0
}

// FetchAll pipelines a GET for every registry key onto one connection
// (device keys once, channel keys once per valid channel), then drains with
// the bulk window and folds every parsed reply into a snapshot.
func (c *Client) FetchAll(ctx context.Context) (Snapshot, error) {
	var cmds []string
	for _, info := range device.Keys(c.family) {
		if info.Class != device.DeviceKey {
			continue
		}
		addr, err := device.NewAddress(c.family, device.DeviceScope, info.Name)
		if err != nil {
			continue
		}
		cmds = append(cmds, wire.EncodeCommand(wire.Get, addr, ""))
	}
	for ch := 1; ch <= c.family.Channels(); ch++ {
		for _, info := range device.Keys(c.family) {
			if info.Class != device.ChannelKey {
				continue
			}
			addr, err := device.NewAddress(c.family, device.ChannelScope(ch), info.Name)
			if err != nil {
				continue
			}
			cmds = append(cmds, wire.EncodeCommand(wire.Get, addr, ""))
		}
	}

	raw, err := c.exchange(ctx, cmds, c.config.BulkSettleDelay, c.config.BulkReadWindow)
	if err != nil {
		return Snapshot{}, err
	}

	snap := NewSnapshot()
	for _, frame := range wire.SplitReplies(c.family, raw) {
		rep, ok := wire.ParseReply(c.family, frame)
		if !ok {
			continue
		}
		// Only registry keys enter a snapshot; splitting concatenated
		// segments can produce frames with garbage key tokens.
		if _, err := device.NewAddress(c.family, rep.Scope, rep.Key); err != nil {
			continue
		}
		snap.merge(rep)
	}
	return snap, nil
}

// FetchChannel reads every channel key of one channel with sequential
// single-key queries. Keys the device does not answer are skipped.
func (c *Client) FetchChannel(ctx context.Context, ch int) (Snapshot, error) {
	snap := NewSnapshot()

	for _, info := range device.Keys(c.family) {
		if info.Class != device.ChannelKey {
			continue
		}
		addr, err := device.NewAddress(c.family, device.ChannelScope(ch), info.Name)
		if err != nil {
			return Snapshot{}, err
		}

		value, err := c.Get(ctx, addr)
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return Snapshot{}, err
		}
		snap.merge(wire.Reply{Scope: addr.Scope, Key: info.Name, Value: value})
	}
	return snap, nil
}
