package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shuretools/shurelink/pkg/client"
	"github.com/shuretools/shurelink/pkg/device"
)

const (
	defaultRefresh = 500 * time.Millisecond

	// fullScale is the top of the receivers' level range.
	fullScale = 120

	// peakHoldTime is how long a peak marker stays before it falls.
	peakHoldTime = 2 * time.Second
)

// channelLevel is one channel's reading from a poll pass.
type channelLevel struct {
	Channel int
	Name    string
	Peak    float64
	RMS     float64
	OK      bool
}

type levelsMsg []channelLevel

type tickMsg time.Time

// peakHold remembers the highest recent peak per channel.
type peakHold struct {
	value float64
	at    time.Time
}

type model struct {
	client  *client.Client
	family  device.Family
	host    string
	refresh time.Duration

	levels []channelLevel
	holds  map[int]peakHold
	width  int
	err    error
}

func newModel(c *client.Client, f device.Family, host string, refresh time.Duration) model {
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	return model{
		client:  c,
		family:  f,
		host:    host,
		refresh: refresh,
		holds:   make(map[int]peakHold),
		width:   80,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(pollCmd(m.client, m.family), tickCmd(m.refresh))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(pollCmd(m.client, m.family), tickCmd(m.refresh))

	case levelsMsg:
		m.levels = msg
		now := time.Now()
		for _, lvl := range msg {
			if !lvl.OK {
				continue
			}
			hold, exists := m.holds[lvl.Channel]
			if !exists || lvl.Peak >= hold.value || now.Sub(hold.at) > peakHoldTime {
				m.holds[lvl.Channel] = peakHold{value: lvl.Peak, at: now}
			}
		}
		return m, nil

	case error:
		m.err = msg
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n\n", m.host, strings.ToUpper(m.family.String()))

	if m.levels == nil {
		b.WriteString("  waiting for levels...\n")
	}

	barWidth := m.width - 30
	if barWidth < 10 {
		barWidth = 10
	}

	for _, lvl := range m.levels {
		name := lvl.Name
		if name == "" {
			name = fmt.Sprintf("CH %d", lvl.Channel)
		}
		if !lvl.OK {
			fmt.Fprintf(&b, "  %-12s %s\n", name, "(no data)")
			continue
		}
		fmt.Fprintf(&b, "  %-12s %s %3.0f\n", name,
			bar(lvl.RMS, m.holds[lvl.Channel].value, barWidth), lvl.Peak)
	}

	if m.err != nil {
		fmt.Fprintf(&b, "\n  error: %v\n", m.err)
	}
	b.WriteString("\n  q to quit\n")
	return b.String()
}

// bar draws an RMS-filled bar with a peak-hold marker.
func bar(rms, hold float64, width int) string {
	fill := levelToCells(rms, width)
	mark := levelToCells(hold, width)

	cells := make([]rune, width)
	for i := range cells {
		switch {
		case i < fill:
			cells[i] = '█'
		case i == mark && mark > 0:
			cells[i] = '▌'
		default:
			cells[i] = '·'
		}
	}
	return string(cells)
}

func levelToCells(level float64, width int) int {
	if level < 0 {
		level = 0
	}
	if level > fullScale {
		level = fullScale
	}
	return int(level / fullScale * float64(width-1))
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// pollCmd fetches each channel's levels with sequential GETs. It runs as a
// tea.Cmd, off the UI loop, so a slow receiver never blocks rendering.
func pollCmd(c *client.Client, f device.Family) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		peakKey, rmsKey := levelKeys(f)

		levels := make([]channelLevel, 0, f.Channels())
		for ch := 1; ch <= f.Channels(); ch++ {
			lvl := channelLevel{Channel: ch}

			if addr, err := device.NewAddress(f, device.ChannelScope(ch), "CHAN_NAME"); err == nil {
				if name, err := c.Get(ctx, addr); err == nil {
					lvl.Name = name
				}
			}

			peak, peakErr := getLevel(ctx, c, f, ch, peakKey)
			rms, rmsErr := getLevel(ctx, c, f, ch, rmsKey)
			if peakErr == nil && rmsErr == nil {
				lvl.Peak, lvl.RMS, lvl.OK = peak, rms, true
			}
			levels = append(levels, lvl)
		}
		return levelsMsg(levels)
	}
}

// levelKeys picks the polled keys per family. The P10T registry has no
// live meter keys, so its input level stands in for both.
func levelKeys(f device.Family) (peak, rms string) {
	if f == device.P10T {
		return "AUDIO_IN_LVL", "AUDIO_IN_LVL"
	}
	return "AUDIO_LEVEL_PEAK", "AUDIO_LEVEL_RMS"
}

func getLevel(ctx context.Context, c *client.Client, f device.Family, ch int, key string) (float64, error) {
	addr, err := device.NewAddress(f, device.ChannelScope(ch), key)
	if err != nil {
		return 0, err
	}
	value, err := c.Get(ctx, addr)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}
