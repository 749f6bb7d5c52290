package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shuretools/shurelink/pkg/device"
)

// Config is the YAML file format for monitoring multiple receivers from
// one process.
//
//	redis_addr: localhost:6379
//	history: /var/lib/shure/history.db
//	metrics_addr: ":9216"
//	receivers:
//	  - host: 192.168.1.50
//	    device: ad4d
//	    interval: 5s
//	  - host: 192.168.1.60
//	    device: p10t
type Config struct {
	RedisAddr   string           `yaml:"redis_addr"`
	History     string           `yaml:"history"`
	MetricsAddr string           `yaml:"metrics_addr"`
	Receivers   []ReceiverConfig `yaml:"receivers"`
}

// ReceiverConfig describes one receiver to monitor.
type ReceiverConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Device   string        `yaml:"device"`
	Interval time.Duration `yaml:"interval"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Receivers) == 0 {
		return nil, fmt.Errorf("config %s lists no receivers", path)
	}
	for i, rcv := range cfg.Receivers {
		if rcv.Host == "" {
			return nil, fmt.Errorf("receiver %d: missing host", i)
		}
		if rcv.Device == "" {
			cfg.Receivers[i].Device = device.AD4D.String()
			continue
		}
		if _, err := device.ParseFamily(rcv.Device); err != nil {
			return nil, fmt.Errorf("receiver %d (%s): %w", i, rcv.Host, err)
		}
	}
	return &cfg, nil
}
