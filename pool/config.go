package pool

import "time"

type Config struct {
	SchedulingTimeout time.Duration
	JobTimeout        time.Duration
}

func NewConfig() *Config {
	return &Config{
		SchedulingTimeout: 10 * time.Second,
		JobTimeout:        30 * time.Second,
	}
}
