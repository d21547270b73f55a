package repo

import (
	"time"
)

// Driver selects the storage backend.
type Driver string

const (
	DriverMongo  Driver = "mongo"
	DriverMemory Driver = "memory"
)

type Config struct {
	Driver Driver       `yaml:"driver"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Memory MemoryConfig `yaml:"memory"`
}

type MongoConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`

	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`

	Auth struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
}

type MemoryConfig struct {
	// SnapshotPath enables periodic JSON snapshots when non-empty.
	SnapshotPath     string        `yaml:"snapshot_path"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
}
