package main

import (
	"flag"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hireflow/interviewd/internal/api"
	"github.com/hireflow/interviewd/internal/interviews"
	"github.com/hireflow/interviewd/internal/locker"
	"github.com/hireflow/interviewd/internal/notify"
	"github.com/hireflow/interviewd/internal/repo"
	"github.com/hireflow/interviewd/pkg/environment"
	"github.com/hireflow/interviewd/pkg/errors"
)

type Config struct {
	Environment environment.Env `yaml:"Environment"`

	Storage repo.Config       `yaml:"Storage"`
	Locks   LocksConfig       `yaml:"Locks"`
	Engine  interviews.Config `yaml:"Engine"`

	API       api.Config              `yaml:"API"`
	Reminders notify.DispatcherConfig `yaml:"Reminders"`
	Telegram  notify.TelegramConfig   `yaml:"Telegram"`
}

type LocksConfig struct {
	// Driver is "redis" for multi-node deployments, "local" otherwise.
	Driver string        `yaml:"driver"`
	Redis  locker.Config `yaml:"redis"`
}

func loadConfig() (*Config, error) {
	path, err := filepath.Abs("config.yaml")
	if err != nil {
		return nil, errors.WrapFail(err, "build path to config")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFail(err, "read \"config.yaml\"")
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, errors.WrapFail(err, "parse yaml")
	}

	if envFromFlags := getEnvFromFlags(); envFromFlags != nil {
		cfg.Environment = *envFromFlags
	}

	return &cfg, nil
}

func getEnvFromFlags() *environment.Env {
	raw := flag.String("env", "", "environment (dev, prod)")
	flag.Parse()
	if raw == nil {
		return nil
	}

	env := environment.FromString(*raw)
	return &env
}
