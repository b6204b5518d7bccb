package cmd

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"hifz/engine/internal/bandit"
	"hifz/engine/internal/config"
	"hifz/engine/internal/content"
	"hifz/engine/internal/engine"
	"hifz/engine/internal/fsrs"
	"hifz/engine/internal/scheduler"
	"hifz/engine/internal/userstore"
)

var (
	configPath string
	seed       int64
)

var rootCmd = &cobra.Command{
	Use:   "hifzd",
	Short: "Adaptive scheduling engine for graph-based spaced repetition",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to engine.yaml config")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Seed sampling RNGs for reproducible output (0 = random)")
}

// DiscoverConfig finds the config path using priority: env > flag > walk-up
// from CWD. Not finding one is fine — defaults apply.
func DiscoverConfig() string {
	if envPath := os.Getenv("HIFZ_CONFIG"); envPath != "" {
		return envPath
	}
	if configPath != "" {
		return configPath
	}
	dir, err := os.Getwd()
	if err != nil {
		return "engine.yaml"
	}
	for {
		candidate := filepath.Join(dir, "engine.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "engine.yaml"
		}
		dir = parent
	}
}

// runtime bundles the opened stores and services for one command invocation.
type runtime struct {
	cfg      config.Config
	content  *content.Store
	registry *content.Registry
	users    *userstore.Store
	engine   *engine.Engine
	sched    *scheduler.Scheduler
}

func (r *runtime) close() {
	if r.users != nil {
		r.users.Close()
	}
	if r.content != nil {
		r.content.Close()
	}
}

// openRuntime wires the whole engine from config. Callers defer close().
func openRuntime() (*runtime, error) {
	cfg, err := config.Load(DiscoverConfig())
	if err != nil {
		return nil, err
	}

	r := &runtime{cfg: cfg}
	r.content, err = content.Open(cfg.ContentDB)
	if err != nil {
		return nil, err
	}
	r.registry, err = content.NewRegistry(r.content)
	if err != nil {
		r.close()
		return nil, err
	}
	r.users, err = userstore.Open(cfg.UserDB, cfg.BusyTimeoutMS)
	if err != nil {
		r.close()
		return nil, err
	}

	model, err := fsrs.New(fsrs.Config{
		DesiredRetention: cfg.DesiredRetention,
		MaximumInterval:  cfg.MaximumInterval,
	})
	if err != nil {
		r.close()
		return nil, err
	}

	rngSeed := seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	r.engine = engine.New(r.content, r.registry, r.users, model,
		engine.WithEpsilon(cfg.Epsilon),
		engine.WithRand(rand.New(rand.NewSource(rngSeed))),
		engine.WithLogger(log.New(os.Stderr, "hifzd: ", log.LstdFlags)),
	)
	r.sched = scheduler.New(r.content, r.users,
		bandit.New(rand.New(rand.NewSource(rngSeed+1))),
		scheduler.WithProfiles(cfg.Profiles),
		scheduler.WithEnergyFloor(cfg.EnergyFloor),
	)
	return r, nil
}
