package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/sentidash/internal/dashboard"
	"github.com/ppiankov/sentidash/internal/logger"
	"github.com/ppiankov/sentidash/internal/model"
)

const (
	envPrefix     = "SENTIDASH"
	configDirName = ".sentidash"
)

var (
	cfgFile  string
	verbose  bool
	dataPath string
	format   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sentidash",
	Short: "Sentidash - sentiment dashboard over car-model feedback",
	Long: `Sentidash explores a table of customer feedback about car models.

Pick brands, models, features and sentiment facts, and it shows the
stacked sentiment chart, per-model feature summaries, highlighted models
and the feedback behind every bar.

Run "sentidash serve" for the JSON API, or use the subcommands directly.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	defer logger.Sync()
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sentidash %s\n", model.Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.sentidash/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "feedback table (.csv or .db)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "o", "", "output format: table, json, yaml, markdown")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("data.path", rootCmd.PersistentFlags().Lookup("data"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	registerDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, configDirName))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match SENTIDASH_*
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("llm.api_key", envPrefix+"_LLM_API_KEY", "OPENAI_API_KEY")
	_ = viper.BindEnv("llm.base_url", envPrefix+"_LLM_BASE_URL", "OLLAMA_BASE_URL")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so that
// environment variables can override keys absent from the config file
func registerDefaults(v *viper.Viper) {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaults(v, "", tree)
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if home, err := os.UserHomeDir(); err == nil {
		if cfg.Session.Dir == "" {
			cfg.Session.Dir = filepath.Join(home, configDirName, "sessions")
		}
		if cfg.Data.Remote.CacheDir == "" {
			cfg.Data.Remote.CacheDir = filepath.Join(home, configDirName, "cache")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app holds what a command needs once configuration is resolved
type app struct {
	cfg *model.Config
	ctx context.Context
	log *logr.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if cfg.Output.Verbose && level > -1 {
		level = -1
	}
	log := logger.Get(level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return &app{cfg: cfg, ctx: logger.WithLogger(ctx, log), log: log}, nil
}

func (a *app) dashboard() (*dashboard.Dashboard, error) {
	if a.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Loading %s\n", a.cfg.Data.Path)
	}
	d, err := dashboard.Open(a.ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("load feedback table: %w", err)
	}
	return d, nil
}

func (a *app) render(v any) error {
	return dashboard.Render(os.Stdout, a.cfg.Output.Format, v)
}
