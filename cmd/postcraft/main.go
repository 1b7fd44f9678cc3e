package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PabloGalante/postcraft/internal/config"
)

var (
	cfgFile string

	// v holds flags, env and the optional config file. Not the viper global, so tests get a fresh one.
	v = viper.New()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "postcraft",
		Short:         "Draft LinkedIn posts and refine them with feedback",
		Long:          "postcraft drafts a LinkedIn post from a topic with an LLM and regenerates it as you give feedback. It runs as a web app (serve) or straight from the terminal (draft).",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./postcraft.yaml or ~/.config/postcraft/postcraft.yaml)")
	root.PersistentFlags().String("provider", "", "LLM provider: openai, gemini, vertex or mock")
	root.PersistentFlags().String("model", "", "model name (provider default when empty)")
	root.PersistentFlags().String("storage", "", "session storage: memory, sqlite or firestore")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error")

	bindFlag(root, "provider", "provider")
	bindFlag(root, "model_name", "model")
	bindFlag(root, "storage_backend", "storage")
	bindFlag(root, "log_level", "log-level")

	root.AddCommand(
		newServeCmd(),
		newDraftCmd(),
		newPresetsCmd(),
		newSessionsCmd(),
		newExportCmd(),
	)
	return root
}

// bindFlag binds a flag to a config key; an unset flag leaves env and file values alone.
func bindFlag(cmd *cobra.Command, key, flag string) {
	_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
}

func initConfig() error {
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("postcraft")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "postcraft"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
