package main

import (
	"codeberg.org/miketth/kleboard/pkg/config"
	"codeberg.org/miketth/kleboard/pkg/kle"
	"fmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"io"
	"os"
)

// app carries the state shared by all commands, set up before each run.
type app struct {
	debug      bool
	configPath string

	log *zap.SugaredLogger
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "kleboard",
		Short:         "Convert keyboard-layout-editor layouts into QMK and VIA files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(a.debug)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			a.log = log

			path := a.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			a.cfg, err = config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.log.Debugw("loaded config", "path", path)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/kleboard/config.yaml)")

	root.AddCommand(
		a.decodeCmd(),
		a.encodeCmd(),
		a.roundtripCmd(),
		a.layoutsCmd(),
		a.resolveCmd(),
		a.generateCmd(),
		a.watchCmd(),
		a.pinsCmd(),
		a.importVIACmd(),
		a.initConfigCmd(),
	)
	return root
}

// readInput reads the named file, or stdin when no name or "-" is given.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func readKeyboard(cmd *cobra.Command, args []string) (kle.Keyboard, error) {
	data, err := readInput(cmd, args)
	if err != nil {
		return kle.Keyboard{}, err
	}
	kbd, err := kle.Parse(data)
	if err != nil {
		return kle.Keyboard{}, fmt.Errorf("parse layout: %w", err)
	}
	return kbd, nil
}

func writeCompact(w io.Writer, kbd kle.Keyboard) error {
	data, err := kle.Marshal(kbd)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
