package main

import (
	"codeberg.org/miketth/kleboard/pkg/config"
	"codeberg.org/miketth/kleboard/pkg/kleboard"
	"codeberg.org/miketth/kleboard/pkg/layoutstore/memory"
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"codeberg.org/miketth/kleboard/pkg/qmk"
	"codeberg.org/miketth/kleboard/pkg/schema"
	"codeberg.org/miketth/kleboard/pkg/via"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"os"
	"strings"
)

type generateFlags struct {
	out     string
	layouts []string
}

func (f *generateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output directory (default from config)")
	cmd.Flags().StringArrayVarP(&f.layouts, "layout", "l", nil, "extra alternate layout as name=v0,v1,...")
}

func (a *app) newGenerator(f generateFlags) (*kleboard.Generator, error) {
	store, err := memory.NewLayoutStore(a.cfg.Layouts...)
	if err != nil {
		return nil, fmt.Errorf("load layouts: %w", err)
	}
	for _, l := range f.layouts {
		name, sel, ok := strings.Cut(l, "=")
		if !ok {
			return nil, fmt.Errorf("invalid layout %q, want name=v0,v1,...", l)
		}
		selections, err := parseSelections(sel)
		if err != nil {
			return nil, err
		}
		if err := store.SetLayout(multilayout.Alternate{Name: name, Selections: selections}); err != nil {
			return nil, fmt.Errorf("add layout %q: %w", name, err)
		}
	}

	validator, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("load schemas: %w", err)
	}
	renderers, err := kleboard.RenderersFromConfig(a.cfg, validator)
	if err != nil {
		return nil, fmt.Errorf("create renderers: %w", err)
	}

	dir := f.out
	if dir == "" {
		dir = a.cfg.Output.Dir
	}
	a.log.Debugw("writing outputs", "dir", dir, "renderers", len(renderers))
	return kleboard.NewGenerator(renderers, store, kleboard.NewDirSink(dir), a.log), nil
}

func (a *app) generateCmd() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate file",
		Short: "Write info.json, keyboard.h, keymaps and the VIA definition for a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.newGenerator(f)
			if err != nil {
				return err
			}
			return g.GenerateFile(cmd.Context(), args[0])
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "watch file",
		Short: "Regenerate all outputs whenever the layout changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.newGenerator(f)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			path := args[0]

			if err := g.GenerateFile(ctx, path); err != nil {
				a.log.Errorw("initial generation failed", "error", err)
			}

			w := kleboard.NewWatcher([]string{path}, kleboard.DefaultDebounce, func(ctx context.Context) error {
				return g.GenerateFile(ctx, path)
			}, a.log)

			a.log.Infow("watching layout", "file", path)

			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				if err := w.Run(egCtx); err != nil {
					return fmt.Errorf("watch: %w", err)
				}
				return nil
			})
			eg.Go(func() error {
				if err := systemdNotifyLoop(egCtx); err != nil {
					return fmt.Errorf("systemd notify: %w", err)
				}
				return nil
			})

			err = eg.Wait()
			if errors.Is(err, context.Canceled) {
				a.log.Info("shutting down")
				return nil
			}
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) pinsCmd() *cobra.Command {
	var mcuName string
	cmd := &cobra.Command{
		Use:   "pins [netlist]",
		Short: "Extract the switch matrix pins from a KiCad netlist",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Matrix.Netlist
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return errors.New("no netlist given")
			}

			mcu, err := a.cfg.ResolveMCU()
			if err != nil {
				return err
			}
			if mcuName != "" {
				if mcu, err = qmk.LookupMCU(mcuName); err != nil {
					return err
				}
			}

			pins, err := kleboard.LoadPins(path, mcu)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(pins)
		},
	}
	cmd.Flags().StringVar(&mcuName, "mcu", "", "mcu preset: "+strings.Join(qmk.Presets(), ", "))
	return cmd
}

func (a *app) importVIACmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-via [file]",
		Short: "Turn a VIA definition back into an annotated layout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			kbd, err := via.Import(data)
			if err != nil {
				return fmt.Errorf("import via definition: %w", err)
			}
			return writeCompact(cmd.OutOrStdout(), kbd)
		},
	}
}

func (a *app) initConfigCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if a.configPath != "" {
				path = a.configPath
			}
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.Save(config.DefaultConfig(), path); err != nil {
				return err
			}
			a.log.Infow("wrote config", "path", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
