// Command subtilisc is the command-line entry point over the compiler
// driver: compile an IR dump to a RISC OS Absolute executable, print an IR
// dump back out for inspection, or disassemble an already-encoded image.
package main

import (
	"fmt"
	"os"

	"github.com/markryan/subtilis-armback/arm/encode"
	"github.com/markryan/subtilis-armback/compiler"
	"github.com/markryan/subtilis-armback/config"
	"github.com/markryan/subtilis-armback/ir"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "subtilisc",
		Short: "Subtilis ARM back end — compile an IR dump to a RISC OS Absolute executable",
	}

	var configPath string
	var output string

	compileCmd := &cobra.Command{
		Use:   "compile [ir.json]",
		Short: "Compile an IR dump into a RISC OS Absolute executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0]) // #nosec G304 -- user-supplied input file
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			prog, err := ir.Load(data)
			if err != nil {
				return fmt.Errorf("parsing IR dump: %w", err)
			}

			settings := compiler.SettingsFromConfig(cfg)
			image, cerr := compiler.Compile(prog, settings)
			if cerr != nil {
				return cerr
			}

			out := output
			if out == "" {
				out = args[0] + cfg.Output.ExecutableSuffix
			}
			if err := os.WriteFile(out, image, 0644); err != nil { // #nosec G306 -- executable image, not a secret
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Printf("%s: %d bytes\n", out, len(image))
			return nil
		},
	}
	compileCmd.Flags().StringVar(&configPath, "config", "", "path to config.toml (default: platform config dir)")
	compileCmd.Flags().StringVarP(&output, "output", "o", "", "output image path (default: input path, suffixed per config)")

	dumpIRCmd := &cobra.Command{
		Use:   "dump-ir [ir.json]",
		Short: "Round-trip an IR dump through ir.Load/Program.Dump and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0]) // #nosec G304 -- user-supplied input file
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			prog, err := ir.Load(data)
			if err != nil {
				return fmt.Errorf("parsing IR dump: %w", err)
			}
			pretty, err := prog.Dump()
			if err != nil {
				return fmt.Errorf("rendering IR dump: %w", err)
			}
			fmt.Println(string(pretty))
			return nil
		},
	}

	disasmCmd := &cobra.Command{
		Use:   "disasm [image]",
		Short: "Disassemble a raw little-endian word stream one mnemonic per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0]) // #nosec G304 -- user-supplied input file
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			if len(data)%4 != 0 {
				return fmt.Errorf("%s: length %d is not a multiple of 4", args[0], len(data))
			}
			for i := 0; i < len(data); i += 4 {
				w := uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16 | uint32(data[i+3])<<24
				fmt.Printf("%06x: %08x  %s\n", i, w, encode.Decode(w))
			}
			return nil
		},
	}

	rootCmd.AddCommand(compileCmd, dumpIRCmd, disasmCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}
