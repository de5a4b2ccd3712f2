// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This binary is the main entrypoint for the Secret Shards command line tool.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"flag"
	glog "github.com/golang/glog"
	"github.com/google/subcommands"
	"github.com/paviro/Secret-Shards-sub000/client"
	"github.com/paviro/Secret-Shards-sub000/config"
	"github.com/spf13/afero"
)

// The current version, displayed via the `version` subcommand.
const secretShardsVersion string = "0.1.0"

// Returns the default config file location, logging when it is unavailable.
func defaultConfigPath() string {
	path, err := config.DefaultPath()
	if err != nil {
		glog.Errorf("%v", err)
	}
	return path
}

// splitCmd handles CLI options for the split command.
type splitCmd struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer

	configFile  string
	text        string
	textFile    string
	shares      int
	threshold   int
	chunkSize   int
	compression string
	outDir      string
	quiet       bool
}

func (*splitCmd) Name() string { return "split" }
func (*splitCmd) Synopsis() string {
	return "encrypts text and files and splits them into key share and chunk blocks"
}
func (*splitCmd) Usage() string {
	return fmt.Sprintf(`Usage: secretshards split [--config-file=<config_file>] [--text=<text>|--text-file=<path>] [--shares=<n>] [--threshold=<k>] [--chunk-size=<bytes>] [--compression=<codecs>] [--out-dir=<dir>] [files...]

Examples:
  Split a note into 5 key shares, any 3 of which restore it, using %s for defaults:
    $ secretshards split --shares=5 --threshold=3 --text="correct horse battery staple"

  Split a file and a note read from stdin, trying xz and zstd compression:
    $ echo "recovery codes attached" | secretshards split --text-file=- --compression=xz,zstd codes.pdf

Flags:
`, defaultConfigPath())
}
func (s *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.configFile, "config-file", defaultConfigPath(), "Path to a configuration YAML file. Optional.")
	f.StringVar(&s.text, "text", "", "Text to protect. Optional.")
	f.StringVar(&s.textFile, "text-file", "", "File holding the text to protect, or - for stdin. Optional.")
	f.IntVar(&s.shares, "shares", 0, "Number of key shares to create. Overrides the configuration.")
	f.IntVar(&s.threshold, "threshold", 0, "Number of key shares needed to restore. Overrides the configuration.")
	f.IntVar(&s.chunkSize, "chunk-size", 0, "Maximum ciphertext bytes per chunk block. Overrides the configuration.")
	f.StringVar(&s.compression, "compression", "", "Comma-separated codecs to try (none, gzip, xz, zstd). Overrides the configuration.")
	f.StringVar(&s.outDir, "out-dir", "", "Directory to write blocks to. Overrides the configuration.")
	f.BoolVar(&s.quiet, "quiet", false, "Suppress logging output.")
}

// Returns the configuration with flag overrides applied.
func (s *splitCmd) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(s.fs, s.configFile)
	if err != nil {
		return nil, err
	}

	if s.shares != 0 {
		cfg.Shares = s.shares
	}
	if s.threshold != 0 {
		cfg.Threshold = s.threshold
	}
	if s.chunkSize != 0 {
		cfg.ChunkSize = s.chunkSize
	}
	if s.compression != "" {
		cfg.Compression = strings.Split(s.compression, ",")
	}
	if s.outDir != "" {
		cfg.OutputDir = s.outDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *splitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := s.loadConfig()
	if err != nil {
		glog.Errorf("Failed to load configuration: %v", err)
		return subcommands.ExitFailure
	}

	compressions, err := cfg.Compressions()
	if err != nil {
		glog.Errorf("Invalid compression: %v", err)
		return subcommands.ExitFailure
	}

	a, err := buildArchive(s.fs, s.stdin, archiveInput{text: s.text, textFile: s.textFile, files: f.Args()})
	if err != nil {
		glog.Errorf("Failed to read input: %v", err)
		return subcommands.ExitFailure
	}

	set, err := client.Shard(client.ShardRequest{
		Archive:       a,
		TotalShares:   cfg.Shares,
		Threshold:     cfg.Threshold,
		MaxChunkBytes: cfg.ChunkSize,
		Compression:   compressions,
	})
	if err != nil {
		glog.Errorf("Failed to split secret: %v", err)
		return subcommands.ExitFailure
	}

	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = "."
	}
	paths, err := writeShardSet(ctx, s.fs, outDir, set)
	if err != nil {
		glog.Errorf("Failed to write blocks: %v", err)
		return subcommands.ExitFailure
	}

	if !s.quiet {
		fmt.Fprintln(s.stdout, "ID of split secret:", set.ID)
		fmt.Fprintf(s.stdout, "Any %d of %d key shares restore it together with all %d chunks.\n", cfg.Threshold, cfg.Shares, len(set.Chunks))
		for _, p := range paths {
			fmt.Fprintln(s.stdout, "Wrote", p)
		}
	}

	return subcommands.ExitSuccess
}

// combineCmd handles CLI options for the combine command.
type combineCmd struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer

	outDir  string
	textOut string
	quiet   bool
}

func (*combineCmd) Name() string { return "combine" }
func (*combineCmd) Synopsis() string {
	return "restores a secret from key share and chunk blocks"
}
func (*combineCmd) Usage() string {
	return `Usage: secretshards combine [--out-dir=<dir>] [--text-out=<path>] <block_file>...

Examples:
  Restore a secret, printing its text and writing its files to the working directory:
    $ secretshards combine *.ssb

  Restore into a specific directory, writing the text to a file:
    $ secretshards combine --out-dir=restored --text-out=restored/note.txt *.ssb

Flags:
`
}
func (c *combineCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outDir, "out-dir", ".", "Directory to write restored files to.")
	f.StringVar(&c.textOut, "text-out", "", "File to write restored text to. Defaults to stdout.")
	f.BoolVar(&c.quiet, "quiet", false, "Suppress logging output.")
}

func (c *combineCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		glog.Errorf("Not enough arguments (expected block files)")
		return subcommands.ExitFailure
	}

	blocks, err := readBlocks(ctx, c.fs, f.Args())
	if err != nil {
		glog.Errorf("Failed to read blocks: %v", err)
		return subcommands.ExitFailure
	}

	a, md, err := client.Restore(blocks)
	if err != nil {
		glog.Errorf("Failed to restore secret: %v", err)
		return subcommands.ExitFailure
	}

	// Text goes to stdout by default, so progress goes to stderr.
	logOut := c.stderr
	if a.Text != "" {
		if c.textOut == "" {
			fmt.Fprint(c.stdout, a.Text)
		} else {
			if err := afero.WriteFile(c.fs, c.textOut, []byte(a.Text), 0o600); err != nil {
				glog.Errorf("Failed to write text: %v", err)
				return subcommands.ExitFailure
			}
			if !c.quiet {
				fmt.Fprintln(logOut, "Wrote text to", c.textOut)
			}
		}
	}

	paths, err := writeArchiveFiles(c.fs, c.outDir, a.Files)
	if err != nil {
		glog.Errorf("Failed to write files: %v", err)
		return subcommands.ExitFailure
	}

	if !c.quiet {
		for _, p := range paths {
			fmt.Fprintln(logOut, "Wrote", p)
		}
		fmt.Fprintln(logOut, "ID of restored secret:", md.ID)
		fmt.Fprintf(logOut, "Used %d of %d key shares (threshold %d) and %d chunks.\n", md.SharesUsed, md.TotalShares, md.Threshold, md.TotalChunks)
	}

	return subcommands.ExitSuccess
}

// inspectCmd handles CLI options for the inspect command.
type inspectCmd struct {
	fs     afero.Fs
	stdout io.Writer

	json bool
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "prints the headers of block files" }
func (*inspectCmd) Usage() string {
	return `Usage: secretshards inspect [--json] <block_file>...

Flags:
`
}
func (i *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&i.json, "json", false, "Print a JSON array instead of text.")
}

func (i *inspectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		glog.Errorf("Not enough arguments (expected block files)")
		return subcommands.ExitFailure
	}

	blocks, err := readBlocks(ctx, i.fs, f.Args())
	if err != nil {
		glog.Errorf("Failed to read blocks: %v", err)
		return subcommands.ExitFailure
	}

	reports := inspectBlocks(f.Args(), blocks)
	if i.json {
		if err := writeReportsJSON(i.stdout, reports); err != nil {
			glog.Errorf("%v", err)
			return subcommands.ExitFailure
		}
	} else {
		writeReportsText(i.stdout, reports)
	}

	if countFailures(reports) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// versionCmd handles CLI options for the version command.
type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "prints the current version" }
func (*versionCmd) Usage() string          { return "Usage: secretshards version" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}
func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Printf("Secret Shards Version %s\n", secretShardsVersion)
	return subcommands.ExitSuccess
}

func main() {
	flag.Parse()

	fs := afero.NewOsFs()

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(&splitCmd{fs: fs, stdin: os.Stdin, stdout: os.Stdout}, "")
	subcommands.Register(&combineCmd{fs: fs, stdout: os.Stdout, stderr: os.Stderr}, "")
	subcommands.Register(&inspectCmd{fs: fs, stdout: os.Stdout}, "")
	subcommands.Register(&versionCmd{}, "")

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
