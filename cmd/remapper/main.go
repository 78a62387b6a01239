// Package main provides the remapper CLI.
//
// remapper renames the classes and members of a Minecraft plugin jar between
// the Mojang, obfuscated and Spigot naming conventions:
//
//	remapper remap --kind MOJANG_TO_SPIGOT --version 1.20.4-R0.1-SNAPSHOT --input build/libs/plugin.jar
//	remapper remap --jobs remap.yaml --parallelism 4
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"remapper/internal/config"
	"remapper/internal/diagnostic"
	"remapper/internal/logging"
	"remapper/internal/mapping"
	"remapper/internal/pipeline"
	"remapper/internal/plan"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "remap" {
		args = args[1:]
	}

	fs := pflag.NewFlagSet("remapper remap", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}

		return exitUsage
	}

	loaded, err := config.Load(fs)
	if err != nil {
		return fail(stderr, err)
	}

	log, closer := logging.New(loaded.Settings.Log)
	defer closer.Close()

	jobs := []config.Options{loaded.Options}
	if loaded.JobsFile != "" {
		if jobs, err = config.LoadJobs(loaded.JobsFile); err != nil {
			return fail(stderr, err)
		}
	}

	var reqs []pipeline.Request

	for _, job := range jobs {
		req, ok, err := job.Request()
		if err != nil {
			return fail(stderr, err)
		}

		if !ok {
			fmt.Fprintf(stdout, "Skipped remapping %s\n", job.Input)
			continue
		}

		reqs = append(reqs, req)
	}

	if len(reqs) == 0 {
		return exitOK
	}

	driver, err := newDriver(loaded.Settings)
	if err != nil {
		return fail(stderr, err)
	}

	driver.Env.Log = log

	results, err := pipeline.RunAll(ctx, driver, reqs, loaded.Settings.Parallelism)

	for _, res := range results {
		if res == nil {
			continue
		}

		for _, w := range res.Diagnostics.Warnings {
			fmt.Fprintf(stderr, "remapper: warning: %s\n", w)
		}

		fmt.Fprintln(stdout, res.Message())
	}

	if err != nil {
		return fail(stderr, err)
	}

	return exitOK
}

func newDriver(s config.Settings) (*pipeline.Driver, error) {
	resolver, err := s.Resolver()
	if err != nil {
		return nil, err
	}

	tables, err := mapping.NewCache(s.MappingCache)
	if err != nil {
		return nil, err
	}

	return &pipeline.Driver{
		Env: plan.Env{
			Resolver:           resolver,
			Tables:             tables,
			ExtraInheritance:   s.Inheritance,
			RequireInheritance: s.RequireInheritance,
		},
		ScratchDir:           s.ScratchDir,
		KeepScratchOnFailure: s.KeepScratch,
	}, nil
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "remapper: %v\n", err)

	if errors.Is(err, diagnostic.ErrConfiguration) {
		return exitUsage
	}

	return exitFailed
}
