package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blockforge/pkg/config"
	"blockforge/pkg/logger"
	"blockforge/pkg/manifest"
	"blockforge/pkg/pipeline"
	"blockforge/pkg/recipe"
	"blockforge/pkg/runner"
	"blockforge/pkg/telemetry"
)

func Execute() {
	var manifestPath, recipePath, configPath string

	rootCmd := &cobra.Command{
		Use:   "blockforge",
		Short: "Package and run a super-resolution processing block",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "UP42Manifest.json", "block manifest path")
	rootCmd.PersistentFlags().StringVarP(&recipePath, "recipe", "r", "blockforge.yaml", "build recipe path")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "runner config path")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the block manifest",
		Long:  `The validate command checks the manifest schema, machine type, parameter defaults and capability upgrade markers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}
			result := m.Validate()
			result.Merge(m.ValidateCapabilities())
			printFindings(result.Summary())
			if !result.Valid {
				return fmt.Errorf("manifest %s is invalid", manifestPath)
			}
			fmt.Printf("manifest %s is valid\n", manifestPath)
			return nil
		},
	}

	generateCmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "Generate the block Dockerfile",
		Long:  `The generate command renders the Dockerfile for the recipe and the machine type declared in the manifest. With a directory argument the Dockerfile, requirements file and a default .dockerignore are written there; otherwise the Dockerfile goes to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}
			r, err := recipe.Load(recipePath)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				path, err := recipe.NewBuilder(&runner.DefaultCommandRunner{}).Materialize(r, m, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", path)
				return nil
			}
			content, err := recipe.Generate(r, m.Machine)
			if err != nil {
				return err
			}
			fmt.Print(content)
			return nil
		},
	}

	lintCmd := &cobra.Command{
		Use:   "lint [dockerfile]",
		Short: "Lint a block Dockerfile",
		Long:  `The lint command checks a Dockerfile against the block packaging rules: pinned base image, manifest provenance label, and a single run command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}

			var content string
			if len(args) > 0 {
				raw, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				content = string(raw)
			} else {
				r, err := recipe.Load(recipePath)
				if err != nil {
					return err
				}
				if content, err = recipe.Generate(r, m.Machine); err != nil {
					return err
				}
			}

			result := recipe.NewLinter(logger.Component("lint")).Lint(content, m.Machine)
			printFindings(result.Summary())
			if !result.Valid {
				return fmt.Errorf("dockerfile has lint errors")
			}
			return nil
		},
	}

	contextCmd := &cobra.Command{
		Use:   "context [dir]",
		Short: "Show the docker build context",
		Long:  `The context command lists the files that enter the image build, honoring .dockerignore.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			tree, err := recipe.ContextTree(dir)
			if err != nil {
				return err
			}
			fmt.Println(tree)
			return nil
		},
	}

	var imageTag string
	buildCmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Build the block image",
		Long:  `The build command renders the Dockerfile into the context directory and runs docker build with the manifest as a build argument.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			m, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}
			result := m.Validate()
			result.Merge(m.ValidateCapabilities())
			if !result.Valid {
				printFindings(result.Summary())
				return fmt.Errorf("manifest %s is invalid", manifestPath)
			}
			r, err := recipe.Load(recipePath)
			if err != nil {
				return err
			}

			ctxResult, err := recipe.CheckContext(r, dir)
			if err != nil {
				return err
			}
			if !ctxResult.Valid {
				printFindings(ctxResult.Summary())
				return fmt.Errorf("build context in %s is incomplete", dir)
			}

			b := recipe.NewBuilder(&runner.DefaultCommandRunner{})
			if err := b.CheckDocker(cmd.Context()); err != nil {
				return err
			}
			if _, err := b.Materialize(r, m, dir); err != nil {
				return err
			}
			tag, err := b.Build(cmd.Context(), m, dir, imageTag)
			if err != nil {
				return err
			}
			fmt.Printf("built %s\n", tag)
			return nil
		},
	}
	buildCmd.Flags().StringVarP(&imageTag, "tag", "t", "", "image tag (defaults to <name>:latest)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a super-resolution job",
		Long:  `The run command executes the job pipeline: load parameters, describe the input scenes, resolve the processing window, invoke inference and write the output metadata.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.SetLevel(cfg.LogLevel)
			telemetry.Expose(cfg.MetricsPort)

			m, err := manifest.Load(cfg.Manifest)
			if err != nil {
				return err
			}

			state := pipeline.NewState(cfg, &runner.DefaultCommandRunner{})
			state.Manifest = m
			return pipeline.NewRunner(pipeline.Stages()).Run(cmd.Context(), state)
		},
	}

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printFindings(summary string) {
	if summary != "" {
		fmt.Print(summary)
	}
}
