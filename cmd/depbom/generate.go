package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-depbom"
	"github.com/albertocavalcante/go-depbom/bazel"
	"github.com/albertocavalcante/go-depbom/bom"
	"github.com/albertocavalcante/go-depbom/buildgraph"
	"github.com/albertocavalcante/go-depbom/descriptor"
	"github.com/albertocavalcante/go-depbom/sign"
)

const (
	flagManifest        = "manifest"
	flagBazelModule     = "bazel-module"
	flagGroup           = "group"
	flagOutputDir       = "output-dir"
	flagFormat          = "format"
	flagExclude         = "exclude"
	flagAlsoExclude     = "also-exclude"
	flagRepository      = "repository"
	flagLocalRepository = "local-repository"
	flagDescriptorCache = "descriptor-cache"
	flagOffline         = "offline"
	flagWorkers         = "workers"
	flagTimeout         = "timeout"
	flagSignKey         = "sign-key"
	flagSummary         = "summary"

	// keySignPassphrase has no flag; set it through DEPBOM_SIGN_PASSPHRASE or the config file.
	keySignPassphrase = "sign-passphrase"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the bill of materials of a build",
		Long: `Write the bill of materials of a build to {output-dir}/reports/bom.{xml|json}.

The build is read either from a manifest (YAML, JSON or HCL) listing modules,
configurations and resolved artifacts, or from a Bazel workspace whose
MODULE.bazel declares rules_jvm_external maven.install tags.

The written document is validated against depbom's CycloneDX 1.4 profile; the command
fails when it does not conform.`,
		Example: `  # Generate from a manifest
  depbom generate --manifest depbom.yaml

  # Generate JSON for a Bazel workspace, with a summary table
  depbom generate --bazel-module . --group com.example --format json --summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, root)
		},
		DisableAutoGenTag: true,
	}

	f := cmd.Flags()
	f.String(flagManifest, "", "build manifest (.yaml, .yml, .json or .hcl)")
	f.String(flagBazelModule, "", "Bazel workspace directory or MODULE.bazel file")
	f.String(flagGroup, "", "Maven group of the Bazel workspace's own modules")
	f.String(flagOutputDir, depbom.DefaultOutputDir, "build output directory")
	f.String(flagFormat, string(bom.DefaultFormat), "document format: xml or json")
	f.StringSlice(flagExclude, depbom.DefaultExcludedConfigurations, "configuration names to skip (replaces the defaults)")
	f.StringSlice(flagAlsoExclude, nil, "configuration names to skip in addition to --exclude")
	f.StringSlice(flagRepository, []string{descriptor.DefaultRepository}, "descriptor repositories, tried in order")
	f.String(flagLocalRepository, "", "local Maven repository holding artifacts and descriptors (default ~/.m2/repository)")
	f.String(flagDescriptorCache, "", "directory caching downloaded descriptors")
	f.Bool(flagOffline, false, "do not fetch descriptors from remote repositories")
	f.Int(flagWorkers, 1, "artifacts hashed and augmented concurrently")
	f.Duration(flagTimeout, descriptor.DefaultRequestTimeout, "timeout of each descriptor request")
	f.String(flagSignKey, "", "armored OpenPGP private key used to sign the document")
	f.Bool(flagSummary, false, "print a table of the recorded components")

	cmd.MarkFlagsMutuallyExclusive(flagManifest, flagBazelModule)
	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions) error {
	v := root.v
	ctx := cmd.Context()

	localRepo := buildgraph.DefaultLocalRepository()
	if p := v.GetString(flagLocalRepository); p != "" {
		localRepo = buildgraph.Repository{Root: p}
	}

	build, err := loadBuild(v.GetString(flagManifest), v.GetString(flagBazelModule), v.GetString(flagGroup), localRepo)
	if err != nil {
		return err
	}

	format, err := bom.ParseFormat(v.GetString(flagFormat))
	if err != nil {
		return err
	}

	opts := []depbom.Option{
		depbom.WithLogger(root.logger),
		depbom.WithOutputDir(v.GetString(flagOutputDir)),
		depbom.WithFormat(format),
		depbom.WithWorkers(v.GetInt(flagWorkers)),
	}
	if root.flagChanged(cmd.Flags(), flagExclude) {
		opts = append(opts, depbom.WithExcludedConfigurations(nonEmpty(v.GetStringSlice(flagExclude))...))
	}
	if also := nonEmpty(v.GetStringSlice(flagAlsoExclude)); len(also) > 0 {
		opts = append(opts, depbom.WithAdditionalExclusions(also...))
	}

	src, err := descriptorSource(
		localRepo,
		nonEmpty(v.GetStringSlice(flagRepository)),
		v.GetBool(flagOffline),
		v.GetString(flagDescriptorCache),
		v.GetDuration(flagTimeout),
	)
	if err != nil {
		return err
	}
	opts = append(opts, depbom.WithDescriptorSource(src))

	if keyPath := v.GetString(flagSignKey); keyPath != "" {
		signer, err := loadSigner(keyPath, v.GetString(keySignPassphrase))
		if err != nil {
			return err
		}
		opts = append(opts, depbom.WithSigner(signer))
	}

	res, err := depbom.Generate(ctx, build, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if v.GetBool(flagSummary) {
		renderSummary(out, res.Components)
	}
	fmt.Fprintf(out, "wrote %s (%d components, %s)\n", res.Path, len(res.Components), res.Digest)
	if res.SignaturePath != "" {
		fmt.Fprintf(out, "signed %s\n", res.SignaturePath)
	}
	return nil
}

func loadBuild(manifest, bazelModule, group string, repo buildgraph.Repository) (buildgraph.Build, error) {
	switch {
	case manifest != "":
		return buildgraph.LoadManifest(manifest)
	case bazelModule != "":
		return bazel.Load(bazelModule, bazel.WithGroup(group), bazel.WithRepository(repo))
	default:
		return nil, errors.New("one of --manifest or --bazel-module is required")
	}
}

// descriptorSource builds the lookup chain: the local repository first, then
// the remote repositories unless offline.
func descriptorSource(local buildgraph.Repository, remotes []string, offline bool, cacheDir string, timeout time.Duration) (descriptor.Source, error) {
	sources := []descriptor.Source{descriptor.NewLocal(local.Root)}
	if offline || len(remotes) == 0 {
		return descriptor.ChainOf(sources...), nil
	}

	var clientOpts []descriptor.ClientOption
	if cacheDir != "" {
		clientOpts = append(clientOpts, descriptor.WithCache(descriptor.NewDirCache(cacheDir)))
	}
	remote, err := descriptor.NewChain(remotes, timeout, clientOpts...)
	if err != nil {
		return nil, err
	}
	return descriptor.ChainOf(append(sources, remote)...), nil
}

func loadSigner(keyPath, passphrase string) (*sign.Signer, error) {
	keyring, err := sign.ReadKeyFile(keyPath)
	if err != nil {
		return nil, err
	}
	return sign.NewSigner(keyring, []byte(passphrase))
}

func renderSummary(w io.Writer, components []*depbom.Component) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"GROUP", "NAME", "VERSION", "TYPE", "PUBLISHER", "LICENSES", "HASHES"})
	for _, c := range components {
		typ := c.ArtifactType
		if c.Classifier != "" {
			typ += ":" + c.Classifier
		}
		t.AppendRow(table.Row{
			c.Coordinate.Group,
			c.Coordinate.Name,
			c.Coordinate.Version,
			typ,
			c.Publisher,
			strings.Join(c.Licenses, ", "),
			len(c.Hashes),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	t.Render()
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

