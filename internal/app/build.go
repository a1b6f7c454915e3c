package app

import (
	"fmt"
	"os"

	"github.com/tacogips/remotebuild/internal/config"
	"github.com/tacogips/remotebuild/internal/gitindex"
	"github.com/tacogips/remotebuild/internal/remote"
	"github.com/tacogips/remotebuild/internal/sshconn"
	"github.com/tacogips/remotebuild/internal/status"
	"github.com/tacogips/remotebuild/internal/transfer"
)

// Connector acquires the reusable session handle for a host.
type Connector interface {
	Ensure(host string) (*sshconn.Conn, error)
}

// Selector computes the transfer manifest, nil meaning full-tree sync.
type Selector interface {
	Select(root string, incremental bool) *gitindex.Manifest
}

// Syncer drives the two transfers of a build.
type Syncer interface {
	Push(projectRoot string, target sshconn.Target, manifest *gitindex.Manifest, excl transfer.ExclusionSet, conn *sshconn.Conn) error
	Pull(target sshconn.Target, pattern string, conn *sshconn.Conn, destDir string) error
}

// Builder runs commands on the remote host.
type Builder interface {
	EnsureDir(target sshconn.Target, conn *sshconn.Conn) error
	RunBuild(rep status.Reporter, target sshconn.Target, conn *sshconn.Conn, buildCommand string) error
}

// BuildOptions carries one run's inputs into the pipeline.
type BuildOptions struct {
	// ProjectDir is the resolved local project root.
	ProjectDir string
	// Config is the validated project configuration.
	Config *config.Config
	// ForceFullSync disables incremental file selection for this run.
	ForceFullSync bool
	// Reporter renders progress at the active tier.
	Reporter status.Reporter
}

// Pipeline sequences one remote build: connect, push, build, pull.
// Every remote operation shares the one session handle acquired up
// front. The first fatal error aborts the remaining stages; artifact
// pulls are the exception and degrade to per-artifact warnings.
type Pipeline struct {
	Conns  Connector
	Files  Selector
	Sync   Syncer
	Remote Builder
}

// NewPipeline wires a Pipeline with the real collaborators.
func NewPipeline(verbose bool) (*Pipeline, error) {
	conns, err := sshconn.NewManager()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Conns:  conns,
		Files:  gitSelector{},
		Sync:   transfer.NewDriver(verbose),
		Remote: remoteBuilder{},
	}, nil
}

// Run executes the pipeline and returns the first fatal error, wrapped
// with its stage. Pull warnings do not affect the result.
func (p *Pipeline) Run(opts BuildOptions) error {
	cfg := opts.Config
	rep := opts.Reporter
	target := sshconn.Target{Host: cfg.Host, RemotePath: cfg.RemotePath}

	rep.Phase(fmt.Sprintf("connecting to %s", target.Host))
	conn, err := p.Conns.Ensure(target.Host)
	if err != nil {
		return NewPipelineError(StageConnect, err)
	}

	manifest := p.Files.Select(opts.ProjectDir, cfg.IsGitAware() && !opts.ForceFullSync)
	excl := transfer.NewExclusionSet(cfg.ExcludePatterns)

	rep.Phase(fmt.Sprintf("syncing %s to %s", opts.ProjectDir, target.Host))
	if err := p.Remote.EnsureDir(target, conn); err != nil {
		return NewPipelineError(StagePush, err)
	}
	if err := p.Sync.Push(opts.ProjectDir, target, manifest, excl, conn); err != nil {
		return NewPipelineError(StagePush, err)
	}
	rep.Done("sources synced")

	rep.Phase(fmt.Sprintf("building on %s", target.Host))
	if err := p.Remote.RunBuild(rep, target, conn, cfg.BuildCommand); err != nil {
		return NewPipelineError(StageBuild, err)
	}
	rep.Done("remote build finished")

	warnings := 0
	if len(cfg.Artifacts) > 0 {
		destDir, err := os.Getwd()
		if err != nil {
			destDir = "."
		}
		for _, pattern := range cfg.Artifacts {
			rep.Phase(fmt.Sprintf("fetching %s", pattern))
			if err := p.Sync.Pull(target, pattern, conn, destDir); err != nil {
				rep.Warn(fmt.Sprintf("could not fetch artifact %s: %v", pattern, err))
				warnings++
			}
		}
	}

	if warnings > 0 {
		rep.Finish(fmt.Sprintf("build complete (%d artifact warning(s))", warnings))
	} else {
		rep.Finish("build complete")
	}
	return nil
}

// gitSelector adapts the gitindex package to the Selector interface.
type gitSelector struct{}

func (gitSelector) Select(root string, incremental bool) *gitindex.Manifest {
	return gitindex.Select(gitindex.GitLister{}, root, incremental)
}

// remoteBuilder adapts the remote package to the Builder interface.
type remoteBuilder struct{}

func (remoteBuilder) EnsureDir(target sshconn.Target, conn *sshconn.Conn) error {
	return remote.EnsureDir(remote.ExecRunner{}, target, conn)
}

func (remoteBuilder) RunBuild(rep status.Reporter, target sshconn.Target, conn *sshconn.Conn, buildCommand string) error {
	return remote.RunBuild(remote.ExecRunner{}, rep, target, conn, buildCommand)
}
