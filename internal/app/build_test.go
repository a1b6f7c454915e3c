package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tacogips/remotebuild/internal/config"
	"github.com/tacogips/remotebuild/internal/gitindex"
	"github.com/tacogips/remotebuild/internal/remote"
	"github.com/tacogips/remotebuild/internal/sshconn"
	"github.com/tacogips/remotebuild/internal/status"
	"github.com/tacogips/remotebuild/internal/transfer"
)

// fakes for the four pipeline collaborators; each records the calls and
// the connection handle it was given so the single-session invariant can
// be asserted.

type fakeConnector struct {
	conn *sshconn.Conn
	err  error
}

func (f *fakeConnector) Ensure(host string) (*sshconn.Conn, error) {
	return f.conn, f.err
}

type fakeSelector struct {
	manifest    *gitindex.Manifest
	incremental []bool
}

func (f *fakeSelector) Select(root string, incremental bool) *gitindex.Manifest {
	f.incremental = append(f.incremental, incremental)
	return f.manifest
}

type fakeSyncer struct {
	pushErr   error
	pullErrs  map[string]error
	pushConns []*sshconn.Conn
	pushed    []*gitindex.Manifest
	pulls     []string
	pullConns []*sshconn.Conn
	pullDests []string
}

func (f *fakeSyncer) Push(projectRoot string, target sshconn.Target, manifest *gitindex.Manifest, excl transfer.ExclusionSet, conn *sshconn.Conn) error {
	f.pushConns = append(f.pushConns, conn)
	f.pushed = append(f.pushed, manifest)
	return f.pushErr
}

func (f *fakeSyncer) Pull(target sshconn.Target, pattern string, conn *sshconn.Conn, destDir string) error {
	f.pulls = append(f.pulls, pattern)
	f.pullConns = append(f.pullConns, conn)
	f.pullDests = append(f.pullDests, destDir)
	return f.pullErrs[pattern]
}

type fakeBuilder struct {
	dirErr     error
	buildErr   error
	dirConns   []*sshconn.Conn
	buildConns []*sshconn.Conn
	commands   []string
}

func (f *fakeBuilder) EnsureDir(target sshconn.Target, conn *sshconn.Conn) error {
	f.dirConns = append(f.dirConns, conn)
	return f.dirErr
}

func (f *fakeBuilder) RunBuild(rep status.Reporter, target sshconn.Target, conn *sshconn.Conn, buildCommand string) error {
	f.buildConns = append(f.buildConns, conn)
	f.commands = append(f.commands, buildCommand)
	return f.buildErr
}

// recordingReporter captures warnings and completions.
type recordingReporter struct {
	warns    []string
	dones    []string
	finishes []string
}

func (r *recordingReporter) Phase(msg string)  {}
func (r *recordingReporter) Done(msg string)   { r.dones = append(r.dones, msg) }
func (r *recordingReporter) Finish(msg string) { r.finishes = append(r.finishes, msg) }
func (r *recordingReporter) Warn(msg string)   { r.warns = append(r.warns, msg) }
func (r *recordingReporter) Fail(msg string)   {}
func (r *recordingReporter) Clear()            {}
func (r *recordingReporter) Tier() status.Tier { return status.TierNormal }

func testConfig() *config.Config {
	gitAware := true
	return &config.Config{
		Host:         "ci@build1",
		RemotePath:   "~/cache",
		BuildCommand: "make -j4",
		Artifacts:    []string{"out/app.bin"},
		GitAware:     &gitAware,
		Output:       "normal",
	}
}

type testPipeline struct {
	p        *Pipeline
	conns    *fakeConnector
	files    *fakeSelector
	sync     *fakeSyncer
	remote   *fakeBuilder
	reporter *recordingReporter
}

func newTestPipeline() *testPipeline {
	tp := &testPipeline{
		conns:    &fakeConnector{conn: &sshconn.Conn{ControlPath: "/tmp/ctl-ci_build1"}},
		files:    &fakeSelector{},
		sync:     &fakeSyncer{},
		remote:   &fakeBuilder{},
		reporter: &recordingReporter{},
	}
	tp.p = &Pipeline{Conns: tp.conns, Files: tp.files, Sync: tp.sync, Remote: tp.remote}
	return tp
}

func (tp *testPipeline) run(cfg *config.Config, forceFullSync bool) error {
	return tp.p.Run(BuildOptions{
		ProjectDir:    "/work/proj",
		Config:        cfg,
		ForceFullSync: forceFullSync,
		Reporter:      tp.reporter,
	})
}

func TestRunHappyPath(t *testing.T) {
	tp := newTestPipeline()
	tp.files.manifest = &gitindex.Manifest{Paths: []string{"a", "b", "c", "d"}}

	if err := tp.run(testConfig(), false); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(tp.sync.pushConns) != 1 {
		t.Fatal("Expected exactly one push")
	}
	if tp.sync.pushed[0] != tp.files.manifest {
		t.Error("Push must receive the selected manifest")
	}
	if len(tp.remote.commands) != 1 || tp.remote.commands[0] != "make -j4" {
		t.Errorf("Unexpected build commands: %v", tp.remote.commands)
	}
	if len(tp.sync.pulls) != 1 || tp.sync.pulls[0] != "out/app.bin" {
		t.Errorf("Unexpected pulls: %v", tp.sync.pulls)
	}
	if len(tp.reporter.warns) != 0 {
		t.Errorf("Unexpected warnings: %v", tp.reporter.warns)
	}
	if len(tp.reporter.finishes) != 1 || !strings.Contains(tp.reporter.finishes[0], "build complete") {
		t.Errorf("Run must end with exactly one completion marker, got %v", tp.reporter.finishes)
	}
}

func TestRunMinimalTierCommitsSingleLine(t *testing.T) {
	tp := newTestPipeline()
	var buf bytes.Buffer

	err := tp.p.Run(BuildOptions{
		ProjectDir:    "/work/proj",
		Config:        testConfig(),
		ForceFullSync: false,
		Reporter:      status.NewReporter(status.TierMinimal, &buf, status.Options{Interactive: true, NoColor: true}),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := buf.String()
	if n := strings.Count(out, "\n"); n != 1 {
		t.Errorf("Minimal run must commit exactly one line, got %d in %q", n, out)
	}
	if !strings.Contains(out, "\r✓ build complete") || !strings.HasSuffix(out, "\n") {
		t.Errorf("The committed line must be the completion marker: %q", out)
	}
}

func TestRunSharesOneConnectionAcrossAllOperations(t *testing.T) {
	tp := newTestPipeline()
	cfg := testConfig()
	cfg.Artifacts = []string{"out/app.bin", "out/app.map"}

	if err := tp.run(cfg, false); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	handles := append([]*sshconn.Conn{}, tp.remote.dirConns...)
	handles = append(handles, tp.sync.pushConns...)
	handles = append(handles, tp.remote.buildConns...)
	handles = append(handles, tp.sync.pullConns...)

	if len(handles) != 5 {
		t.Fatalf("Expected 5 remote operations, got %d", len(handles))
	}
	for i, h := range handles {
		if h != tp.conns.conn {
			t.Errorf("Operation %d did not use the shared session handle", i)
		}
	}
}

func TestRunConnectFailureIsFatal(t *testing.T) {
	tp := newTestPipeline()
	tp.conns.err = errors.New("no cache dir")

	err := tp.run(testConfig(), false)
	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected PipelineError, got %v", err)
	}
	if perr.Stage != StageConnect {
		t.Errorf("Expected stage connect, got %s", perr.Stage)
	}
	if len(tp.sync.pushConns) != 0 {
		t.Error("No push may run after a connect failure")
	}
}

func TestRunPushFailureAbortsPipeline(t *testing.T) {
	tp := newTestPipeline()
	tp.sync.pushErr = errors.New("connection reset")

	err := tp.run(testConfig(), false)
	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected PipelineError, got %v", err)
	}
	if perr.Stage != StagePush {
		t.Errorf("Expected stage sync-push, got %s", perr.Stage)
	}
	if len(tp.remote.commands) != 0 {
		t.Error("No build may run after a push failure")
	}
	if len(tp.sync.pulls) != 0 {
		t.Error("No pull may run after a push failure")
	}
}

func TestRunDirSetupFailureAbortsPipeline(t *testing.T) {
	tp := newTestPipeline()
	tp.remote.dirErr = errors.New("mkdir: permission denied")

	err := tp.run(testConfig(), false)
	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected PipelineError, got %v", err)
	}
	if perr.Stage != StagePush {
		t.Errorf("Expected stage sync-push, got %s", perr.Stage)
	}
	if len(tp.sync.pushConns) != 0 {
		t.Error("Push must not run when directory setup failed")
	}
}

func TestRunBuildFailureSkipsArtifacts(t *testing.T) {
	tp := newTestPipeline()
	tp.remote.buildErr = &remote.ExitError{Code: 2}

	err := tp.run(testConfig(), false)
	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected PipelineError, got %v", err)
	}
	if perr.Stage != StageBuild {
		t.Errorf("Expected stage remote-build, got %s", perr.Stage)
	}

	var exitErr *remote.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Errorf("Pipeline error must carry the remote exit status, got %v", err)
	}
	if len(tp.sync.pulls) != 0 {
		t.Error("No pull may run after a failed build")
	}
}

func TestRunPullFailuresAreWarnings(t *testing.T) {
	tp := newTestPipeline()
	cfg := testConfig()
	cfg.Artifacts = []string{"out/app.bin", "out/missing.map"}
	tp.sync.pullErrs = map[string]error{"out/missing.map": errors.New("no such file")}

	if err := tp.run(cfg, false); err != nil {
		t.Fatalf("Pull failures must not fail the run: %v", err)
	}

	if len(tp.sync.pulls) != 2 {
		t.Errorf("A failing pull must not stop remaining pulls, got %v", tp.sync.pulls)
	}
	if len(tp.reporter.warns) != 1 {
		t.Fatalf("Expected exactly one warning, got %v", tp.reporter.warns)
	}
	if !strings.Contains(tp.reporter.warns[0], "out/missing.map") {
		t.Errorf("Warning must name the failing pattern only: %v", tp.reporter.warns[0])
	}
	if len(tp.reporter.finishes) != 1 || !strings.Contains(tp.reporter.finishes[0], "build complete") {
		t.Errorf("Run must still end with the success marker, got %v", tp.reporter.finishes)
	}
}

func TestRunIncrementalSelection(t *testing.T) {
	tests := []struct {
		name          string
		gitAware      bool
		forceFullSync bool
		want          bool
	}{
		{"git aware", true, false, true},
		{"git aware disabled", false, false, false},
		{"forced full sync", true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := newTestPipeline()
			cfg := testConfig()
			cfg.GitAware = &tt.gitAware

			if err := tp.run(cfg, tt.forceFullSync); err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if len(tp.files.incremental) != 1 || tp.files.incremental[0] != tt.want {
				t.Errorf("Expected incremental=%v, got %v", tt.want, tp.files.incremental)
			}
		})
	}
}

func TestRunWithoutArtifactsSkipsPullStage(t *testing.T) {
	tp := newTestPipeline()
	cfg := testConfig()
	cfg.Artifacts = nil

	if err := tp.run(cfg, false); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(tp.sync.pulls) != 0 {
		t.Errorf("No pulls expected, got %v", tp.sync.pulls)
	}
}
