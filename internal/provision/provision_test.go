package provision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambry-data/ambryctl/internal/models"
)

// fakeRunner records every command and fails the configured ones
type fakeRunner struct {
	calls   [][]string
	failOn  map[string]error // command name -> error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{failOn: make(map[string]error)}
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	argv := append([]string{name}, args...)
	r.calls = append(r.calls, argv)

	key := strings.Join(argv[:min(2, len(argv))], " ")
	if err, ok := r.failOn[key]; ok {
		return []byte("boom"), err
	}
	if err, ok := r.failOn[name]; ok {
		return []byte("boom"), err
	}
	return []byte("ok"), nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func stepNames(run *models.Run) []string {
	names := make([]string, len(run.Steps))
	for i, s := range run.Steps {
		names[i] = s.Name
	}
	return names
}

func TestRunAttemptsAllStepsInOrder(t *testing.T) {
	runner := newFakeRunner()
	p := New(runner)

	run, err := p.Run(context.Background(), Options{Release: "16.04"})
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, models.RunStatusSucceeded, run.Status)
	assert.Equal(t, 0, run.ExitCode)
	require.NotNil(t, run.FinishedAt)

	assert.Equal(t, []string{
		StepUpdateIndex,
		StepGenerateLocale,
		StepInstallOS,
		StepUpgradePip,
		StepInstallDriver,
		StepInstallAmbry,
		StepConfigInstall,
	}, stepNames(run))

	// Every step actually executed
	assert.Len(t, runner.calls, 7)
	for _, step := range run.Steps {
		assert.Equal(t, models.StepStatusSucceeded, step.Status)
	}
}

func TestFatalStepStopsTheRun(t *testing.T) {
	runner := newFakeRunner()
	runner.failOn["apt-get install"] = errors.New("dpkg lock held")
	p := New(runner)

	run, err := p.Run(context.Background(), Options{Release: "14.04"})
	require.Error(t, err)
	require.NotNil(t, run)

	var fatal *FatalStepError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, StepInstallOS, fatal.Step)
	assert.Equal(t, fatal.ExitCode, run.ExitCode)

	assert.Equal(t, models.RunStatusFailed, run.Status)

	// No step after the OS package install may be attempted
	assert.Equal(t, []string{
		StepUpdateIndex,
		StepGenerateLocale,
		StepInstallOS,
	}, stepNames(run))
	assert.Len(t, runner.calls, 3)

	last := run.Steps[len(run.Steps)-1]
	assert.Equal(t, models.StepStatusFailed, last.Status)
	assert.True(t, last.Fatal)
	assert.Contains(t, last.Output, "boom")
}

func TestNonFatalFailuresContinue(t *testing.T) {
	runner := newFakeRunner()
	runner.failOn["locale-gen"] = errors.New("locale unavailable")
	runner.failOn["ambry"] = errors.New("ambry not on PATH")
	p := New(runner)

	run, err := p.Run(context.Background(), Options{Release: "16.04"})
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusSucceeded, run.Status)
	assert.Len(t, run.Steps, 7)

	assert.Equal(t, models.StepStatusFailed, run.Steps[1].Status)
	assert.Equal(t, models.StepStatusFailed, run.Steps[6].Status)
	assert.Equal(t, models.StepStatusSucceeded, run.Steps[2].Status)
}

func TestDryRunExecutesNothing(t *testing.T) {
	runner := newFakeRunner()
	p := New(runner)

	run, err := p.Run(context.Background(), Options{Release: "16.04", DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, runner.calls)
	assert.Len(t, run.Steps, 7)
	for _, step := range run.Steps {
		assert.Equal(t, models.StepStatusSkipped, step.Status)
		assert.NotEmpty(t, step.Command)
	}
}

func TestCancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newFakeRunner()
	p := New(runner)

	run, err := p.Run(ctx, Options{Release: "16.04"})
	require.Error(t, err)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.Empty(t, runner.calls)
}

func TestStepsDevRouting(t *testing.T) {
	dev := Steps("16.04", true)
	std := Steps("16.04", false)

	require.Len(t, dev, 7)
	require.Len(t, std, 7)

	devInstall := dev[5]
	require.Equal(t, StepInstallAmbry, devInstall.Name)
	assert.Contains(t, devInstall.Argv, "-e")
	assert.Contains(t, devInstall.Command(), "@develop")

	stdInstall := std[5]
	require.Equal(t, StepInstallAmbry, stdInstall.Name)
	assert.NotContains(t, stdInstall.Argv, "-e")
	assert.NotContains(t, stdInstall.Command(), "@develop")
}

func TestStepsSelectsSpatialVariant(t *testing.T) {
	old := Steps("14.04", false)[2]
	new_ := Steps("16.04", false)[2]

	require.Equal(t, StepInstallOS, old.Name)
	assert.True(t, old.Fatal)

	assert.Contains(t, old.Command(), "libspatialite5")
	assert.NotContains(t, old.Command(), "libspatialite7")
	assert.Contains(t, new_.Command(), "libspatialite7")
}

func TestOnlyOSInstallIsFatal(t *testing.T) {
	for _, step := range Steps("16.04", false) {
		if step.Name == StepInstallOS {
			assert.True(t, step.Fatal)
		} else {
			assert.False(t, step.Fatal, "step %s must not be fatal", step.Name)
		}
	}
}
