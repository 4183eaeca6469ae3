package provision

import (
	"strings"

	"github.com/ambry-data/ambryctl/internal/packages"
)

// Source locations for the ambry application and its patched sqlite
// binding. The binding branch carries the extension-loading patch
// needed for the spatialite extension.
const (
	ambryRepo      = "https://github.com/clarinova/ambry.git"
	ambryDevBranch = "develop"

	pysqliteSource = "git+https://github.com/clarinova/pysqlite.git@extension#egg=pysqlite"
)

// Step names, stable identifiers used in run records and tests
const (
	StepUpdateIndex    = "update-package-index"
	StepGenerateLocale = "generate-locale"
	StepInstallOS      = "install-os-packages"
	StepUpgradePip     = "upgrade-pip"
	StepInstallDriver  = "install-sqlite-binding"
	StepInstallAmbry   = "install-ambry"
	StepConfigInstall  = "ambry-config-install"
)

// Step is one provisioning action: a single external command with a
// failure policy
type Step struct {
	Name  string
	Argv  []string
	Fatal bool // abort the whole run on failure, propagating the exit status
}

// Command renders the step's argv as a shell-like string
func (s Step) Command() string {
	return strings.Join(s.Argv, " ")
}

// Steps assembles the ordered install sequence for the given OS
// release. Only the OS package installation is fatal; every other
// step logs its failure and execution continues.
func Steps(release string, dev bool) []Step {
	steps := []Step{
		{
			Name: StepUpdateIndex,
			Argv: []string{"apt-get", "update"},
		},
		{
			Name: StepGenerateLocale,
			Argv: []string{"locale-gen", "en_US.UTF-8"},
		},
		{
			Name:  StepInstallOS,
			Argv:  append([]string{"apt-get", "install", "-y"}, packages.List(release)...),
			Fatal: true,
		},
		{
			Name: StepUpgradePip,
			Argv: []string{"pip", "install", "--upgrade", "pip"},
		},
		{
			Name: StepInstallDriver,
			Argv: []string{"pip", "install", pysqliteSource},
		},
	}

	if dev {
		steps = append(steps, Step{
			Name: StepInstallAmbry,
			Argv: []string{"pip", "install", "-e",
				"git+" + ambryRepo + "@" + ambryDevBranch + "#egg=ambry"},
		})
	} else {
		steps = append(steps, Step{
			Name: StepInstallAmbry,
			Argv: []string{"pip", "install", "git+" + ambryRepo},
		})
	}

	steps = append(steps, Step{
		Name: StepConfigInstall,
		Argv: []string{"ambry", "config", "install"},
	})

	return steps
}
