package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ambry-data/ambryctl/internal/config"
	"github.com/ambry-data/ambryctl/internal/host"
	"github.com/ambry-data/ambryctl/internal/packages"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check provisioning prerequisites on this host",
	Long:  `Report the detected OS release, the spatial library package that would be selected, and the availability of every external tool the install sequence invokes.`,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	status := host.Status()

	fmt.Printf("%s🩺 Host Check%s\n", HeaderStyle, Reset)
	fmt.Printf("%s=============%s\n", DimStyle, Reset)
	fmt.Printf("%sOS:%s %s\n", LabelStyle, Reset, status.OS)

	if status.Release != "" {
		fmt.Printf("%sRelease:%s %s\n", LabelStyle, Reset, status.Release)
		if status.PrettyName != "" {
			fmt.Printf("%sDistribution:%s %s\n", LabelStyle, Reset, status.PrettyName)
		}
		fmt.Printf("%sSpatial library:%s %s\n", LabelStyle, Reset, packages.SpatialitePackage(status.Release))
	} else {
		fmt.Printf("%s⚠️  Could not detect an OS release%s\n", WarningStyle, Reset)
	}

	fmt.Println()
	fmt.Printf("%sTools%s\n", HeaderStyle, Reset)
	missing := 0
	for _, tool := range host.RequiredTools {
		if status.Tools[tool] {
			fmt.Printf("  %s✓%s %s\n", SuccessStyle, Reset, tool)
		} else {
			fmt.Printf("  %s✗%s %s (not found on PATH)\n", ErrorStyle, Reset, tool)
			missing++
		}
	}

	fmt.Println()
	if config.Exists(cfgFile) {
		fmt.Printf("%sConfig:%s %s\n", LabelStyle, Reset, cfgFile)
	} else {
		fmt.Printf("%sConfig:%s not found (run 'ambryctl init')\n", LabelStyle, Reset)
	}

	if !host.IsRoot() {
		fmt.Printf("%sNote:%s 'ambryctl install' needs root; re-run it with sudo\n", MetaStyle, Reset)
	}

	if missing > 0 {
		fmt.Printf("\n%s%d tool(s) missing%s - 'ambry' appears after installation; the rest must be present first\n",
			WarningStyle, missing, Reset)
	}

	return nil
}
