package host

import (
	"os/exec"
	"os/user"
	"runtime"
	"time"

	"github.com/ambry-data/ambryctl/internal/models"
	"github.com/ambry-data/ambryctl/internal/osrelease"
)

// Tools probed by Status; provisioning invokes each of these
var RequiredTools = []string{
	"apt-get",
	"locale-gen",
	"pip",
	"git",
	"ambry",
}

// Status probes the host for provisioning prerequisites
func Status() *models.HostStatus {
	status := &models.HostStatus{
		OS:        runtime.GOOS,
		Tools:     make(map[string]bool, len(RequiredTools)),
		CheckedAt: time.Now(),
	}

	if info, err := osrelease.Detect(); err == nil {
		status.Release = info.Release
		status.PrettyName = info.PrettyName
	}

	for _, tool := range RequiredTools {
		_, err := exec.LookPath(tool)
		status.Tools[tool] = err == nil
	}

	return status
}

// IsRoot checks if the current process is running as root
func IsRoot() bool {
	currentUser, err := user.Current()
	if err != nil {
		return false
	}
	return currentUser.Uid == "0"
}
