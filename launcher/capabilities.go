//go:build linux

package launcher

import (
	"fmt"

	"github.com/moby/sys/capability"
)

// dropAllCapabilities clears the bounding, permitted, effective,
// inheritable and ambient capability sets of the current process. It is
// called after the uid/gid drop (step 3 of the Guest Launcher) so the
// guest runs with neither a privileged identity nor any capability at
// all, rather than relying on the unprivileged uid alone.
func dropAllCapabilities() error {
	caps, err := capability.NewPid2(0)
	if err != nil {
		return fmt.Errorf("get process capabilities: %w", err)
	}
	if err := caps.Load(); err != nil {
		return fmt.Errorf("load process capabilities: %w", err)
	}

	caps.Clear(capability.BOUNDS)
	caps.Clear(capability.CAPS)
	caps.Clear(capability.AMBIENT)

	if err := caps.Apply(capability.CAPS | capability.BOUNDS | capability.AMBIENT); err != nil {
		return fmt.Errorf("apply cleared capabilities: %w", err)
	}
	return nil
}
