package hloc

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Probe checks whether a piece of the external toolchain is usable.
type Probe struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// ProbeToolchain checks the python interpreter, the hloc package, and the
// colmap binary. Used by the doctor command; never called on the normal
// pipeline path.
func ProbeToolchain(python string) []Probe {
	if python == "" {
		python = "python3"
	}
	var probes []Probe

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	path, err := exec.LookPath(python)
	if err != nil {
		probes = append(probes, Probe{
			Name:    "Python",
			Message: fmt.Sprintf("%s not found in PATH — set interpreter via 'hlockit config' or HLOCKIT_PYTHON", python),
		})
		return probes
	}
	out, err := exec.CommandContext(ctx, python, "--version").CombinedOutput()
	version := strings.TrimSpace(string(out))
	if err != nil {
		probes = append(probes, Probe{Name: "Python", Message: fmt.Sprintf("%s failed to run: %s", path, err)})
		return probes
	}
	probes = append(probes, Probe{Name: "Python", OK: true, Message: fmt.Sprintf("%s (%s)", version, path)})

	if err := exec.CommandContext(ctx, python, "-c", "import hloc").Run(); err != nil {
		probes = append(probes, Probe{
			Name:    "hloc",
			Message: "import failed — install with 'pip install hloc' or point HLOCKIT_PYTHON at the right environment",
		})
	} else {
		probes = append(probes, Probe{Name: "hloc", OK: true, Message: "importable"})
	}

	if err := exec.CommandContext(ctx, python, "-c", "import pycolmap").Run(); err != nil {
		probes = append(probes, Probe{
			Name:    "pycolmap",
			Message: "import failed — required for reconstruction and bundle adjustment",
		})
	} else {
		probes = append(probes, Probe{Name: "pycolmap", OK: true, Message: "importable"})
	}

	if colmap, err := exec.LookPath("colmap"); err == nil {
		probes = append(probes, Probe{Name: "COLMAP", OK: true, Message: colmap})
	} else {
		probes = append(probes, Probe{
			Name:    "COLMAP",
			Message: "not found in PATH — only needed for visualizing models",
		})
	}

	return probes
}
