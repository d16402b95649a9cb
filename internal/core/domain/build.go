package domain

import "time"

// Default packaging contract for a Python web application. These are the
// values baked into the image when the caller does not override them.
const (
	DefaultBaseImage  = "python:3.11-slim"
	DefaultWorkDir    = "/app"
	DefaultPort       = 8000
	DefaultEntrypoint = "main.py"
	DefaultManifest   = "requirements.txt"
)

// BuildSpec describes how a build context is turned into a runnable image:
// which base runtime to extend, where the source tree lands inside the image,
// which port the process is expected to listen on, and which file the
// interpreter launches by default.
type BuildSpec struct {
	// BaseImage is a pinned runtime reference (interpreter + version +
	// variant), e.g. "python:3.11-slim".
	BaseImage string `json:"base_image"`
	// WorkDir is the single in-image path used both as the copy destination
	// for the build context and as the process launch directory.
	WorkDir string `json:"workdir"`
	// Port is advisory metadata only. It documents where the application is
	// expected to listen; it is never enforced and never fails a build.
	Port int `json:"port"`
	// Entrypoint is the file executed as "python <Entrypoint>" with no
	// arguments when a container starts from the image.
	Entrypoint string `json:"entrypoint"`
	// Manifest is the dependency file installed with pip at build time.
	Manifest string `json:"manifest"`
}

// DefaultBuildSpec returns the spec used when nothing is overridden.
func DefaultBuildSpec() BuildSpec {
	return BuildSpec{
		BaseImage:  DefaultBaseImage,
		WorkDir:    DefaultWorkDir,
		Port:       DefaultPort,
		Entrypoint: DefaultEntrypoint,
		Manifest:   DefaultManifest,
	}
}

// Image is the result of a successful build.
type Image struct {
	Name      string    `json:"name"`
	BaseImage string    `json:"base_image"`
	Port      int       `json:"port"`
	BuiltAt   time.Time `json:"built_at"`
}

// BuildRecord is one entry in the build history. Failed attempts are recorded
// too, with the step that aborted the pipeline.
type BuildRecord struct {
	Image      string        `json:"image"`
	BaseImage  string        `json:"base_image"`
	Source     string        `json:"source"` // directory path or git URL
	Success    bool          `json:"success"`
	FailedStep string        `json:"failed_step,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	StartedAt  time.Time     `json:"started_at"`
}
