// Package dockerfile synthesizes the build instructions for packaging a
// Python application. The instruction order is a hard invariant: base image,
// working directory, source copy, dependency install, port metadata, default
// command. Rendering is deterministic so that rebuilding an unchanged
// context yields an identical file.
package dockerfile

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
)

// FileName is the name the synthesized file is written under inside the
// build context.
const FileName = "Dockerfile"

const pythonTemplate = `FROM {{.BaseImage}}

WORKDIR {{.WorkDir}}

COPY . .

RUN pip install --no-cache-dir -r {{.Manifest}}

EXPOSE {{.Port}}

CMD ["python", "{{.Entrypoint}}"]
`

var tmpl = template.Must(template.New("dockerfile").Parse(pythonTemplate))

// Render emits the Dockerfile for the given spec. Identical specs always
// produce byte-identical output.
func Render(spec domain.BuildSpec) ([]byte, error) {
	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, spec); err != nil {
		return nil, fmt.Errorf("render dockerfile: %w", err)
	}
	return buf.Bytes(), nil
}

// ValidateSpec rejects specs that cannot form a coherent image. The port is
// only range-checked: it is advisory metadata and never otherwise affects
// whether a build succeeds.
func ValidateSpec(spec domain.BuildSpec) error {
	if spec.BaseImage == "" {
		return fmt.Errorf("build spec: base image is required")
	}
	if spec.WorkDir == "" || !strings.HasPrefix(spec.WorkDir, "/") {
		return fmt.Errorf("build spec: workdir must be an absolute path, got %q", spec.WorkDir)
	}
	if spec.Entrypoint == "" {
		return fmt.Errorf("build spec: entrypoint file is required")
	}
	if strings.Contains(spec.Entrypoint, "/") {
		return fmt.Errorf("build spec: entrypoint %q must live at the context root", spec.Entrypoint)
	}
	if spec.Manifest == "" {
		return fmt.Errorf("build spec: dependency manifest is required")
	}
	if spec.Port < 1 || spec.Port > 65535 {
		return fmt.Errorf("build spec: port %d out of range", spec.Port)
	}
	return nil
}
