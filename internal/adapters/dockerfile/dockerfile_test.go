package dockerfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
)

func TestRender_InstructionOrder(t *testing.T) {
	out, err := Render(domain.DefaultBuildSpec())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)
	order := []string{"FROM ", "WORKDIR ", "COPY . .", "RUN pip install --no-cache-dir", "EXPOSE ", "CMD "}
	last := -1
	for _, instr := range order {
		i := strings.Index(s, instr)
		if i < 0 {
			t.Fatalf("missing instruction %q in:\n%s", instr, s)
		}
		if i < last {
			t.Fatalf("instruction %q out of order in:\n%s", instr, s)
		}
		last = i
	}
}

func TestRender_DefaultSpec(t *testing.T) {
	out, err := Render(domain.DefaultBuildSpec())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		"FROM python:3.11-slim",
		"WORKDIR /app",
		"RUN pip install --no-cache-dir -r requirements.txt",
		"EXPOSE 8000",
		`CMD ["python", "main.py"]`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in:\n%s", want, s)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	spec := domain.DefaultBuildSpec()
	a, err := Render(spec)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := Render(spec)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("identical specs rendered different files")
	}
}

// Changing only the advisory port must change only the EXPOSE line.
func TestRender_PortIsAdvisoryOnly(t *testing.T) {
	a := domain.DefaultBuildSpec()
	b := a
	b.Port = 5000

	outA, err := Render(a)
	if err != nil {
		t.Fatalf("Render(a): %v", err)
	}
	outB, err := Render(b)
	if err != nil {
		t.Fatalf("Render(b): %v", err)
	}

	linesA := strings.Split(string(outA), "\n")
	linesB := strings.Split(string(outB), "\n")
	if len(linesA) != len(linesB) {
		t.Fatalf("line count changed: %d vs %d", len(linesA), len(linesB))
	}
	for i := range linesA {
		if linesA[i] == linesB[i] {
			continue
		}
		if !strings.HasPrefix(linesA[i], "EXPOSE ") {
			t.Fatalf("unexpected change on line %d: %q vs %q", i, linesA[i], linesB[i])
		}
	}
}

func TestValidateSpec(t *testing.T) {
	base := domain.DefaultBuildSpec()
	cases := []struct {
		name    string
		mutate  func(*domain.BuildSpec)
		wantErr bool
	}{
		{"default ok", func(s *domain.BuildSpec) {}, false},
		{"missing base image", func(s *domain.BuildSpec) { s.BaseImage = "" }, true},
		{"relative workdir", func(s *domain.BuildSpec) { s.WorkDir = "app" }, true},
		{"empty workdir", func(s *domain.BuildSpec) { s.WorkDir = "" }, true},
		{"missing entrypoint", func(s *domain.BuildSpec) { s.Entrypoint = "" }, true},
		{"nested entrypoint", func(s *domain.BuildSpec) { s.Entrypoint = "src/main.py" }, true},
		{"missing manifest", func(s *domain.BuildSpec) { s.Manifest = "" }, true},
		{"port zero", func(s *domain.BuildSpec) { s.Port = 0 }, true},
		{"port too high", func(s *domain.BuildSpec) { s.Port = 70000 }, true},
		{"alternate port ok", func(s *domain.BuildSpec) { s.Port = 5000 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := base
			tc.mutate(&spec)
			err := ValidateSpec(spec)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateContext(t *testing.T) {
	spec := domain.DefaultBuildSpec()

	t.Run("complete context", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "main.py", "print('hi')")
		writeFile(t, dir, "requirements.txt", "")
		if err := ValidateContext(dir, spec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing manifest", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "main.py", "print('hi')")
		if err := ValidateContext(dir, spec); err == nil {
			t.Fatalf("expected error for missing requirements.txt")
		}
	})

	t.Run("missing entrypoint", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "requirements.txt", "")
		if err := ValidateContext(dir, spec); err == nil {
			t.Fatalf("expected error for missing main.py")
		}
	})

	t.Run("nonexistent dir", func(t *testing.T) {
		if err := ValidateContext(filepath.Join(t.TempDir(), "nope"), spec); err == nil {
			t.Fatalf("expected error for nonexistent context")
		}
	})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
