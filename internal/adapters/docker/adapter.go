// Package docker implements ports.ContainerService using the Docker SDK.
package docker

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
	"github.com/SlickbitTechnologies/doclens-forge/internal/core/ports"
	"github.com/SlickbitTechnologies/doclens-forge/internal/logging"
	"github.com/SlickbitTechnologies/doclens-forge/internal/metrics"
)

const maxNameLen = 64

var disallowedNameRunes = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// dockerAPI is the slice of the Docker SDK the adapter needs. Tests
// substitute a fake.
type dockerAPI interface {
	ImagePull(ctx context.Context, refStr string, options types.ImagePullOptions) (io.ReadCloser, error)
	ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options types.ContainerStartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerList(ctx context.Context, options types.ContainerListOptions) ([]types.Container, error)
	ContainerLogs(ctx context.Context, containerID string, options types.ContainerLogsOptions) (io.ReadCloser, error)
}

// Adapter implements ports.ContainerService using the Docker SDK
type Adapter struct {
	cli         dockerAPI
	stopTimeout time.Duration
}

// NewAdapter creates a new Docker adapter instance
func NewAdapter(stopTimeout time.Duration) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, stopTimeout: stopTimeout}, nil
}

// ListContainers returns running containers with the details the proxy and
// the API need.
func (a *Adapter) ListContainers(ctx context.Context) ([]domain.Container, error) {
	containers, err := a.cli.ContainerList(ctx, types.ContainerListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var result []domain.Container
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		result = append(result, domain.Container{
			ID:        shortID(c.ID),
			Name:      name,
			Image:     c.Image,
			Status:    c.Status,
			State:     c.State,
			IPAddress: summaryIP(c),
			Port:      summaryPrivatePort(c),
			HostPort:  summaryHostPort(c),
		})
	}
	return result, nil
}

// StartContainer creates and starts a container from a given image. The
// advisory port is bound to an ephemeral host port only when opts.PublishPort
// is set; otherwise it stays metadata.
func (a *Adapter) StartContainer(ctx context.Context, image string, opts ports.RunOptions) (domain.Container, error) {
	if err := a.ensureImage(ctx, image); err != nil {
		metrics.RecordDeploy(false)
		return domain.Container{}, err
	}

	cfg := &container.Config{Image: image}
	hostCfg := &container.HostConfig{}
	if opts.PublishPort && opts.Port > 0 {
		p, err := nat.NewPort("tcp", strconv.Itoa(opts.Port))
		if err != nil {
			metrics.RecordDeploy(false)
			return domain.Container{}, fmt.Errorf("invalid port %d: %w", opts.Port, err)
		}
		cfg.ExposedPorts = nat.PortSet{p: struct{}{}}
		// empty HostPort asks the daemon for an ephemeral port
		hostCfg.PortBindings = nat.PortMap{p: []nat.PortBinding{{HostIP: "0.0.0.0"}}}
	}

	resp, err := a.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, sanitizeName(opts.Name))
	if err != nil {
		metrics.RecordDeploy(false)
		return domain.Container{}, fmt.Errorf("failed to create container: %w", err)
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		metrics.RecordDeploy(false)
		return domain.Container{}, fmt.Errorf("failed to start container: %w", err)
	}

	out := domain.Container{ID: shortID(resp.ID), Image: image, State: "running", Port: opts.Port}
	if inspected, err := a.cli.ContainerInspect(ctx, resp.ID); err == nil {
		out.Name = strings.TrimPrefix(inspected.Name, "/")
		out.IPAddress = inspectIP(inspected)
		if opts.PublishPort && opts.Port > 0 {
			out.HostPort = inspectHostPort(inspected, opts.Port)
		}
	}

	metrics.RecordDeploy(true)
	logging.Get().Info().Str("id", out.ID).Str("image", image).Str("host_port", out.HostPort).Msg("container started")
	return out, nil
}

// ensureImage makes the image available: a locally built tag is used as-is,
// anything else is pulled.
func (a *Adapter) ensureImage(ctx context.Context, image string) error {
	if _, _, err := a.cli.ImageInspectWithRaw(ctx, image); err == nil {
		return nil
	}
	reader, err := a.cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()
	// The daemon reports pull failures inside the message stream, not via
	// the call's error return.
	if err := jsonmessage.DisplayJSONMessagesStream(reader, io.Discard, 0, false, nil); err != nil {
		if jerr, ok := err.(*jsonmessage.JSONError); ok {
			return fmt.Errorf("failed to pull image: %s", jerr.Message)
		}
		return fmt.Errorf("failed to pull image: %w", err)
	}
	return nil
}

// StopContainer stops a running container
func (a *Adapter) StopContainer(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, a.stopTimeout+5*time.Second)
	defer cancel()
	secs := int(a.stopTimeout.Seconds())
	return a.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &secs})
}

// GetContainerLogs returns a stream of container logs
func (a *Adapter) GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	options := types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Timestamps: true,
	}
	return a.cli.ContainerLogs(ctx, id, options)
}

// sanitizeName returns a Docker-safe container name: lowercase, disallowed
// runes stripped, capped at maxNameLen, first rune alphanumeric. Empty input
// lets the daemon pick a name.
func sanitizeName(name string) string {
	if name == "" {
		return ""
	}
	clean := disallowedNameRunes.ReplaceAllString(strings.ToLower(name), "")
	if clean == "" {
		return "app"
	}
	if len(clean) > maxNameLen {
		clean = clean[:maxNameLen]
	}
	r := rune(clean[0])
	if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		clean = "a" + clean
		if len(clean) > maxNameLen {
			clean = clean[:maxNameLen]
		}
	}
	return clean
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func summaryIP(c types.Container) string {
	if c.NetworkSettings == nil {
		return ""
	}
	for _, n := range c.NetworkSettings.Networks {
		if n != nil && n.IPAddress != "" {
			return n.IPAddress
		}
	}
	return ""
}

func summaryHostPort(c types.Container) string {
	for _, p := range c.Ports {
		if p.PublicPort != 0 {
			return strconv.Itoa(int(p.PublicPort))
		}
	}
	return ""
}

func summaryPrivatePort(c types.Container) int {
	for _, p := range c.Ports {
		if p.PrivatePort != 0 {
			return int(p.PrivatePort)
		}
	}
	return 0
}

func inspectIP(c types.ContainerJSON) string {
	if c.NetworkSettings == nil {
		return ""
	}
	if c.NetworkSettings.IPAddress != "" {
		return c.NetworkSettings.IPAddress
	}
	for _, n := range c.NetworkSettings.Networks {
		if n != nil && n.IPAddress != "" {
			return n.IPAddress
		}
	}
	return ""
}

func inspectHostPort(c types.ContainerJSON, port int) string {
	if c.NetworkSettings == nil {
		return ""
	}
	p := nat.Port(fmt.Sprintf("%d/tcp", port))
	bindings := c.NetworkSettings.Ports[p]
	for _, b := range bindings {
		if b.HostPort != "" {
			return b.HostPort
		}
	}
	return ""
}
