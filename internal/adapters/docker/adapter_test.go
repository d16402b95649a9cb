package docker

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/SlickbitTechnologies/doclens-forge/internal/core/ports"
)

type fakeDockerAPI struct {
	localImages map[string]bool
	pulled      []string
	pullErr     error
	pullStream  string

	createdConfig *container.Config
	createdHost   *container.HostConfig
	createdName   string
	createErr     error
	startedID     string
	stoppedID     string
	stopTimeout   *int
	inspectRes    types.ContainerJSON
	listRes       []types.Container
	logsContent   string
	logsOpts      types.ContainerLogsOptions
}

func (f *fakeDockerAPI) ImagePull(ctx context.Context, ref string, _ types.ImagePullOptions) (io.ReadCloser, error) {
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	f.pulled = append(f.pulled, ref)
	stream := f.pullStream
	if stream == "" {
		stream = "{}"
	}
	return io.NopCloser(strings.NewReader(stream)), nil
}

func (f *fakeDockerAPI) ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error) {
	if f.localImages[imageID] {
		return types.ImageInspect{ID: "sha256:abc"}, nil, nil
	}
	return types.ImageInspect{}, nil, errors.New("No such image")
}

func (f *fakeDockerAPI) ContainerCreate(ctx context.Context, cfg *container.Config, hostCfg *container.HostConfig, _ *network.NetworkingConfig, _ *ocispec.Platform, name string) (container.CreateResponse, error) {
	if f.createErr != nil {
		return container.CreateResponse{}, f.createErr
	}
	f.createdConfig = cfg
	f.createdHost = hostCfg
	f.createdName = name
	return container.CreateResponse{ID: "0123456789abcdef"}, nil
}

func (f *fakeDockerAPI) ContainerStart(ctx context.Context, id string, _ types.ContainerStartOptions) error {
	f.startedID = id
	return nil
}

func (f *fakeDockerAPI) ContainerStop(ctx context.Context, id string, opts container.StopOptions) error {
	f.stoppedID = id
	f.stopTimeout = opts.Timeout
	return nil
}

func (f *fakeDockerAPI) ContainerInspect(ctx context.Context, id string) (types.ContainerJSON, error) {
	return f.inspectRes, nil
}

func (f *fakeDockerAPI) ContainerList(ctx context.Context, _ types.ContainerListOptions) ([]types.Container, error) {
	return f.listRes, nil
}

func (f *fakeDockerAPI) ContainerLogs(ctx context.Context, id string, opts types.ContainerLogsOptions) (io.ReadCloser, error) {
	f.logsOpts = opts
	return io.NopCloser(strings.NewReader(f.logsContent)), nil
}

func inspectWithPort(hostPort string) types.ContainerJSON {
	return types.ContainerJSON{
		ContainerJSONBase: &types.ContainerJSONBase{Name: "/doclens"},
		NetworkSettings: &types.NetworkSettings{
			NetworkSettingsBase: types.NetworkSettingsBase{
				Ports: nat.PortMap{
					"8000/tcp": []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: hostPort}},
				},
			},
			DefaultNetworkSettings: types.DefaultNetworkSettings{IPAddress: "172.17.0.2"},
		},
	}
}

func TestStartContainer_PublishesAdvisoryPort(t *testing.T) {
	fake := &fakeDockerAPI{
		localImages: map[string]bool{"doclens-backend:latest": true},
		inspectRes:  inspectWithPort("49321"),
	}
	a := &Adapter{cli: fake, stopTimeout: 10 * time.Second}

	c, err := a.StartContainer(context.Background(), "doclens-backend:latest", ports.RunOptions{
		Name:        "DocLens Backend",
		Port:        8000,
		PublishPort: true,
	})
	if err != nil {
		t.Fatalf("StartContainer: %v", err)
	}
	if len(fake.pulled) != 0 {
		t.Errorf("locally built image should not be pulled")
	}
	if _, ok := fake.createdConfig.ExposedPorts["8000/tcp"]; !ok {
		t.Errorf("exposed ports missing 8000/tcp: %v", fake.createdConfig.ExposedPorts)
	}
	bindings := fake.createdHost.PortBindings["8000/tcp"]
	if len(bindings) != 1 || bindings[0].HostPort != "" {
		t.Errorf("expected an ephemeral host binding, got %v", bindings)
	}
	if fake.createdName != "doclensbackend" {
		t.Errorf("unexpected sanitized name %q", fake.createdName)
	}
	if c.HostPort != "49321" {
		t.Errorf("host port not reported, got %q", c.HostPort)
	}
	if c.IPAddress != "172.17.0.2" {
		t.Errorf("ip address not reported, got %q", c.IPAddress)
	}
	if fake.startedID != "0123456789abcdef" {
		t.Errorf("container was not started")
	}
}

func TestStartContainer_UnpublishedKeepsPortAdvisory(t *testing.T) {
	fake := &fakeDockerAPI{
		localImages: map[string]bool{"img": true},
		inspectRes:  inspectWithPort(""),
	}
	a := &Adapter{cli: fake, stopTimeout: 10 * time.Second}

	c, err := a.StartContainer(context.Background(), "img", ports.RunOptions{Port: 8000})
	if err != nil {
		t.Fatalf("StartContainer: %v", err)
	}
	if len(fake.createdConfig.ExposedPorts) != 0 {
		t.Errorf("unpublished run must not bind ports: %v", fake.createdConfig.ExposedPorts)
	}
	if fake.createdHost.PortBindings != nil {
		t.Errorf("unexpected port bindings: %v", fake.createdHost.PortBindings)
	}
	if c.HostPort != "" {
		t.Errorf("unexpected host port %q", c.HostPort)
	}
}

func TestStartContainer_PullsUnknownImage(t *testing.T) {
	fake := &fakeDockerAPI{inspectRes: inspectWithPort("")}
	a := &Adapter{cli: fake, stopTimeout: 10 * time.Second}

	if _, err := a.StartContainer(context.Background(), "nginx:alpine", ports.RunOptions{}); err != nil {
		t.Fatalf("StartContainer: %v", err)
	}
	if len(fake.pulled) != 1 || fake.pulled[0] != "nginx:alpine" {
		t.Errorf("expected pull of nginx:alpine, got %v", fake.pulled)
	}
}

func TestStartContainer_PullFailure(t *testing.T) {
	fake := &fakeDockerAPI{pullErr: errors.New("manifest unknown")}
	a := &Adapter{cli: fake, stopTimeout: 10 * time.Second}

	if _, err := a.StartContainer(context.Background(), "ghost:latest", ports.RunOptions{}); err == nil {
		t.Fatalf("expected error when image cannot be pulled")
	}
}

func TestStartContainer_PullStreamErrorFails(t *testing.T) {
	// The daemon reports missing tags inside the pull stream, not via the
	// call's error return.
	fake := &fakeDockerAPI{
		pullStream: `{"errorDetail":{"message":"manifest for ghost:latest not found"},"error":"manifest for ghost:latest not found"}` + "\n",
	}
	a := &Adapter{cli: fake, stopTimeout: 10 * time.Second}

	_, err := a.StartContainer(context.Background(), "ghost:latest", ports.RunOptions{})
	if err == nil {
		t.Fatalf("expected error from pull stream")
	}
	if !strings.Contains(err.Error(), "manifest for ghost:latest not found") {
		t.Errorf("daemon error detail lost: %v", err)
	}
	if fake.createdConfig != nil {
		t.Fatalf("container must not be created after a failed pull")
	}
}

func TestStopContainer_UsesConfiguredTimeout(t *testing.T) {
	fake := &fakeDockerAPI{}
	a := &Adapter{cli: fake, stopTimeout: 30 * time.Second}

	if err := a.StopContainer(context.Background(), "abc"); err != nil {
		t.Fatalf("StopContainer: %v", err)
	}
	if fake.stoppedID != "abc" {
		t.Errorf("wrong container stopped: %q", fake.stoppedID)
	}
	if fake.stopTimeout == nil || *fake.stopTimeout != 30 {
		t.Errorf("stop timeout not propagated: %v", fake.stopTimeout)
	}
}

func TestListContainers(t *testing.T) {
	fake := &fakeDockerAPI{
		listRes: []types.Container{
			{
				ID:     "0123456789abcdef0123",
				Names:  []string{"/doclens"},
				Image:  "doclens-backend:latest",
				Status: "Up 2 minutes",
				State:  "running",
				Ports:  []types.Port{{PrivatePort: 8000, PublicPort: 49321, Type: "tcp"}},
				NetworkSettings: &types.SummaryNetworkSettings{
					Networks: map[string]*network.EndpointSettings{
						"bridge": {IPAddress: "172.17.0.2"},
					},
				},
			},
		},
	}
	a := &Adapter{cli: fake, stopTimeout: 10 * time.Second}

	got, err := a.ListContainers(context.Background())
	if err != nil {
		t.Fatalf("ListContainers: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 container, got %d", len(got))
	}
	c := got[0]
	if c.ID != "0123456789ab" {
		t.Errorf("short ID expected, got %q", c.ID)
	}
	if c.Name != "doclens" {
		t.Errorf("leading slash not stripped: %q", c.Name)
	}
	if c.IPAddress != "172.17.0.2" {
		t.Errorf("ip address missing: %q", c.IPAddress)
	}
	if c.HostPort != "49321" {
		t.Errorf("host port missing: %q", c.HostPort)
	}
	if c.Port != 8000 {
		t.Errorf("advisory port missing: %d", c.Port)
	}
}

func TestGetContainerLogs(t *testing.T) {
	fake := &fakeDockerAPI{logsContent: "hello"}
	a := &Adapter{cli: fake, stopTimeout: 10 * time.Second}

	rc, err := a.GetContainerLogs(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetContainerLogs: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "hello" {
		t.Errorf("unexpected logs %q", b)
	}
	if !fake.logsOpts.ShowStdout || !fake.logsOpts.ShowStderr {
		t.Errorf("expected both streams requested, got %+v", fake.logsOpts)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"DocLens Backend", "doclensbackend"},
		{"my-app", "my-app"},
		{"--weird", "a--weird"},
		{"!!!", "app"},
		{strings.Repeat("x", 100), strings.Repeat("x", 64)},
	}
	for _, tc := range cases {
		if got := sanitizeName(tc.in); got != tc.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
