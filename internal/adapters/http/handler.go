package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
	"github.com/SlickbitTechnologies/doclens-forge/internal/core/ports"
)

type Handler struct {
	service  ports.ContainerService
	builder  ports.BuilderService
	store    ports.BuildStore
	defaults domain.BuildSpec
}

func NewHandler(service ports.ContainerService, builder ports.BuilderService, store ports.BuildStore, defaults domain.BuildSpec) *Handler {
	return &Handler{service: service, builder: builder, store: store, defaults: defaults}
}

// BuildRequest selects the source (exactly one of dir or repo_url) and
// optionally overrides the packaging defaults.
type BuildRequest struct {
	Dir     string `json:"dir"`
	RepoURL string `json:"repo_url"`
	Image   string `json:"image"`

	BaseImage  string `json:"base_image"`
	WorkDir    string `json:"workdir"`
	Port       int    `json:"port"`
	Entrypoint string `json:"entrypoint"`
	Manifest   string `json:"manifest"`
}

// DeployRequest builds and then runs the image.
type DeployRequest struct {
	BuildRequest
	Name        string `json:"name"`
	PublishPort *bool  `json:"publish_port"` // default true
}

// spec merges request overrides onto the configured defaults.
func (h *Handler) spec(req BuildRequest) domain.BuildSpec {
	spec := h.defaults
	if req.BaseImage != "" {
		spec.BaseImage = req.BaseImage
	}
	if req.WorkDir != "" {
		spec.WorkDir = req.WorkDir
	}
	if req.Port != 0 {
		spec.Port = req.Port
	}
	if req.Entrypoint != "" {
		spec.Entrypoint = req.Entrypoint
	}
	if req.Manifest != "" {
		spec.Manifest = req.Manifest
	}
	return spec
}

func (h *Handler) build(c *fiber.Ctx, req BuildRequest) (domain.Image, bool) {
	spec := h.spec(req)
	var (
		img domain.Image
		err error
	)
	switch {
	case req.RepoURL != "" && req.Dir != "":
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "dir and repo_url are mutually exclusive",
		})
		return domain.Image{}, false
	case req.RepoURL != "":
		img, err = h.builder.BuildRepo(c.Context(), req.RepoURL, req.Image, spec)
	case req.Dir != "":
		img, err = h.builder.BuildDir(c.Context(), req.Dir, req.Image, spec)
	default:
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "dir or repo_url is required",
		})
		return domain.Image{}, false
	}
	if err != nil {
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Build failed: " + err.Error(),
		})
		return domain.Image{}, false
	}
	return img, true
}

// Build runs the image build pipeline without starting a container.
func (h *Handler) Build(c *fiber.Ctx) error {
	var req BuildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image name is required",
		})
	}

	img, ok := h.build(c, req)
	if !ok {
		return nil
	}
	return c.Status(fiber.StatusCreated).JSON(img)
}

// Deploy builds the image and starts a container from it, publishing the
// advisory port to an ephemeral host port unless disabled.
func (h *Handler) Deploy(c *fiber.Ctx) error {
	var req DeployRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image name is required",
		})
	}

	img, ok := h.build(c, req.BuildRequest)
	if !ok {
		return nil
	}

	publish := true
	if req.PublishPort != nil {
		publish = *req.PublishPort
	}
	ctr, err := h.service.StartContainer(c.Context(), img.Name, ports.RunOptions{
		Name:        req.Name,
		Port:        img.Port,
		PublishPort: publish,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        ctr.ID,
		"image":     img.Name,
		"host_port": ctr.HostPort,
	})
}

func (h *Handler) ListContainers(c *fiber.Ctx) error {
	containers, err := h.service.ListContainers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(containers)
}

func (h *Handler) StopContainer(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	if err := h.service.StopContainer(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) GetContainerLogs(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	logs, err := h.service.GetContainerLogs(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "text/plain")
	return c.SendStream(logs)
}

// BuildHistory returns the persisted build records, oldest first.
func (h *Handler) BuildHistory(c *fiber.Ctx) error {
	records, err := h.store.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if records == nil {
		records = []domain.BuildRecord{}
	}
	return c.JSON(records)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
