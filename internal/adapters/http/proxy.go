package http

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/SlickbitTechnologies/doclens-forge/internal/core/domain"
	"github.com/SlickbitTechnologies/doclens-forge/internal/core/ports"
)

// ProxyHandler manages reverse proxying for subdomains.
type ProxyHandler struct {
	service ports.ContainerService
	// port is the advisory container port assumed when a container does not
	// report one of its own.
	port int
	// domain is the suffix app subdomains hang off, e.g. "localhost" routes
	// doclens.localhost. Hosts outside the domain fall through to the API.
	domain string
}

// NewProxyHandler creates a new proxy handler.
func NewProxyHandler(service ports.ContainerService, port int, domain string) *ProxyHandler {
	return &ProxyHandler{service: service, port: port, domain: domain}
}

// ProxyRequest intercepts requests to app subdomains of the configured
// domain (e.g. app-name.localhost) and routes them to the corresponding
// container's internal IP at its advisory port.
func (h *ProxyHandler) ProxyRequest(c *fiber.Ctx) error {
	subdomain, ok := h.appSubdomain(c.Hostname())
	if !ok {
		return c.Next()
	}

	containers, err := h.service.ListContainers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to list containers")
	}

	target, ok := proxyTarget(containers, subdomain, h.port)
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString(fmt.Sprintf("App '%s' not found or not running", subdomain))
	}

	remote, err := url.Parse("http://" + target)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Invalid target URL")
	}

	proxy := httputil.NewSingleHostReverseProxy(remote)

	// Rewrite the Host header so the application inside the container sees a
	// host it recognizes.
	originalDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalDirector(req)
		req.Host = remote.Host
		req.URL.Host = remote.Host
		req.URL.Scheme = remote.Scheme
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(fmt.Sprintf("Proxy Info: target=%s error=%v", target, err)))
	}

	return adaptor.HTTPHandler(proxy)(c)
}

// appSubdomain extracts the app name from the hostname. Only single-label
// subdomains of the configured domain qualify; the bare domain and hosts
// outside it are not proxied.
func (h *ProxyHandler) appSubdomain(host string) (string, bool) {
	if h.domain == "" || host == h.domain {
		return "", false
	}
	sub, ok := strings.CutSuffix(host, "."+h.domain)
	if !ok || sub == "" || sub == "www" || strings.Contains(sub, ".") {
		return "", false
	}
	return sub, true
}

// proxyTarget resolves the app name to "ip:port" of its running container,
// preferring the container's own advisory port over the fallback.
func proxyTarget(containers []domain.Container, subdomain string, fallbackPort int) (string, bool) {
	for _, container := range containers {
		if container.Name != subdomain || container.State != "running" {
			continue
		}
		if container.IPAddress == "" {
			continue
		}
		port := container.Port
		if port == 0 {
			port = fallbackPort
		}
		return fmt.Sprintf("%s:%d", container.IPAddress, port), true
	}
	return "", false
}
