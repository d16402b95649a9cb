package domain

// Container represents a container in the system (Docker, K8s, etc.)
type Container struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Status    string `json:"status"`
	State     string `json:"state"` // running, exited, etc.
	IPAddress string `json:"ip_address,omitempty"`
	// Port is the advisory container port the application inside is expected
	// to listen on, 0 when the container does not expose one.
	Port int `json:"port,omitempty"`
	// HostPort is the ephemeral host port the advisory container port was
	// published to. Empty when the container runs unpublished.
	HostPort string `json:"host_port,omitempty"`
}
