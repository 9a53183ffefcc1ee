package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/consul/api"
)

// ServiceRegistration describes one service instance announced to Consul.
type ServiceRegistration struct {
	Name string
	// Address is the host:port of the gRPC server; Consul health-checks it over gRPC.
	Address string
	Tags    []string
}

// ConsulRegistry registers service instances with a Consul agent.
type ConsulRegistry struct {
	client *api.Client
}

// NewConsulRegistry connects to the Consul agent at address.
func NewConsulRegistry(address string) (*ConsulRegistry, error) {
	cfg := api.DefaultConfig()
	if strings.TrimSpace(address) != "" {
		cfg.Address = address
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulRegistry{client: client}, nil
}

// Register announces the instance and returns its id for Deregister.
func (r *ConsulRegistry) Register(reg ServiceRegistration) (string, error) {
	registration, err := buildRegistration(reg)
	if err != nil {
		return "", err
	}

	if err := r.client.Agent().ServiceRegister(registration); err != nil {
		return "", fmt.Errorf("failed to register service with consul: %w", err)
	}

	return registration.ID, nil
}

// Deregister removes a previously registered instance.
func (r *ConsulRegistry) Deregister(serviceID string) error {
	return r.client.Agent().ServiceDeregister(serviceID)
}

func buildRegistration(reg ServiceRegistration) (*api.AgentServiceRegistration, error) {
	if strings.TrimSpace(reg.Name) == "" {
		return nil, errors.New("missing service name")
	}

	host, portStr, err := net.SplitHostPort(reg.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid service address %q: %w", reg.Address, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid service port %q: %w", portStr, err)
	}

	return &api.AgentServiceRegistration{
		ID:      reg.Name + "-" + uuid.NewString(),
		Name:    reg.Name,
		Address: host,
		Port:    port,
		Tags:    reg.Tags,
		Check: &api.AgentServiceCheck{
			GRPC:                           reg.Address,
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}, nil
}
