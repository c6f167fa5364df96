package registry

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"gamedominate/config"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

// agent is the part of the Consul agent API used for self-registration.
type agent interface {
	ServiceRegister(service *consulapi.AgentServiceRegistration) error
	ServiceDeregister(serviceID string) error
}

type consulRegistry struct {
	agent  agent
	logger *zap.SugaredLogger
}

var _ ServiceRegistry = (*consulRegistry)(nil)

// NewConsulRegistry connects to the Consul agent at cfg.Address and checks it answers.
func NewConsulRegistry(cfg config.ConsulConfig, logger *zap.SugaredLogger) (ServiceRegistry, error) {
	consulConfig := consulapi.DefaultConfig()
	consulConfig.Address = cfg.Address

	client, err := consulapi.NewClient(consulConfig)
	if err != nil {
		logger.Errorw("Failed to create Consul client", "address", consulConfig.Address, "error", err)
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	if _, err := client.Agent().NodeName(); err != nil {
		logger.Errorw("Failed to connect to Consul agent", "address", consulConfig.Address, "error", err)
		return nil, fmt.Errorf("cannot connect to consul agent at %s: %w", consulConfig.Address, err)
	}
	logger.Infow("Successfully connected to Consul agent", "address", consulConfig.Address)

	return newConsulRegistry(client.Agent(), logger), nil
}

func newConsulRegistry(a agent, logger *zap.SugaredLogger) *consulRegistry {
	return &consulRegistry{agent: a, logger: logger.Named("ConsulRegistry")}
}

// Register registers a service instance with Consul, including its health check.
func (r *consulRegistry) Register(reg Registration) error {
	svc := &consulapi.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Tags:    reg.Tags,
		Port:    reg.Port,
		Address: reg.Address,
		Check:   reg.Check,
	}
	if reg.Check != nil {
		svc.Meta = map[string]string{"protocol": checkProtocol(reg.Check)}
	}

	if err := r.agent.ServiceRegister(svc); err != nil {
		r.logger.Errorw("Failed to register service with Consul", "service_id", reg.ID, "service_name", reg.Name, "address", reg.Address, "port", reg.Port, "error", err)
		return fmt.Errorf("failed to register service '%s': %w", reg.Name, err)
	}
	r.logger.Infow("Successfully registered service with Consul", "service_id", reg.ID, "service_name", reg.Name, "address", reg.Address, "port", reg.Port)
	return nil
}

// Deregister removes a service instance from Consul.
func (r *consulRegistry) Deregister(id string) error {
	if err := r.agent.ServiceDeregister(id); err != nil {
		r.logger.Errorw("Failed to deregister service from Consul", "service_id", id, "error", err)
		return fmt.Errorf("failed to deregister service '%s': %w", id, err)
	}
	r.logger.Infow("Successfully deregistered service from Consul", "service_id", id)
	return nil
}

func checkProtocol(check *consulapi.AgentServiceCheck) string {
	if check.GRPC != "" {
		return "grpc"
	}
	return "http"
}

// InstanceID names one instance of service on host:port.
func InstanceID(service, host string, port int) string {
	return fmt.Sprintf("%s-%s-%d", service, host, port)
}

// HTTPCheck has Consul GET path on host:port every interval.
func HTTPCheck(serviceID, host string, port int, path string, interval time.Duration) *consulapi.AgentServiceCheck {
	return &consulapi.AgentServiceCheck{
		CheckID:                        fmt.Sprintf("check_%s_http", serviceID),
		Name:                           fmt.Sprintf("HTTP Check for %s", serviceID),
		HTTP:                           "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + path,
		Method:                         "GET",
		Interval:                       interval.String(),
		Timeout:                        checkTimeout(interval).String(),
		DeregisterCriticalServiceAfter: "1m",
	}
}

// GRPCCheck uses the standard gRPC health protocol on host:port.
func GRPCCheck(serviceID, host string, port int, interval time.Duration) *consulapi.AgentServiceCheck {
	return &consulapi.AgentServiceCheck{
		CheckID:                        fmt.Sprintf("check_%s_grpc", serviceID),
		Name:                           fmt.Sprintf("gRPC Check for %s", serviceID),
		GRPC:                           net.JoinHostPort(host, strconv.Itoa(port)),
		GRPCUseTLS:                     false,
		Interval:                       interval.String(),
		Timeout:                        checkTimeout(interval).String(),
		DeregisterCriticalServiceAfter: "1m",
	}
}

func checkTimeout(interval time.Duration) time.Duration {
	if timeout := interval / 2; timeout < time.Second {
		return timeout
	}
	return time.Second
}
