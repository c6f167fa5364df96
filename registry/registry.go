// Package registry announces this service to a discovery backend.
package registry

import (
	consulapi "github.com/hashicorp/consul/api"
)

// Registration describes one service instance.
type Registration struct {
	// ID must be unique per instance, e.g. name + host + port.
	ID      string
	Name    string
	Address string
	Port    int
	Tags    []string
	Check   *consulapi.AgentServiceCheck
}

// ServiceRegistry registers and removes service instances.
type ServiceRegistry interface {
	Register(reg Registration) error
	Deregister(id string) error
}
