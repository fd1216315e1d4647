package model

import "github.com/shopspring/decimal"

// SSHPort is the internal port whose mappings are probed for reachability.
const SSHPort = 22

// PortMapping maps an instance's internal port to the publicly exposed one.
type PortMapping struct {
	Internal int
	External int
}

// Order is a rented instance as reported by the my_orders endpoint.
type Order struct {
	ID           string
	Price        decimal.Decimal
	ExposedHosts []string
	PortMappings []PortMapping
}

// SSHPorts returns the external ports mapped to the internal SSH port.
func (o *Order) SSHPorts() []int {
	var ports []int
	for _, pm := range o.PortMappings {
		if pm.Internal == SSHPort {
			ports = append(ports, pm.External)
		}
	}
	return ports
}
