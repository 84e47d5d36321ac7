package domain

import "fmt"

type Role string

const (
	RoleDealer           Role = "dealer"
	RoleWarehouseManager Role = "warehouse_manager"
	RoleAdministrator    Role = "administrator"
)

func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleDealer, RoleWarehouseManager, RoleAdministrator:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanShop reports whether the role may use the cart and place orders.
// Warehouse managers only fulfil.
func (r Role) CanShop() bool {
	return r == RoleDealer || r == RoleAdministrator
}

// CanManageOrders reports whether the role may see and update every order.
func (r Role) CanManageOrders() bool {
	return r == RoleWarehouseManager || r == RoleAdministrator
}

// HasDealerAccount reports whether the role carries a dealer profile.
func (r Role) HasDealerAccount() bool {
	return r == RoleDealer
}

// LandingPath is where a freshly logged in user of this role is sent.
func (r Role) LandingPath() string {
	switch r {
	case RoleWarehouseManager:
		return "/warehouse-orders/"
	case RoleAdministrator:
		return "/wp-admin/"
	default:
		return "/"
	}
}
