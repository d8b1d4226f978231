// Package sharding resolves per-company service endpoints. Every
// company gets its own mysql, manticore and sender instances, named by
// appending the company id to the service's base host.
package sharding

import (
	"fmt"
	"os"
	"strconv"
)

// Resolver maps base service hosts onto the endpoints of one company's
// shard. In migration mode (IS_MIGRATION=true) database endpoints come
// from the environment instead, and the sender is unavailable.
type Resolver struct {
	companyID int64
	domain    string
	getenv    func(string) string
}

func NewResolver(companyID int64, domain string) *Resolver {
	return &Resolver{
		companyID: companyID,
		domain:    domain,
		getenv:    os.Getenv,
	}
}

func (r *Resolver) isMigration() bool {
	return r.getenv("IS_MIGRATION") == "true"
}

func (r *Resolver) servicePostfix() string {
	return strconv.FormatInt(r.companyID, 10)
}

// ServicePort is the port every sharded service listens on for this
// company. Migration always talks to port 1.
func (r *Resolver) ServicePort() string {
	if r.isMigration() {
		return "1"
	}
	return strconv.FormatInt(r.companyID, 10)
}

// MysqlHost resolves the company's mysql host from the base host.
func (r *Resolver) MysqlHost(base string) string {
	if r.isMigration() {
		return r.getenv("MYSQL_HOST")
	}
	return base + "-" + r.servicePostfix()
}

func (r *Resolver) MysqlPort() string {
	if r.isMigration() {
		return r.getenv("MYSQL_PORT")
	}
	return r.ServicePort()
}

func (r *Resolver) MysqlUser(user string) string {
	if r.isMigration() {
		return r.getenv("MYSQL_USER")
	}
	return user
}

func (r *Resolver) MysqlPass(password string) string {
	if r.isMigration() {
		return r.getenv("MYSQL_PASS")
	}
	return password
}

// ManticoreHost resolves the company's search host from the base host.
func (r *Resolver) ManticoreHost(base string) string {
	if r.isMigration() {
		return r.getenv("MANTICORE_HOST")
	}
	return base + "-" + r.servicePostfix()
}

func (r *Resolver) ManticorePort() string {
	if r.isMigration() {
		return r.getenv("MANTICORE_PORT")
	}
	return r.ServicePort()
}

// SenderHost resolves the company's websocket sender host. Empty in
// migration mode, there is nobody to notify.
func (r *Resolver) SenderHost(base string) string {
	if r.isMigration() {
		return ""
	}
	return base + "-" + r.servicePostfix()
}

func (r *Resolver) SenderPort() string {
	if r.isMigration() {
		return ""
	}
	return r.ServicePort()
}

// SenderWsURL builds the websocket url clients connect to.
func (r *Resolver) SenderWsURL() string {
	if r.isMigration() {
		return ""
	}
	return fmt.Sprintf("wss://%s/ws?a=%s&b=%s", r.domain, r.servicePostfix(), r.ServicePort())
}
