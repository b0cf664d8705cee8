package targetcfg

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/go-multierror"
)

const (
	defaultRethinkDBPort   = 28015
	defaultRethinkDBBinary = "rethinkdb"
)

// RethinkDB : destination driven through the `rethinkdb import` tool
type RethinkDB struct {
	Host    string `json:"host" yaml:"host"`
	Port    int    `json:"port" yaml:"port"`
	DB      string `json:"db" yaml:"db"`
	AuthKey string `json:"auth_key" yaml:"auth_key"`
	// Force : replace existing tables, true unless set to false
	Force *bool `json:"force" yaml:"force"`
	// Binary : path to the rethinkdb executable, looked up on PATH by default
	Binary string `json:"binary" yaml:"binary"`
}

func (r RethinkDB) Database() string {
	return r.DB
}

func (r RethinkDB) ForceOverwrite() bool {
	return r.Force == nil || *r.Force
}

// Address : host:port as the import tool expects it for -c
func (r RethinkDB) Address() string {
	host := r.Host
	if host == "" {
		host = "localhost"
	}
	port := r.Port
	if port == 0 {
		port = defaultRethinkDBPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (r RethinkDB) Executable() string {
	if r.Binary == "" {
		return defaultRethinkDBBinary
	}
	return r.Binary
}

func (r RethinkDB) Validate() error {
	var err error
	if r.DB == "" {
		err = multierror.Append(err, errors.New("target.db is required"))
	}
	if r.Port < 0 {
		err = multierror.Append(err, fmt.Errorf("target.port %d is invalid", r.Port))
	}
	return err
}
