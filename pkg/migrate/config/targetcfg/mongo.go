package targetcfg

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// MongoMode : how rows reach mongo
type MongoMode string

const (
	// MongoModeTool : shell out to mongoimport
	MongoModeTool MongoMode = "tool"
	// MongoModeDriver : stream the artifact through the go driver
	MongoModeDriver MongoMode = "driver"
)

const defaultMongoImportBinary = "mongoimport"

// Mongo : mongodb destination
type Mongo struct {
	URI    string    `json:"uri" yaml:"uri"`
	DB     string    `json:"db" yaml:"db"`
	Force  bool      `json:"force" yaml:"force"`
	Mode   MongoMode `json:"mode" yaml:"mode"`
	Binary string    `json:"binary" yaml:"binary"`
}

func (m Mongo) Database() string {
	return m.DB
}

func (m Mongo) ForceOverwrite() bool {
	return m.Force
}

func (m Mongo) ImportMode() MongoMode {
	if m.Mode == "" {
		return MongoModeTool
	}
	return m.Mode
}

func (m Mongo) Executable() string {
	if m.Binary == "" {
		return defaultMongoImportBinary
	}
	return m.Binary
}

func (m Mongo) Validate() error {
	var err error
	if m.URI == "" {
		err = multierror.Append(err, errors.New("target.uri is required"))
	}
	if m.DB == "" {
		err = multierror.Append(err, errors.New("target.db is required"))
	}
	switch m.ImportMode() {
	case MongoModeTool, MongoModeDriver:
	default:
		err = multierror.Append(err, fmt.Errorf("target.mode %q is not one of tool, driver", m.Mode))
	}
	return err
}
