package importer

import (
	"context"

	"github.com/baderkha/sql2doc/pkg/migrate/artifact"
	"github.com/baderkha/sql2doc/pkg/migrate/config/targetcfg"
)

// Tool : builds the command line of an import executable
type Tool interface {
	Command(h artifact.Handle, req Request) (name string, args []string)
}

// CommandLoader : loads artifacts by running an import tool
type CommandLoader struct {
	runner Runner
	tool   Tool
}

func NewCommandLoader(runner Runner, tool Tool) *CommandLoader {
	return &CommandLoader{runner: runner, tool: tool}
}

func (c *CommandLoader) Load(ctx context.Context, h artifact.Handle, req Request) error {
	name, args := c.tool.Command(h, req)
	out, err := c.runner.Run(ctx, name, args...)
	if err != nil {
		return &ExitError{Command: name, Output: out, Err: err}
	}
	return nil
}

// RethinkImport : `rethinkdb import -f <file> --table <db>.<table>`
type RethinkImport struct {
	Cfg targetcfg.RethinkDB
}

func (r RethinkImport) Command(h artifact.Handle, req Request) (string, []string) {
	args := []string{
		"import",
		"-f", h.Path,
		"--table", req.Target(),
		"-c", r.Cfg.Address(),
	}
	if r.Cfg.AuthKey != "" {
		args = append(args, "-a", r.Cfg.AuthKey)
	}
	if req.Force {
		args = append(args, "--force")
	}
	return r.Cfg.Executable(), args
}

// MongoImport : `mongoimport --jsonArray`
type MongoImport struct {
	Cfg targetcfg.Mongo
}

func (m MongoImport) Command(h artifact.Handle, req Request) (string, []string) {
	args := []string{
		"--uri", m.Cfg.URI,
		"--db", req.Database,
		"--collection", req.DestinationTable,
		"--file", h.Path,
		"--jsonArray",
	}
	if req.Force {
		args = append(args, "--drop")
	}
	return m.Cfg.Executable(), args
}
