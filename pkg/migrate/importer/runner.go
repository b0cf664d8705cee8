//go:generate go run go.uber.org/mock/mockgen -package mock -destination mock/mock.go github.com/baderkha/sql2doc/pkg/migrate/importer Runner

package importer

import (
	"context"
	"os/exec"
)

// Runner : executes an external process and returns its combined output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner : Runner backed by os/exec, no shell is involved
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
