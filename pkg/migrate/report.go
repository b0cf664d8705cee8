package migrate

import (
	"time"

	"github.com/baderkha/sql2doc/pkg/migrate/state"
	"github.com/hashicorp/go-multierror"
)

// Outcome : terminal result of one submitted table
type Outcome struct {
	// Index : position in the submitted table list
	Index            int               `json:"index" yaml:"index"`
	Table            string            `json:"table" yaml:"table"`
	Database         string            `json:"database" yaml:"database"`
	DestinationTable string            `json:"destination_table" yaml:"destination_table"`
	Status           state.RunLogState `json:"status" yaml:"status"`
	Rows             int               `json:"rows" yaml:"rows"`
	Duration         time.Duration     `json:"duration" yaml:"duration"`
	Err              error             `json:"-" yaml:"-"`
	Error            string            `json:"error,omitempty" yaml:"error,omitempty"`
}

func (o Outcome) Succeeded() bool {
	return o.Status == state.Success
}

// RunReport : one Outcome per submitted table, in submission order
type RunReport struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	EndedAt   time.Time `json:"ended_at" yaml:"ended_at"`
	Outcomes  []Outcome `json:"outcomes" yaml:"outcomes"`
}

func (r *RunReport) Succeeded() []Outcome {
	return r.filter(true)
}

func (r *RunReport) Failed() []Outcome {
	return r.filter(false)
}

func (r *RunReport) filter(ok bool) []Outcome {
	res := []Outcome{}
	for _, o := range r.Outcomes {
		if o.Succeeded() == ok {
			res = append(res, o)
		}
	}
	return res
}

// Err : every table failure folded into one error, nil when all tables succeeded
func (r *RunReport) Err() error {
	var result error
	for _, o := range r.Failed() {
		result = multierror.Append(result, o.Err)
	}
	return result
}
