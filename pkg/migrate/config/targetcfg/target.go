// package targetcfg
//
// connection parameters for the document databases rows are imported into
package targetcfg

// Target : destination coordinates shared by every document store
type Target interface {
	Database() string
	// ForceOverwrite : replace the destination table when it already exists
	ForceOverwrite() bool
	Validate() error
}

var (
	_ Target = RethinkDB{}
	_ Target = Mongo{}
)

// S3Options : where materialized artifacts get archived, empty bucket disables archiving
type S3Options struct {
	Bucket         string `json:"bucket" yaml:"bucket"`
	PrefixOverride string `json:"prefix" yaml:"prefix"`
	Region         string `json:"region" yaml:"region"`
}

func (s S3Options) Enabled() bool {
	return s.Bucket != ""
}
