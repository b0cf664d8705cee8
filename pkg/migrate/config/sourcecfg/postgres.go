package sourcecfg

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-multierror"
)

// Postgres : postgres source connection parameters
type Postgres struct {
	Host         string `json:"host" yaml:"host"`
	Port         int    `json:"port" yaml:"port"`
	UserName     string `json:"user_name" yaml:"user_name"`
	Password     string `json:"password" yaml:"password"`
	DB           string `json:"db" yaml:"db"`
	SchemaName   string `json:"schema" yaml:"schema"`
	SSLMode      string `json:"ssl_mode" yaml:"ssl_mode"`
	QueryLogging bool   `json:"query_log" yaml:"query_log"`
}

func (p Postgres) DriverName() string {
	return "postgres"
}

func (p Postgres) Database() string {
	return p.DB
}

// Schema : defaults to public
func (p Postgres) Schema() string {
	if p.SchemaName == "" {
		return "public"
	}
	return p.SchemaName
}

func (p Postgres) LogQueries() bool {
	return p.QueryLogging
}

func (p Postgres) GetDSN() string {
	q := url.Values{}
	q.Set("sslmode", p.sslMode())
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(portOr(p.Port, 5432))),
		Path:     "/" + p.DB,
		RawQuery: q.Encode(),
	}
	if p.UserName != "" {
		u.User = url.UserPassword(p.UserName, p.Password)
	}
	return u.String()
}

func (p Postgres) sslMode() string {
	if p.SSLMode == "" {
		return "disable"
	}
	return p.SSLMode
}

func (p Postgres) Validate() error {
	var err error
	if p.Host == "" {
		err = multierror.Append(err, errors.New("source.host is required"))
	}
	if p.DB == "" {
		err = multierror.Append(err, errors.New("source.db is required"))
	}
	if p.Port < 0 {
		err = multierror.Append(err, fmt.Errorf("source.port %d is invalid", p.Port))
	}
	return err
}
