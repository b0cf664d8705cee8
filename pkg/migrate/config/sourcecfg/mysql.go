package sourcecfg

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/hashicorp/go-multierror"
)

// MYSQL : mysql source connection parameters
type MYSQL struct {
	SessionVariableValues map[string]string `json:"session_vars" yaml:"session_vars"`
	Host                  string            `json:"host" yaml:"host"`
	UserName              string            `json:"user_name" yaml:"user_name"`
	Password              string            `json:"password" yaml:"password"`
	Port                  int               `json:"port" yaml:"port"`
	DB                    string            `json:"db" yaml:"db"`
	QueryLogging          bool              `json:"query_log" yaml:"query_log"`
}

func (m MYSQL) DriverName() string {
	return "mysql"
}

func (m MYSQL) Database() string {
	return m.DB
}

// Schema : mysql has no schema level below the database
func (m MYSQL) Schema() string {
	return ""
}

func (m MYSQL) LogQueries() bool {
	return m.QueryLogging
}

func (m MYSQL) GetDSN() string {
	cfg := mysql.NewConfig()
	cfg.User = m.UserName
	cfg.Passwd = m.Password
	cfg.Net = "tcp"
	cfg.Addr = m.Host + ":" + strconv.Itoa(portOr(m.Port, 3306))
	cfg.DBName = m.DB
	cfg.ParseTime = true
	cfg.Collation = "utf8mb4_general_ci"
	cfg.Params = map[string]string{"autocommit": "true"}
	for k, v := range m.SessionVariableValues {
		cfg.Params[k] = v
	}
	return cfg.FormatDSN()
}

func (m MYSQL) Validate() error {
	var err error
	if m.Host == "" {
		err = multierror.Append(err, errors.New("source.host is required"))
	}
	if m.DB == "" {
		err = multierror.Append(err, errors.New("source.db is required"))
	}
	if m.Port < 0 {
		err = multierror.Append(err, fmt.Errorf("source.port %d is invalid", m.Port))
	}
	return err
}

func portOr(port int, def int) int {
	if port == 0 {
		return def
	}
	return port
}
