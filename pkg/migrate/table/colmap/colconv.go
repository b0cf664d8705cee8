// package colmap
//
// maps column values read from relational databases to values that
// encode cleanly into json documents
package colmap

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type : column mapping type
type Type string

const (
	// MysqlToDocument : mysql -> json document casting
	MysqlToDocument Type = "MYSQL_DOCUMENT"
	// PostgresToDocument : postgres -> json document casting
	PostgresToDocument Type = "POSTGRES_DOCUMENT"
)

// Kind : document representation of a column
type Kind string

const (
	Integer  Kind = "INTEGER"
	Unsigned Kind = "UNSIGNED"
	Float    Kind = "FLOAT"
	Decimal  Kind = "DECIMAL"
	Text     Kind = "TEXT"
	Binary   Kind = "BINARY"
	JSON     Kind = "JSON"
	Time     Kind = "TIME"
	Bool     Kind = "BOOL"
	Bits     Kind = "BITS"
)

var (
	mysqlToDocumentMap = map[string]Kind{
		"TINYINT":            Integer,
		"SMALLINT":           Integer,
		"MEDIUMINT":          Integer,
		"INT":                Integer,
		"INTEGER":            Integer,
		"BIGINT":             Integer,
		"YEAR":               Integer,
		"FLOAT":              Float,
		"DOUBLE":             Float,
		"DECIMAL":            Decimal,
		"DATE":               Time,
		"TIME":               Text,
		"DATETIME":           Time,
		"TIMESTAMP":          Time,
		"CHAR":               Text,
		"VARCHAR":            Text,
		"TINYTEXT":           Text,
		"TEXT":               Text,
		"MEDIUMTEXT":         Text,
		"LONGTEXT":           Text,
		"ENUM":               Text,
		"SET":                Text,
		"BINARY":             Binary,
		"VARBINARY":          Binary,
		"TINYBLOB":           Binary,
		"BLOB":               Binary,
		"MEDIUMBLOB":         Binary,
		"LONGBLOB":           Binary,
		"JSON":               JSON,
		"GEOMETRY":           Binary,
		"POINT":              Binary,
		"LINESTRING":         Binary,
		"POLYGON":            Binary,
		"GEOMETRYCOLLECTION": Binary,
		"MULTIPOLYGON":       Binary,
		"MULTIPOINT":         Binary,
		"MULTILINESTRING":    Binary,
		"BIT":                Bits,
		"BOOLEAN":            Bool,
	}
	postgresToDocumentMap = map[string]Kind{
		"INT2":        Integer,
		"INT4":        Integer,
		"INT8":        Integer,
		"OID":         Integer,
		"FLOAT4":      Float,
		"FLOAT8":      Float,
		"NUMERIC":     Decimal,
		"MONEY":       Text,
		"BOOL":        Bool,
		"TEXT":        Text,
		"VARCHAR":     Text,
		"BPCHAR":      Text,
		"NAME":        Text,
		"UUID":        Text,
		"INET":        Text,
		"CIDR":        Text,
		"INTERVAL":    Text,
		"JSON":        JSON,
		"JSONB":       JSON,
		"BYTEA":       Binary,
		"DATE":        Time,
		"TIMESTAMP":   Time,
		"TIMESTAMPTZ": Time,
		"TIME":        Text,
		"TIMETZ":      Text,
	}
)

// Lookup : document kind for a source column type, ok is false for unmapped types
func Lookup(t Type, colTypeSource string) (Kind, bool, error) {
	colTypeSource = strings.ToUpper(strings.TrimSpace(strings.Split(colTypeSource, "(")[0]))
	switch t {
	case MysqlToDocument:
		if base, ok := strings.CutPrefix(colTypeSource, "UNSIGNED "); ok {
			if kind, ok := mysqlToDocumentMap[base]; ok && kind == Integer {
				return Unsigned, true, nil
			}
			colTypeSource = base
		}
		kind, ok := mysqlToDocumentMap[colTypeSource]
		return kind, ok, nil
	case PostgresToDocument:
		kind, ok := postgresToDocumentMap[colTypeSource]
		return kind, ok, nil
	}
	return "", false, fmt.Errorf("Unsupported type %s", t)
}

// Convert : converts a scanned value to its document form.
// unmapped column types fall back to text for raw bytes and pass through otherwise.
func Convert(t Type, colTypeSource string, v any) (any, error) {
	kind, ok, err := Lookup(t, colTypeSource)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	if !ok {
		kind = Text
	}
	raw, isRaw := v.([]byte)
	if !isRaw {
		return convertTyped(kind, v), nil
	}
	switch kind {
	case Integer:
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return nil, castErr(colTypeSource, raw, err)
		}
		return n, nil
	case Unsigned:
		n, err := strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return nil, castErr(colTypeSource, raw, err)
		}
		return n, nil
	case Float:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return nil, castErr(colTypeSource, raw, err)
		}
		return f, nil
	case Decimal:
		if _, err := strconv.ParseFloat(string(raw), 64); err != nil {
			return nil, castErr(colTypeSource, raw, err)
		}
		// json.Number keeps every digit of the source literal
		return json.Number(raw), nil
	case Bool:
		b, err := strconv.ParseBool(string(raw))
		if err != nil {
			return nil, castErr(colTypeSource, raw, err)
		}
		return b, nil
	case Bits:
		var n uint64
		for _, b := range raw {
			n = n<<8 | uint64(b)
		}
		return n, nil
	case Binary:
		return append([]byte(nil), raw...), nil
	case JSON:
		if json.Valid(raw) {
			return json.RawMessage(append([]byte(nil), raw...)), nil
		}
		return string(raw), nil
	}
	return string(raw), nil
}

func convertTyped(kind Kind, v any) any {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case time.Time:
		return x
	case int64:
		if kind == Bool {
			return x != 0
		}
	}
	return v
}

func castErr(colType string, raw []byte, err error) error {
	return fmt.Errorf("Could not cast %s value %q : %w", colType, raw, err)
}
