package bunreflect

import (
	"strings"

	"github.com/goliatone/go-metadata-cache/metadata"
)

var sqlTypes = map[string]metadata.DataType{
	"bigint":                      metadata.TypeBigInteger,
	"bigserial":                   metadata.TypeBigInteger,
	"int8":                        metadata.TypeBigInteger,
	"integer":                     metadata.TypeInteger,
	"int":                         metadata.TypeInteger,
	"int4":                        metadata.TypeInteger,
	"serial":                      metadata.TypeInteger,
	"mediumint":                   metadata.TypeMediumInt,
	"smallint":                    metadata.TypeSmallInt,
	"smallserial":                 metadata.TypeSmallInt,
	"int2":                        metadata.TypeSmallInt,
	"tinyint":                     metadata.TypeTinyInt,
	"decimal":                     metadata.TypeDecimal,
	"numeric":                     metadata.TypeDecimal,
	"real":                        metadata.TypeFloat,
	"float":                       metadata.TypeFloat,
	"float4":                      metadata.TypeFloat,
	"double precision":            metadata.TypeDouble,
	"double":                      metadata.TypeDouble,
	"float8":                      metadata.TypeDouble,
	"boolean":                     metadata.TypeBoolean,
	"bool":                        metadata.TypeBoolean,
	"varchar":                     metadata.TypeVarchar,
	"character varying":           metadata.TypeVarchar,
	"char":                        metadata.TypeChar,
	"character":                   metadata.TypeChar,
	"text":                        metadata.TypeText,
	"date":                        metadata.TypeDate,
	"datetime":                    metadata.TypeDatetime,
	"timestamp":                   metadata.TypeTimestamp,
	"timestamptz":                 metadata.TypeTimestamp,
	"timestamp with time zone":    metadata.TypeTimestamp,
	"timestamp without time zone": metadata.TypeTimestamp,
	"time":                        metadata.TypeTime,
	"json":                        metadata.TypeJSON,
	"jsonb":                       metadata.TypeJSONB,
	"enum":                        metadata.TypeEnum,
	"tinyblob":                    metadata.TypeTinyBlob,
	"blob":                        metadata.TypeBlob,
	"bytea":                       metadata.TypeBlob,
	"mediumblob":                  metadata.TypeMediumBlob,
	"longblob":                    metadata.TypeLongBlob,
	"binary":                      metadata.TypeBinary,
	"varbinary":                   metadata.TypeVarbinary,
}

// DataTypeOf maps an SQL column type such as "VARCHAR(255)" to its DataType.
// Unrecognized types map to TypeVarchar.
func DataTypeOf(sqlType string) metadata.DataType {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimSuffix(t, "[]")
	if dt, ok := sqlTypes[t]; ok {
		return dt
	}
	return metadata.TypeVarchar
}
