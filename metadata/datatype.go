package metadata

// DataType is the column type code stored under KindDataTypes.
type DataType int

// Column type codes. The numeric values are part of the cached row format
// and must not be renumbered.
const (
	TypeInteger    DataType = 0
	TypeDate       DataType = 1
	TypeVarchar    DataType = 2
	TypeDecimal    DataType = 3
	TypeDatetime   DataType = 4
	TypeChar       DataType = 5
	TypeText       DataType = 6
	TypeFloat      DataType = 7
	TypeBoolean    DataType = 8
	TypeDouble     DataType = 9
	TypeTinyBlob   DataType = 10
	TypeBlob       DataType = 11
	TypeMediumBlob DataType = 12
	TypeLongBlob   DataType = 13
	TypeBigInteger DataType = 14
	TypeJSON       DataType = 15
	TypeJSONB      DataType = 16
	TypeTimestamp  DataType = 17
	TypeEnum       DataType = 18
	TypeTime       DataType = 20
	TypeMediumInt  DataType = 21
	TypeSmallInt   DataType = 22
	TypeTinyInt    DataType = 26
	TypeBinary     DataType = 27
	TypeVarbinary  DataType = 28
)

// IsNumeric reports whether values of this type bind as numbers.
func (d DataType) IsNumeric() bool {
	switch d {
	case TypeInteger, TypeDecimal, TypeFloat, TypeDouble, TypeBigInteger,
		TypeMediumInt, TypeSmallInt, TypeTinyInt:
		return true
	default:
		return false
	}
}
