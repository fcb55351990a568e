package importer

import (
	"fmt"
	"strings"
)

// Reader loads every raw row of a tabular source file. Header splitting and
// classification happen downstream, because the double-header convention
// needs the rows untouched.
type Reader interface {
	Read(path string) ([][]string, error)
}

func ReaderForFormat(format string) (Reader, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return &CSVReader{}, nil
	case "excel", "xlsx", "xlsm", "xls":
		return &ExcelReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}
