package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Supported reports whether Decode can handle the file name's extension.
func Supported(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm", ".csv", ".txt":
		return true
	}
	return false
}

// Decode turns raw file bytes into sheets based on the file extension.
func Decode(fileName string, data []byte) ([]Sheet, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".xlsx", ".xlsm":
		return DecodeXLSX(data)
	case ".csv", ".txt":
		s, err := DecodeCSV(data)
		if err != nil {
			return nil, err
		}
		s.Name = strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
		return []Sheet{s}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}
