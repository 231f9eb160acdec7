package extract

import (
	"mime"
	"path/filepath"
	"sort"
	"strings"
)

// Format identifies a supported document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatDOCX Format = "docx"
	FormatDOC  Format = "doc"
	FormatRTF  Format = "rtf"
	FormatODT  Format = "odt"
)

var mimeFormats = map[string]Format{
	"application/pdf": FormatPDF,
	"text/plain":      FormatText,
	"text/markdown":   FormatText,
	"text/csv":        FormatCSV,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,
	"application/vnd.ms-excel": FormatXLS,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FormatDOCX,
	"application/msword": FormatDOC,
	"application/rtf":    FormatRTF,
	"text/rtf":           FormatRTF,
	"application/vnd.oasis.opendocument.text": FormatODT,
}

var extFormats = map[string]Format{
	".pdf":  FormatPDF,
	".txt":  FormatText,
	".md":   FormatText,
	".csv":  FormatCSV,
	".xlsx": FormatXLSX,
	".xls":  FormatXLS,
	".docx": FormatDOCX,
	".doc":  FormatDOC,
	".rtf":  FormatRTF,
	".odt":  FormatODT,
}

// MIMEType returns the canonical media type of f.
func (f Format) MIMEType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatText:
		return "text/plain"
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatXLS:
		return "application/vnd.ms-excel"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatDOC:
		return "application/msword"
	case FormatRTF:
		return "application/rtf"
	case FormatODT:
		return "application/vnd.oasis.opendocument.text"
	}
	return "application/octet-stream"
}

// DetectFormat resolves the format of a file from its declared media type,
// falling back to the extension of name when the type is absent or unknown.
func DetectFormat(name, mimeType string) (Format, error) {
	if mimeType != "" {
		mediaType, _, err := mime.ParseMediaType(mimeType)
		if err == nil {
			if f, ok := mimeFormats[strings.ToLower(mediaType)]; ok {
				return f, nil
			}
		}
	}
	if f, ok := extFormats[strings.ToLower(filepath.Ext(name))]; ok {
		return f, nil
	}
	return "", &UnsupportedFormatError{Name: name, MIMEType: mimeType}
}

// SupportedExtensions returns the sorted list of extensions DetectFormat accepts.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extFormats))
	for ext := range extFormats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
