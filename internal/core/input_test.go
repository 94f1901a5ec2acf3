package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    FileFormat
		wantErr bool
	}{
		{name: "tasks.csv", want: FormatCSV},
		{name: "TASKS.CSV", want: FormatCSV},
		{name: "export.txt", want: FormatCSV},
		{name: "noext", want: FormatCSV},
		{name: "book.xlsx", want: FormatXLSX},
		{name: "macro.xlsm", want: FormatXLSX},
		{name: "report.pdf", wantErr: true},
		{name: "legacy.xls", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFile) {
					t.Errorf("DetectFormat(%q) err = %v, want ErrUnsupportedFile", tt.name, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Assignee Name,Captain Name")...)
	if got := DecodeText(bom); got != "Assignee Name,Captain Name" {
		t.Errorf("BOM not stripped: %q", got)
	}

	// 0xE9 is "é" in Windows-1252 and invalid on its own in UTF-8.
	got := DecodeText([]byte("Caf\xe9,Zed"))
	if got != "Caf�,Zed" {
		t.Errorf("invalid UTF-8 = %q, want replacement character", got)
	}
}

func TestReadUpload_SizeLimit(t *testing.T) {
	data := strings.Repeat("x", 100)

	if _, err := ReadUpload(strings.NewReader(data), "a.csv", 100); err != nil {
		t.Errorf("exactly at limit: %v", err)
	}
	if _, err := ReadUpload(strings.NewReader(data), "a.csv", 99); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("over limit err = %v, want ErrFileTooLarge", err)
	}
	if _, err := ReadUpload(strings.NewReader(data), "a.csv", 0); err != nil {
		t.Errorf("no limit: %v", err)
	}
}

func TestTemplateXLSX_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		template string
		parse    func(string) int
	}{
		{
			name:     "tasks",
			template: TaskTemplate(),
			parse:    func(s string) int { return len(ParseTaskCSV(s).Data) },
		},
		{
			name:     "assignees",
			template: AssigneeTemplate(),
			parse:    func(s string) int { return len(ParseAssigneeCSV(s).Data) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := TemplateXLSX(tt.template)
			if err != nil {
				t.Fatalf("TemplateXLSX: %v", err)
			}

			text, err := ReadUpload(bytes.NewReader(book), tt.name+".xlsx", 0)
			if err != nil {
				t.Fatalf("ReadUpload: %v", err)
			}

			if got := SplitLines(text)[0]; got != SplitLines(tt.template)[0] {
				t.Errorf("header = %q, want %q", got, SplitLines(tt.template)[0])
			}
			if n := tt.parse(text); n != 1 {
				t.Errorf("parsed %d rows from workbook, want 1", n)
			}
		})
	}
}

func TestDecodeUpload_InvalidWorkbook(t *testing.T) {
	_, err := DecodeUpload([]byte("definitely not a zip"), FormatXLSX)
	if err == nil || !strings.Contains(err.Error(), "invalid spreadsheet") {
		t.Errorf("err = %v, want invalid spreadsheet", err)
	}
}
