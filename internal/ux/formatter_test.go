package ux

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	stockerrors "github.com/felixgeelhaar/stockroom/internal/errors"
)

type testData struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

type testTable struct{}

func (testTable) Headers() []string { return []string{"ID", "NAME"} }
func (testTable) Rows() [][]string  { return [][]string{{"1", "Bolt"}, {"2", "Bearing"}} }

type stringer struct{}

func (stringer) String() string { return "stringer output" }

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"json format", "json", false},
		{"yaml format", "yaml", false},
		{"text format", "text", false},
		{"empty format defaults to text", "", false},
		{"unknown format", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFormatter(tt.format, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(testData{Name: "test", Value: 42}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"name": "test"`) || !strings.Contains(output, `"value": 42`) {
		t.Errorf("JSON output missing expected fields: %s", output)
	}
}

func TestJSONFormatterCompact(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("json", &FormatterOptions{Writer: &buf, Compact: true})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(testData{Name: "test", Value: 42}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if strings.Count(buf.String(), "\n") > 1 {
		t.Errorf("Compact JSON should be single line, got: %s", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter("yaml", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	if err := formatter.Format(testData{Name: "test", Value: 42}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "name: test") || !strings.Contains(output, "value: 42") {
		t.Errorf("YAML output missing expected fields: %s", output)
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		contains []string
		wantErr  bool
	}{
		{name: "string data", data: "hello world", contains: []string{"hello world"}},
		{name: "stringer", data: stringer{}, contains: []string{"stringer output"}},
		{name: "table", data: testTable{}, contains: []string{"ID", "NAME", "Bolt", "Bearing"}},
		{name: "struct without text form", data: testData{Name: "test", Value: 42}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatter, err := NewFormatter("text", &FormatterOptions{Writer: &buf})
			if err != nil {
				t.Fatalf("NewFormatter() error = %v", err)
			}

			err = formatter.Format(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Format() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("Format() output = %q, missing %q", buf.String(), want)
				}
			}
		})
	}
}

func TestKeyValues(t *testing.T) {
	var buf bytes.Buffer
	out := NewStyles(&buf).KeyValues([][2]string{{"status", "signed in"}, {"api", "http://x"}})

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("KeyValues() = %q, want 2 lines", out)
	}
	if !strings.HasPrefix(lines[0], "status:") || !strings.Contains(lines[0], "signed in") {
		t.Errorf("KeyValues() line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "api:") {
		t.Errorf("KeyValues() line 1 = %q", lines[1])
	}
}

func TestRenderError(t *testing.T) {
	t.Run("coded error", func(t *testing.T) {
		var buf bytes.Buffer
		err := stockerrors.NewLoginFailedError("alice", errors.New("bad credentials"))
		RenderError(&buf, err)

		out := buf.String()
		for _, want := range []string{"[AUTH-001]", "bad credentials", "Suggestions:", "Check your username and password", "Docs: https://"} {
			if !strings.Contains(out, want) {
				t.Errorf("RenderError() = %q, missing %q", out, want)
			}
		}
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		RenderError(&buf, errors.New("boom"))
		if !strings.Contains(buf.String(), "Error: boom") {
			t.Errorf("RenderError() = %q", buf.String())
		}
	})

	t.Run("nil", func(t *testing.T) {
		var buf bytes.Buffer
		RenderError(&buf, nil)
		if buf.Len() != 0 {
			t.Errorf("RenderError(nil) wrote %q", buf.String())
		}
	})
}
