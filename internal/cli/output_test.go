package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "", want: OutputFormatText},
		{input: "text", want: OutputFormatText},
		{input: "json", want: OutputFormatJSON},
		{input: "yaml", want: OutputFormatYAML},
		{input: "yml", want: OutputFormatYAML},
		{input: "xml", wantErr: true},
		{input: "JSON", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.input)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid output format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type sampleOutput struct {
	Profile  string   `json:"profile"`
	Active   bool     `json:"active"`
	Keys     []string `json:"keys,omitempty"`
	Optional string   `json:"optional,omitempty"`
}

func TestOutputWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	o := NewOutputWriter(OutputFormatJSON, &buf)

	textCalled := false
	err := o.Write(sampleOutput{Profile: "work", Active: true}, func() { textCalled = true })
	require.NoError(t, err)

	assert.False(t, textCalled)
	assert.Equal(t, "{\n  \"profile\": \"work\",\n  \"active\": true\n}\n", buf.String())
	assert.True(t, o.IsStructured())
}

func TestOutputWriterYAML(t *testing.T) {
	var buf bytes.Buffer
	o := NewOutputWriter(OutputFormatYAML, &buf)

	textCalled := false
	data := sampleOutput{Profile: "work", Active: true, Keys: []string{"id_ed25519", "id_rsa"}}
	require.NoError(t, o.Write(data, func() { textCalled = true }))

	assert.False(t, textCalled)
	assert.Equal(t, "profile: work\nactive: true\nkeys:\n  - id_ed25519\n  - id_rsa\n", buf.String())
	assert.True(t, o.IsStructured())
}

func TestOutputWriterText(t *testing.T) {
	var buf bytes.Buffer
	o := NewOutputWriter(OutputFormatText, &buf)

	textCalled := false
	require.NoError(t, o.Write(sampleOutput{Profile: "work"}, func() { textCalled = true }))

	assert.True(t, textCalled)
	assert.Empty(t, buf.String())
	assert.False(t, o.IsStructured())
}
