package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		data map[string]string
		want string
	}{
		{
			name: "basic substitution",
			tmpl: "Hello {{ownerName}}, welcome to {{companyName}}",
			data: map[string]string{"ownerName": "Dana", "companyName": "Acme Foods"},
			want: "Hello Dana, welcome to Acme Foods",
		},
		{
			name: "unknown token left unchanged",
			tmpl: "Hello {{ownerName}}",
			data: map[string]string{"companyName": "Acme Foods"},
			want: "Hello {{ownerName}}",
		},
		{
			name: "empty string value leaves token unchanged",
			tmpl: "Hello {{ownerName}}",
			data: map[string]string{"ownerName": ""},
			want: "Hello {{ownerName}}",
		},
		{
			name: "empty template",
			tmpl: "",
			data: map[string]string{"ownerName": "Dana"},
			want: "",
		},
		{
			name: "case sensitive",
			tmpl: "Hello {{OwnerName}}",
			data: map[string]string{"ownerName": "Dana"},
			want: "Hello {{OwnerName}}",
		},
		{
			name: "repeated token",
			tmpl: "{{url}} and again {{url}}",
			data: map[string]string{"url": "https://example.com/sign"},
			want: "https://example.com/sign and again https://example.com/sign",
		},
		{
			name: "no tokens",
			tmpl: "plain text",
			data: map[string]string{"ownerName": "Dana"},
			want: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.tmpl, tt.data))
		})
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	tmpl := "Hi {{name}}, visit {{url}} before {{deadline}}"
	data := map[string]string{"name": "Dana", "url": "https://example.com"}

	first := Render(tmpl, data)
	second := Render(tmpl, data)
	assert.Equal(t, first, second)
}

func TestExtractVariables(t *testing.T) {
	names := ExtractVariables("Hello {{name}}, visit {{url}}")
	assert.ElementsMatch(t, []string{"name", "url"}, names)

	// duplicates across multiple strings collapse to one entry
	names = ExtractVariables("Hello {{name}}", "Bye {{name}}, see {{url}}")
	assert.Equal(t, []string{"name", "url"}, names)

	assert.Empty(t, ExtractVariables("no tokens here"))
}

func TestRenderMap(t *testing.T) {
	fields := map[string]string{
		"subject": "Reminder for {{companyName}}",
		"body":    "Hi {{ownerName}}",
	}
	out := RenderMap(fields, map[string]string{"companyName": "Acme Foods", "ownerName": "Dana"})
	assert.Equal(t, "Reminder for Acme Foods", out["subject"])
	assert.Equal(t, "Hi Dana", out["body"])
}
