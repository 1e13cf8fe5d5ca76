package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplanation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "allowed tags survive",
			in:   "<p>The <strong>SOV pattern</strong> with <em>topic</em></p><ul><li>one</li></ul>",
			want: "<p>The <strong>SOV pattern</strong> with <em>topic</em></p><ul><li>one</li></ul>",
		},
		{
			name: "script tag stripped",
			in:   "<p>safe</p><script>alert(1)</script>",
			want: "<p>safe</p>",
		},
		{
			name: "attributes always stripped",
			in:   `<p onclick="alert(1)" class="x">text</p><span style="color:red">hi</span>`,
			want: "<p>text</p><span>hi</span>",
		},
		{
			name: "disallowed wrapper keeps text",
			in:   "<div>inner</div>",
			want: "inner",
		},
		{
			name: "anchor stripped including href",
			in:   `<a href="javascript:alert(1)">click</a>`,
			want: "click",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Explanation(tt.in))
		})
	}
}

func TestParticleDescription(t *testing.T) {
	got := ParticleDescription(`<p>Marks the <strong>topic</strong></p><br/><em onclick="x">context</em>`)
	assert.NotContains(t, got, "<p>")
	assert.NotContains(t, got, "onclick")
	assert.Contains(t, got, "<strong>topic</strong>")
	assert.Contains(t, got, "<em>context</em>")
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"<p>plain</p>",
		`<script>alert(1)</script><p onclick="x">text</p>`,
		"no markup at all",
		"<ul><li>は marks the topic</li></ul>",
		"<div><span>nested</span></div>",
	}
	for _, in := range inputs {
		once := Explanation(in)
		assert.Equal(t, once, Explanation(once), "Explanation not idempotent for %q", in)

		onceInline := ParticleDescription(in)
		assert.Equal(t, onceInline, ParticleDescription(onceInline), "ParticleDescription not idempotent for %q", in)
	}
}
