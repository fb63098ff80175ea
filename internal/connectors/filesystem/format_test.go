package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docloader/internal/core/domain"
)

func TestDefaultFormatGetter(t *testing.T) {
	g := NewFormatGetter()

	tests := []struct {
		path string
		want domain.Format
	}{
		{"/a/logo.png", domain.FormatBinary},
		{"/a/LOGO.PNG", domain.FormatBinary},
		{"/a/doc.pdf", domain.FormatBinary},
		{"/a/a.xml", domain.FormatText},
		{"/a/b.json", domain.FormatText},
		{"/a/c.bin", domain.FormatText},
		{"/a/README", domain.FormatText},
		{"/a/lib.xqy", domain.FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Format(tt.path))
		})
	}
}

func TestDefaultFormatGetter_AddBinaryExtensions(t *testing.T) {
	g := NewFormatGetter()

	g.AddBinaryExtensions("bin", ".DAT", " ")

	assert.Equal(t, domain.FormatBinary, g.Format("c.bin"))
	assert.Equal(t, domain.FormatBinary, g.Format("x.dat"))
	assert.Equal(t, domain.FormatBinary, g.Format("logo.png"), "defaults must be kept")
	assert.Len(t, g.BinaryExtensions(), len(DefaultBinaryExtensions)+2)
}

func TestDefaultFormatGetter_Overrides(t *testing.T) {
	g := NewFormatGetter(
		WithFormatOverride(".xml", domain.FormatXML),
		WithFormatOverride("png", domain.FormatText),
		WithDefaultFormat(domain.FormatUnknown),
	)

	assert.Equal(t, domain.FormatXML, g.Format("a.xml"))
	assert.Equal(t, domain.FormatText, g.Format("a.png"))
	assert.Equal(t, domain.FormatUnknown, g.Format("a.txt"))
}
